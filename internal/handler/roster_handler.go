/*
Package handler provides the HTTP handler for the read-only roster API.
*/
package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/resp"
)

// HandleRoomUsers returns the current roster of a room as JSON, in join
// order. A room nobody has joined yields an empty list rather than an error;
// rooms are derived from membership, not stored.
func HandleRoomUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := strings.TrimSpace(chi.URLParam(r, "room"))
		if room == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		resp.RespondSuccess(w, r, deps.Coordinator.UsersInRoom(room))
	}
}
