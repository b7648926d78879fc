/*
Package chat contains the core logic for room-scoped real-time messaging:
the session registry, the room event coordinator, and broadcast fan-out to
connected clients.

This file defines the Registry, the in-memory mapping from connection
identity to joined user. The Registry exclusively owns all user records and
is the single synchronization point for membership state.
*/
package chat

import (
	"strings"
	"sync"

	"roomchat/internal/app/user"
	"roomchat/internal/pkg/errs"
)

// foldKey normalizes a username or room name for identity comparison:
// surrounding whitespace is trimmed and case is folded. Internal whitespace
// is significant, so "my  room" and "my room" are distinct rooms.
func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Registry is the in-memory session registry. It maps live connection
// identities to their joined users and preserves join order for stable
// roster rendering.
//
// Every operation is atomic under one lock, so two concurrent joins with a
// conflicting display name can never both observe the pre-conflict state
// and both succeed.
type Registry struct {
	// mu protects users and order.
	mu sync.RWMutex

	// users maps connection identity to the registered user.
	users map[string]*user.User

	// order holds connection identities in join order.
	order []string
}

// NewRegistry constructs an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		users: make(map[string]*user.User),
	}
}

// AddUser registers a user for the given connection identity.
//
// Both fields are trimmed before validation; an empty username or room after
// trimming fails with ErrUsernameAndRoomRequired. A connection that already
// holds a user fails with ErrAlreadyJoined (one join per connection
// lifetime). A case-insensitive duplicate display name within the
// case-insensitive room fails with ErrUsernameInUse. On success the stored
// user carries the normalized (trimmed) fields.
func (reg *Registry) AddUser(connID, username, room string) (*user.User, *errs.CustomError) {
	username = strings.TrimSpace(username)
	room = strings.TrimSpace(room)

	if username == "" || room == "" {
		return nil, errs.NewError(errs.ErrUsernameAndRoomRequired)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.users[connID]; ok {
		return nil, errs.NewError(errs.ErrAlreadyJoined)
	}

	nameKey := foldKey(username)
	roomKey := foldKey(room)

	for _, id := range reg.order {
		existing := reg.users[id]
		if foldKey(existing.Room) == roomKey && foldKey(existing.Username) == nameKey {
			return nil, errs.NewError(errs.ErrUsernameInUse)
		}
	}

	u := &user.User{
		ConnID:   connID,
		Username: username,
		Room:     room,
	}

	reg.users[connID] = u
	reg.order = append(reg.order, connID)

	registered := *u
	return &registered, nil
}

// RemoveUser removes and returns the user for the given connection identity.
// Returns nil if no user is registered; disconnects of never-joined
// connections are expected and silent, so this is not an error.
func (reg *Registry) RemoveUser(connID string) *user.User {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	u, ok := reg.users[connID]
	if !ok {
		return nil
	}

	delete(reg.users, connID)

	for i, id := range reg.order {
		if id == connID {
			reg.order = append(reg.order[:i], reg.order[i+1:]...)
			break
		}
	}

	removed := *u
	return &removed
}

// GetUser returns a copy of the user registered for the given connection
// identity, or nil if the connection never completed a join.
func (reg *Registry) GetUser(connID string) *user.User {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	u, ok := reg.users[connID]
	if !ok {
		return nil
	}

	found := *u
	return &found
}

// GetUsersInRoom returns the users whose room matches the given name under
// trimming and case folding, in join order.
func (reg *Registry) GetUsersInRoom(room string) []user.User {
	roomKey := foldKey(room)

	reg.mu.RLock()
	defer reg.mu.RUnlock()

	users := make([]user.User, 0)
	for _, id := range reg.order {
		u := reg.users[id]
		if foldKey(u.Room) == roomKey {
			users = append(users, *u)
		}
	}

	return users
}
