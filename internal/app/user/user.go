/*
Package user contains the core data structure describing a chat participant.

A User exists from the moment its owning connection completes a valid join
until that connection disconnects. User records are owned exclusively by the
session registry; every other component works with copies.
*/
package user

// User represents one joined participant, bound to a single live connection.
type User struct {

	// ConnID is the opaque, server-assigned identifier of the owning
	// WebSocket connection. It is never chosen by the client and becomes
	// invalid the moment the connection drops.
	ConnID string `json:"-"`

	// Username is the display name, trimmed of surrounding whitespace.
	// Unique within a room under case-insensitive comparison.
	Username string `json:"username"`

	// Room is the trimmed room name the user joined. Immutable once set;
	// changing rooms requires a new connection.
	Room string `json:"room"`
}
