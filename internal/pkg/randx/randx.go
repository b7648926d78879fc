/*
Package randx provides generation of the unique identifiers used by the server.

Connection identities and outbound message IDs are both standard UUID v4
strings. Connection identities are assigned by the server at upgrade time,
never chosen by the client, and die with the connection.
*/
package randx

import "github.com/google/uuid"

// ConnectionID generates the opaque identity token for a new WebSocket
// connection. No two simultaneously live connections share an identity.
func ConnectionID() string {
	return uuid.New().String()
}

// MessageID generates a unique identifier for an outbound event envelope.
func MessageID() string {
	return uuid.New().String()
}
