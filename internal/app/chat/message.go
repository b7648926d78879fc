/*
Package chat contains the core logic for room-scoped real-time messaging.

This file defines the wire protocol: the inbound envelope clients send over
the WebSocket and the outbound envelope the server broadcasts, together with
the typed payloads for each event.
*/
package chat

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"roomchat/internal/app/user"
	"roomchat/internal/pkg/randx"
)

// AdminUsername is the reserved sender name for system notices (welcome,
// joined, left).
const AdminUsername = "Admin"

// mapsURLFormat is the link template for location messages.
const mapsURLFormat = "https://google.com/maps?q=%s,%s"

// Inbound event types (client to server).
const (
	// InboundJoin requests membership in a room under a display name.
	InboundJoin = "join"

	// InboundSendMessage sends a text message to the sender's room.
	InboundSendMessage = "sendMessage"

	// InboundSendLocation shares the sender's coordinates with the room.
	InboundSendLocation = "sendLocation"
)

// Outbound event types (server to client).
const (
	// EventMessage carries a chat text message or a system notice.
	EventMessage = "message"

	// EventLocationMessage carries a shared-location map link.
	EventLocationMessage = "locationMessage"

	// EventRoomData carries the current roster of a room.
	EventRoomData = "roomData"

	// EventAck answers a request-style inbound event. Exactly one ack is
	// sent per inbound event that carries an ackId.
	EventAck = "ack"
)

// InboundEnvelope is the frame shape clients send over the WebSocket.
type InboundEnvelope struct {
	// Type is one of the Inbound* constants.
	Type string `json:"type"`

	// Payload is the event-specific body, decoded per Type.
	Payload json.RawMessage `json:"payload,omitempty"`

	// AckID, when present, requests an EventAck carrying the outcome.
	AckID string `json:"ackId,omitempty"`
}

// JoinPayload is the body of an InboundJoin event.
type JoinPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// SendMessagePayload is the body of an InboundSendMessage event.
type SendMessagePayload struct {
	Text string `json:"text"`
}

// SendLocationPayload is the body of an InboundSendLocation event.
type SendLocationPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Envelope is the frame shape the server sends to clients.
type Envelope struct {
	// Type is one of the Event* constants.
	Type string `json:"type"`

	// ID uniquely identifies this outbound event.
	ID string `json:"id"`

	// Payload is the event-specific body.
	Payload any `json:"payload,omitempty"`
}

// NewEnvelope wraps a payload in an outbound envelope with a fresh event ID.
func NewEnvelope(eventType string, payload any) Envelope {
	return Envelope{
		Type:    eventType,
		ID:      randx.MessageID(),
		Payload: payload,
	}
}

// MessagePayload is the body of an EventMessage.
type MessagePayload struct {
	Username string `json:"username"`

	Text string `json:"text"`

	// CreatedAt is the server's event-processing time in epoch milliseconds.
	// Display formatting is a client concern.
	CreatedAt int64 `json:"createdAt"`
}

// NewMessagePayload builds a message payload stamped with the current server time.
func NewMessagePayload(username, text string) MessagePayload {
	return MessagePayload{
		Username:  username,
		Text:      text,
		CreatedAt: time.Now().UnixMilli(),
	}
}

// LocationMessagePayload is the body of an EventLocationMessage.
type LocationMessagePayload struct {
	Username string `json:"username"`

	// URL is a map link pointing at the shared coordinates.
	URL string `json:"url"`

	CreatedAt int64 `json:"createdAt"`
}

// NewLocationMessagePayload builds a location payload with a map link for the
// given coordinates, stamped with the current server time.
func NewLocationMessagePayload(username string, latitude, longitude float64) LocationMessagePayload {
	url := fmt.Sprintf(mapsURLFormat,
		strconv.FormatFloat(latitude, 'f', -1, 64),
		strconv.FormatFloat(longitude, 'f', -1, 64),
	)

	return LocationMessagePayload{
		Username:  username,
		URL:       url,
		CreatedAt: time.Now().UnixMilli(),
	}
}

// RosterEntry is one user in a roomData roster.
type RosterEntry struct {
	Username string `json:"username"`
}

// RoomDataPayload is the body of an EventRoomData: the room name and its
// roster in join order.
type RoomDataPayload struct {
	Room  string        `json:"room"`
	Users []RosterEntry `json:"users"`
}

// NewRoomDataPayload builds a roster payload from a registry snapshot,
// preserving the snapshot's join order.
func NewRoomDataPayload(room string, users []user.User) RoomDataPayload {
	roster := make([]RosterEntry, 0, len(users))
	for _, u := range users {
		roster = append(roster, RosterEntry{Username: u.Username})
	}

	return RoomDataPayload{
		Room:  room,
		Users: roster,
	}
}

// AckPayload is the body of an EventAck.
type AckPayload struct {
	// AckID echoes the client-supplied ackId of the inbound event.
	AckID string `json:"ackId"`

	// Error is the human-readable failure description, empty on success.
	Error string `json:"error,omitempty"`
}
