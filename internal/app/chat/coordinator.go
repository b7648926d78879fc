/*
Package chat contains the core logic for room-scoped real-time messaging.

This file defines the Coordinator, which translates inbound connection events
(join, send-message, send-location, disconnect) into registry operations and
outbound broadcasts. It owns the session registry and the per-room subscriber
lists; subscription mutates only on join and disconnect.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
)

// welcomeText is the private system notice sent to a client on a
// successful join, before that client's first roster update.
const welcomeText = "Welcome!"

// Session is the coordinator's handle on one live connection.
//
// Deliver must never block: a slow consumer drops events rather than
// stalling a broadcast. The transport serializes a single connection's
// inbound events, but sessions on different connections call into the
// coordinator concurrently.
type Session interface {
	// ConnID returns the connection's opaque identity token.
	ConnID() string

	// Deliver queues an outbound event for the connection. Events delivered
	// to the same session are observed in delivery order.
	Deliver(env Envelope) error

	// Close releases the session's outbound queue.
	Close()
}

// Coordinator drives the session registry and broadcast fan-out.
//
// Request-style handlers return a *errs.CustomError that the transport layer
// forwards to the client's waiting acknowledgment; nil means success. No
// handler mutates state before its precondition checks pass, so there is no
// partial state to roll back.
type Coordinator struct {
	// registry holds all membership state. Never exposed directly.
	registry *Registry

	// filter is the profanity predicate applied to outgoing text.
	filter ProfanityFilter

	// mu protects rooms.
	mu sync.RWMutex

	// rooms maps the case-folded room name to its subscribed sessions,
	// keyed by connection identity.
	rooms map[string]map[string]Session

	// structured logger with Coordinator context.
	logger zerolog.Logger
}

// NewCoordinator constructs a coordinator with an empty registry.
func NewCoordinator(filter ProfanityFilter) *Coordinator {
	coordinatorLogger := logx.Logger().With().Str("component", "Coordinator").Logger()

	return &Coordinator{
		registry: NewRegistry(),
		filter:   filter,
		rooms:    make(map[string]map[string]Session),
		logger:   coordinatorLogger,
	}
}

// Join registers the session's connection under the given display name and
// room. On a validation or name-conflict failure the connection stays
// unjoined: no subscription is made and nothing is broadcast.
//
// On success the joining client privately receives a welcome notice, every
// other room member is told the user joined, and the whole room (joiner
// included) receives a fresh roster. The welcome is queued before the roster
// on the joiner's ordered session queue.
func (c *Coordinator) Join(s Session, username, room string) *errs.CustomError {
	connID := s.ConnID()

	u, addErr := c.registry.AddUser(connID, username, room)
	if addErr != nil {
		c.logger.Warn().
			Str("conn_id", connID).
			Int("error_code", addErr.Code).
			Msg("Join rejected.")
		return addErr
	}

	roomKey := foldKey(u.Room)

	c.mu.Lock()
	members, ok := c.rooms[roomKey]
	if !ok {
		members = make(map[string]Session)
		c.rooms[roomKey] = members
	}
	members[connID] = s
	c.mu.Unlock()

	c.deliverTo(s, NewEnvelope(EventMessage, NewMessagePayload(AdminUsername, welcomeText)))
	c.broadcast(roomKey, connID, NewEnvelope(EventMessage, NewMessagePayload(AdminUsername, u.Username+" has joined!")))
	c.broadcastRoomData(roomKey, u.Room)

	c.logger.Info().
		Str("conn_id", connID).
		Str("username", u.Username).
		Str("room", u.Room).
		Msg("User joined room.")

	return nil
}

// SendMessage broadcasts a text message to the sender's room, sender
// included, so the sender's own message renders through the same path as
// everyone else's. Identity is checked before the profanity filter so a
// rejection is attributed correctly.
func (c *Coordinator) SendMessage(connID, text string) *errs.CustomError {
	u := c.registry.GetUser(connID)
	if u == nil {
		return errs.NewError(errs.ErrUnknownUser)
	}

	if c.filter.IsProfane(text) {
		c.logger.Warn().
			Str("conn_id", connID).
			Str("username", u.Username).
			Msg("Message rejected by profanity filter.")
		return errs.NewError(errs.ErrProfanity)
	}

	c.broadcast(foldKey(u.Room), "", NewEnvelope(EventMessage, NewMessagePayload(u.Username, text)))

	return nil
}

// SendLocation broadcasts a map link for the given coordinates to the
// sender's room, sender included.
func (c *Coordinator) SendLocation(connID string, latitude, longitude float64) *errs.CustomError {
	u := c.registry.GetUser(connID)
	if u == nil {
		return errs.NewError(errs.ErrUnknownUser)
	}

	c.broadcast(foldKey(u.Room), "", NewEnvelope(EventLocationMessage, NewLocationMessagePayload(u.Username, latitude, longitude)))

	return nil
}

// Disconnect removes the connection's user and subscription. Idempotent: a
// connection that never joined, or was already removed, is a silent no-op.
// When a user was present the room is told they left and receives a
// refreshed roster. No acknowledgment exists for this event; the connection
// is already gone.
func (c *Coordinator) Disconnect(connID string) {
	u := c.registry.RemoveUser(connID)
	if u == nil {
		return
	}

	roomKey := foldKey(u.Room)

	c.mu.Lock()
	if members, ok := c.rooms[roomKey]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(c.rooms, roomKey)
		}
	}
	c.mu.Unlock()

	c.broadcast(roomKey, "", NewEnvelope(EventMessage, NewMessagePayload(AdminUsername, u.Username+" has left")))
	c.broadcastRoomData(roomKey, u.Room)

	c.logger.Info().
		Str("conn_id", connID).
		Str("username", u.Username).
		Str("room", u.Room).
		Msg("User left room.")
}

// UsersInRoom returns the room's current roster in join order. Read-only
// view used by the HTTP surface.
func (c *Coordinator) UsersInRoom(room string) RoomDataPayload {
	return NewRoomDataPayload(room, c.registry.GetUsersInRoom(room))
}

// Shutdown closes every subscribed session's outbound queue. Called during
// graceful server shutdown, after the HTTP listener has stopped accepting
// connections.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, members := range c.rooms {
		for _, s := range members {
			s.Close()
			count++
		}
	}
	c.rooms = make(map[string]map[string]Session)

	c.logger.Info().Int("sessions_closed", count).Msg("Coordinator shutdown complete.")
}

// broadcast delivers an event to every session subscribed to the room,
// skipping skipConnID when non-empty. The recipient set is snapshotted at
// call time, so it is exactly the membership at the moment of the broadcast.
func (c *Coordinator) broadcast(roomKey, skipConnID string, env Envelope) {
	c.mu.RLock()
	members := c.rooms[roomKey]
	recipients := make([]Session, 0, len(members))
	for connID, s := range members {
		if connID == skipConnID {
			continue
		}
		recipients = append(recipients, s)
	}
	c.mu.RUnlock()

	for _, s := range recipients {
		c.deliverTo(s, env)
	}
}

// broadcastRoomData sends the room's roster to all of its members. The
// roster is computed from a registry snapshot taken at broadcast time; under
// a burst of joins each update is independently consistent and the last one
// wins on the client's display.
func (c *Coordinator) broadcastRoomData(roomKey, room string) {
	payload := NewRoomDataPayload(room, c.registry.GetUsersInRoom(room))
	c.broadcast(roomKey, "", NewEnvelope(EventRoomData, payload))
}

// deliverTo queues an event on one session, logging delivery failures
// instead of propagating them. A full or closed session queue must never
// affect other connections.
func (c *Coordinator) deliverTo(s Session, env Envelope) {
	if err := s.Deliver(env); err != nil {
		c.logger.Warn().
			Err(err).
			Str("conn_id", s.ConnID()).
			Str("event_type", env.Type).
			Msg("Dropped event for session.")
	}
}
