/*
Package chat contains the core logic for room-scoped real-time messaging.

This file defines the Client struct, representing an active WebSocket
connection. It manages the connection's lifecycle, the message communication
loops (ReadPump and WritePump), and the bridge between inbound protocol
frames and the coordinator.
*/
package chat

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192

	// capacity of the per-connection outbound queue.
	sendQueueSize = 256
)

// Client represents an active WebSocket connection. It implements Session:
// the coordinator addresses it by connection identity and queues outbound
// events through Deliver.
type Client struct {
	// coordinator receives this connection's inbound events.
	coordinator *Coordinator

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// connID is the server-assigned connection identity token.
	connID string

	// send queues marshaled outbound frames for WritePump.
	send chan []byte

	// mu guards closed; Deliver and Close race with each other when a
	// broadcast snapshot still references a disconnecting session.
	mu     sync.Mutex
	closed bool

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded WebSocket connection.
func NewClient(coordinator *Coordinator, wsConn *websocket.Conn, connID string) *Client {
	clientLogger := logx.Logger().With().
		Str("component", "Client").
		Str("conn_id", connID).
		Logger()

	return &Client{
		coordinator: coordinator,
		conn:        wsConn,
		connID:      connID,
		send:        make(chan []byte, sendQueueSize),
		logger:      clientLogger,
	}
}

// ConnID implements Session.
func (c *Client) ConnID() string {
	return c.connID
}

// Deliver implements Session. The envelope is marshaled and queued for the
// write pump; if the queue is full the event is dropped so a stalled client
// can never block a broadcast.
func (c *Client) Deliver(env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		c.logger.Error().Err(err).Str("event_type", env.Type).Msg("Error marshaling outbound event")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("session closed")
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, dropping event")
		return fmt.Errorf("client send queue full")
	}
}

// Close implements Session. Safe to call more than once; the write pump
// observes the closed queue and shuts the connection down.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads frames from the WebSocket connection until it drops,
// dispatching each inbound event to the coordinator. It handles heartbeats
// (Pong) and performs disconnect cleanup exactly once on exit.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		c.processInboundFrame(frame)
	}
}

// cleanupOnDisconnect runs when ReadPump terminates: the coordinator removes
// the user and notifies the room, then the outbound queue and connection are
// released.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.coordinator.Disconnect(c.connID)

	c.Close()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// processInboundFrame decodes one raw frame and dispatches it. A malformed
// or out-of-order frame results in at most one failed acknowledgment; it
// must never crash the pump or affect other connections.
func (c *Client) processInboundFrame(frame []byte) {
	var inbound InboundEnvelope
	if err := json.Unmarshal(frame, &inbound); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		return
	}

	switch inbound.Type {
	case InboundJoin:
		var payload JoinPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid join payload")
			c.sendAck(inbound.AckID, errs.NewError(errs.ErrInvalidJSONFormat))
			return
		}
		c.sendAck(inbound.AckID, c.coordinator.Join(c, payload.Username, payload.Room))

	case InboundSendMessage:
		var payload SendMessagePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid sendMessage payload")
			c.sendAck(inbound.AckID, errs.NewError(errs.ErrInvalidJSONFormat))
			return
		}
		c.sendAck(inbound.AckID, c.coordinator.SendMessage(c.connID, payload.Text))

	case InboundSendLocation:
		var payload SendLocationPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid sendLocation payload")
			c.sendAck(inbound.AckID, errs.NewError(errs.ErrInvalidJSONFormat))
			return
		}
		c.sendAck(inbound.AckID, c.coordinator.SendLocation(c.connID, payload.Latitude, payload.Longitude))

	default:
		c.logger.Warn().Str("event_type", inbound.Type).Msg("Client sent unsupported event type")
		c.sendAck(inbound.AckID, errs.NewError(errs.ErrInvalidParams))
	}
}

// sendAck reports a handler outcome back to the client. Skipped when the
// inbound event carried no ackId.
func (c *Client) sendAck(ackID string, callErr *errs.CustomError) {
	if ackID == "" {
		return
	}

	payload := AckPayload{AckID: ackID}
	if callErr != nil {
		payload.Error = callErr.Message
	}

	if err := c.Deliver(NewEnvelope(EventAck, payload)); err != nil {
		c.logger.Warn().Err(err).Str("ack_id", ackID).Msg("Failed to queue acknowledgment")
	}
}

// WritePump writes queued frames to the WebSocket connection and maintains
// the ping heartbeat. It terminates when the queue closes or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send queue. Returns true
// if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

// writePingMessage sends the periodic heartbeat Ping. Returns false if the
// WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
