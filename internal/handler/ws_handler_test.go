package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"roomchat/internal/app/chat"
	"roomchat/internal/configs"
)

const frameReadTimeout = 3 * time.Second

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &configs.AppConfig{
		Environment:    "development",
		Port:           8080,
		AllowedOrigins: []string{},
		PublicDir:      t.TempDir(),
	}

	deps := &AppDeps{
		Coordinator: chat.NewCoordinator(chat.NewProfanityFilter()),
		Config:      cfg,
	}

	srv := httptest.NewServer(Router(deps))
	t.Cleanup(srv.Close)

	return srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// outboundFrame mirrors the server's envelope with the payload left raw.
type outboundFrame struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

func sendFrame(t *testing.T, conn *websocket.Conn, eventType string, payload any, ackID string) {
	t.Helper()

	frame := map[string]any{
		"type":    eventType,
		"payload": payload,
	}
	if ackID != "" {
		frame["ackId"] = ackID
	}

	if err := conn.WriteJSON(frame); err != nil {
		t.Fatalf("failed to write %s frame: %v", eventType, err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) outboundFrame {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(frameReadTimeout)); err != nil {
		t.Fatalf("failed to set read deadline: %v", err)
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read frame: %v", err)
	}

	var frame outboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("failed to decode frame %s: %v", data, err)
	}

	return frame
}

func decodePayload(t *testing.T, frame outboundFrame, into any) {
	t.Helper()
	if err := json.Unmarshal(frame.Payload, into); err != nil {
		t.Fatalf("failed to decode %s payload: %v", frame.Type, err)
	}
}

func expectAck(t *testing.T, frame outboundFrame, ackID, errorMessage string) {
	t.Helper()

	if frame.Type != chat.EventAck {
		t.Fatalf("expected ack frame, got %s", frame.Type)
	}

	var ack chat.AckPayload
	decodePayload(t, frame, &ack)

	if ack.AckID != ackID {
		t.Fatalf("expected ackId %q, got %q", ackID, ack.AckID)
	}
	if ack.Error != errorMessage {
		t.Fatalf("expected ack error %q, got %q", errorMessage, ack.Error)
	}
}

func joinRoom(t *testing.T, conn *websocket.Conn, username, room string) {
	t.Helper()

	sendFrame(t, conn, chat.InboundJoin, map[string]string{"username": username, "room": room}, "join-ack")

	welcome := readFrame(t, conn)
	if welcome.Type != chat.EventMessage {
		t.Fatalf("expected welcome message first, got %s", welcome.Type)
	}
	var message chat.MessagePayload
	decodePayload(t, welcome, &message)
	if message.Username != chat.AdminUsername || message.Text != "Welcome!" {
		t.Fatalf("unexpected welcome: %+v", message)
	}

	roster := readFrame(t, conn)
	if roster.Type != chat.EventRoomData {
		t.Fatalf("expected roomData after welcome, got %s", roster.Type)
	}

	expectAck(t, readFrame(t, conn), "join-ack", "")
}

func TestWebSocketJoinAndMessageFlow(t *testing.T) {
	srv := newTestServer(t)

	alice := dialWS(t, srv)
	joinRoom(t, alice, "Alice", "room1")

	bob := dialWS(t, srv)
	joinRoom(t, bob, "Bob", "room1")

	// Alice observes Bob's arrival: a join notice, then the grown roster.
	notice := readFrame(t, alice)
	var noticePayload chat.MessagePayload
	decodePayload(t, notice, &noticePayload)
	if notice.Type != chat.EventMessage || noticePayload.Text != "Bob has joined!" {
		t.Fatalf("unexpected join notice: %+v", noticePayload)
	}

	rosterFrame := readFrame(t, alice)
	var roster chat.RoomDataPayload
	decodePayload(t, rosterFrame, &roster)
	if rosterFrame.Type != chat.EventRoomData || len(roster.Users) != 2 {
		t.Fatalf("unexpected roster: %+v", roster)
	}
	if roster.Users[0].Username != "Alice" || roster.Users[1].Username != "Bob" {
		t.Fatalf("roster not in join order: %+v", roster.Users)
	}

	// Alice sends a message; both clients receive it through the same path.
	sendFrame(t, alice, chat.InboundSendMessage, map[string]string{"text": "hello"}, "msg-ack")

	for name, conn := range map[string]*websocket.Conn{"alice": alice, "bob": bob} {
		frame := readFrame(t, conn)
		var message chat.MessagePayload
		decodePayload(t, frame, &message)
		if frame.Type != chat.EventMessage || message.Username != "Alice" || message.Text != "hello" {
			t.Fatalf("%s: unexpected message: %+v", name, message)
		}
		if message.CreatedAt <= 0 {
			t.Fatalf("%s: message is missing a timestamp", name)
		}
	}
	expectAck(t, readFrame(t, alice), "msg-ack", "")

	// Bob shares a location; both receive the map link.
	sendFrame(t, bob, chat.InboundSendLocation, map[string]float64{"latitude": 51.5, "longitude": -0.12}, "loc-ack")

	for name, conn := range map[string]*websocket.Conn{"alice": alice, "bob": bob} {
		frame := readFrame(t, conn)
		var location chat.LocationMessagePayload
		decodePayload(t, frame, &location)
		if frame.Type != chat.EventLocationMessage || location.Username != "Bob" {
			t.Fatalf("%s: unexpected location message: %+v", name, location)
		}
		if location.URL != "https://google.com/maps?q=51.5,-0.12" {
			t.Fatalf("%s: unexpected map link: %q", name, location.URL)
		}
	}
	expectAck(t, readFrame(t, bob), "loc-ack", "")

	// Bob disconnects; Alice sees the left notice and the shrunken roster.
	bob.Close()

	left := readFrame(t, alice)
	var leftPayload chat.MessagePayload
	decodePayload(t, left, &leftPayload)
	if left.Type != chat.EventMessage || leftPayload.Text != "Bob has left" {
		t.Fatalf("unexpected left notice: %+v", leftPayload)
	}

	finalRosterFrame := readFrame(t, alice)
	var finalRoster chat.RoomDataPayload
	decodePayload(t, finalRosterFrame, &finalRoster)
	if finalRosterFrame.Type != chat.EventRoomData || len(finalRoster.Users) != 1 || finalRoster.Users[0].Username != "Alice" {
		t.Fatalf("roster still contains bob: %+v", finalRoster)
	}
}

func TestWebSocketSendBeforeJoinIsAcked(t *testing.T) {
	srv := newTestServer(t)

	conn := dialWS(t, srv)
	sendFrame(t, conn, chat.InboundSendMessage, map[string]string{"text": "hello"}, "early-ack")

	// The very first frame back is the failed ack; nothing was broadcast.
	expectAck(t, readFrame(t, conn), "early-ack", "No such user or room exists")
}

func TestWebSocketDuplicateUsernameIsAcked(t *testing.T) {
	srv := newTestServer(t)

	alice := dialWS(t, srv)
	joinRoom(t, alice, "Alice", "room1")

	other := dialWS(t, srv)
	sendFrame(t, other, chat.InboundJoin, map[string]string{"username": " aLiCe ", "room": "Room1"}, "dup-ack")

	expectAck(t, readFrame(t, other), "dup-ack", "Username is in use!")
}

func TestWebSocketProfanityIsAcked(t *testing.T) {
	srv := newTestServer(t)

	alice := dialWS(t, srv)
	joinRoom(t, alice, "Alice", "room1")

	sendFrame(t, alice, chat.InboundSendMessage, map[string]string{"text": "shit"}, "bad-ack")

	expectAck(t, readFrame(t, alice), "bad-ack", "Profanity is not allowed!")
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var body struct {
		Code int `json:"code"`
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if body.Code != 0 || body.Data.Status != "ok" {
		t.Fatalf("unexpected health response: %+v", body)
	}
}

func TestRoomUsersEndpoint(t *testing.T) {
	srv := newTestServer(t)

	alice := dialWS(t, srv)
	joinRoom(t, alice, "Alice", "room1")
	bob := dialWS(t, srv)
	joinRoom(t, bob, "Bob", "room1")

	res, err := http.Get(fmt.Sprintf("%s/api/rooms/%s/users", srv.URL, "ROOM1"))
	if err != nil {
		t.Fatalf("roster request failed: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var body struct {
		Code int                  `json:"code"`
		Data chat.RoomDataPayload `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode roster response: %v", err)
	}

	if body.Code != 0 || len(body.Data.Users) != 2 {
		t.Fatalf("unexpected roster response: %+v", body)
	}
	if body.Data.Users[0].Username != "Alice" || body.Data.Users[1].Username != "Bob" {
		t.Fatalf("roster not in join order: %+v", body.Data.Users)
	}
}
