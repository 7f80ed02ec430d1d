package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newSubscriber connects a real websocket client subscribed to sessionID
// and returns the client side of the connection.
func newSubscriber(t *testing.T, hub *Hub, sessionID string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		sub := hub.NewConnection(conn, sessionID)
		hub.Register(sub)
		go sub.WritePump()
		go sub.ReadPump()
	}))
	t.Cleanup(srv.Close)

	wsURL := strings.Replace(srv.URL, "http", "ws", 1)
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	waitFor(t, func() bool { return hub.HasSubscribers(sessionID) })
	return client
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func readEvent(t *testing.T, conn *websocket.Conn) domain.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var ev domain.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return ev
}

func TestPublishReachesSessionSubscribers(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	client := newSubscriber(t, hub, "s1")

	hub.Publish(domain.NewStatusEvent("s1", domain.StatusRunning))
	hub.Publish(domain.NewMessageEvent("s1", domain.NewTextMessage(domain.MessageTypeAssistant, "hi")))

	ev := readEvent(t, client)
	if ev.Type != domain.EventTypeStatus || ev.Status != domain.StatusRunning {
		t.Fatalf("unexpected first event: %+v", ev)
	}

	ev = readEvent(t, client)
	if ev.Type != domain.EventTypeMessage || ev.Message == nil {
		t.Fatalf("unexpected second event: %+v", ev)
	}
	var payload domain.TextPayload
	if err := json.Unmarshal(ev.Message.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Text != "hi" {
		t.Fatalf("unexpected text %q", payload.Text)
	}
}

func TestPublishIsScopedToSession(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	watcher := newSubscriber(t, hub, "watched")
	other := newSubscriber(t, hub, "other")

	hub.Publish(domain.NewStatusEvent("watched", domain.StatusCompleted))

	ev := readEvent(t, watcher)
	if ev.SessionID != "watched" {
		t.Fatalf("unexpected session %q", ev.SessionID)
	}

	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Fatal("subscriber of another session received the event")
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	client := newSubscriber(t, hub, "s1")
	if hub.ConnectionCount() != 1 {
		t.Fatalf("expected 1 connection, got %d", hub.ConnectionCount())
	}

	client.Close()
	waitFor(t, func() bool { return !hub.HasSubscribers("s1") })
	if hub.ConnectionCount() != 0 {
		t.Fatalf("expected 0 connections, got %d", hub.ConnectionCount())
	}
}
