package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// dial upgrades a test connection against a ServeClient endpoint.
func dial(t *testing.T, hub *Hub, canSubscribe func(string) bool, onSubscribe func(string)) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := ServeClient(hub, w, r, canSubscribe, onSubscribe); err != nil {
			t.Errorf("ServeClient: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	return env
}

func waitForSubscribers(t *testing.T, hub *Hub, topic string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.SubscriberCount(topic) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("topic %q never reached %d subscribers", topic, want)
}

func TestHub_SubscribeAndReceiveSnapshot(t *testing.T) {
	hub := NewHub()
	conn := dial(t, hub, nil, nil)

	if err := conn.WriteJSON(map[string]string{"action": "subscribe", "topic": "chat:c1"}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	waitForSubscribers(t, hub, "chat:c1", 1)

	hub.Publish("chat:c1", map[string]string{"hello": "world"})

	env := readEnvelope(t, conn)
	if env.Topic != "chat:c1" {
		t.Fatalf("wrong topic: %q", env.Topic)
	}
	payload, ok := env.Payload.(map[string]any)
	if !ok || payload["hello"] != "world" {
		t.Fatalf("payload lost in transit: %#v", env.Payload)
	}
}

func TestHub_UnauthorizedTopicIsIgnored(t *testing.T) {
	hub := NewHub()
	conn := dial(t, hub, func(topic string) bool { return topic == "chat:mine" }, nil)

	if err := conn.WriteJSON(map[string]string{"action": "subscribe", "topic": "chats"}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := conn.WriteJSON(map[string]string{"action": "subscribe", "topic": "chat:mine"}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	waitForSubscribers(t, hub, "chat:mine", 1)

	if got := hub.SubscriberCount("chats"); got != 0 {
		t.Fatalf("unauthorized subscription must be dropped, got %d subscribers", got)
	}
}

func TestHub_OnSubscribeSeedsSnapshot(t *testing.T) {
	hub := NewHub()
	conn := dial(t, hub, nil, func(topic string) {
		hub.Publish(topic, map[string]string{"seed": topic})
	})

	if err := conn.WriteJSON(map[string]string{"action": "subscribe", "topic": "chats"}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	env := readEnvelope(t, conn)
	if env.Topic != "chats" {
		t.Fatalf("expected the seeded snapshot, got topic %q", env.Topic)
	}
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	conn := dial(t, hub, nil, nil)

	if err := conn.WriteJSON(map[string]string{"action": "subscribe", "topic": "chat:c1"}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	waitForSubscribers(t, hub, "chat:c1", 1)

	if err := conn.WriteJSON(map[string]string{"action": "unsubscribe", "topic": "chat:c1"}); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	waitForSubscribers(t, hub, "chat:c1", 0)

	hub.Publish("chat:c1", "late")
	_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("unsubscribed client must not receive frames")
	}
}

func TestHub_PublishWithoutSubscribersIsSafe(t *testing.T) {
	hub := NewHub()
	hub.Publish("chat:empty", "anyone?")
	if got := hub.SubscriberCount("chat:empty"); got != 0 {
		t.Fatalf("expected no subscribers, got %d", got)
	}
}
