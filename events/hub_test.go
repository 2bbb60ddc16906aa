package events

import (
	"encoding/json"
	"testing"
	"time"
)

func newTestClient(h *Hub, userID string) *Client {
	client := &Client{
		hub:    h,
		send:   make(chan []byte, 8),
		UserID: userID,
	}
	h.register <- client
	return client
}

func TestHubDeliversOnlyToOwningUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")

	hub.Publish(Event{UserID: "alice", Entity: "company", Action: "created", ID: "c-1"})

	select {
	case payload := <-alice.send:
		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if event.Entity != "company" || event.Action != "created" || event.ID != "c-1" {
			t.Errorf("event = %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("expected the owner to receive the event")
	}

	select {
	case payload := <-bob.send:
		t.Fatalf("other user received %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, "alice")
	hub.unregister <- client

	select {
	case _, open := <-client.send:
		if open {
			t.Fatal("expected send channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed after unregister")
	}
}
