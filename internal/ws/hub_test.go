package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func receive(t *testing.T, c *Client) (Event, bool) {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			return Event{}, false
		}
		var evt Event
		if err := json.Unmarshal(msg, &evt); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		return evt, true
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
		return Event{}, false
	}
}

func TestHub_NotifyTargetsUser(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	alice, bob := uuid.New(), uuid.New()
	a1 := NewClient(hub, nil, alice)
	a2 := NewClient(hub, nil, alice)
	b1 := NewClient(hub, nil, bob)
	hub.Register(a1)
	hub.Register(a2)
	hub.Register(b1)

	if hub.ClientCount(alice) != 2 || hub.ClientCount(bob) != 1 {
		t.Fatalf("unexpected client counts")
	}

	hub.Notify(alice, "match_created", map[string]int{"match_score": 91})

	for _, c := range []*Client{a1, a2} {
		evt, ok := receive(t, c)
		if !ok || evt.Type != "match_created" {
			t.Fatalf("unexpected event: %+v", evt)
		}
	}
	select {
	case msg := <-b1.send:
		t.Fatalf("bob must not receive alice's event, got %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub(nil)
	userID := uuid.New()
	c := NewClient(hub, nil, userID)
	hub.Register(c)
	hub.Unregister(c)
	hub.Unregister(c)

	if hub.ClientCount(userID) != 0 {
		t.Fatalf("expected no clients")
	}
	if _, ok := <-c.send; ok {
		t.Fatalf("expected send channel to be closed")
	}
}

func TestHub_DropsWhenClientIsSlow(t *testing.T) {
	hub := NewHub(nil)
	userID := uuid.New()
	c := NewClient(hub, nil, userID)
	hub.Register(c)

	for i := 0; i < clientBufferSize+10; i++ {
		hub.deliver(delivery{userID: userID, message: []byte(`{}`)})
	}
	if len(c.send) != clientBufferSize {
		t.Fatalf("expected a full buffer of %d, got %d", clientBufferSize, len(c.send))
	}
}

func TestHub_RunClosesClientsOnShutdown(t *testing.T) {
	hub := NewHub(nil)
	c := NewClient(hub, nil, uuid.New())
	hub.Register(c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	if _, ok := <-c.send; ok {
		t.Fatalf("expected send channel to be closed")
	}
}
