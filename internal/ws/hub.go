// Package ws pushes per-user events to connected websocket clients.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	eventBufferSize  = 1024
	clientBufferSize = 64
)

// Event is the JSON frame sent to clients.
type Event struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

type delivery struct {
	userID  uuid.UUID
	message []byte
}

// Hub fans events out to the connections of a single user. Delivery runs on
// the goroutine started by Run; senders never block.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}

	events chan delivery
	now    func() time.Time
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[uuid.UUID]map[*Client]struct{}),
		events:  make(chan delivery, eventBufferSize),
		now:     time.Now,
		logger:  logger.Named("ws"),
	}
}

// Run delivers queued events until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case d := <-h.events:
			h.deliver(d)
		}
	}
}

// deliver holds the read lock while sending so Unregister cannot close a
// channel mid-send. Sends never block.
func (h *Hub) deliver(d delivery) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[d.userID] {
		select {
		case c.send <- d.message:
		default:
			h.logger.Warn("client buffer full, event dropped", zap.String("user_id", d.userID.String()))
		}
	}
}

func (h *Hub) Register(c *Client) {
	if h == nil || c == nil {
		return
	}
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	n := len(set)
	h.mu.Unlock()

	h.logger.Debug("client connected", zap.String("user_id", c.userID.String()), zap.Int("user_clients", n))
}

func (h *Hub) Unregister(c *Client) {
	if h == nil || c == nil {
		return
	}
	h.mu.Lock()
	set := h.clients[c.userID]
	if _, ok := set[c]; ok {
		delete(set, c)
		close(c.send)
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()

	h.logger.Debug("client disconnected", zap.String("user_id", c.userID.String()))
}

// Notify queues an event for every connection of userID. The event is
// dropped when the queue is full.
func (h *Hub) Notify(userID uuid.UUID, eventType string, data any) {
	if h == nil {
		return
	}
	b, err := json.Marshal(Event{Type: eventType, Data: data, Timestamp: h.now().UTC().Format(time.RFC3339)})
	if err != nil {
		h.logger.Error("marshal event", zap.String("type", eventType), zap.Error(err))
		return
	}
	select {
	case h.events <- delivery{userID: userID, message: b}:
	default:
		h.logger.Warn("event queue full, event dropped", zap.String("type", eventType))
	}
}

func (h *Hub) ClientCount(userID uuid.UUID) int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, userID)
	}
}
