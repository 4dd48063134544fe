package http

import (
	"sync"

	"trivia-live-service/internal/domain"
)

// outboundMessage is the envelope for every engine-to-client message.
type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub tracks live connections and implements game.BroadcastGateway. Each
// connection gets a buffered send channel drained by its own writer
// goroutine; a slow or dead client loses queued messages instead of
// blocking the engine.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]chan outboundMessage
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]chan outboundMessage)}
}

// Add registers a connection and returns its send channel.
func (h *Hub) Add(connID string) <-chan outboundMessage {
	ch := make(chan outboundMessage, 16)
	h.mu.Lock()
	h.clients[connID] = ch
	h.mu.Unlock()
	return ch
}

// Remove drops a connection and closes its channel, stopping the writer.
func (h *Hub) Remove(connID string) {
	h.mu.Lock()
	ch, ok := h.clients[connID]
	if ok {
		delete(h.clients, connID)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *Hub) Send(connID string, event domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.sendLocked(connID, outboundMessage{Type: event.EventType(), Payload: event})
}

func (h *Hub) Broadcast(connIDs []string, event domain.Event) {
	msg := outboundMessage{Type: event.EventType(), Payload: event}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range connIDs {
		h.sendLocked(id, msg)
	}
}

func (h *Hub) sendLocked(connID string, msg outboundMessage) {
	ch, ok := h.clients[connID]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		// Queue full: drop the oldest message to make room. A racing
		// sender may reclaim the freed slot, so the retry must stay
		// non-blocking too; the new message is dropped as a last resort.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- msg:
		default:
		}
	}
}
