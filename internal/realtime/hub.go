// Package realtime implements the live-subscription layer: a WebSocket hub
// that fans full state snapshots out to subscribed clients. The contract is
// "push sequences of full current state", not incremental diffs: every time
// a chat changes, subscribers of its topic receive the complete ordered
// message list; every directory change pushes the whole inbox.
//
// Topics:
//   - "chat:<id>"  one conversation's message log
//   - "chats"      the operator inbox (admin only)
//
// Subscriptions are explicit and cancellable; tearing down the connection
// releases every topic the client held.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Envelope is the frame sent to subscribers.
type Envelope struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

// Hub tracks connected clients and their topic subscriptions.
// All methods are safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	topics  map[string]map[*Client]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		topics:  make(map[string]map[*Client]struct{}),
	}
}

// Publish fans payload out to every client subscribed to topic. Clients
// whose send buffer is full are dropped rather than allowed to stall the
// publisher.
func (h *Hub) Publish(topic string, payload any) {
	frame, err := json.Marshal(Envelope{Topic: topic, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("snapshot marshal failed")
		return
	}

	h.mu.RLock()
	subs := make([]*Client, 0, len(h.topics[topic]))
	for c := range h.topics[topic] {
		subs = append(subs, c)
	}
	h.mu.RUnlock()

	for _, c := range subs {
		select {
		case c.send <- frame:
		default:
			// Slow consumer: evict instead of blocking the write path.
			h.remove(c)
			c.close()
		}
	}
}

// SubscriberCount reports how many clients hold the given topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	for topic, subs := range h.topics {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) subscribe(c *Client, topic string) {
	h.mu.Lock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]struct{})
	}
	h.topics[topic][c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unsubscribe(c *Client, topic string) {
	h.mu.Lock()
	if subs := h.topics[topic]; subs != nil {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	h.mu.Unlock()
}
