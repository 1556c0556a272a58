// Package notify fans order status updates out to interested listeners
// (order tracking endpoints, logging). Delivery per subscriber is in publish
// order; a slow subscriber drops updates instead of blocking the publisher.
package notify

import (
	"log"
	"sync"
	"time"
)

type OrderUpdate struct {
	OrderID string
	UserID  string
	Status  string
	Message string
	At      time.Time
}

type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan OrderUpdate
	nextID int
	buffer int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan OrderUpdate), buffer: 16}
}

// Subscribe returns a channel of updates and a cancel function. Cancelling
// closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan OrderUpdate, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan OrderUpdate, h.buffer)
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Publish delivers the update to every subscriber without blocking. Updates
// to a full subscriber buffer are dropped and logged.
func (h *Hub) Publish(update OrderUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		select {
		case ch <- update:
		default:
			log.Printf("[NOTIFY] [WARN] subscriber %d full, dropping update for order %s", id, update.OrderID)
		}
	}
}
