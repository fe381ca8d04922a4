// Package stream fans driver updates out to websocket subscribers.
package stream

import (
	"sync"

	"water_tank/internal/driver"
	"water_tank/internal/models"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 16

// Hub implements driver.Observer. Each update is converted to a reading
// once and offered to every subscriber; a subscriber whose queue is full
// misses that reading and the driver never waits on a client.
type Hub struct {
	reading func(driver.Update) models.TankReading
	buffer  int

	mu      sync.Mutex
	nextID  int
	subs    map[int]chan models.TankReading
	dropped uint64
}

func NewHub(reading func(driver.Update) models.TankReading, buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		reading: reading,
		buffer:  buffer,
		subs:    make(map[int]chan models.TankReading),
	}
}

// Subscribe registers a subscriber. The returned cancel func removes it and
// closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan models.TankReading, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan models.TankReading, h.buffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

// Observe implements driver.Observer.
func (h *Hub) Observe(u driver.Update) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.subs) == 0 {
		return
	}
	r := h.reading(u)
	for _, ch := range h.subs {
		select {
		case ch <- r:
		default:
			h.dropped++
		}
	}
}

// Len reports the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dropped reports how many deliveries were skipped because a queue was full.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}
