package feed

import (
	"sync"

	"lunch_orders/internal/models"
)

// Hub fans order change events out to any number of subscribers, one buffered
// channel per subscriber. Publishing never blocks: a subscriber that cannot
// keep up is disconnected (its channel is closed) and is expected to resync
// from a fresh snapshot, the same way a dropped stream connection is handled.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool
}

type Subscription struct {
	id     uint64
	hub    *Hub
	filter models.OrderFilter
	ch     chan models.ChangeEvent
	once   sync.Once
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*Subscription)}
}

// Subscribe registers a new feed consumer. Events matching the filter are
// delivered in publish order. buffer must be large enough to absorb bursts;
// overflow closes the subscription.
func (h *Hub) Subscribe(filter models.OrderFilter, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 16
	}
	sub := &Subscription{
		hub:    h,
		filter: filter,
		ch:     make(chan models.ChangeEvent, buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.nextID++
	sub.id = h.nextID
	h.subs[sub.id] = sub
	return sub
}

// Publish delivers evt to every matching subscriber without blocking.
func (h *Hub) Publish(evt models.ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for id, sub := range h.subs {
		if !sub.filter.Matches(&evt.Record) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			// Slow consumer: drop it rather than stall every other view.
			delete(h.subs, id)
			close(sub.ch)
		}
	}
}

// Close tears down the hub and disconnects all subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
	}
}

// C is the event channel. It is closed when the subscription is cancelled,
// the hub shuts down, or the consumer fell behind; a closed channel means
// the view may be stale and must resync.
func (s *Subscription) C() <-chan models.ChangeEvent { return s.ch }

// Cancel detaches the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		if _, ok := s.hub.subs[s.id]; ok {
			delete(s.hub.subs, s.id)
			close(s.ch)
		}
	})
}
