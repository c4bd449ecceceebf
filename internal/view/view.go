package view

import (
	"sort"
	"sync"

	"lunch_orders/internal/models"
)

// Buckets is the partitioned projection of the order set: one bucket per
// status. Queued is oldest-first so the kitchen works FIFO; the other two are
// newest-first.
type Buckets struct {
	Queued     []models.Order `json:"queued"`
	InProgress []models.Order `json:"in_progress"`
	Ready      []models.Order `json:"ready"`
}

// Partition rebuilds the three buckets from the full order set. Rebuilding
// from scratch on every change keeps the projection deterministic; there is
// no incremental re-sort state to corrupt.
func Partition(orders []models.Order) Buckets {
	var b Buckets
	for _, o := range orders {
		switch o.Status {
		case models.StatusQueued:
			b.Queued = append(b.Queued, o)
		case models.StatusInProgress:
			b.InProgress = append(b.InProgress, o)
		case models.StatusReady:
			b.Ready = append(b.Ready, o)
		}
	}
	sort.Slice(b.Queued, func(i, j int) bool {
		return b.Queued[i].CreatedAt.Before(b.Queued[j].CreatedAt)
	})
	sort.Slice(b.InProgress, func(i, j int) bool {
		return b.InProgress[i].CreatedAt.After(b.InProgress[j].CreatedAt)
	})
	sort.Slice(b.Ready, func(i, j int) bool {
		return b.Ready[i].CreatedAt.After(b.Ready[j].CreatedAt)
	})
	return b
}

// Engine maintains a locally consistent partitioned view of orders from an
// initial snapshot plus a stream of change events. Merging is last-write-wins
// by order_id, so the optimistic local path and the confirming stream event
// commute and duplicates are no-ops.
type Engine struct {
	mu      sync.Mutex
	orders  map[string]models.Order
	buckets Buckets
	stale   bool
}

func NewEngine() *Engine {
	return &Engine{orders: make(map[string]models.Order)}
}

// Load replaces the whole local set with a fresh snapshot and clears the
// stale flag. Used on startup and on every resync.
func (e *Engine) Load(snapshot []models.Order) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.orders = make(map[string]models.Order, len(snapshot))
	for _, o := range snapshot {
		e.orders[o.OrderID] = o
	}
	e.stale = false
	e.rebuild()
}

// Apply merges one change event into the local set and recomputes the
// buckets. An update for an unknown order is treated as an insert (the event
// may have raced ahead of the snapshot); deleting an absent order is a no-op.
func (e *Engine) Apply(evt models.ChangeEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch evt.Type {
	case models.EventInsert, models.EventUpdate:
		e.orders[evt.Record.OrderID] = evt.Record
	case models.EventDelete:
		delete(e.orders, evt.Record.OrderID)
	}
	e.rebuild()
}

// ApplyLocal applies an optimistic mutation initiated by this view, before
// the store confirms it. Semantics are identical to Apply; the eventual
// stream confirmation converges to the same state.
func (e *Engine) ApplyLocal(evt models.ChangeEvent) {
	e.Apply(evt)
}

// Buckets returns a copy of the current partitioned view; mutating the
// returned slices does not affect the engine's cached projection.
func (e *Engine) Buckets() Buckets {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Buckets{
		Queued:     append([]models.Order(nil), e.buckets.Queued...),
		InProgress: append([]models.Order(nil), e.buckets.InProgress...),
		Ready:      append([]models.Order(nil), e.buckets.Ready...),
	}
}

// Stale reports whether the stream has dropped since the last snapshot load;
// the view may lag the store until the next resync.
func (e *Engine) Stale() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stale
}

func (e *Engine) markStale() {
	e.mu.Lock()
	e.stale = true
	e.mu.Unlock()
}

// rebuild must be called with e.mu held.
func (e *Engine) rebuild() {
	all := make([]models.Order, 0, len(e.orders))
	for _, o := range e.orders {
		all = append(all, o)
	}
	e.buckets = Partition(all)
}
