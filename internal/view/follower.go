package view

import (
	"context"
	"log"
	"time"

	"lunch_orders/internal/models"
)

// OrderSource is the slice of the record store a view needs: a snapshot read
// and a live change stream. The returned cancel func detaches the stream.
type OrderSource interface {
	List(filter models.OrderFilter) ([]models.Order, error)
	Subscribe(filter models.OrderFilter) (<-chan models.ChangeEvent, func())
}

// Follower drives an Engine from an OrderSource: initial snapshot, then
// events in receipt order, resyncing with a fresh snapshot and a fresh
// subscription whenever the stream drops.
type Follower struct {
	engine *Engine
	source OrderSource
	filter models.OrderFilter
	resync chan struct{}
}

func NewFollower(engine *Engine, source OrderSource, filter models.OrderFilter) *Follower {
	return &Follower{
		engine: engine,
		source: source,
		filter: filter,
		resync: make(chan struct{}, 1),
	}
}

// ForceResync asks the follower to drop its stream and reload from a full
// snapshot. Used by callers reconciling a failed optimistic mutation.
func (f *Follower) ForceResync() {
	select {
	case f.resync <- struct{}{}:
	default:
	}
}

const (
	snapshotRetryBase = 100 * time.Millisecond
	snapshotRetryMax  = 5 * time.Second
)

// Run blocks until ctx is cancelled. Stream drops and snapshot read failures
// are both recovered internally: the view stays marked stale and the follower
// retries with backoff until the store answers again.
func (f *Follower) Run(ctx context.Context) error {
	delay := snapshotRetryBase
	for {
		events, cancel := f.source.Subscribe(f.filter)

		snapshot, err := f.source.List(f.filter)
		if err != nil {
			cancel()
			f.engine.markStale()
			log.Printf("load snapshot failed, retrying in %v: %v", delay, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			if delay *= 2; delay > snapshotRetryMax {
				delay = snapshotRetryMax
			}
			continue
		}
		delay = snapshotRetryBase
		f.engine.Load(snapshot)

		if err := f.follow(ctx, events); err != nil {
			cancel()
			return err
		}
		cancel()

		// Stream dropped or resync requested: loop around for a fresh
		// snapshot and subscription.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

func (f *Follower) follow(ctx context.Context, events <-chan models.ChangeEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.resync:
			f.engine.markStale()
			return nil
		case evt, ok := <-events:
			if !ok {
				log.Printf("order stream dropped, resyncing")
				f.engine.markStale()
				return nil
			}
			f.engine.Apply(evt)
		}
	}
}
