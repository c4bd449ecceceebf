package view_test

import (
	"testing"
	"time"

	"lunch_orders/internal/models"
	"lunch_orders/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 6, 2, 11, 30, 0, 0, time.UTC)

func order(id string, status models.OrderStatus, offset time.Duration) models.Order {
	return models.Order{
		OrderID:   id,
		UserID:    "user-" + id,
		Name:      "Name " + id,
		Item:      "Item " + id,
		Status:    status,
		CreatedAt: base.Add(offset),
	}
}

func ids(orders []models.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.OrderID)
	}
	return out
}

func TestPartitionSortRules(t *testing.T) {
	orders := []models.Order{
		order("q2", models.StatusQueued, 2*time.Minute),
		order("q1", models.StatusQueued, 1*time.Minute),
		order("p1", models.StatusInProgress, 3*time.Minute),
		order("p2", models.StatusInProgress, 5*time.Minute),
		order("r1", models.StatusReady, 4*time.Minute),
		order("r2", models.StatusReady, 6*time.Minute),
	}

	b := view.Partition(orders)

	// Queued is FIFO: oldest first.
	assert.Equal(t, []string{"q1", "q2"}, ids(b.Queued))
	// In progress and ready are newest first.
	assert.Equal(t, []string{"p2", "p1"}, ids(b.InProgress))
	assert.Equal(t, []string{"r2", "r1"}, ids(b.Ready))
}

func TestPartitionEveryOrderInExactlyOneBucket(t *testing.T) {
	orders := []models.Order{
		order("a", models.StatusQueued, 0),
		order("b", models.StatusInProgress, time.Minute),
		order("c", models.StatusReady, 2*time.Minute),
	}

	b := view.Partition(orders)
	assert.Len(t, b.Queued, 1)
	assert.Len(t, b.InProgress, 1)
	assert.Len(t, b.Ready, 1)
}

func TestEngineInsertIsIdempotent(t *testing.T) {
	e := view.NewEngine()
	e.Load(nil)

	evt := models.ChangeEvent{Type: models.EventInsert, Record: order("a", models.StatusQueued, 0)}
	e.Apply(evt)
	e.Apply(evt) // duplicate delivery

	b := e.Buckets()
	require.Len(t, b.Queued, 1)
	assert.Equal(t, "a", b.Queued[0].OrderID)
}

func TestEngineUpdateMovesBetweenBuckets(t *testing.T) {
	e := view.NewEngine()
	e.Load([]models.Order{order("a", models.StatusQueued, 0)})

	updated := order("a", models.StatusInProgress, 0)
	e.Apply(models.ChangeEvent{Type: models.EventUpdate, Record: updated})

	b := e.Buckets()
	assert.Empty(t, b.Queued)
	require.Len(t, b.InProgress, 1)
	assert.Equal(t, models.StatusInProgress, b.InProgress[0].Status)
}

func TestEngineUpdateForUnknownOrderActsAsInsert(t *testing.T) {
	e := view.NewEngine()
	e.Load(nil)

	// Update raced ahead of the snapshot: tolerated, not an error.
	e.Apply(models.ChangeEvent{Type: models.EventUpdate, Record: order("x", models.StatusReady, 0)})

	b := e.Buckets()
	require.Len(t, b.Ready, 1)
	assert.Equal(t, "x", b.Ready[0].OrderID)
}

func TestEngineDeleteIsIdempotent(t *testing.T) {
	e := view.NewEngine()
	e.Load([]models.Order{order("a", models.StatusQueued, 0)})

	del := models.ChangeEvent{Type: models.EventDelete, Record: order("a", models.StatusQueued, 0)}
	e.Apply(del)
	e.Apply(del) // already gone: no-op

	b := e.Buckets()
	assert.Empty(t, b.Queued)
	assert.Empty(t, b.InProgress)
	assert.Empty(t, b.Ready)
}

func TestEngineOptimisticAndStreamEventsConverge(t *testing.T) {
	// The optimistic local mutation and its confirming stream event arrive in
	// no particular order; both interleavings must converge to the same view.
	local := models.ChangeEvent{Type: models.EventUpdate, Record: order("a", models.StatusReady, 0)}
	confirm := models.ChangeEvent{Type: models.EventUpdate, Record: order("a", models.StatusReady, 0)}

	first := view.NewEngine()
	first.Load([]models.Order{order("a", models.StatusInProgress, 0)})
	first.ApplyLocal(local)
	first.Apply(confirm)

	second := view.NewEngine()
	second.Load([]models.Order{order("a", models.StatusInProgress, 0)})
	second.Apply(confirm)
	second.ApplyLocal(local)

	assert.Equal(t, first.Buckets(), second.Buckets())
	require.Len(t, first.Buckets().Ready, 1)
}

func TestEngineConvergesRegardlessOfEventOrder(t *testing.T) {
	events := []models.ChangeEvent{
		{Type: models.EventInsert, Record: order("a", models.StatusQueued, 0)},
		{Type: models.EventInsert, Record: order("b", models.StatusQueued, time.Minute)},
		{Type: models.EventUpdate, Record: order("a", models.StatusInProgress, 0)},
		{Type: models.EventDelete, Record: order("b", models.StatusQueued, time.Minute)},
		{Type: models.EventInsert, Record: order("c", models.StatusReady, 2*time.Minute)},
	}

	// Apply twice (webhook-style redelivery of the whole sequence): the view
	// must be unchanged.
	e := view.NewEngine()
	e.Load(nil)
	for _, evt := range events {
		e.Apply(evt)
	}
	once := e.Buckets()
	for _, evt := range events {
		e.Apply(evt)
	}
	assert.Equal(t, once, e.Buckets())

	assert.Equal(t, []string{"a"}, ids(once.InProgress))
	assert.Equal(t, []string{"c"}, ids(once.Ready))
	assert.Empty(t, once.Queued)
}

func TestEngineBucketsCallerMutationDoesNotLeakBack(t *testing.T) {
	e := view.NewEngine()
	e.Load([]models.Order{
		order("a", models.StatusQueued, 0),
		order("b", models.StatusQueued, time.Minute),
	})

	b := e.Buckets()
	b.Queued[0] = order("z", models.StatusReady, 2*time.Minute)
	b.Queued = b.Queued[:1]

	fresh := e.Buckets()
	require.Len(t, fresh.Queued, 2)
	assert.Equal(t, []string{"a", "b"}, ids(fresh.Queued))
}

func TestEngineLoadClearsPreviousState(t *testing.T) {
	e := view.NewEngine()
	e.Load([]models.Order{order("old", models.StatusReady, 0)})

	e.Load([]models.Order{order("new", models.StatusQueued, time.Minute)})

	b := e.Buckets()
	assert.Empty(t, b.Ready)
	require.Len(t, b.Queued, 1)
	assert.Equal(t, "new", b.Queued[0].OrderID)
	assert.False(t, e.Stale())
}
