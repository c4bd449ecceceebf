package feed_test

import (
	"testing"

	"lunch_orders/internal/feed"
	"lunch_orders/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(orderID, userID string, typ models.EventType) models.ChangeEvent {
	return models.ChangeEvent{
		Type: typ,
		Record: models.Order{
			OrderID: orderID,
			UserID:  userID,
			Status:  models.StatusQueued,
		},
	}
}

func TestHubDeliversInPublishOrder(t *testing.T) {
	hub := feed.NewHub()
	defer hub.Close()

	sub := hub.Subscribe(models.OrderFilter{}, 8)

	hub.Publish(event("o1", "u1", models.EventInsert))
	hub.Publish(event("o2", "u1", models.EventInsert))
	hub.Publish(event("o1", "u1", models.EventUpdate))

	assert.Equal(t, "o1", (<-sub.C()).Record.OrderID)
	assert.Equal(t, "o2", (<-sub.C()).Record.OrderID)
	evt := <-sub.C()
	assert.Equal(t, "o1", evt.Record.OrderID)
	assert.Equal(t, models.EventUpdate, evt.Type)
}

func TestHubFiltersPerSubscription(t *testing.T) {
	hub := feed.NewHub()
	defer hub.Close()

	kitchen := hub.Subscribe(models.OrderFilter{}, 8)
	personal := hub.Subscribe(models.OrderFilter{UserID: "u1"}, 8)

	hub.Publish(event("mine", "u1", models.EventInsert))
	hub.Publish(event("other", "u2", models.EventInsert))

	// Kitchen sees everything.
	assert.Equal(t, "mine", (<-kitchen.C()).Record.OrderID)
	assert.Equal(t, "other", (<-kitchen.C()).Record.OrderID)

	// Personal view only sees its own order.
	assert.Equal(t, "mine", (<-personal.C()).Record.OrderID)
	select {
	case evt := <-personal.C():
		t.Fatalf("unexpected event for other user: %+v", evt)
	default:
	}
}

func TestHubDisconnectsSlowConsumer(t *testing.T) {
	hub := feed.NewHub()
	defer hub.Close()

	slow := hub.Subscribe(models.OrderFilter{}, 1)
	healthy := hub.Subscribe(models.OrderFilter{}, 8)

	hub.Publish(event("o1", "u1", models.EventInsert))
	hub.Publish(event("o2", "u1", models.EventInsert)) // overflows slow

	// Slow consumer gets its buffered event, then a closed channel: the
	// stale/resync signal.
	<-slow.C()
	_, ok := <-slow.C()
	assert.False(t, ok)

	// The healthy subscriber is unaffected.
	assert.Equal(t, "o1", (<-healthy.C()).Record.OrderID)
	assert.Equal(t, "o2", (<-healthy.C()).Record.OrderID)

	hub.Publish(event("o3", "u1", models.EventInsert))
	assert.Equal(t, "o3", (<-healthy.C()).Record.OrderID)
}

func TestHubCancelIsSafeTwice(t *testing.T) {
	hub := feed.NewHub()
	defer hub.Close()

	sub := hub.Subscribe(models.OrderFilter{}, 1)
	sub.Cancel()
	sub.Cancel()

	_, ok := <-sub.C()
	require.False(t, ok)

	// Publishing after cancel must not panic.
	hub.Publish(event("o1", "u1", models.EventInsert))
}

func TestHubCloseDisconnectsEverySubscriber(t *testing.T) {
	hub := feed.NewHub()
	a := hub.Subscribe(models.OrderFilter{}, 1)
	b := hub.Subscribe(models.OrderFilter{}, 1)

	hub.Close()

	_, okA := <-a.C()
	_, okB := <-b.C()
	assert.False(t, okA)
	assert.False(t, okB)

	// Subscribing after close yields an already-closed subscription.
	late := hub.Subscribe(models.OrderFilter{}, 1)
	_, ok := <-late.C()
	assert.False(t, ok)
}
