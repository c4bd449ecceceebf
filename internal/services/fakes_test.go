package services_test

import (
	"context"
	"sync"

	"lunch_orders/internal/models"
	"lunch_orders/internal/repository"
	"lunch_orders/internal/services"
	"lunch_orders/pkg/push"
)

// fakeSubRepo is an in-memory SubscriptionRepository keyed by endpoint,
// mirroring the unique-endpoint constraint of the real table.
type fakeSubRepo struct {
	mu   sync.Mutex
	subs map[string]models.PushSubscription
}

func newFakeSubRepo() *fakeSubRepo {
	return &fakeSubRepo{subs: make(map[string]models.PushSubscription)}
}

func (r *fakeSubRepo) Upsert(sub *models.PushSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.Endpoint] = *sub
	return nil
}

func (r *fakeSubRepo) ListByUser(userID string) ([]models.PushSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PushSubscription
	for _, sub := range r.subs {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *fakeSubRepo) GetByEndpoint(endpoint string) (*models.PushSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub, ok := r.subs[endpoint]; ok {
		return &sub, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSubRepo) DeleteByEndpoint(endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, endpoint)
	return nil
}

func (r *fakeSubRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// fakeNotifier reports a canned outcome per endpoint. A nil entry (or a
// missing one) means success.
type fakeNotifier struct {
	mu       sync.Mutex
	outcomes map[string]error
	sent     []push.Target
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{outcomes: make(map[string]error)}
}

func (n *fakeNotifier) Send(_ context.Context, target push.Target, _ push.Payload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, target)
	return n.outcomes[target.Endpoint]
}

func (n *fakeNotifier) sentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// fakeOrderRepo is an in-memory OrderRepository.
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]models.Order)}
}

func (r *fakeOrderRepo) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.OrderID] = *order
	return nil
}

func (r *fakeOrderRepo) GetByID(orderID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[orderID]; ok {
		return &o, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeOrderRepo) List(filter models.OrderFilter) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		o := o
		if filter.Matches(&o) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatus(orderID string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	r.orders[orderID] = o
	return nil
}

func (r *fakeOrderRepo) Delete(orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, orderID)
	return nil
}

// recordingDispatch captures dispatched intents without touching a notifier.
type recordingDispatch struct {
	mu      sync.Mutex
	intents []services.NotificationIntent
}

func (d *recordingDispatch) Dispatch(_ context.Context, intent services.NotificationIntent) (services.DispatchReport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.intents = append(d.intents, intent)
	return services.DispatchReport{Attempted: 1, Delivered: 1}, nil
}

func (d *recordingDispatch) all() []services.NotificationIntent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]services.NotificationIntent(nil), d.intents...)
}
