package services

import (
	"context"
	"fmt"
	"log"

	"lunch_orders/internal/models"
)

// ProcessResult reports what the ingress did with one change notification.
type ProcessResult struct {
	Skipped bool            `json:"skipped,omitempty"`
	Reason  string          `json:"reason,omitempty"`
	Report  *DispatchReport `json:"report,omitempty"`
}

// NotificationService funnels order changes through the transition classifier
// and, when a transition is push-worthy, the dispatch engine. It serves both
// the HTTP webhook ingress and the in-process feed worker.
type NotificationService interface {
	ProcessChange(ctx context.Context, record *models.Order, oldRecord *models.Order) (ProcessResult, error)
	RunFeedWorker(ctx context.Context)
}

type notificationService struct {
	orders   OrderService
	dispatch DispatchService
}

func NewNotificationService(orders OrderService, dispatch DispatchService) NotificationService {
	return &notificationService{orders: orders, dispatch: dispatch}
}

func (s *notificationService) ProcessChange(ctx context.Context, record *models.Order, oldRecord *models.Order) (ProcessResult, error) {
	if record == nil {
		return ProcessResult{}, fmt.Errorf("%w: missing record", ErrValidation)
	}
	if record.UserID == "" {
		return ProcessResult{Skipped: true, Reason: "no user"}, nil
	}

	var oldStatus *models.OrderStatus
	if oldRecord != nil {
		oldStatus = &oldRecord.Status
	}

	intent := Classify(oldStatus, record)
	if intent == nil {
		return ProcessResult{Skipped: true, Reason: "not notification-worthy"}, nil
	}

	report, err := s.dispatch.Dispatch(ctx, *intent)
	if err != nil {
		return ProcessResult{}, err
	}
	return ProcessResult{Report: &report}, nil
}

// RunFeedWorker consumes the store's own change feed and notifies on worthy
// transitions. This is the deployment mode where the record store lives in
// this process; an external store posts the same events to the webhook
// endpoint instead. On a dropped feed it resubscribes: classification is
// idempotent, so replays around the gap are harmless.
func (s *notificationService) RunFeedWorker(ctx context.Context) {
	for {
		events, cancel := s.orders.Subscribe(models.OrderFilter{})
		done := s.consume(ctx, events)
		cancel()
		if done {
			return
		}
		log.Printf("notification feed dropped, resubscribing")
	}
}

func (s *notificationService) consume(ctx context.Context, events <-chan models.ChangeEvent) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case evt, ok := <-events:
			if !ok {
				return false
			}
			if evt.Type == models.EventDelete {
				// Deletions never notify.
				continue
			}
			if _, err := s.ProcessChange(ctx, &evt.Record, evt.OldRecord); err != nil {
				log.Printf("process change for order %s: %v", evt.Record.OrderID, err)
			}
		}
	}
}
