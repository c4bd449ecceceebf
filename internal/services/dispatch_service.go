package services

import (
	"context"
	"errors"
	"log"
	"sync"

	"lunch_orders/pkg/push"
)

// Notifier is the external fire-and-forget delivery transport.
type Notifier interface {
	Send(ctx context.Context, target push.Target, payload push.Payload) error
}

// DispatchReport summarizes one fan-out: how many entries were attempted and
// how each attempt ended.
type DispatchReport struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Transient int `json:"transient"`
	Removed   int `json:"removed"`
}

type DispatchService interface {
	Dispatch(ctx context.Context, intent NotificationIntent) (DispatchReport, error)
}

type dispatchService struct {
	registry RegistryService
	notifier Notifier
}

func NewDispatchService(registry RegistryService, notifier Notifier) DispatchService {
	return &dispatchService{registry: registry, notifier: notifier}
}

// Dispatch resolves every registered device of the target user and attempts
// delivery to each one concurrently. An entry whose delivery fails
// permanently is removed from the registry; transient failures are logged and
// dropped (at-most-one-attempt, no retry queue). One entry's failure never
// blocks or fails another's attempt.
func (s *dispatchService) Dispatch(ctx context.Context, intent NotificationIntent) (DispatchReport, error) {
	subs, err := s.registry.ListByUser(ctx, intent.UserID)
	if err != nil {
		return DispatchReport{}, err
	}
	if len(subs) == 0 {
		// No recipients is not an error.
		return DispatchReport{}, nil
	}

	payload := push.Payload{
		Title: intent.Title,
		Body:  intent.Body,
		URL:   intent.URL,
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		report = DispatchReport{Attempted: len(subs)}
	)

	for _, sub := range subs {
		sub := sub
		wg.Add(1)
		go func() {
			defer wg.Done()

			target := push.Target{
				Endpoint: sub.Endpoint,
				P256dh:   sub.P256dh,
				Auth:     sub.Auth,
			}
			err := s.notifier.Send(ctx, target, payload)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				report.Delivered++
			case errors.Is(err, push.ErrGone):
				// Self-healing cleanup: the endpoint is dead, drop its
				// entry. Keyed by endpoint, so concurrent dispatches for
				// the same user cannot clobber each other.
				if rmErr := s.registry.RemoveEndpoint(ctx, sub.Endpoint); rmErr != nil {
					log.Printf("remove expired endpoint: %v", rmErr)
				}
				report.Removed++
			default:
				log.Printf("push delivery to %s failed: %v", sub.Endpoint, err)
				report.Transient++
			}
		}()
	}
	wg.Wait()

	return report, nil
}
