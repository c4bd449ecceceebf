package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"lunch_orders/internal/models"
	"lunch_orders/internal/redis"
	"lunch_orders/internal/repository"
)

// RegistryService owns the push subscription registry: one entry per
// endpoint, looked up by user. The per-user list is cached in redis because
// dispatch resolves it on every notification-worthy transition.
type RegistryService interface {
	Register(ctx context.Context, userID, endpoint, p256dh, auth string) error
	ListByUser(ctx context.Context, userID string) ([]models.PushSubscription, error)
	RemoveEndpoint(ctx context.Context, endpoint string) error
}

type registryService struct {
	subRepo  repository.SubscriptionRepository
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewRegistryService builds the registry. cache may be nil, in which case
// every lookup hits the database.
func NewRegistryService(subRepo repository.SubscriptionRepository, cache *redis.Client, cacheTTL time.Duration) RegistryService {
	return &registryService{subRepo: subRepo, cache: cache, cacheTTL: cacheTTL}
}

func (s *registryService) Register(ctx context.Context, userID, endpoint, p256dh, auth string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: missing user_id", ErrValidation)
	}
	if strings.TrimSpace(endpoint) == "" {
		return fmt.Errorf("%w: missing endpoint", ErrValidation)
	}

	sub := &models.PushSubscription{
		Endpoint:  endpoint,
		UserID:    userID,
		P256dh:    p256dh,
		Auth:      auth,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.subRepo.Upsert(sub); err != nil {
		return fmt.Errorf("%w: upsert subscription: %v", ErrStore, err)
	}

	s.invalidate(ctx, userID)
	return nil
}

func (s *registryService) ListByUser(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	if s.cache != nil {
		if subs, err := s.cache.GetUserSubscriptions(ctx, userID); err == nil {
			return subs, nil
		}
	}

	subs, err := s.subRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list subscriptions: %v", ErrStore, err)
	}

	if s.cache != nil {
		if err := s.cache.SetUserSubscriptions(ctx, userID, subs, s.cacheTTL); err != nil {
			log.Printf("cache subscriptions for %s: %v", userID, err)
		}
	}
	return subs, nil
}

// RemoveEndpoint deletes one registry entry. Idempotent: the endpoint may
// already be gone when several dispatches race on the same dead device.
func (s *registryService) RemoveEndpoint(ctx context.Context, endpoint string) error {
	sub, err := s.subRepo.GetByEndpoint(endpoint)
	if err == nil && sub != nil {
		defer s.invalidate(ctx, sub.UserID)
	}

	if err := s.subRepo.DeleteByEndpoint(endpoint); err != nil {
		return fmt.Errorf("%w: delete subscription: %v", ErrStore, err)
	}
	return nil
}

func (s *registryService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUserSubscriptions(ctx, userID); err != nil {
		log.Printf("invalidate subscription cache for %s: %v", userID, err)
	}
}
