package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lunch_orders/internal/models"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func subsKey(userID string) string {
	return "push_subs:" + userID
}

// Subscription list caching. Dispatch resolves recipients on every
// notification-worthy transition, so the per-user list is the hot read path.

func (c *Client) SetUserSubscriptions(ctx context.Context, userID string, subs []models.PushSubscription, ttl time.Duration) error {
	jsonData, err := json.Marshal(subs)
	if err != nil {
		return fmt.Errorf("failed to marshal subscriptions: %w", err)
	}
	return c.rdb.Set(ctx, subsKey(userID), jsonData, ttl).Err()
}

func (c *Client) GetUserSubscriptions(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	val, err := c.rdb.Get(ctx, subsKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("subscriptions not cached")
		}
		return nil, fmt.Errorf("failed to get subscriptions: %w", err)
	}

	var subs []models.PushSubscription
	if err := json.Unmarshal([]byte(val), &subs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscriptions: %w", err)
	}
	return subs, nil
}

func (c *Client) InvalidateUserSubscriptions(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, subsKey(userID)).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
