package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smallbiznis/valora-notes/internal/domain"
	"github.com/smallbiznis/valora-notes/internal/quota"
)

// RedisPlanCache implements quota.PlanCache backed by Redis.
type RedisPlanCache struct {
	client redis.UniversalClient
}

var _ quota.PlanCache = (*RedisPlanCache)(nil)

// NewRedisPlanCache constructs a Redis-backed plan cache.
func NewRedisPlanCache(client redis.UniversalClient) *RedisPlanCache {
	return &RedisPlanCache{client: client}
}

func planKey(slug string) string {
	return "tenant:plan:" + slug
}

// Get loads the cached plan. redis.Nil is reported as a miss.
func (c *RedisPlanCache) Get(ctx context.Context, slug string) (domain.Plan, bool, error) {
	value, err := c.client.Get(ctx, planKey(slug)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load plan: %w", err)
	}
	plan := domain.Plan(value)
	if plan != domain.PlanFree && plan != domain.PlanPro {
		return "", false, nil
	}
	return plan, true, nil
}

// Set stores the plan with a TTL.
func (c *RedisPlanCache) Set(ctx context.Context, slug string, plan domain.Plan, ttl time.Duration) error {
	if err := c.client.Set(ctx, planKey(slug), string(plan), ttl).Err(); err != nil {
		return fmt.Errorf("persist plan: %w", err)
	}
	return nil
}

// Invalidate removes the cached plan.
func (c *RedisPlanCache) Invalidate(ctx context.Context, slug string) error {
	if err := c.client.Del(ctx, planKey(slug)).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}
