package checkout

import (
	"context"
	"time"

	redisclient "github.com/keksoko/storefront/pkg/redis"
)

// Guard prevents a second order submission while one is in flight for
// the same buyer session. The backend order-creation call is not
// idempotent from our side, so the lock is taken before calling it.
type Guard interface {
	Acquire(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, sessionID string) error
}

type redisGuard struct {
	client *redisclient.Client
}

// NewRedisGuard builds a submission guard over the shared redis client.
func NewRedisGuard(client *redisclient.Client) Guard {
	return &redisGuard{client: client}
}

func (g *redisGuard) Acquire(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	return g.client.SetNX(ctx, g.client.ActiveCheckoutKey(sessionID), "1", ttl)
}

func (g *redisGuard) Release(ctx context.Context, sessionID string) error {
	return g.client.Del(ctx, g.client.ActiveCheckoutKey(sessionID))
}
