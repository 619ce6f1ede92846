package authn

import (
	"context"
	"fmt"
	"time"

	"authgate/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// CounterFunc records one attempt against key and reports whether the
// fixed-window limit still holds.
type CounterFunc func(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

// Throttle caps login attempts per login+IP inside a fixed window.
// A nil Throttle, nil counter or zero limit allows everything.
type Throttle struct {
	count  CounterFunc
	limit  int
	window time.Duration
}

// NewThrottle builds a throttle backed by the shared atomic Redis counter.
func NewThrottle(rdb *redis.Client, limit int, window time.Duration) *Throttle {
	if rdb == nil {
		return &Throttle{limit: limit, window: window}
	}
	count := func(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
		return utils.CountAttempt(ctx, rdb, key, limit, window)
	}
	return NewThrottleWithCounter(count, limit, window)
}

// NewThrottleWithCounter accepts any counter backend.
func NewThrottleWithCounter(count CounterFunc, limit int, window time.Duration) *Throttle {
	return &Throttle{count: count, limit: limit, window: window}
}

// Allow records one attempt and reports whether it is within the limit.
// Failed and successful logins both count; the window resets by TTL.
func (t *Throttle) Allow(ctx context.Context, login, ip string) (bool, error) {
	if t == nil || t.count == nil || t.limit <= 0 {
		return true, nil
	}
	key := fmt.Sprintf("login_attempts:%s:%s", login, ip)
	return t.count(ctx, key, t.limit, t.window)
}
