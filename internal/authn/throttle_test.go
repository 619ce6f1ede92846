package authn

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func countingCounter(calls *int) CounterFunc {
	return func(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
		*calls++
		return *calls <= limit, nil
	}
}

func TestThrottle_DisabledAllowsEverything(t *testing.T) {
	ctx := context.Background()

	var nilThrottle *Throttle
	if ok, err := nilThrottle.Allow(ctx, "alice", "1.2.3.4"); !ok || err != nil {
		t.Fatalf("nil throttle: got %v, %v", ok, err)
	}
	if ok, err := NewThrottle(nil, 5, time.Minute).Allow(ctx, "alice", "1.2.3.4"); !ok || err != nil {
		t.Fatalf("nil client: got %v, %v", ok, err)
	}

	calls := 0
	zeroLimit := NewThrottleWithCounter(countingCounter(&calls), 0, time.Minute)
	if ok, err := zeroLimit.Allow(ctx, "alice", "1.2.3.4"); !ok || err != nil {
		t.Fatalf("zero limit: got %v, %v", ok, err)
	}
	if calls != 0 {
		t.Fatalf("disabled throttle must not touch the counter, got %d calls", calls)
	}
}

func TestThrottle_DeniesOverLimit(t *testing.T) {
	calls := 0
	th := NewThrottleWithCounter(countingCounter(&calls), 3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, err := th.Allow(context.Background(), "alice", "1.2.3.4")
		if err != nil || !ok {
			t.Fatalf("attempt %d: got %v, %v", i+1, ok, err)
		}
	}
	ok, err := th.Allow(context.Background(), "alice", "1.2.3.4")
	if err != nil {
		t.Fatalf("attempt 4: %v", err)
	}
	if ok {
		t.Fatalf("expected fourth attempt to be denied")
	}
}

func TestThrottle_KeyIsPerLoginAndIP(t *testing.T) {
	var gotKey string
	th := NewThrottleWithCounter(func(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
		gotKey = key
		return true, nil
	}, 3, time.Minute)

	if _, err := th.Allow(context.Background(), "alice", "1.2.3.4"); err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !strings.Contains(gotKey, "alice") || !strings.Contains(gotKey, "1.2.3.4") {
		t.Fatalf("counter key %q must scope by login and ip", gotKey)
	}
}

func TestThrottle_CounterErrorPropagates(t *testing.T) {
	boom := errors.New("counter unreachable")
	th := NewThrottleWithCounter(func(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
		return false, boom
	}, 3, time.Minute)

	if _, err := th.Allow(context.Background(), "alice", "1.2.3.4"); !errors.Is(err, boom) {
		t.Fatalf("expected counter error, got %v", err)
	}
}
