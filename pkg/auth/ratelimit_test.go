package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestLimiter(tiers map[string]TierConfig, def TierConfig) (*InProcessLimiter, *time.Time) {
	l := NewInProcessLimiter(tiers, def)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiter_BurstThenReject(t *testing.T) {
	l, _ := newTestLimiter(nil, TierConfig{RequestsPerMinute: 3})
	id := &Identity{Subject: "alice"}

	for i := 0; i < 3; i++ {
		if err := l.Allow(context.Background(), id); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}
	if err := l.Allow(context.Background(), id); !errors.Is(err, ErrTooManyRequests) {
		t.Errorf("err = %v, want ErrTooManyRequests", err)
	}
}

func TestLimiter_Refills(t *testing.T) {
	l, now := newTestLimiter(nil, TierConfig{RequestsPerMinute: 60, Burst: 1})
	id := &Identity{Subject: "alice"}

	if err := l.Allow(context.Background(), id); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if err := l.Allow(context.Background(), id); err == nil {
		t.Fatal("second request within the same second should be rejected")
	}

	*now = now.Add(time.Second)
	if err := l.Allow(context.Background(), id); err != nil {
		t.Errorf("request after refill: %v", err)
	}
}

func TestLimiter_TierOverridesDefault(t *testing.T) {
	l, _ := newTestLimiter(map[string]TierConfig{
		"premium": {RequestsPerMinute: 10},
	}, TierConfig{RequestsPerMinute: 1})

	premium := &Identity{Subject: "bob", ServiceTier: "premium"}
	for i := 0; i < 10; i++ {
		if err := l.Allow(context.Background(), premium); err != nil {
			t.Fatalf("premium request %d: %v", i+1, err)
		}
	}

	basic := &Identity{Subject: "carol"}
	l.Allow(context.Background(), basic)
	if err := l.Allow(context.Background(), basic); err == nil {
		t.Error("default tier should allow only one request")
	}
}

func TestLimiter_SubjectsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(nil, TierConfig{RequestsPerMinute: 1})

	if err := l.Allow(context.Background(), &Identity{Subject: "alice"}); err != nil {
		t.Fatalf("alice: %v", err)
	}
	if err := l.Allow(context.Background(), &Identity{Subject: "bob"}); err != nil {
		t.Errorf("bob should not share alice's bucket: %v", err)
	}
}

func TestLimiter_ZeroRPMIsUnlimited(t *testing.T) {
	l, _ := newTestLimiter(nil, TierConfig{})
	id := &Identity{Subject: "alice"}

	for i := 0; i < 1000; i++ {
		if err := l.Allow(context.Background(), id); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}
}

func TestLimiter_SweepsIdleEntries(t *testing.T) {
	l, now := newTestLimiter(nil, TierConfig{RequestsPerMinute: 1})

	l.Allow(context.Background(), &Identity{Subject: "alice"})
	if len(l.limiters) != 1 {
		t.Fatalf("limiters = %d, want 1", len(l.limiters))
	}

	*now = now.Add(idleTTL + time.Minute)
	l.Allow(context.Background(), &Identity{Subject: "bob"})

	if _, ok := l.limiters["alice:"+DefaultTier]; ok {
		t.Error("idle limiter for alice should have been swept")
	}
}
