package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter checks whether a request should be allowed based on
// the identity's service tier.
type RateLimiter interface {
	Allow(ctx context.Context, identity *Identity) error
}

// TierConfig holds rate limit settings for a service tier.
type TierConfig struct {
	RequestsPerMinute int
	// Burst is the number of requests allowed at once. Zero means
	// RequestsPerMinute.
	Burst int
}

func (tc TierConfig) burst() int {
	if tc.Burst > 0 {
		return tc.Burst
	}
	return tc.RequestsPerMinute
}

// idleTTL is how long an unused per-subject limiter is kept.
const idleTTL = 10 * time.Minute

// InProcessLimiter is a token bucket rate limiter that keeps one bucket
// per subject and tier in memory.
type InProcessLimiter struct {
	tiers       map[string]TierConfig
	defaultTier TierConfig

	mu        sync.Mutex
	limiters  map[string]*entry
	lastSweep time.Time
	now       func() time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewInProcessLimiter creates a rate limiter with per-tier configuration.
// Tiers not present in the map use defaultTier.
func NewInProcessLimiter(tiers map[string]TierConfig, defaultTier TierConfig) *InProcessLimiter {
	return &InProcessLimiter{
		tiers:       tiers,
		defaultTier: defaultTier,
		limiters:    make(map[string]*entry),
		now:         time.Now,
	}
}

// Allow checks if the request is within the rate limit.
func (l *InProcessLimiter) Allow(_ context.Context, identity *Identity) error {
	tier := identity.Tier()

	tc := l.defaultTier
	if t, ok := l.tiers[tier]; ok {
		tc = t
	}

	if tc.RequestsPerMinute <= 0 {
		return nil // no limit
	}

	key := identity.Subject + ":" + tier
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	e, ok := l.limiters[key]
	if !ok {
		e = &entry{
			limiter: rate.NewLimiter(rate.Limit(float64(tc.RequestsPerMinute)/60), tc.burst()),
		}
		l.limiters[key] = e
	}
	e.lastSeen = now

	if !e.limiter.AllowN(now, 1) {
		return ErrTooManyRequests
	}
	return nil
}

// sweep drops limiters idle for longer than idleTTL. Caller holds mu.
func (l *InProcessLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < time.Minute {
		return
	}
	l.lastSweep = now
	for k, e := range l.limiters {
		if now.Sub(e.lastSeen) > idleTTL {
			delete(l.limiters, k)
		}
	}
}
