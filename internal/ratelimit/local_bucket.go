package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const localIdleTTL = 10 * time.Minute

type localEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LocalBucket keeps per-key limiters in process memory. Limits are per
// replica.
type LocalBucket struct {
	mu          sync.Mutex
	entries     map[string]*localEntry
	lastCleanup time.Time
	now         func() time.Time
}

func NewLocalBucket() *LocalBucket {
	return &LocalBucket{
		entries: make(map[string]*localEntry),
		now:     time.Now,
	}
}

func (b *LocalBucket) Allow(ctx context.Context, key string, r float64, burst int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validate(key, r, burst); err != nil {
		return nil, err
	}

	now := b.now()
	limiter := b.limiterFor(key, r, burst, now)
	allowed := limiter.AllowN(now, 1)
	return newResult(allowed, limiter.TokensAt(now), r, burst, now), nil
}

func (b *LocalBucket) limiterFor(key string, r float64, burst int, now time.Time) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastCleanup) >= localIdleTTL {
		for k, entry := range b.entries {
			if now.Sub(entry.lastAccess) >= localIdleTTL {
				delete(b.entries, k)
			}
		}
		b.lastCleanup = now
	}

	entry, ok := b.entries[key]
	if !ok {
		entry = &localEntry{limiter: rate.NewLimiter(rate.Limit(r), burst)}
		b.entries[key] = entry
	}
	entry.lastAccess = now
	return entry.limiter
}
