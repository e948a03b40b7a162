package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyedLimiter is an in-memory per-key rate limiter backed by token buckets
// from golang.org/x/time/rate. It is safe for concurrent use. Idle keys are
// dropped by a janitor goroutine that stops when the context passed to
// NewKeyedLimiter is cancelled.
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*keyedEntry
	limit    rate.Limit
	burst    int
	idle     time.Duration
}

type keyedEntry struct {
	limiter *rate.Limiter
	last    time.Time
}

// NewKeyedLimiter creates a limiter that allows burst events per key,
// refilling at perSecond events per second. A zero perSecond never refills.
func NewKeyedLimiter(ctx context.Context, perSecond float64, burst int) *KeyedLimiter {
	kl := &KeyedLimiter{
		limiters: make(map[string]*keyedEntry),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     10 * time.Minute,
	}
	go kl.janitor(ctx, 5*time.Minute)
	return kl
}

// Allow reports whether the given key may proceed, consuming one token.
func (kl *KeyedLimiter) Allow(key string) bool {
	kl.mu.Lock()
	e, ok := kl.limiters[key]
	if !ok {
		e = &keyedEntry{limiter: rate.NewLimiter(kl.limit, kl.burst)}
		kl.limiters[key] = e
	}
	e.last = time.Now()
	kl.mu.Unlock()

	return e.limiter.Allow()
}

// Len returns the number of tracked keys.
func (kl *KeyedLimiter) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.limiters)
}

// Sweep removes keys not seen since before cutoff.
func (kl *KeyedLimiter) Sweep(cutoff time.Time) {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	for key, e := range kl.limiters {
		if e.last.Before(cutoff) {
			delete(kl.limiters, key)
		}
	}
}

func (kl *KeyedLimiter) janitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			kl.Sweep(now.Add(-kl.idle))
		}
	}
}
