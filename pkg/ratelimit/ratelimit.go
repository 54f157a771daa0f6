package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Limiter spaces out operations per key (typically a registry host), with
// optional jitter. Keys do not share a budget, so a slow registry never holds
// back lookups against another one. It is safe for concurrent use.
type Limiter struct {
	interval time.Duration
	jitter   float64 // 0.0 to 1.0

	mu   sync.Mutex
	next map[string]time.Time
}

// NewLimiter creates a limiter allowing rps operations per second per key.
// Jitter is clamped to [0, 1]. If rps <= 0 the limiter never blocks.
func NewLimiter(rps float64, jitter float64) *Limiter {
	if jitter < 0 {
		jitter = 0
	} else if jitter > 1 {
		jitter = 1
	}

	l := &Limiter{jitter: jitter, next: make(map[string]time.Time)}
	if rps > 0 {
		l.interval = time.Duration(float64(time.Second) / rps)
	}
	return l
}

// Wait blocks until key may proceed or ctx is done. The slot is reserved
// before sleeping, so concurrent waiters on one key queue up behind each other.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	if l == nil || l.interval == 0 {
		return nil
	}

	delay := l.reserve(key)
	if delay <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (l *Limiter) reserve(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	slot := l.next[key]
	if slot.Before(now) {
		slot = now
	}

	step := l.interval
	if l.jitter > 0 {
		// Only ever lengthen the gap; a shorter one would break the rate.
		step += time.Duration(float64(l.interval) * l.jitter * rand.Float64())
	}
	l.next[key] = slot.Add(step)

	return slot.Sub(now)
}
