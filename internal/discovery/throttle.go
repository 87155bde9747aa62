package discovery

import (
	"context"
	"sync"
	"time"
)

// Throttle enforces one minimum delay before every navigation or
// request, shared across all strategies so the aggregate cadence stays
// bounded. Not a token bucket: no bursts, no queueing. Concurrent
// callers are serialized, each getting its own delay slot.
type Throttle struct {
	mu       sync.Mutex
	minDelay time.Duration
	last     time.Time
}

// NewThrottle creates a throttle with the given minimum gap.
func NewThrottle(minDelay time.Duration) *Throttle {
	return &Throttle{minDelay: minDelay}
}

// Wait blocks until at least minDelay has passed since the previous
// Wait returned, or the context is cancelled. The lock is held while
// waiting so two callers can never pass through the same slot.
func (t *Throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.last.IsZero() {
		if remaining := t.minDelay - time.Since(t.last); remaining > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(remaining):
			}
		}
	}
	t.last = time.Now()
	return nil
}
