package httpx

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces two sliding-window ceilings over one shared
// timestamp list: requests in the last second and requests in the last
// minute. One limiter is shared by every caller of the same upstream,
// so it bounds aggregate outbound load, not per-request load.
type RateLimiter struct {
	mu           sync.Mutex
	timestamps   []time.Time
	perSecond    int
	perMinute    int
	pollInterval time.Duration
}

func NewRateLimiter(perSecond, perMinute int) *RateLimiter {
	return &RateLimiter{
		perSecond:    perSecond,
		perMinute:    perMinute,
		pollInterval: 100 * time.Millisecond,
	}
}

// Wait blocks until both windows have headroom, then records the new
// request. Returns early only when ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if rl.tryAcquire() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rl.pollInterval):
		}
	}
}

func (rl *RateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	oneSecondAgo := now.Add(-time.Second)
	oneMinuteAgo := now.Add(-time.Minute)

	// Prune timestamps that fell out of the long window.
	cut := 0
	for cut < len(rl.timestamps) && rl.timestamps[cut].Before(oneMinuteAgo) {
		cut++
	}
	if cut > 0 {
		rl.timestamps = rl.timestamps[cut:]
	}

	recent := 0
	for i := len(rl.timestamps) - 1; i >= 0; i-- {
		if rl.timestamps[i].Before(oneSecondAgo) {
			break
		}
		recent++
	}

	if recent >= rl.perSecond || len(rl.timestamps) >= rl.perMinute {
		return false
	}

	rl.timestamps = append(rl.timestamps, now)
	return true
}
