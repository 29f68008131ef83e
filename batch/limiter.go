package batch

import (
	"context"
	"sync"
	"time"
)

// slack keeps a freed window slot from being re-contended the same instant
// it opens.
const slack = 200 * time.Millisecond

// Limiter admits at most maxCalls service calls per sliding window. Callers
// block in Wait until the window has room. The timestamp window is the only
// shared mutable state in the batch layer and is guarded by the mutex.
type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	stamps []time.Time
}

// NewLimiter creates a sliding-window limiter.
func NewLimiter(maxCalls int, window time.Duration) (*Limiter, error) {
	if maxCalls <= 0 || window <= 0 {
		return nil, ErrInvalidWindow
	}
	return &Limiter{max: maxCalls, window: window}, nil
}

// Wait blocks until the window admits another call, then records it.
// It returns early only when the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := time.Now()
		l.prune(now)
		if len(l.stamps) < l.max {
			l.stamps = append(l.stamps, now)
			l.mu.Unlock()
			return nil
		}
		wait := l.window - now.Sub(l.stamps[0]) + slack
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// prune drops timestamps that have left the window. Callers hold the mutex.
func (l *Limiter) prune(now time.Time) {
	cut := 0
	for cut < len(l.stamps) && now.Sub(l.stamps[cut]) >= l.window {
		cut++
	}
	if cut > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[cut:]...)
	}
}
