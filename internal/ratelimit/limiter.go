package ratelimit

import (
	"context"
	"log"
	"sync"
	"time"
)

// Limiter admits at most quota calls per rolling window. It never rejects;
// a caller over quota is suspended until the oldest recorded call ages out.
type Limiter struct {
	quota  int
	window time.Duration

	mu    sync.Mutex
	calls []time.Time
	now   func() time.Time
}

// New creates a Limiter allowing quota calls per window.
func New(quota int, window time.Duration) *Limiter {
	if quota < 1 {
		quota = 1
	}
	return &Limiter{
		quota:  quota,
		window: window,
		calls:  make([]time.Time, 0, quota),
		now:    time.Now,
	}
}

// PerMinute creates a Limiter with the standard 60-second quota window.
func PerMinute(quota int) *Limiter {
	return New(quota, time.Minute)
}

// Admit blocks until a call may proceed, then records it. It returns early
// with the context's error if the caller gives up while waiting.
func (l *Limiter) Admit(ctx context.Context) error {
	waited := false
	for {
		l.mu.Lock()
		now := l.now()
		l.prune(now)

		if len(l.calls) < l.quota {
			l.calls = append(l.calls, now)
			l.mu.Unlock()
			return nil
		}

		if waited {
			// Still full after sleeping out the oldest call (clock drift,
			// long pause). Reset the record instead of looping forever.
			log.Printf("[WARN] rate window still full after wait (%d calls), resetting", len(l.calls))
			l.calls = append(l.calls[:0], now)
			l.mu.Unlock()
			return nil
		}

		wait := l.window - now.Sub(l.calls[0])
		l.mu.Unlock()
		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		waited = true
	}
}

// prune drops recorded calls older than the window. Callers hold l.mu.
func (l *Limiter) prune(now time.Time) {
	kept := l.calls[:0]
	for _, t := range l.calls {
		if now.Sub(t) < l.window {
			kept = append(kept, t)
		}
	}
	l.calls = kept
}

// InFlight returns the number of recorded calls still inside the window.
func (l *Limiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for _, t := range l.calls {
		if now.Sub(t) < l.window {
			n++
		}
	}
	return n
}
