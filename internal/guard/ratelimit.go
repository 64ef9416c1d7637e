// Package guard bounds how fast and how wide file processing runs:
// a sliding-window rate limiter, a digest cache for duplicate
// detection, and a semaphore gate on concurrent strips. Components are
// constructed and owned by the caller; nothing here is process-global.
package guard

import (
	"sync"
	"time"
)

// Limiter is a sliding-window rate limiter keyed by identifier.
type Limiter struct {
	mu         sync.Mutex
	maxPerWin  int
	window     time.Duration
	timestamps map[string][]time.Time
	now        func() time.Time
}

func NewLimiter(maxPerWindow int, window time.Duration) *Limiter {
	return &Limiter{
		maxPerWin:  maxPerWindow,
		window:     window,
		timestamps: make(map[string][]time.Time),
		now:        time.Now,
	}
}

// Allow records and admits a request for the identifier unless the
// window is already full.
func (l *Limiter) Allow(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.prune(id)
	if len(recent) >= l.maxPerWin {
		l.timestamps[id] = recent
		return false
	}
	l.timestamps[id] = append(recent, l.now())
	return true
}

// Remaining reports how many requests the identifier has left in the
// current window.
func (l *Limiter) Remaining(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.prune(id)
	l.timestamps[id] = recent
	if n := l.maxPerWin - len(recent); n > 0 {
		return n
	}
	return 0
}

// Reset clears the window for one identifier.
func (l *Limiter) Reset(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.timestamps, id)
}

func (l *Limiter) prune(id string) []time.Time {
	cutoff := l.now().Add(-l.window)
	kept := l.timestamps[id][:0]
	for _, ts := range l.timestamps[id] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}
