package guard

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Gate bounds in-flight strip operations. The pixel-reconstruction
// fallback holds a full decoded frame in memory, so the ceiling is
// deliberately small.
type Gate struct {
	sem *semaphore.Weighted
}

func NewGate(max int) *Gate {
	if max <= 0 {
		max = 1
	}
	return &Gate{sem: semaphore.NewWeighted(int64(max))}
}

// Acquire blocks until a slot frees or ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

// TryAcquire grabs a slot without blocking.
func (g *Gate) TryAcquire() bool {
	return g.sem.TryAcquire(1)
}

// Release frees a slot.
func (g *Gate) Release() {
	g.sem.Release(1)
}
