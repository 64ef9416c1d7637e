package guard

import "time"

// Guard bundles the processing bounds a batch run honors. A nil Guard
// disables all bounding.
type Guard struct {
	Limiter *Limiter
	Cache   *DigestCache
	Gate    *Gate
}

// New builds a guard with the given per-minute rate limit, digest
// cache capacity, and concurrent-strip ceiling.
func New(ratePerMinute, cacheSize, maxConcurrent int) *Guard {
	return &Guard{
		Limiter: NewLimiter(ratePerMinute, time.Minute),
		Cache:   NewDigestCache(cacheSize),
		Gate:    NewGate(maxConcurrent),
	}
}
