package geo

import (
	"context"
	"sync"
)

// CachedCalculator memoizes results per point pair so filtering a result
// set never turns into one provider round trip per row. Entries live for
// the lifetime of the calculator; search constructs one per request batch
// or the process wires one around the provider at startup.
type CachedCalculator struct {
	inner DistanceCalculator

	mu    sync.Mutex
	cache map[pairKey]float64
}

type pairKey struct {
	a, b Point
}

// NewCachedCalculator wraps the given calculator with memoization.
func NewCachedCalculator(inner DistanceCalculator) *CachedCalculator {
	return &CachedCalculator{inner: inner, cache: make(map[pairKey]float64)}
}

func (c *CachedCalculator) DistanceKm(ctx context.Context, a, b Point) (float64, error) {
	key := pairKey{a: a, b: b}
	c.mu.Lock()
	if km, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return km, nil
	}
	c.mu.Unlock()

	km, err := c.inner.DistanceKm(ctx, a, b)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	// Distance is symmetric, so store both orientations.
	c.cache[key] = km
	c.cache[pairKey{a: b, b: a}] = km
	c.mu.Unlock()
	return km, nil
}
