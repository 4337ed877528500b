package search

import "sync"

// CachingScorer memoizes successful evaluations by configuration identity.
// Greedy elimination and genetic search revisit configurations often; the
// wrapped scorer must be pure for caching to be sound. Failed evaluations
// are not cached.
type CachingScorer struct {
	inner Scorer

	mu     sync.RWMutex
	scores map[string]float64

	hits   int
	misses int
}

// NewCachingScorer wraps a scorer with a memoization layer. The wrapper is
// safe for concurrent use.
func NewCachingScorer(inner Scorer) *CachingScorer {
	return &CachingScorer{
		inner:  inner,
		scores: make(map[string]float64),
	}
}

// Evaluate returns the cached score when the configuration was seen before,
// otherwise delegates to the wrapped scorer.
func (c *CachingScorer) Evaluate(cfg Configuration) (float64, error) {
	key := cfg.Key()

	c.mu.RLock()
	score, ok := c.scores[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return score, nil
	}

	score, err := c.inner.Evaluate(cfg)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.scores[key] = score
	c.misses++
	c.mu.Unlock()
	return score, nil
}

// Stats returns cache hit and miss counts.
func (c *CachingScorer) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
