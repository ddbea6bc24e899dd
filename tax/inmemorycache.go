package tax

import (
	"sync"
	"time"
)

// InMemoryRegimeCache is a simple in-memory implementation of RegimeCache
// Thread-safe for concurrent access
type InMemoryRegimeCache struct {
	regimes  []*Regime
	cachedAt time.Time
	config   CacheConfig
	now      func() time.Time
	mu       sync.RWMutex
	isValid  bool
}

// NewInMemoryRegimeCache creates a new in-memory regime cache
func NewInMemoryRegimeCache(config CacheConfig) *InMemoryRegimeCache {
	return &InMemoryRegimeCache{
		config: config,
		now:    time.Now,
	}
}

// Get retrieves cached regimes
// Returns nil if cache is invalid or expired
func (c *InMemoryRegimeCache) Get() []*Regime {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.fresh() {
		return nil
	}

	// Return copy to prevent external modifications
	regimesCopy := make([]*Regime, len(c.regimes))
	copy(regimesCopy, c.regimes)
	return regimesCopy
}

// Set stores regimes in cache
func (c *InMemoryRegimeCache) Set(regimes []*Regime) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.regimes = make([]*Regime, len(regimes))
	copy(c.regimes, regimes)
	c.cachedAt = c.now()
	c.isValid = true
}

// fresh must be called with c.mu held.
func (c *InMemoryRegimeCache) fresh() bool {
	if !c.isValid {
		return false
	}
	if c.config.TTL > 0 {
		return c.now().Sub(c.cachedAt) <= c.config.TTL
	}
	return true
}
