package tax

import "time"

// RegimeCache provides an abstraction for caching the ordered regime list
type RegimeCache interface {
	// Get retrieves cached regimes, returns nil if cache miss or expired
	Get() []*Regime

	// Set stores regimes in cache
	Set(regimes []*Regime)
}

// CacheConfig holds configuration for cache behavior
type CacheConfig struct {
	// TTL is the time-to-live for cached entries
	// Set to 0 for no expiration
	TTL time.Duration
}

// DefaultCacheConfig returns the defaults used by NewEngine
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL: 0,
	}
}
