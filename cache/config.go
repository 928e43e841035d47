package cache

import (
	"time"

	"github.com/goliatone/go-feed-cache/internal/cacheinfra"
)

// Config exposes cache configuration options for consumers of the cache
// package without leaking the internal adapter types.
type Config struct {
	// Capacity is the maximum number of entries held per TTL bucket.
	Capacity int

	// NumShards controls shard fan-out for concurrent access.
	NumShards int

	// DefaultTTL applies to entries stored without an explicit TTL.
	DefaultTTL time.Duration

	// EvictionPercentage is the share of entries evicted when a bucket
	// reaches capacity, between 1 and 100.
	EvictionPercentage int

	// EvictionInterval sets how often expired entries are collected.
	// Zero uses the backend default.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewTaggedCacheService constructs the default tagged cache implementation
// using the provided configuration.
func NewTaggedCacheService(cfg Config) (TaggedCacheService, error) {
	return cacheinfra.NewTaggedSturdycService(cfg.toInternal())
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		DefaultTTL:         c.DefaultTTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		DefaultTTL:         cfg.DefaultTTL,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
	}
}
