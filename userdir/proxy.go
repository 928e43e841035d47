package userdir

import (
	"context"
	"errors"
	"time"

	"github.com/viccon/sturdyc"
)

// ProxyConfig tunes the caching profile proxy. Profiles are near-static, so
// the default TTL is a year; the directory holds no authority over freshness
// beyond that.
type ProxyConfig struct {
	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
}

// DefaultProxyConfig returns the defaults used by production wiring.
func DefaultProxyConfig() ProxyConfig {
	return ProxyConfig{
		Capacity:           10000,
		NumShards:          64,
		TTL:                365 * 24 * time.Hour,
		EvictionPercentage: 10,
	}
}

// CachedDirectory is the deduplicating, cached proxy in front of the remote
// directory. It is the only path the rest of the module uses to reach
// profiles: sturdyc coalesces concurrent lookups for the same id, the batch
// API collapses a page worth of author ids into one upstream call for the
// uncached remainder, and missing-record storage remembers ids the service
// does not know so they are not re-requested on every render.
type CachedDirectory struct {
	remote Directory
	client *sturdyc.Client[*Profile]
	keyFn  sturdyc.KeyFn
}

// NewCachedDirectory wraps remote with the caching proxy.
func NewCachedDirectory(remote Directory, cfg ProxyConfig) *CachedDirectory {
	def := DefaultProxyConfig()
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}
	if cfg.NumShards <= 0 {
		cfg.NumShards = def.NumShards
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.EvictionPercentage <= 0 {
		cfg.EvictionPercentage = def.EvictionPercentage
	}

	client := sturdyc.New[*Profile](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		sturdyc.WithMissingRecordStorage(),
	)

	return &CachedDirectory{
		remote: remote,
		client: client,
		keyFn:  client.BatchKeyFn("user_profile"),
	}
}

// Resolve implements Directory. Unknown ids resolve to (nil, nil) and are
// remembered as missing so repeated lookups stay local.
func (c *CachedDirectory) Resolve(ctx context.Context, id string) (*Profile, error) {
	if id == "" {
		return nil, nil
	}

	profile, err := c.client.GetOrFetch(ctx, c.keyFn(id), func(ctx context.Context) (*Profile, error) {
		p, err := c.remote.Resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, sturdyc.ErrNotFound
		}
		return p, nil
	})
	if err != nil {
		if errors.Is(err, sturdyc.ErrMissingRecord) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

// BatchResolve implements Directory. The id list may be empty or contain
// duplicates; duplicates collapse before hitting the cache and only ids with
// no cached value (or missing marker) reach the remote directory.
func (c *CachedDirectory) BatchResolve(ctx context.Context, ids []string) (map[string]*Profile, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return map[string]*Profile{}, nil
	}

	return c.client.GetOrFetchBatch(ctx, ids, c.keyFn, func(ctx context.Context, missing []string) (map[string]*Profile, error) {
		return c.remote.BatchResolve(ctx, missing)
	})
}
