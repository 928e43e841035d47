package cacheinfra

import (
	"context"
	"reflect"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the tagged sturdyc cache adapter.
type Config struct {
	// Capacity defines the maximum number of entries each TTL bucket can
	// store. Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	NumShards int

	// DefaultTTL is applied to entries stored without an explicit TTL.
	DefaultTTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when a bucket reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often expired entries are collected.
	// Zero value uses the backend default.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		DefaultTTL:         5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.DefaultTTL, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
	)
}

// ConfigError represents an invalid runtime argument, field plus message.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// keyMeta records where an entry lives (its TTL bucket) and which tags it was
// stored under, so Delete and InvalidateTags can find it again.
type keyMeta struct {
	ttl  time.Duration
	tags []string
}

// taggedSturdycService implements cache.TaggedCacheService on top of sturdyc.
//
// sturdyc fixes the TTL per client, so per-entry TTLs are implemented as one
// client per distinct TTL value ("bucket"). Callers draw TTLs from a small
// fixed vocabulary (feed churn vs near-static profiles), which keeps the
// bucket count bounded. The stampede guard comes from sturdyc itself: it
// coalesces in-flight fetches per key, per shard, without blocking other keys.
//
// Tag association is an index maintained next to the store: tag -> key set,
// plus key -> (bucket, tags). A key is registered after its value is stored,
// never for a fetch that failed. The window between store and registration is
// covered by per-tag invalidation generations: GetOrFetch snapshots them
// before fetching and, if any of its tags were swept while the value was in
// flight, drops the stored value and recomputes. An entry is therefore never
// reachable by readers yet unreachable by InvalidateTags.
type taggedSturdycService struct {
	cfg     Config
	clients *xsync.MapOf[time.Duration, *sturdyc.Client[any]]
	keys    *xsync.MapOf[string, keyMeta]
	tags    *xsync.MapOf[string, *xsync.MapOf[string, struct{}]]
	gens    *xsync.MapOf[string, uint64]
}

// NewTaggedSturdycService creates a new tagged sturdyc cache service adapter.
// It validates the configuration; clients for individual TTL buckets are
// created lazily on first use.
func NewTaggedSturdycService(cfg Config) (*taggedSturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &taggedSturdycService{
		cfg:     cfg,
		clients: xsync.NewMapOf[time.Duration, *sturdyc.Client[any]](),
		keys:    xsync.NewMapOf[string, keyMeta](),
		tags:    xsync.NewMapOf[string, *xsync.MapOf[string, struct{}]](),
		gens:    xsync.NewMapOf[string, uint64](),
	}, nil
}

// clientFor returns the sturdyc client owning the given TTL bucket, creating
// it on first use.
func (s *taggedSturdycService) clientFor(ttl time.Duration) *sturdyc.Client[any] {
	client, _ := s.clients.LoadOrCompute(ttl, func() *sturdyc.Client[any] {
		var opts []sturdyc.Option
		if s.cfg.EvictionInterval > 0 {
			opts = append(opts, sturdyc.WithEvictionInterval(s.cfg.EvictionInterval))
		}
		return sturdyc.New[any](s.cfg.Capacity, s.cfg.NumShards, ttl, s.cfg.EvictionPercentage, opts...)
	})
	return client
}

// register records the key in the tag index once its value is stored. If the
// key previously lived in a different TTL bucket, the stranded entry there is
// removed so Delete and Peek stay consistent with the latest keyMeta.
func (s *taggedSturdycService) register(key string, ttl time.Duration, tags []string) {
	if prev, ok := s.keys.Load(key); ok && prev.ttl != ttl {
		s.clientFor(prev.ttl).Delete(key)
	}
	s.keys.Store(key, keyMeta{ttl: ttl, tags: tags})
	for _, tag := range tags {
		set, _ := s.tags.LoadOrCompute(tag, func() *xsync.MapOf[string, struct{}] {
			return xsync.NewMapOf[string, struct{}]()
		})
		set.Store(key, struct{}{})
	}
}

// unregister drops the key from the tag index.
func (s *taggedSturdycService) unregister(key string) {
	meta, ok := s.keys.LoadAndDelete(key)
	if !ok {
		return
	}
	for _, tag := range meta.tags {
		if set, ok := s.tags.Load(tag); ok {
			set.Delete(key)
		}
	}
}

// GetOrFetch implements cache.TaggedCacheService.GetOrFetch.
//
// The fetchFn parameter must be of type cache.FetchFn[T] where T matches the
// expected payload type; validation happens up front so a bad call site fails
// loudly instead of poisoning sturdyc with a type it cannot convert.
func (s *taggedSturdycService) GetOrFetch(ctx context.Context, key string, tags []string, ttl time.Duration, fetchFn any) (any, error) {
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	if ttl <= 0 {
		ttl = s.cfg.DefaultTTL
	}

	typedFetchFn := func(ctx context.Context) (any, error) {
		return callFetchFn(ctx, fetchFn)
	}

	client := s.clientFor(ttl)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		snap := s.snapshotGenerations(tags)
		value, err := client.GetOrFetch(ctx, key, typedFetchFn)
		if err != nil {
			return nil, err
		}
		s.register(key, ttl, tags)

		if !s.generationsAdvanced(tags, snap) {
			return value, nil
		}

		// One of the entry's tags was swept while the value was in flight,
		// so the value may predate the write that triggered the sweep.
		client.Delete(key)
		s.unregister(key)
	}
}

// snapshotGenerations records the invalidation generation of each tag so a
// fetch can detect sweeps that land while its value is in flight.
func (s *taggedSturdycService) snapshotGenerations(tags []string) []uint64 {
	snap := make([]uint64, len(tags))
	for i, tag := range tags {
		gen, _ := s.gens.Load(tag)
		snap[i] = gen
	}
	return snap
}

// generationsAdvanced reports whether any tag was invalidated since the
// snapshot was taken.
func (s *taggedSturdycService) generationsAdvanced(tags []string, snap []uint64) bool {
	for i, tag := range tags {
		gen, _ := s.gens.Load(tag)
		if gen != snap[i] {
			return true
		}
	}
	return false
}

// Delete implements cache.TaggedCacheService.Delete. Removes a single entry
// unconditionally so subsequent GetOrFetch calls fetch fresh data.
func (s *taggedSturdycService) Delete(ctx context.Context, key string) error {
	if meta, ok := s.keys.Load(key); ok {
		s.clientFor(meta.ttl).Delete(key)
	}
	s.unregister(key)
	return nil
}

// InvalidateTags implements cache.TaggedCacheService.InvalidateTags. Every
// entry associated with any of the given tags is removed regardless of key or
// remaining TTL.
func (s *taggedSturdycService) InvalidateTags(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		// Advance the generation before collecting keys. A concurrent fetch
		// either registered in time to be collected here, or it snapshotted
		// the old generation and will drop its own value once it lands.
		s.gens.Compute(tag, func(gen uint64, _ bool) (uint64, bool) {
			return gen + 1, false
		})

		set, ok := s.tags.Load(tag)
		if !ok {
			continue
		}

		var keys []string
		set.Range(func(key string, _ struct{}) bool {
			keys = append(keys, key)
			return true
		})

		for _, key := range keys {
			if meta, ok := s.keys.Load(key); ok {
				s.clientFor(meta.ttl).Delete(key)
			}
			s.unregister(key)
		}
	}
	return nil
}

// Has implements cache.TaggedCacheService.Has.
func (s *taggedSturdycService) Has(ctx context.Context, key string) bool {
	_, ok := s.Peek(ctx, key)
	return ok
}

// Peek implements cache.TaggedCacheService.Peek. It reads through to the
// owning TTL bucket without triggering a fetch.
func (s *taggedSturdycService) Peek(ctx context.Context, key string) (any, bool) {
	meta, ok := s.keys.Load(key)
	if !ok {
		return nil, false
	}
	return s.clientFor(meta.ttl).Get(key)
}

// validateFetchFn performs validation of the fetchFn parameter to ensure it
// matches the expected signature: func(context.Context) (T, error)
func validateFetchFn(fetchFn any) error {
	if fetchFn == nil {
		return &ConfigError{Field: "fetchFn", Message: "cannot be nil"}
	}

	fnType := reflect.TypeOf(fetchFn)
	if fnType.Kind() != reflect.Func {
		return &ConfigError{Field: "fetchFn", Message: "must be a function"}
	}

	if fnType.NumIn() != 1 || fnType.NumOut() != 2 {
		return &ConfigError{Field: "fetchFn", Message: "must have signature func(context.Context) (T, error)"}
	}

	contextType := reflect.TypeOf((*context.Context)(nil)).Elem()
	if !fnType.In(0).Implements(contextType) {
		return &ConfigError{Field: "fetchFn", Message: "first parameter must be context.Context"}
	}

	errorType := reflect.TypeOf((*error)(nil)).Elem()
	if !fnType.Out(1).Implements(errorType) {
		return &ConfigError{Field: "fetchFn", Message: "second return value must be error"}
	}

	return nil
}

// callFetchFn invokes any function matching the FetchFn[T] signature.
// fetchFn is guaranteed valid here, it is pre-validated by validateFetchFn.
func callFetchFn(ctx context.Context, fetchFn any) (any, error) {
	// Direct assertion for the common untyped case
	if fn, ok := fetchFn.(func(context.Context) (any, error)); ok {
		return fn(ctx)
	}

	results := reflect.ValueOf(fetchFn).Call([]reflect.Value{reflect.ValueOf(ctx)})

	var result any
	if rv := results[0]; rv.IsValid() && rv.CanInterface() {
		result = rv.Interface()
	}

	var err error
	if ev := results[1]; ev.IsValid() && !ev.IsNil() {
		err = ev.Interface().(error)
	}

	return result, err
}
