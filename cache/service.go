package cache

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidResultType is returned when a cached value cannot be converted
// back to the type the caller asked for. This points at two call sites using
// the same key with different payload types.
var ErrInvalidResultType = errors.New("cache: cached value has unexpected type")

// FetchFn is the function signature TaggedCacheService expects when fetching
// from the source of truth on a miss.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Entry describes how a value should be stored on a miss: which invalidation
// tags it belongs to and how long it stays valid regardless of tag activity.
type Entry struct {
	Tags []string
	TTL  time.Duration
}

// TaggedCacheService exposes the tag-aware read-through caching operations the
// feed layer is built on. Implementations must guarantee at most one concurrent
// compute per key (stampede guard) while letting unrelated keys compute in
// parallel, and must treat expired entries identically to invalidated ones.
type TaggedCacheService interface {
	// GetOrFetch returns the stored value for key if present and unexpired;
	// otherwise it invokes fetchFn, stores the result under the given tags
	// with the given TTL, and returns it. A non-positive ttl falls back to the
	// service default. Concurrent misses on the same key share a single fetch.
	// A failed fetch stores nothing and does not poison the key.
	//
	// The fetchFn parameter must be a FetchFn[T]; results round-trip through
	// any so a single service instance can hold heterogeneous payloads.
	GetOrFetch(ctx context.Context, key string, tags []string, ttl time.Duration, fetchFn any) (any, error)

	// Delete removes a single entry unconditionally.
	Delete(ctx context.Context, key string) error

	// InvalidateTags removes every entry associated with any of the given
	// tags, regardless of key or remaining TTL.
	InvalidateTags(ctx context.Context, tags ...string) error

	// Has reports whether key currently holds an unexpired value.
	Has(ctx context.Context, key string) bool

	// Peek returns the stored value without triggering a fetch.
	Peek(ctx context.Context, key string) (any, bool)
}

// GetOrFetch is a type-safe wrapper that provides generic support for
// TaggedCacheService. It keeps call sites free of type assertions while the
// service itself stays non-generic (Go methods cannot have type parameters).
func GetOrFetch[T any](ctx context.Context, service TaggedCacheService, key string, entry Entry, fetchFn FetchFn[T]) (T, error) {
	result, err := service.GetOrFetch(ctx, key, entry.Tags, entry.TTL, fetchFn)
	if err != nil {
		var zero T
		return zero, err
	}
	if result == nil {
		var zero T
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		var zero T
		return zero, ErrInvalidResultType
	}
	return typed, nil
}
