// Package cache provides the tag-aware caching contracts and the key/tag
// conventions used by the feed layer.
//
// # Overview
//
// The package exports one main interface and the helpers around it:
//
//   - TaggedCacheService: read-through caching with tag association, bulk
//     invalidation by tag, and per-entry TTLs
//   - BuildKey and the *Key helpers: deterministic cache key construction
//   - The Tag* vocabulary and per-resource tag sets
//
// # Keys
//
// Keys are plain strings built from a logical prefix, a resource id, and an
// ordered list of qualifiers joined with KeySeparator:
//
//	cache.PostCommentsKey("post-9", 1, 10, "viewer-3")
//	// "post_comments::post-9::1::10::viewer-3"
//
// Two calls with identical logical parameters always produce identical keys.
// There is deliberately no map serialization anywhere in the key path, so no
// ordering sensitivity can creep in.
//
// # Tags
//
// Every entry is stored with the tags of the entity kinds feeding its payload.
// A post-likes entry is tagged {posts, likes}; a feed page, which embeds
// comment previews and reaction counts, is tagged with all four families.
// Invalidating a tag removes every entry carrying it, regardless of TTL.
//
// # Usage
//
//	svc, err := cache.NewTaggedCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	page, err := cache.GetOrFetch(ctx, svc, cache.FeedPageKey(1, 10), cache.Entry{
//		Tags: cache.FeedPageTags(),
//		TTL:  20 * time.Second,
//	}, func(ctx context.Context) (feed.PostPage, error) {
//		return composePage(ctx)
//	})
//
// # Guarantees
//
// GetOrFetch performs at most one concurrent compute per key: concurrent
// misses on the same key share a single fetch while unrelated keys proceed in
// parallel. A failed compute stores nothing and the error propagates to the
// caller. TTL expiry and tag invalidation are independent mechanisms; an
// entry that hit either one behaves exactly like a cold miss.
//
// For the sturdyc-backed implementation details, see internal/cacheinfra.
// For the per-resource orchestration wrappers, see the feedcache package.
package cache
