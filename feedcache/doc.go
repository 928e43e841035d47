// Package feedcache is the orchestration layer between feed callers and the
// tagged cache.
//
// # Orchestrator
//
// One thin operation per logical resource: feed pages, per-post comment
// threads, and likes/reactions for posts and comments. Each operation builds
// the deterministic key from the cache package's conventions, attaches the
// right tag set and TTL, clamps pagination (page < 1 becomes 1, a
// non-positive limit becomes the default), and delegates to
// cache.TaggedCacheService. Compute functions belong to the caller; this
// layer decides where results live, not how they are made.
//
// Explicit Delete* operations exist for write paths that invalidate and then
// immediately re-warm: the post-creation flow deletes feed page 1 and
// recomputes it in the same logical write, so the next reader hits warm data
// instead of stampeding the store. The delete happens-before the recompute
// within that flow, which is what makes the "readers see new data after
// re-warm" guarantee hold.
//
// # Listener
//
// Listener subscribes to entity lifecycle events (via feedstore's query
// hook or direct calls) and sweeps the whole tag family on any post,
// comment, reaction, or like mutation. Failures are logged and swallowed;
// invalidation is best-effort by contract and never touches the outcome of
// the write that triggered it.
package feedcache
