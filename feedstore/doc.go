// Package feedstore provides read access to the relational source of truth
// and the lifecycle tap that drives cache invalidation.
//
// EntityStore is deliberately narrow: paged relation-eager post queries,
// root-comment threads, counts, and by-id lookups. It is everything the feed
// cache needs and nothing the CRUD layer owns. Store implements it on bun
// with eager Relation loading so a single query feeds a whole render.
//
// InvalidationHook bridges writes to the cache without coupling the write
// paths to it: registered as a bun query hook, it classifies successful
// INSERT/UPDATE/DELETE statements on the posts, comments, reactions, and
// likes tables and reports them to a ChangeObserver (the feedcache
// listener). Observers are best-effort by contract; a cache that cannot be
// invalidated must never fail the write that just committed.
package feedstore
