package feedcache

import (
	"context"
	"time"

	"github.com/goliatone/go-feed-cache/cache"
	"github.com/goliatone/go-feed-cache/feed"
)

// DefaultLimit is the page size used when a caller passes a non-positive
// limit. It matches the fixed page the warm-up job populates.
const DefaultLimit = 10

// TTLConfig carries the per-resource TTLs. Feed data is high-churn, so the
// defaults sit at the short end of the allowed range; tag invalidation is the
// primary freshness mechanism and TTL is the backstop.
type TTLConfig struct {
	// FeedPage applies to full feed page entries.
	FeedPage time.Duration

	// Comments applies to comment-thread entries.
	Comments time.Duration

	// Engagement applies to likes and reactions entries.
	Engagement time.Duration
}

// DefaultTTLConfig returns the production defaults.
func DefaultTTLConfig() TTLConfig {
	return TTLConfig{
		FeedPage:   20 * time.Second,
		Comments:   20 * time.Second,
		Engagement: time.Minute,
	}
}

// Orchestrator wraps the tagged cache with one operation per logical feed
// resource. Each wrapper builds the deterministic key, selects the tag set,
// clamps pagination, and delegates to the cache; compute functions stay with
// the caller. All cache mutation in this module flows through here or the
// listener, never around them.
type Orchestrator struct {
	cache cache.TaggedCacheService
	ttl   TTLConfig
}

// NewOrchestrator creates an orchestrator over service. Zero TTL fields fall
// back to defaults.
func NewOrchestrator(service cache.TaggedCacheService, ttl TTLConfig) *Orchestrator {
	def := DefaultTTLConfig()
	if ttl.FeedPage <= 0 {
		ttl.FeedPage = def.FeedPage
	}
	if ttl.Comments <= 0 {
		ttl.Comments = def.Comments
	}
	if ttl.Engagement <= 0 {
		ttl.Engagement = def.Engagement
	}

	return &Orchestrator{cache: service, ttl: ttl}
}

// Cache exposes the underlying tagged cache for inspection.
func (o *Orchestrator) Cache() cache.TaggedCacheService { return o.cache }

// clampPage treats any page below 1 as 1.
func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// clampLimit substitutes the default for non-positive limits. No upper bound
// is enforced here; that belongs to the API contract above this layer.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// GetFeedPage returns the cached feed page or computes and stores it.
func (o *Orchestrator) GetFeedPage(ctx context.Context, page, limit int, compute cache.FetchFn[feed.PostPage]) (feed.PostPage, error) {
	page, limit = clampPage(page), clampLimit(limit)
	return cache.GetOrFetch(ctx, o.cache, cache.FeedPageKey(page, limit), cache.Entry{
		Tags: cache.FeedPageTags(),
		TTL:  o.ttl.FeedPage,
	}, compute)
}

// GetPostComments returns the cached root-comment page for a post. The
// viewer id is part of the key so personalized reaction state never leaks
// across viewers; pass an empty viewer for the anonymous payload.
func (o *Orchestrator) GetPostComments(ctx context.Context, postID string, page, limit int, viewer string, compute cache.FetchFn[feed.CommentPage]) (feed.CommentPage, error) {
	page, limit = clampPage(page), clampLimit(limit)
	return cache.GetOrFetch(ctx, o.cache, cache.PostCommentsKey(postID, page, limit, viewer), cache.Entry{
		Tags: cache.PostCommentsTags(),
		TTL:  o.ttl.Comments,
	}, compute)
}

// GetPostLikes returns the cached likes payload for a post.
func (o *Orchestrator) GetPostLikes(ctx context.Context, postID string, compute cache.FetchFn[feed.LikesPayload]) (feed.LikesPayload, error) {
	return cache.GetOrFetch(ctx, o.cache, cache.PostLikesKey(postID), cache.Entry{
		Tags: cache.PostLikesTags(),
		TTL:  o.ttl.Engagement,
	}, compute)
}

// GetPostReactions returns the cached reactions payload for a post.
func (o *Orchestrator) GetPostReactions(ctx context.Context, postID string, compute cache.FetchFn[feed.ReactionsPayload]) (feed.ReactionsPayload, error) {
	return cache.GetOrFetch(ctx, o.cache, cache.PostReactionsKey(postID), cache.Entry{
		Tags: cache.PostReactionsTags(),
		TTL:  o.ttl.Engagement,
	}, compute)
}

// GetCommentLikes returns the cached likes payload for a comment.
func (o *Orchestrator) GetCommentLikes(ctx context.Context, commentID string, compute cache.FetchFn[feed.LikesPayload]) (feed.LikesPayload, error) {
	return cache.GetOrFetch(ctx, o.cache, cache.CommentLikesKey(commentID), cache.Entry{
		Tags: cache.CommentLikesTags(),
		TTL:  o.ttl.Engagement,
	}, compute)
}

// GetCommentReactions returns the cached reactions payload for a comment.
func (o *Orchestrator) GetCommentReactions(ctx context.Context, commentID string, compute cache.FetchFn[feed.ReactionsPayload]) (feed.ReactionsPayload, error) {
	return cache.GetOrFetch(ctx, o.cache, cache.CommentReactionsKey(commentID), cache.Entry{
		Tags: cache.CommentReactionsTags(),
		TTL:  o.ttl.Engagement,
	}, compute)
}

// DeleteFeedPage removes one feed page entry. Write paths call this ahead of
// an immediate re-warm so the next read is a hit instead of a stampede.
func (o *Orchestrator) DeleteFeedPage(ctx context.Context, page, limit int) error {
	return o.cache.Delete(ctx, cache.FeedPageKey(clampPage(page), clampLimit(limit)))
}

// DeletePostComments removes one comment-page entry.
func (o *Orchestrator) DeletePostComments(ctx context.Context, postID string, page, limit int, viewer string) error {
	return o.cache.Delete(ctx, cache.PostCommentsKey(postID, clampPage(page), clampLimit(limit), viewer))
}

// DeletePostLikes removes a post's likes entry.
func (o *Orchestrator) DeletePostLikes(ctx context.Context, postID string) error {
	return o.cache.Delete(ctx, cache.PostLikesKey(postID))
}

// DeletePostReactions removes a post's reactions entry.
func (o *Orchestrator) DeletePostReactions(ctx context.Context, postID string) error {
	return o.cache.Delete(ctx, cache.PostReactionsKey(postID))
}

// DeleteCommentLikes removes a comment's likes entry.
func (o *Orchestrator) DeleteCommentLikes(ctx context.Context, commentID string) error {
	return o.cache.Delete(ctx, cache.CommentLikesKey(commentID))
}

// DeleteCommentReactions removes a comment's reactions entry.
func (o *Orchestrator) DeleteCommentReactions(ctx context.Context, commentID string) error {
	return o.cache.Delete(ctx, cache.CommentReactionsKey(commentID))
}

// InvalidateTags removes every entry under the given tags.
func (o *Orchestrator) InvalidateTags(ctx context.Context, tags ...string) error {
	return o.cache.InvalidateTags(ctx, tags...)
}

// InvalidateAll sweeps the whole tag family.
func (o *Orchestrator) InvalidateAll(ctx context.Context) error {
	return o.cache.InvalidateTags(ctx, cache.AllTags()...)
}
