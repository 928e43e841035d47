package warmup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-feed-cache/cache"
	"github.com/goliatone/go-feed-cache/feed"
	"github.com/goliatone/go-feed-cache/feedcache"
	"github.com/goliatone/go-feed-cache/feedstore"
)

// Warm-up always targets the highest-traffic entries: the first feed page at
// the default page size, and the same working set of posts underneath it.
const (
	warmPage  = 1
	warmLimit = feedcache.DefaultLimit
)

// Report summarizes one warm-up run. Fingerprints maps every warmed cache
// key to a digest of its payload; two runs against an unchanged store produce
// identical maps, which is how operators (and tests) check idempotence.
type Report struct {
	Scope           Scope
	FeedPages       int
	CommentThreads  int
	LikeEntries     int
	ReactionEntries int
	Empty           bool
	Duration        time.Duration
	Fingerprints    map[string]string
}

// Command proactively recomputes and repopulates cache entries so the first
// real request after an invalidation never pays the cold-cache cost. It is
// triggered by an operator or a scheduler; nothing in this module schedules
// it.
type Command struct {
	store feedstore.EntityStore
	orch  *feedcache.Orchestrator
	agg   *feed.Aggregator
	log   *slog.Logger
}

// NewCommand wires a warm-up command. A nil logger means slog.Default().
func NewCommand(store feedstore.EntityStore, orch *feedcache.Orchestrator, agg *feed.Aggregator, log *slog.Logger) *Command {
	if log == nil {
		log = slog.Default()
	}
	return &Command{store: store, orch: orch, agg: agg, log: log}
}

// Run executes one warm-up pass for the given scope. An invalid scope fails
// before the cache is touched. An empty store is a success with a warning,
// not an error. Each entry is deleted then recomputed, so a run always
// observes the current store state.
func (c *Command) Run(ctx context.Context, scope Scope) (*Report, error) {
	if err := scope.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scope %q: %w", scope, err)
	}

	start := time.Now()
	report := &Report{Scope: scope, Fingerprints: make(map[string]string)}

	if scope.includesPosts() {
		if err := c.warmFeedPage(ctx, report); err != nil {
			return report, fmt.Errorf("warm feed page: %w", err)
		}
	}

	// The working set comes straight from the store: we are about to
	// populate the cache, so reading through it would be circular.
	posts, err := c.store.FindPostsWithRelations(ctx, warmLimit, 0, "")
	if err != nil {
		return report, fmt.Errorf("load working set: %w", err)
	}

	if len(posts) == 0 {
		report.Empty = true
		report.Duration = time.Since(start)
		c.log.WarnContext(ctx, "nothing to warm: store has no posts", slog.String("scope", string(scope)))
		return report, nil
	}

	for _, post := range posts {
		if scope.includesComments() {
			if err := c.warmPostComments(ctx, post.ID, scope, report); err != nil {
				return report, fmt.Errorf("warm comments for post %s: %w", post.ID, err)
			}
		}

		if scope.includesReactions() {
			if err := c.warmPostEngagement(ctx, post, report); err != nil {
				return report, fmt.Errorf("warm engagement for post %s: %w", post.ID, err)
			}
		}
	}

	report.Duration = time.Since(start)
	c.log.InfoContext(ctx, "warm-up complete",
		slog.String("scope", string(scope)),
		slog.Int("feed_pages", report.FeedPages),
		slog.Int("comment_threads", report.CommentThreads),
		slog.Int("like_entries", report.LikeEntries),
		slog.Int("reaction_entries", report.ReactionEntries),
		slog.Duration("duration", report.Duration))
	return report, nil
}

func (c *Command) warmFeedPage(ctx context.Context, report *Report) error {
	if err := c.orch.DeleteFeedPage(ctx, warmPage, warmLimit); err != nil {
		return err
	}

	page, err := c.orch.GetFeedPage(ctx, warmPage, warmLimit, c.computeFeedPage(warmPage, warmLimit))
	if err != nil {
		return err
	}

	report.FeedPages++
	return c.record(report, cache.FeedPageKey(warmPage, warmLimit), page)
}

func (c *Command) warmPostComments(ctx context.Context, postID string, scope Scope, report *Report) error {
	if err := c.orch.DeletePostComments(ctx, postID, warmPage, warmLimit, ""); err != nil {
		return err
	}

	threadPage, err := c.orch.GetPostComments(ctx, postID, warmPage, warmLimit, "", c.computeComments(postID, warmPage, warmLimit))
	if err != nil {
		return err
	}

	report.CommentThreads++
	if err := c.record(report, cache.PostCommentsKey(postID, warmPage, warmLimit, ""), threadPage); err != nil {
		return err
	}

	// With reactions in scope, every comment that just entered the thread
	// payload gets its own likes and reactions entries warmed too.
	if scope.includesReactions() {
		for _, commentID := range collectCommentIDs(threadPage.Items) {
			if err := c.warmCommentEngagement(ctx, commentID, report); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Command) warmCommentEngagement(ctx context.Context, commentID string, report *Report) error {
	comment, err := c.store.FindCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		// Deleted between thread compute and here; nothing to warm.
		return nil
	}

	if err := c.orch.DeleteCommentLikes(ctx, commentID); err != nil {
		return err
	}
	likes, err := c.orch.GetCommentLikes(ctx, commentID, func(ctx context.Context) (feed.LikesPayload, error) {
		return c.agg.RenderLikes(ctx, comment.Likes), nil
	})
	if err != nil {
		return err
	}
	report.LikeEntries++
	if err := c.record(report, cache.CommentLikesKey(commentID), likes); err != nil {
		return err
	}

	if err := c.orch.DeleteCommentReactions(ctx, commentID); err != nil {
		return err
	}
	reactions, err := c.orch.GetCommentReactions(ctx, commentID, func(ctx context.Context) (feed.ReactionsPayload, error) {
		return c.agg.RenderReactions(ctx, comment.Reactions), nil
	})
	if err != nil {
		return err
	}
	report.ReactionEntries++
	return c.record(report, cache.CommentReactionsKey(commentID), reactions)
}

func (c *Command) warmPostEngagement(ctx context.Context, post *feed.Post, report *Report) error {
	if err := c.orch.DeletePostLikes(ctx, post.ID); err != nil {
		return err
	}
	likes, err := c.orch.GetPostLikes(ctx, post.ID, func(ctx context.Context) (feed.LikesPayload, error) {
		return c.agg.RenderLikes(ctx, post.Likes), nil
	})
	if err != nil {
		return err
	}
	report.LikeEntries++
	if err := c.record(report, cache.PostLikesKey(post.ID), likes); err != nil {
		return err
	}

	if err := c.orch.DeletePostReactions(ctx, post.ID); err != nil {
		return err
	}
	reactions, err := c.orch.GetPostReactions(ctx, post.ID, func(ctx context.Context) (feed.ReactionsPayload, error) {
		return c.agg.RenderReactions(ctx, post.Reactions), nil
	})
	if err != nil {
		return err
	}
	report.ReactionEntries++
	return c.record(report, cache.PostReactionsKey(post.ID), reactions)
}

// computeFeedPage builds the compute function the read path would use for a
// feed page: fetch the page with relations, count, render anonymously.
func (c *Command) computeFeedPage(page, limit int) cache.FetchFn[feed.PostPage] {
	return func(ctx context.Context) (feed.PostPage, error) {
		posts, err := c.store.FindPostsWithRelations(ctx, limit, (page-1)*limit, "")
		if err != nil {
			return feed.PostPage{}, err
		}
		total, err := c.store.CountPosts(ctx, "")
		if err != nil {
			return feed.PostPage{}, err
		}
		return feed.PostPage{
			Items: c.agg.RenderPosts(ctx, posts, ""),
			Total: total,
			Page:  page,
			Limit: limit,
		}, nil
	}
}

func (c *Command) computeComments(postID string, page, limit int) cache.FetchFn[feed.CommentPage] {
	return func(ctx context.Context) (feed.CommentPage, error) {
		roots, err := c.store.FindRootComments(ctx, postID, limit, (page-1)*limit)
		if err != nil {
			return feed.CommentPage{}, err
		}
		total, err := c.store.CountRootComments(ctx, postID)
		if err != nil {
			return feed.CommentPage{}, err
		}
		items := c.agg.RenderThread(ctx, roots, "", feed.RenderOptions{
			IncludeChildren:   true,
			IncludeLikesCount: true,
		})
		return feed.CommentPage{Items: items, Total: total, Page: page, Limit: limit}, nil
	}
}

// record stores the payload fingerprint for the warmed key.
func (c *Command) record(report *Report, key string, payload any) error {
	fp, err := fingerprint(payload)
	if err != nil {
		return fmt.Errorf("fingerprint %s: %w", key, err)
	}
	report.Fingerprints[key] = fp
	return nil
}

// fingerprint digests a payload through its canonical msgpack encoding.
// Struct encoding is field-ordered, so equal payloads always hash equal.
func fingerprint(payload any) (string, error) {
	raw, err := msgpack.Marshal(payload)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(raw)), nil
}

// collectCommentIDs gathers every comment id in a rendered thread page,
// nested children included.
func collectCommentIDs(items []feed.CommentRecord) []string {
	var ids []string
	var walk func(records []feed.CommentRecord)
	walk = func(records []feed.CommentRecord) {
		for _, rec := range records {
			ids = append(ids, rec.ID)
			if len(rec.Children) > 0 {
				walk(rec.Children)
			}
		}
	}
	walk(items)
	return ids
}
