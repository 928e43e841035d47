package feedcache

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/goliatone/go-feed-cache/cache"
	"github.com/goliatone/go-feed-cache/feed"
)

// recordingCache captures the key, tags, and TTL of every GetOrFetch call and
// returns a canned result.
type recordingCache struct {
	result      any
	err         error
	lastKey     string
	lastTags    []string
	lastTTL     time.Duration
	deleted     []string
	invalidated [][]string
}

func (r *recordingCache) GetOrFetch(ctx context.Context, key string, tags []string, ttl time.Duration, fetchFn any) (any, error) {
	r.lastKey = key
	r.lastTags = tags
	r.lastTTL = ttl
	return r.result, r.err
}

func (r *recordingCache) Delete(ctx context.Context, key string) error {
	r.deleted = append(r.deleted, key)
	return nil
}

func (r *recordingCache) InvalidateTags(ctx context.Context, tags ...string) error {
	r.invalidated = append(r.invalidated, tags)
	return r.err
}

func (r *recordingCache) Has(ctx context.Context, key string) bool         { return false }
func (r *recordingCache) Peek(ctx context.Context, key string) (any, bool) { return nil, false }

func TestDefaultTTLConfig(t *testing.T) {
	cfg := DefaultTTLConfig()
	if cfg.FeedPage != 20*time.Second {
		t.Errorf("FeedPage = %v, want 20s", cfg.FeedPage)
	}
	if cfg.Comments != 20*time.Second {
		t.Errorf("Comments = %v, want 20s", cfg.Comments)
	}
	if cfg.Engagement != time.Minute {
		t.Errorf("Engagement = %v, want 1m", cfg.Engagement)
	}
}

func TestNewOrchestrator_ZeroTTLsFallBack(t *testing.T) {
	o := NewOrchestrator(&recordingCache{}, TTLConfig{})
	if o.ttl != DefaultTTLConfig() {
		t.Errorf("ttl = %+v, want defaults", o.ttl)
	}
}

func TestGetFeedPage_KeyTagsTTL(t *testing.T) {
	rc := &recordingCache{result: feed.PostPage{Total: 7}}
	o := NewOrchestrator(rc, TTLConfig{FeedPage: 15 * time.Second})

	page, err := o.GetFeedPage(context.Background(), 2, 25, func(ctx context.Context) (feed.PostPage, error) {
		return feed.PostPage{}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 7 {
		t.Errorf("total = %d, want 7", page.Total)
	}

	if rc.lastKey != "posts_page::2::25" {
		t.Errorf("key = %q", rc.lastKey)
	}
	if !reflect.DeepEqual(rc.lastTags, cache.AllTags()) {
		t.Errorf("tags = %v, want all", rc.lastTags)
	}
	if rc.lastTTL != 15*time.Second {
		t.Errorf("ttl = %v, want 15s", rc.lastTTL)
	}
}

func TestGetFeedPage_ClampsPagination(t *testing.T) {
	rc := &recordingCache{result: feed.PostPage{}}
	o := NewOrchestrator(rc, TTLConfig{})

	if _, err := o.GetFeedPage(context.Background(), 0, -5, func(ctx context.Context) (feed.PostPage, error) {
		return feed.PostPage{}, nil
	}); err != nil {
		t.Fatal(err)
	}

	if rc.lastKey != "posts_page::1::10" {
		t.Errorf("key = %q, want clamped posts_page::1::10", rc.lastKey)
	}
}

func TestGetPostComments_ViewerInKey(t *testing.T) {
	rc := &recordingCache{result: feed.CommentPage{}}
	o := NewOrchestrator(rc, TTLConfig{Comments: 30 * time.Second})

	compute := func(ctx context.Context) (feed.CommentPage, error) { return feed.CommentPage{}, nil }

	if _, err := o.GetPostComments(context.Background(), "post-1", 1, 10, "alice", compute); err != nil {
		t.Fatal(err)
	}
	withViewer := rc.lastKey

	if _, err := o.GetPostComments(context.Background(), "post-1", 1, 10, "", compute); err != nil {
		t.Fatal(err)
	}
	anonymous := rc.lastKey

	if withViewer == anonymous {
		t.Errorf("viewer and anonymous share key %q", withViewer)
	}
	if !reflect.DeepEqual(rc.lastTags, cache.AllTags()) {
		t.Errorf("tags = %v, want all", rc.lastTags)
	}
	if rc.lastTTL != 30*time.Second {
		t.Errorf("ttl = %v, want 30s", rc.lastTTL)
	}
}

func TestEngagementGetters_KeyAndTags(t *testing.T) {
	likesCompute := func(ctx context.Context) (feed.LikesPayload, error) { return feed.LikesPayload{}, nil }
	reactionsCompute := func(ctx context.Context) (feed.ReactionsPayload, error) { return feed.ReactionsPayload{}, nil }

	tests := []struct {
		name     string
		call     func(o *Orchestrator) error
		result   any
		wantKey  string
		wantTags []string
	}{
		{
			name: "post likes",
			call: func(o *Orchestrator) error {
				_, err := o.GetPostLikes(context.Background(), "p1", likesCompute)
				return err
			},
			result:   feed.LikesPayload{},
			wantKey:  "post_likes::p1",
			wantTags: []string{cache.TagPosts, cache.TagLikes},
		},
		{
			name: "post reactions",
			call: func(o *Orchestrator) error {
				_, err := o.GetPostReactions(context.Background(), "p1", reactionsCompute)
				return err
			},
			result:   feed.ReactionsPayload{},
			wantKey:  "post_reactions::p1",
			wantTags: []string{cache.TagPosts, cache.TagReactions},
		},
		{
			name: "comment likes",
			call: func(o *Orchestrator) error {
				_, err := o.GetCommentLikes(context.Background(), "c1", likesCompute)
				return err
			},
			result:   feed.LikesPayload{},
			wantKey:  "comment_likes::c1",
			wantTags: []string{cache.TagComments, cache.TagLikes},
		},
		{
			name: "comment reactions",
			call: func(o *Orchestrator) error {
				_, err := o.GetCommentReactions(context.Background(), "c1", reactionsCompute)
				return err
			},
			result:   feed.ReactionsPayload{},
			wantKey:  "comment_reactions::c1",
			wantTags: []string{cache.TagComments, cache.TagReactions},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := &recordingCache{result: tt.result}
			o := NewOrchestrator(rc, TTLConfig{Engagement: 45 * time.Second})

			if err := tt.call(o); err != nil {
				t.Fatal(err)
			}
			if rc.lastKey != tt.wantKey {
				t.Errorf("key = %q, want %q", rc.lastKey, tt.wantKey)
			}
			if !reflect.DeepEqual(rc.lastTags, tt.wantTags) {
				t.Errorf("tags = %v, want %v", rc.lastTags, tt.wantTags)
			}
			if rc.lastTTL != 45*time.Second {
				t.Errorf("ttl = %v, want 45s", rc.lastTTL)
			}
		})
	}
}

func TestDeletes(t *testing.T) {
	rc := &recordingCache{}
	o := NewOrchestrator(rc, TTLConfig{})
	ctx := context.Background()

	if err := o.DeleteFeedPage(ctx, 1, 10); err != nil {
		t.Fatal(err)
	}
	if err := o.DeletePostComments(ctx, "p1", 1, 10, ""); err != nil {
		t.Fatal(err)
	}
	if err := o.DeletePostLikes(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	if err := o.DeletePostReactions(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	if err := o.DeleteCommentLikes(ctx, "c1"); err != nil {
		t.Fatal(err)
	}
	if err := o.DeleteCommentReactions(ctx, "c1"); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"posts_page::1::10",
		"post_comments::p1::1::10::",
		"post_likes::p1",
		"post_reactions::p1",
		"comment_likes::c1",
		"comment_reactions::c1",
	}
	if !reflect.DeepEqual(rc.deleted, want) {
		t.Errorf("deleted = %v, want %v", rc.deleted, want)
	}
}

func TestInvalidateAll(t *testing.T) {
	rc := &recordingCache{}
	o := NewOrchestrator(rc, TTLConfig{})

	if err := o.InvalidateAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(rc.invalidated) != 1 || !reflect.DeepEqual(rc.invalidated[0], cache.AllTags()) {
		t.Errorf("invalidated = %v, want one sweep of all tags", rc.invalidated)
	}
}

func TestGetFeedPage_ErrorPropagates(t *testing.T) {
	boom := errors.New("backend failure")
	rc := &recordingCache{err: boom}
	o := NewOrchestrator(rc, TTLConfig{})

	_, err := o.GetFeedPage(context.Background(), 1, 10, func(ctx context.Context) (feed.PostPage, error) {
		return feed.PostPage{}, nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected backend error, got %v", err)
	}
}

func TestOrchestrator_RoundTripWithRealCache(t *testing.T) {
	svc, err := cache.NewTaggedCacheService(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}
	o := NewOrchestrator(svc, TTLConfig{})
	ctx := context.Background()

	computes := 0
	compute := func(ctx context.Context) (feed.LikesPayload, error) {
		computes++
		return feed.LikesPayload{Total: 3}, nil
	}

	for i := 0; i < 3; i++ {
		payload, err := o.GetPostLikes(ctx, "p1", compute)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if payload.Total != 3 {
			t.Errorf("total = %d, want 3", payload.Total)
		}
	}
	if computes != 1 {
		t.Errorf("compute ran %d times, want 1", computes)
	}

	if err := o.InvalidateTags(ctx, cache.TagLikes); err != nil {
		t.Fatal(err)
	}
	if _, err := o.GetPostLikes(ctx, "p1", compute); err != nil {
		t.Fatal(err)
	}
	if computes != 2 {
		t.Errorf("compute ran %d times after invalidation, want 2", computes)
	}
}
