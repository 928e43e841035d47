package feed_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-feed-cache/feed"
	"github.com/goliatone/go-feed-cache/pkg/testsupport"
	"github.com/goliatone/go-feed-cache/userdir"
)

var testDirectory = userdir.StaticDirectory{
	"ada":   {ID: "ada", Username: "ada", DisplayName: "Ada L.", AvatarURL: "https://example.com/ada.png"},
	"linus": {ID: "linus", Username: "linus", DisplayName: "Linus T.", AvatarURL: "https://example.com/linus.png"},
	"grace": {ID: "grace", Username: "grace", DisplayName: "Grace H.", AvatarURL: "https://example.com/grace.png"},
}

func newTestAggregator(dir userdir.Directory) *feed.Aggregator {
	return feed.NewAggregator(dir, feed.Config{BaseURL: "https://blog.example.com"})
}

// countingDirectory records BatchResolve calls to verify single-batch
// resolution per render.
type countingDirectory struct {
	inner   userdir.Directory
	batches [][]string
}

func (d *countingDirectory) Resolve(ctx context.Context, id string) (*userdir.Profile, error) {
	return d.inner.Resolve(ctx, id)
}

func (d *countingDirectory) BatchResolve(ctx context.Context, ids []string) (map[string]*userdir.Profile, error) {
	d.batches = append(d.batches, ids)
	return d.inner.BatchResolve(ctx, ids)
}

// failingDirectory simulates an unreachable profile service.
type failingDirectory struct{}

func (failingDirectory) Resolve(ctx context.Context, id string) (*userdir.Profile, error) {
	return nil, errors.New("directory unreachable")
}

func (failingDirectory) BatchResolve(ctx context.Context, ids []string) (map[string]*userdir.Profile, error) {
	return nil, errors.New("directory unreachable")
}

func buildPostGraph(t *testing.T) *feed.Post {
	t.Helper()

	published := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	post := testsupport.BuildPost("ada", "Cache All The Things", published)
	post.Medias = []*feed.Media{testsupport.BuildMedia(post.ID, "https://cdn.example.com/1.png", "image")}

	c1 := testsupport.BuildComment(post.ID, "linus", "first comment", published.Add(time.Minute))
	c2 := testsupport.BuildComment(post.ID, "grace", "second comment", published.Add(2*time.Minute))
	c3 := testsupport.BuildComment(post.ID, "ada", "third comment", published.Add(3*time.Minute))
	reply := testsupport.BuildReply(c1, "grace", "a reply", published.Add(4*time.Minute))
	c1.Children = []*feed.Comment{reply}
	c1.Reactions = []*feed.Reaction{testsupport.BuildCommentReaction(c1.ID, "grace", "love")}
	c1.Likes = []*feed.Like{testsupport.BuildCommentLike(c1.ID, "ada")}
	post.Comments = []*feed.Comment{c1, c2, c3, reply}

	post.Reactions = []*feed.Reaction{
		testsupport.BuildPostReaction(post.ID, "linus", "like"),
		testsupport.BuildPostReaction(post.ID, "grace", "love"),
		testsupport.BuildPostReaction(post.ID, "ada", "wow"),
	}
	post.Likes = []*feed.Like{testsupport.BuildPostLike(post.ID, "linus")}

	return post
}

func TestRenderPosts_Shape(t *testing.T) {
	post := buildPostGraph(t)
	agg := newTestAggregator(testDirectory)

	records := agg.RenderPosts(context.Background(), []*feed.Post{post}, "")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]

	if rec.ID != post.ID {
		t.Errorf("id = %q, want %q", rec.ID, post.ID)
	}
	if rec.URL != "https://blog.example.com/posts/cache-all-the-things" {
		t.Errorf("url = %q", rec.URL)
	}
	if rec.PublishedAt != "2026-03-14T09:26:53Z" {
		t.Errorf("publishedAt = %q, want RFC3339 UTC", rec.PublishedAt)
	}
	if rec.ReactionsCount != 3 {
		t.Errorf("reactions_count = %d, want 3", rec.ReactionsCount)
	}
	if rec.TotalComments != 4 {
		t.Errorf("totalComments = %d, want 4", rec.TotalComments)
	}
	if rec.User == nil || rec.User.Username != "ada" {
		t.Errorf("user = %+v, want ada", rec.User)
	}
	if len(rec.Medias) != 1 || rec.Medias[0].Kind != "image" {
		t.Errorf("medias = %+v", rec.Medias)
	}
}

func TestRenderPosts_PreviewsAreBounded(t *testing.T) {
	post := buildPostGraph(t)
	agg := newTestAggregator(testDirectory)

	rec := agg.RenderPosts(context.Background(), []*feed.Post{post}, "")[0]

	// 3 reactions and 3 root comments in the graph, previews hold 2.
	if len(rec.ReactionsPreview) != feed.DefaultPreviewSize {
		t.Errorf("reactions_preview has %d entries, want %d", len(rec.ReactionsPreview), feed.DefaultPreviewSize)
	}
	if len(rec.CommentsPreview) != feed.DefaultPreviewSize {
		t.Errorf("comments_preview has %d entries, want %d", len(rec.CommentsPreview), feed.DefaultPreviewSize)
	}

	// Natural order, no re-sort: first two reactions as stored.
	if rec.ReactionsPreview[0].Type != "like" || rec.ReactionsPreview[1].Type != "love" {
		t.Errorf("reactions_preview order changed: %+v", rec.ReactionsPreview)
	}

	// Previews stay shallow: no children, no likes_count.
	for _, c := range rec.CommentsPreview {
		if c.Children != nil {
			t.Error("comment preview must not render children")
		}
		if c.LikesCount != nil {
			t.Error("comment preview must not carry likes_count")
		}
	}
}

func TestRenderPosts_PreviewSizeOverride(t *testing.T) {
	post := buildPostGraph(t)
	agg := feed.NewAggregator(testDirectory, feed.Config{PreviewSize: 1})

	rec := agg.RenderPosts(context.Background(), []*feed.Post{post}, "")[0]
	if len(rec.ReactionsPreview) != 1 || len(rec.CommentsPreview) != 1 {
		t.Errorf("previews = %d/%d, want 1/1", len(rec.ReactionsPreview), len(rec.CommentsPreview))
	}
}

func TestRenderPosts_SharedFromOneLevel(t *testing.T) {
	original := buildPostGraph(t)
	inner := testsupport.BuildPost("grace", "Inner Share", original.PublishedAt.Add(-2*time.Hour))
	original.SharedFrom = inner
	inner.SharedFrom = testsupport.BuildPost("linus", "Too Deep", original.PublishedAt.Add(-3*time.Hour))

	agg := newTestAggregator(testDirectory)
	rec := agg.RenderPosts(context.Background(), []*feed.Post{original}, "")[0]

	if rec.SharedFrom == nil {
		t.Fatal("expected sharedFrom to be rendered")
	}
	if rec.SharedFrom.ID != inner.ID {
		t.Errorf("sharedFrom id = %q, want %q", rec.SharedFrom.ID, inner.ID)
	}
	if rec.SharedFrom.SharedFrom != nil {
		t.Error("sharedFrom must not nest beyond one level")
	}
}

func TestRenderPosts_SingleBatchResolve(t *testing.T) {
	post := buildPostGraph(t)
	dir := &countingDirectory{inner: testDirectory}
	agg := newTestAggregator(dir)

	agg.RenderPosts(context.Background(), []*feed.Post{post}, "")

	if len(dir.batches) != 1 {
		t.Fatalf("expected 1 batch resolve per render, got %d", len(dir.batches))
	}

	// The batch must be deduplicated: ada, linus, grace each once.
	seen := map[string]int{}
	for _, id := range dir.batches[0] {
		seen[id]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("id %q appears %d times in batch", id, n)
		}
	}
	if len(seen) != 3 {
		t.Errorf("batch resolved %d distinct ids, want 3", len(seen))
	}
}

func TestRenderPosts_DegradedDirectory(t *testing.T) {
	post := buildPostGraph(t)
	agg := newTestAggregator(failingDirectory{})

	records := agg.RenderPosts(context.Background(), []*feed.Post{post}, "")
	if len(records) != 1 {
		t.Fatalf("render must complete despite directory failure, got %d records", len(records))
	}

	rec := records[0]
	if rec.User != nil {
		t.Error("unresolvable author must render as null, not a partial record")
	}
	for _, r := range rec.ReactionsPreview {
		if r.User != nil {
			t.Error("unresolvable reaction author must render as null")
		}
	}
}

func TestRenderPosts_UnknownAuthorIsNull(t *testing.T) {
	post := testsupport.BuildPost("nobody", "Ghost Post", time.Now())
	agg := newTestAggregator(testDirectory)

	rec := agg.RenderPosts(context.Background(), []*feed.Post{post}, "")[0]
	if rec.User != nil {
		t.Errorf("unknown author should render null user, got %+v", rec.User)
	}
}

func TestRenderThread_ViewerReactionState(t *testing.T) {
	post := buildPostGraph(t)
	roots := []*feed.Comment{post.Comments[0]}
	agg := newTestAggregator(testDirectory)

	// grace reacted "love" to the first comment.
	withViewer := agg.RenderThread(context.Background(), roots, "grace", feed.RenderOptions{})
	if withViewer[0].IsReacted == nil || *withViewer[0].IsReacted != "love" {
		t.Errorf("isReacted = %v, want love", withViewer[0].IsReacted)
	}

	otherViewer := agg.RenderThread(context.Background(), roots, "linus", feed.RenderOptions{})
	if otherViewer[0].IsReacted != nil {
		t.Errorf("isReacted = %v for non-reacting viewer, want nil", *otherViewer[0].IsReacted)
	}

	anonymous := agg.RenderThread(context.Background(), roots, "", feed.RenderOptions{})
	if anonymous[0].IsReacted != nil {
		t.Errorf("isReacted = %v for anonymous viewer, want nil", *anonymous[0].IsReacted)
	}
}

func TestRenderThread_Options(t *testing.T) {
	post := buildPostGraph(t)
	roots := []*feed.Comment{post.Comments[0]}
	agg := newTestAggregator(testDirectory)

	full := agg.RenderThread(context.Background(), roots, "", feed.RenderOptions{
		IncludeChildren:   true,
		IncludeLikesCount: true,
	})
	if len(full[0].Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(full[0].Children))
	}
	if full[0].Children[0].Content != "a reply" {
		t.Errorf("child content = %q", full[0].Children[0].Content)
	}
	if full[0].LikesCount == nil || *full[0].LikesCount != 1 {
		t.Errorf("likes_count = %v, want 1", full[0].LikesCount)
	}

	shallow := agg.RenderThread(context.Background(), roots, "", feed.RenderOptions{})
	if shallow[0].Children != nil {
		t.Error("children rendered without IncludeChildren")
	}
	if shallow[0].LikesCount != nil {
		t.Error("likes_count rendered without IncludeLikesCount")
	}
}

func TestRenderThread_DepthGuard(t *testing.T) {
	// A 5-deep chain with a max depth of 2 gets cut off instead of looping.
	base := testsupport.BuildComment("p1", "ada", "root", time.Now())
	current := base
	for i := 0; i < 5; i++ {
		child := testsupport.BuildReply(current, "ada", "nested", time.Now())
		current.Children = []*feed.Comment{child}
		current = child
	}

	agg := feed.NewAggregator(testDirectory, feed.Config{MaxThreadDepth: 2})
	records := agg.RenderThread(context.Background(), []*feed.Comment{base}, "", feed.RenderOptions{IncludeChildren: true})

	depth := 0
	node := &records[0]
	for len(node.Children) > 0 {
		node = &node.Children[0]
		depth++
	}
	if depth != 2 {
		t.Errorf("thread rendered %d levels below root, want 2", depth)
	}
}

func TestRenderLikes(t *testing.T) {
	post := buildPostGraph(t)
	agg := newTestAggregator(testDirectory)

	payload := agg.RenderLikes(context.Background(), post.Likes)
	if payload.Total != 1 {
		t.Errorf("total = %d, want 1", payload.Total)
	}
	if len(payload.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(payload.Items))
	}
	if payload.Items[0].User == nil || payload.Items[0].User.Username != "linus" {
		t.Errorf("like user = %+v, want linus", payload.Items[0].User)
	}
}

func TestRenderReactions(t *testing.T) {
	post := buildPostGraph(t)
	agg := newTestAggregator(testDirectory)

	payload := agg.RenderReactions(context.Background(), post.Reactions)
	if payload.Total != 3 {
		t.Errorf("total = %d, want 3", payload.Total)
	}
	if len(payload.Items) != 3 {
		t.Fatalf("items = %d, want 3 (full payload, not a preview)", len(payload.Items))
	}
	if payload.Items[0].Type != "like" {
		t.Errorf("first reaction type = %q, want like", payload.Items[0].Type)
	}
}

func TestRenderEmptyInputs(t *testing.T) {
	agg := newTestAggregator(testDirectory)
	ctx := context.Background()

	if got := agg.RenderPosts(ctx, nil, ""); len(got) != 0 {
		t.Errorf("RenderPosts(nil) = %v", got)
	}
	if got := agg.RenderThread(ctx, nil, "", feed.RenderOptions{}); len(got) != 0 {
		t.Errorf("RenderThread(nil) = %v", got)
	}
	if got := agg.RenderLikes(ctx, nil); got.Total != 0 || len(got.Items) != 0 {
		t.Errorf("RenderLikes(nil) = %+v", got)
	}
	if got := agg.RenderReactions(ctx, nil); got.Total != 0 || len(got.Items) != 0 {
		t.Errorf("RenderReactions(nil) = %+v", got)
	}
}
