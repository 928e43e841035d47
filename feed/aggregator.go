package feed

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/goliatone/go-feed-cache/userdir"
)

// DefaultPreviewSize bounds the nested reaction and comment previews embedded
// in feed payloads.
const DefaultPreviewSize = 2

// defaultMaxThreadDepth guards the thread walk against pathological nesting.
// Real data never gets close; a subtree past the guard is simply cut off.
const defaultMaxThreadDepth = 512

// Config tunes the aggregator.
type Config struct {
	// BaseURL is the public site root used to build post URLs.
	BaseURL string

	// PreviewSize overrides DefaultPreviewSize when > 0.
	PreviewSize int

	// MaxThreadDepth overrides the recursion guard when > 0.
	MaxThreadDepth int

	// Logger receives degraded-resolution warnings. Nil means slog.Default().
	Logger *slog.Logger
}

// RenderOptions selects the payload shape at a call site. The same comment
// renderer serves thread roots and previews; which extras it emits is an
// explicit caller choice, not a branch on caller identity.
type RenderOptions struct {
	// IncludeLikesCount emits the likes_count field on comment records.
	IncludeLikesCount bool

	// IncludeChildren renders the full children tree. Previews leave it off.
	IncludeChildren bool
}

// Aggregator builds denormalized feed payloads out of entity graphs the store
// already loaded. It resolves every author reference through the user
// directory in one batched call per render, truncates nested previews, and
// computes per-viewer reaction state. It never issues entity queries itself.
type Aggregator struct {
	dir         userdir.Directory
	baseURL     string
	previewSize int
	maxDepth    int
	log         *slog.Logger
}

// NewAggregator creates an aggregator resolving profiles through dir.
func NewAggregator(dir userdir.Directory, cfg Config) *Aggregator {
	previewSize := cfg.PreviewSize
	if previewSize <= 0 {
		previewSize = DefaultPreviewSize
	}
	maxDepth := cfg.MaxThreadDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxThreadDepth
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Aggregator{
		dir:         dir,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		previewSize: previewSize,
		maxDepth:    maxDepth,
		log:         log,
	}
}

// RenderPosts produces the feed payload for a page of posts. The viewer id
// personalizes isReacted inside comment previews; an empty viewer renders the
// anonymous shape cached for everyone.
func (a *Aggregator) RenderPosts(ctx context.Context, posts []*Post, viewer string) []PostRecord {
	ids := newIDSet()
	for _, p := range posts {
		collectPostAuthors(ids, p, true)
	}
	profiles := a.resolve(ctx, ids.values())

	records := make([]PostRecord, 0, len(posts))
	for _, p := range posts {
		records = append(records, a.renderPost(p, profiles, viewer, true))
	}
	return records
}

// RenderThread produces full comment-thread records for a page of root
// comments, children included when the options say so.
func (a *Aggregator) RenderThread(ctx context.Context, comments []*Comment, viewer string, opts RenderOptions) []CommentRecord {
	ids := newIDSet()
	for _, c := range comments {
		collectCommentAuthors(ids, c, 0, a.maxDepth)
	}
	profiles := a.resolve(ctx, ids.values())

	records := make([]CommentRecord, 0, len(comments))
	for _, c := range comments {
		records = append(records, a.renderComment(c, profiles, viewer, opts, 0))
	}
	return records
}

// RenderLikes produces the likes payload for a post or comment.
func (a *Aggregator) RenderLikes(ctx context.Context, likes []*Like) LikesPayload {
	ids := newIDSet()
	for _, l := range likes {
		ids.add(l.AuthorID)
	}
	profiles := a.resolve(ctx, ids.values())

	items := make([]LikeRecord, 0, len(likes))
	for _, l := range likes {
		items = append(items, LikeRecord{ID: l.ID, User: userRecord(profiles, l.AuthorID)})
	}
	return LikesPayload{Total: len(likes), Items: items}
}

// RenderReactions produces the reactions payload for a post or comment.
func (a *Aggregator) RenderReactions(ctx context.Context, reactions []*Reaction) ReactionsPayload {
	ids := newIDSet()
	for _, r := range reactions {
		ids.add(r.AuthorID)
	}
	profiles := a.resolve(ctx, ids.values())

	items := make([]ReactionRecord, 0, len(reactions))
	for _, r := range reactions {
		items = append(items, ReactionRecord{ID: r.ID, Type: r.Type, User: userRecord(profiles, r.AuthorID)})
	}
	return ReactionsPayload{Total: len(reactions), Items: items}
}

// resolve issues the single batched directory lookup for a render. An
// unreachable directory degrades to an empty map: every user reference in the
// payload comes out null and the render still completes.
func (a *Aggregator) resolve(ctx context.Context, ids []string) map[string]*userdir.Profile {
	if len(ids) == 0 {
		return map[string]*userdir.Profile{}
	}

	profiles, err := a.dir.BatchResolve(ctx, ids)
	if err != nil {
		a.log.WarnContext(ctx, "user directory unreachable, rendering null profiles",
			slog.Int("ids", len(ids)), slog.String("err", err.Error()))
		return map[string]*userdir.Profile{}
	}
	if profiles == nil {
		return map[string]*userdir.Profile{}
	}
	return profiles
}

func (a *Aggregator) renderPost(p *Post, profiles map[string]*userdir.Profile, viewer string, allowShared bool) PostRecord {
	rec := PostRecord{
		ID:             p.ID,
		Title:          p.Title,
		Summary:        p.Summary,
		Content:        p.Content,
		URL:            a.postURL(p.Slug),
		Slug:           p.Slug,
		PublishedAt:    p.PublishedAt.UTC().Format(time.RFC3339),
		ReactionsCount: len(p.Reactions),
		TotalComments:  len(p.Comments),
		User:           userRecord(profiles, p.AuthorID),
	}

	rec.Medias = make([]MediaRecord, 0, len(p.Medias))
	for _, m := range p.Medias {
		rec.Medias = append(rec.Medias, MediaRecord{ID: m.ID, URL: m.URL, Kind: m.Kind})
	}

	rec.ReactionsPreview = a.reactionsPreview(p.Reactions, profiles)

	roots := rootComments(p.Comments)
	previewOpts := RenderOptions{}
	rec.CommentsPreview = make([]CommentRecord, 0, a.previewSize)
	for _, c := range roots {
		if len(rec.CommentsPreview) == a.previewSize {
			break
		}
		rec.CommentsPreview = append(rec.CommentsPreview, a.renderComment(c, profiles, viewer, previewOpts, 0))
	}

	// One level of reshare only: the nested record never carries its own
	// SharedFrom, whatever the entity graph says.
	if allowShared && p.SharedFrom != nil {
		shared := a.renderPost(p.SharedFrom, profiles, viewer, false)
		rec.SharedFrom = &shared
	}

	return rec
}

func (a *Aggregator) renderComment(c *Comment, profiles map[string]*userdir.Profile, viewer string, opts RenderOptions, depth int) CommentRecord {
	rec := CommentRecord{
		ID:               c.ID,
		Content:          c.Content,
		User:             userRecord(profiles, c.AuthorID),
		IsReacted:        reactionTypeFor(viewer, c.Reactions),
		TotalComments:    len(c.Children),
		ReactionsCount:   len(c.Reactions),
		PublishedAt:      c.PublishedAt.UTC().Format(time.RFC3339),
		ReactionsPreview: a.reactionsPreview(c.Reactions, profiles),
	}

	if opts.IncludeLikesCount {
		n := len(c.Likes)
		rec.LikesCount = &n
	}

	if opts.IncludeChildren && depth < a.maxDepth && len(c.Children) > 0 {
		rec.Children = make([]CommentRecord, 0, len(c.Children))
		for _, child := range c.Children {
			rec.Children = append(rec.Children, a.renderComment(child, profiles, viewer, opts, depth+1))
		}
	}

	return rec
}

// reactionsPreview renders the first N reactions in their natural iteration
// order. Never a re-sort.
func (a *Aggregator) reactionsPreview(reactions []*Reaction, profiles map[string]*userdir.Profile) []ReactionRecord {
	n := len(reactions)
	if n > a.previewSize {
		n = a.previewSize
	}
	out := make([]ReactionRecord, 0, n)
	for _, r := range reactions[:n] {
		out = append(out, ReactionRecord{ID: r.ID, Type: r.Type, User: userRecord(profiles, r.AuthorID)})
	}
	return out
}

func (a *Aggregator) postURL(slug string) string {
	if a.baseURL == "" {
		return "/posts/" + slug
	}
	return a.baseURL + "/posts/" + slug
}

// reactionTypeFor returns the type of the first reaction authored by the
// viewer, or nil. No viewer means nil without scanning the collection.
func reactionTypeFor(viewer string, reactions []*Reaction) *string {
	if viewer == "" {
		return nil
	}
	for _, r := range reactions {
		if r.AuthorID == viewer {
			t := r.Type
			return &t
		}
	}
	return nil
}

// rootComments filters a post's loaded comments down to thread roots,
// preserving their order.
func rootComments(comments []*Comment) []*Comment {
	out := make([]*Comment, 0, len(comments))
	for _, c := range comments {
		if c.ParentID == nil {
			out = append(out, c)
		}
	}
	return out
}

func userRecord(profiles map[string]*userdir.Profile, authorID string) *UserRecord {
	p := profiles[authorID]
	if p == nil {
		return nil
	}
	return &UserRecord{
		ID:          p.ID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
	}
}

// idSet collects author ids deduplicated in first-seen order. Order does not
// matter for correctness but stable output keeps tests simple.
type idSet struct {
	seen map[string]struct{}
	ids  []string
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[string]struct{})}
}

func (s *idSet) add(id string) {
	if id == "" {
		return
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
}

func (s *idSet) values() []string { return s.ids }

// collectPostAuthors gathers every author id a post render can emit: the post
// author, comment authors (children included), like and reaction authors, and
// one level of reshare with its own nested collections.
func collectPostAuthors(ids *idSet, p *Post, followShared bool) {
	if p == nil {
		return
	}

	ids.add(p.AuthorID)
	for _, c := range p.Comments {
		collectCommentAuthors(ids, c, 0, defaultMaxThreadDepth)
	}
	for _, l := range p.Likes {
		ids.add(l.AuthorID)
	}
	for _, r := range p.Reactions {
		ids.add(r.AuthorID)
	}

	if followShared && p.SharedFrom != nil {
		collectPostAuthors(ids, p.SharedFrom, false)
	}
}

func collectCommentAuthors(ids *idSet, c *Comment, depth, maxDepth int) {
	if c == nil || depth > maxDepth {
		return
	}

	ids.add(c.AuthorID)
	for _, l := range c.Likes {
		ids.add(l.AuthorID)
	}
	for _, r := range c.Reactions {
		ids.add(r.AuthorID)
	}
	for _, child := range c.Children {
		collectCommentAuthors(ids, child, depth+1, maxDepth)
	}
}
