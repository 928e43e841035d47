// Package testsupport provides an in-memory entity store and entity builders
// for tests and the example program. Nothing here is safe to use in
// production wiring.
package testsupport

import (
	"context"
	"sort"
	"sync"

	"github.com/goliatone/go-feed-cache/feed"
	"github.com/goliatone/go-feed-cache/feedstore"
)

// MemoryStore implements feedstore.EntityStore over seeded entity graphs. It
// mimics the read contract of the real store: pages ordered by published_at
// descending, relations already attached, (nil, nil) for absent entities.
// Mutations notify the registered change observer the way the bun query hook
// would, so invalidation paths are testable end to end.
type MemoryStore struct {
	mu       sync.Mutex
	posts    []*feed.Post
	comments map[string]*feed.Comment
	observer feedstore.ChangeObserver
	calls    map[string]int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		comments: make(map[string]*feed.Comment),
		calls:    make(map[string]int),
	}
}

var _ feedstore.EntityStore = (*MemoryStore)(nil)

// SetObserver registers the observer notified on mutations. Pass nil to
// silence notifications.
func (s *MemoryStore) SetObserver(observer feedstore.ChangeObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = observer
}

// Calls reports how many times the named read method ran, for asserting that
// cached reads never touched the store.
func (s *MemoryStore) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *MemoryStore) count(method string) {
	s.calls[method]++
}

// SeedPost adds a fully built post graph without notifying the observer, for
// arranging preconditions. Comments (children included) become findable by id.
func (s *MemoryStore) SeedPost(post *feed.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addPost(post)
}

func (s *MemoryStore) addPost(post *feed.Post) {
	s.posts = append(s.posts, post)
	var index func(comments []*feed.Comment)
	index = func(comments []*feed.Comment) {
		for _, c := range comments {
			s.comments[c.ID] = c
			index(c.Children)
		}
	}
	index(post.Comments)
	if post.SharedFrom != nil {
		index(post.SharedFrom.Comments)
	}
}

// CreatePost adds a post and notifies the observer, standing in for a
// committed INSERT on the posts table.
func (s *MemoryStore) CreatePost(ctx context.Context, post *feed.Post) {
	s.mu.Lock()
	s.addPost(post)
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer.EntityChanged(ctx, feedstore.KindPost, feedstore.OpCreate)
	}
}

// CreateComment attaches a comment to its post (or parent comment) and
// notifies the observer.
func (s *MemoryStore) CreateComment(ctx context.Context, comment *feed.Comment) {
	s.mu.Lock()
	s.comments[comment.ID] = comment
	if comment.ParentID != nil {
		if parent, ok := s.comments[*comment.ParentID]; ok {
			parent.Children = append(parent.Children, comment)
		}
	}
	for _, p := range s.posts {
		if p.ID == comment.PostID {
			p.Comments = append(p.Comments, comment)
			break
		}
	}
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer.EntityChanged(ctx, feedstore.KindComment, feedstore.OpCreate)
	}
}

// CreateReaction attaches a reaction to its post or comment and notifies the
// observer.
func (s *MemoryStore) CreateReaction(ctx context.Context, reaction *feed.Reaction) {
	s.mu.Lock()
	if reaction.PostID != nil {
		for _, p := range s.posts {
			if p.ID == *reaction.PostID {
				p.Reactions = append(p.Reactions, reaction)
				break
			}
		}
	}
	if reaction.CommentID != nil {
		if c, ok := s.comments[*reaction.CommentID]; ok {
			c.Reactions = append(c.Reactions, reaction)
		}
	}
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer.EntityChanged(ctx, feedstore.KindReaction, feedstore.OpCreate)
	}
}

// CreateLike attaches a like to its post or comment and notifies the
// observer.
func (s *MemoryStore) CreateLike(ctx context.Context, like *feed.Like) {
	s.mu.Lock()
	if like.PostID != nil {
		for _, p := range s.posts {
			if p.ID == *like.PostID {
				p.Likes = append(p.Likes, like)
				break
			}
		}
	}
	if like.CommentID != nil {
		if c, ok := s.comments[*like.CommentID]; ok {
			c.Likes = append(c.Likes, like)
		}
	}
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer.EntityChanged(ctx, feedstore.KindLike, feedstore.OpCreate)
	}
}

// FindPostsWithRelations implements feedstore.EntityStore.
func (s *MemoryStore) FindPostsWithRelations(ctx context.Context, limit, offset int, authorID string) ([]*feed.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("FindPostsWithRelations")

	matched := make([]*feed.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if authorID == "" || p.AuthorID == authorID {
			matched = append(matched, p)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].PublishedAt.After(matched[j].PublishedAt)
	})

	return window(matched, limit, offset), nil
}

// CountPosts implements feedstore.EntityStore.
func (s *MemoryStore) CountPosts(ctx context.Context, authorID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("CountPosts")

	n := 0
	for _, p := range s.posts {
		if authorID == "" || p.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

// FindRootComments implements feedstore.EntityStore.
func (s *MemoryStore) FindRootComments(ctx context.Context, postID string, limit, offset int) ([]*feed.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("FindRootComments")

	roots := s.rootComments(postID)
	return window(roots, limit, offset), nil
}

// CountRootComments implements feedstore.EntityStore.
func (s *MemoryStore) CountRootComments(ctx context.Context, postID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("CountRootComments")
	return len(s.rootComments(postID)), nil
}

func (s *MemoryStore) rootComments(postID string) []*feed.Comment {
	var roots []*feed.Comment
	for _, p := range s.posts {
		if p.ID != postID {
			continue
		}
		for _, c := range p.Comments {
			if c.ParentID == nil {
				roots = append(roots, c)
			}
		}
		break
	}
	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].PublishedAt.After(roots[j].PublishedAt)
	})
	return roots
}

// FindPostByID implements feedstore.EntityStore.
func (s *MemoryStore) FindPostByID(ctx context.Context, id string) (*feed.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("FindPostByID")

	for _, p := range s.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

// FindCommentByID implements feedstore.EntityStore.
func (s *MemoryStore) FindCommentByID(ctx context.Context, id string) (*feed.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("FindCommentByID")
	return s.comments[id], nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
