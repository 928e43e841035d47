package feedstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-feed-cache/feed"
)

// EntityStore is the narrow read contract the feed layer relies on. The
// store is the source of truth; cache entries are pure projections of what
// these queries return. "Not found" is (nil, nil), errors mean faults.
type EntityStore interface {
	// FindPostsWithRelations returns a page of posts eagerly loaded with
	// comments (children, likes, reactions included), likes, medias,
	// reactions, and one level of reshare. An empty authorID means all
	// authors.
	FindPostsWithRelations(ctx context.Context, limit, offset int, authorID string) ([]*feed.Post, error)

	// CountPosts counts posts, optionally per author.
	CountPosts(ctx context.Context, authorID string) (int, error)

	// FindRootComments returns a page of a post's parentless comments with
	// children, likes, and reactions loaded.
	FindRootComments(ctx context.Context, postID string, limit, offset int) ([]*feed.Comment, error)

	// CountRootComments counts a post's parentless comments.
	CountRootComments(ctx context.Context, postID string) (int, error)

	// FindPostByID returns one post with relations, or nil when absent.
	FindPostByID(ctx context.Context, id string) (*feed.Post, error)

	// FindCommentByID returns one comment with children, likes, and
	// reactions, or nil when absent.
	FindCommentByID(ctx context.Context, id string) (*feed.Comment, error)
}

// Store implements EntityStore on a bun database.
//
// Comment trees are eagerly loaded two levels deep (roots plus children and
// grandchildren); deeper subtrees come back on a follow-up FindCommentByID.
// Observed data never nests further, so in practice one query serves a
// thread.
type Store struct {
	db *bun.DB
}

// New creates a Store over db. The caller owns the database lifecycle.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

var _ EntityStore = (*Store)(nil)

func orderPublishedDesc(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("published_at DESC")
}

// postRelations attaches the full eager-load graph for feed rendering.
func postRelations(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		Relation("Medias").
		Relation("Likes").
		Relation("Reactions").
		Relation("Comments", orderPublishedDesc).
		Relation("Comments.Likes").
		Relation("Comments.Reactions").
		Relation("Comments.Children", orderPublishedDesc).
		Relation("SharedFrom").
		Relation("SharedFrom.Medias").
		Relation("SharedFrom.Reactions").
		Relation("SharedFrom.Comments", orderPublishedDesc)
}

// FindPostsWithRelations implements EntityStore.
func (s *Store) FindPostsWithRelations(ctx context.Context, limit, offset int, authorID string) ([]*feed.Post, error) {
	var posts []*feed.Post

	q := postRelations(s.db.NewSelect().Model(&posts)).
		OrderExpr("p.published_at DESC").
		Limit(limit).
		Offset(offset)
	if authorID != "" {
		q = q.Where("p.author_id = ?", authorID)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return posts, nil
}

// CountPosts implements EntityStore.
func (s *Store) CountPosts(ctx context.Context, authorID string) (int, error) {
	q := s.db.NewSelect().Model((*feed.Post)(nil))
	if authorID != "" {
		q = q.Where("p.author_id = ?", authorID)
	}
	return q.Count(ctx)
}

// FindRootComments implements EntityStore.
func (s *Store) FindRootComments(ctx context.Context, postID string, limit, offset int) ([]*feed.Comment, error) {
	var comments []*feed.Comment

	err := s.db.NewSelect().Model(&comments).
		Where("c.post_id = ?", postID).
		Where("c.parent_id IS NULL").
		Relation("Likes").
		Relation("Reactions").
		Relation("Children", orderPublishedDesc).
		Relation("Children.Likes").
		Relation("Children.Reactions").
		Relation("Children.Children", orderPublishedDesc).
		OrderExpr("c.published_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CountRootComments implements EntityStore.
func (s *Store) CountRootComments(ctx context.Context, postID string) (int, error) {
	return s.db.NewSelect().Model((*feed.Comment)(nil)).
		Where("c.post_id = ?", postID).
		Where("c.parent_id IS NULL").
		Count(ctx)
}

// FindPostByID implements EntityStore.
func (s *Store) FindPostByID(ctx context.Context, id string) (*feed.Post, error) {
	post := new(feed.Post)

	err := postRelations(s.db.NewSelect().Model(post)).
		Where("p.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

// FindCommentByID implements EntityStore.
func (s *Store) FindCommentByID(ctx context.Context, id string) (*feed.Comment, error) {
	comment := new(feed.Comment)

	err := s.db.NewSelect().Model(comment).
		Relation("Likes").
		Relation("Reactions").
		Relation("Children", orderPublishedDesc).
		Relation("Children.Likes").
		Relation("Children.Reactions").
		Where("c.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}
