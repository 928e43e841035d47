package feed

import (
	"time"

	"github.com/uptrace/bun"
)

// Post is a published entry in the blog feed. Relations are loaded eagerly by
// the store; the aggregator never issues follow-up entity queries.
//
// SharedFrom forms a one-level reshare chain: a shared post is never expected
// to carry its own SharedFrom in this system, and the renderer will not
// follow one even if it does.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID           string    `bun:"id,pk"`
	AuthorID     string    `bun:"author_id,notnull"`
	Title        string    `bun:"title"`
	Summary      string    `bun:"summary"`
	Content      string    `bun:"content"`
	Slug         string    `bun:"slug"`
	PublishedAt  time.Time `bun:"published_at"`
	SharedFromID *string   `bun:"shared_from_id"`

	SharedFrom *Post       `bun:"rel:belongs-to,join:shared_from_id=id"`
	Comments   []*Comment  `bun:"rel:has-many,join:id=post_id"`
	Medias     []*Media    `bun:"rel:has-many,join:id=post_id"`
	Likes      []*Like     `bun:"rel:has-many,join:id=post_id"`
	Reactions  []*Reaction `bun:"rel:has-many,join:id=post_id"`
	Tags       []*Tag      `bun:"m2m:post_tags,join:Post=Tag"`
}

// Comment belongs to a post and optionally to a parent comment, forming a
// tree. Children are kept in the natural (already-ordered) iteration order
// the store returns.
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:c"`

	ID          string    `bun:"id,pk"`
	PostID      string    `bun:"post_id,notnull"`
	AuthorID    string    `bun:"author_id,notnull"`
	Content     string    `bun:"content"`
	PublishedAt time.Time `bun:"published_at"`
	ParentID    *string   `bun:"parent_id"`

	Children  []*Comment  `bun:"rel:has-many,join:id=parent_id"`
	Likes     []*Like     `bun:"rel:has-many,join:id=comment_id"`
	Reactions []*Reaction `bun:"rel:has-many,join:id=comment_id"`
}

// Like belongs to exactly one of a post or a comment, never both and never
// neither. The store upholds the invariant; this package only reads it.
type Like struct {
	bun.BaseModel `bun:"table:likes,alias:l"`

	ID        string  `bun:"id,pk"`
	AuthorID  string  `bun:"author_id,notnull"`
	PostID    *string `bun:"post_id"`
	CommentID *string `bun:"comment_id"`
}

// Reaction is a typed like ("like", "love", "wow", ...) with the same
// post-xor-comment ownership rule.
type Reaction struct {
	bun.BaseModel `bun:"table:reactions,alias:r"`

	ID        string  `bun:"id,pk"`
	AuthorID  string  `bun:"author_id,notnull"`
	Type      string  `bun:"type"`
	PostID    *string `bun:"post_id"`
	CommentID *string `bun:"comment_id"`
}

// Media is an attachment rendered inside a post payload.
type Media struct {
	bun.BaseModel `bun:"table:medias,alias:m"`

	ID     string `bun:"id,pk"`
	PostID string `bun:"post_id,notnull"`
	URL    string `bun:"url"`
	Kind   string `bun:"kind"`
}

// Tag labels a post. Tags are consumed read-only here; the feed payload does
// not render them but the entity is part of the eager-load graph.
type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	ID   string `bun:"id,pk"`
	Name string `bun:"name"`
	Slug string `bun:"slug"`
}

// PostTag is the posts<->tags join model.
type PostTag struct {
	bun.BaseModel `bun:"table:post_tags,alias:pt"`

	PostID string `bun:"post_id,pk"`
	TagID  string `bun:"tag_id,pk"`

	Post *Post `bun:"rel:belongs-to,join:post_id=id"`
	Tag  *Tag  `bun:"rel:belongs-to,join:tag_id=id"`
}
