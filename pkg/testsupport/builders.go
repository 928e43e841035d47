package testsupport

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-feed-cache/feed"
)

// BuildPost creates a post with a fresh id and a slug derived from the title.
func BuildPost(authorID, title string, publishedAt time.Time) *feed.Post {
	return &feed.Post{
		ID:          uuid.NewString(),
		AuthorID:    authorID,
		Title:       title,
		Summary:     title + " summary",
		Content:     title + " content",
		Slug:        slugify(title),
		PublishedAt: publishedAt,
	}
}

// BuildComment creates a root comment on post with a fresh id.
func BuildComment(postID, authorID, content string, publishedAt time.Time) *feed.Comment {
	return &feed.Comment{
		ID:          uuid.NewString(),
		PostID:      postID,
		AuthorID:    authorID,
		Content:     content,
		PublishedAt: publishedAt,
	}
}

// BuildReply creates a child of parent with a fresh id.
func BuildReply(parent *feed.Comment, authorID, content string, publishedAt time.Time) *feed.Comment {
	parentID := parent.ID
	return &feed.Comment{
		ID:          uuid.NewString(),
		PostID:      parent.PostID,
		AuthorID:    authorID,
		Content:     content,
		PublishedAt: publishedAt,
		ParentID:    &parentID,
	}
}

// BuildPostReaction creates a reaction on a post.
func BuildPostReaction(postID, authorID, typ string) *feed.Reaction {
	return &feed.Reaction{
		ID:       uuid.NewString(),
		AuthorID: authorID,
		Type:     typ,
		PostID:   &postID,
	}
}

// BuildCommentReaction creates a reaction on a comment.
func BuildCommentReaction(commentID, authorID, typ string) *feed.Reaction {
	return &feed.Reaction{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Type:      typ,
		CommentID: &commentID,
	}
}

// BuildPostLike creates a like on a post.
func BuildPostLike(postID, authorID string) *feed.Like {
	return &feed.Like{
		ID:       uuid.NewString(),
		AuthorID: authorID,
		PostID:   &postID,
	}
}

// BuildCommentLike creates a like on a comment.
func BuildCommentLike(commentID, authorID string) *feed.Like {
	return &feed.Like{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		CommentID: &commentID,
	}
}

// BuildMedia creates a post attachment.
func BuildMedia(postID, url, kind string) *feed.Media {
	return &feed.Media{
		ID:     uuid.NewString(),
		PostID: postID,
		URL:    url,
		Kind:   kind,
	}
}

func slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}
