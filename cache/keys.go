package cache

import (
	"strconv"
	"strings"
	"unicode"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// Key prefixes for every cached resource shape. Keys built from the same
// prefix and the same logical parameters are always byte-identical, which is
// what makes explicit delete-then-rewarm sequences reliable.
const (
	KeyFeedPage         = "posts_page"
	KeyPostComments     = "post_comments"
	KeyPostLikes        = "post_likes"
	KeyPostReactions    = "post_reactions"
	KeyCommentLikes     = "comment_likes"
	KeyCommentReactions = "comment_reactions"
	KeyUserProfile      = "user_profile"
)

// BuildKey joins a logical prefix with an ordered list of segments using
// KeySeparator. Segments are sanitized so external identifiers (slugs, viewer
// ids) cannot smuggle separator characters into the key space. Empty segments
// are kept: position carries meaning, so "a::''::b" and "a::b" stay distinct.
func BuildKey(prefix string, segments ...string) string {
	if len(segments) == 0 {
		return prefix
	}

	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, prefix)
	for _, seg := range segments {
		parts = append(parts, sanitizeSegment(seg))
	}

	return strings.Join(parts, KeySeparator)
}

// FeedPageKey returns the key for one page of the denormalized feed.
func FeedPageKey(page, limit int) string {
	return BuildKey(KeyFeedPage, strconv.Itoa(page), strconv.Itoa(limit))
}

// PostCommentsKey returns the key for one page of a post's root comment
// thread. The viewer qualifier keeps personalized reaction state (isReacted)
// from leaking between viewers; an anonymous read uses an empty viewer.
func PostCommentsKey(postID string, page, limit int, viewer string) string {
	return BuildKey(KeyPostComments, postID, strconv.Itoa(page), strconv.Itoa(limit), viewer)
}

// PostLikesKey returns the key for a post's likes payload.
func PostLikesKey(postID string) string {
	return BuildKey(KeyPostLikes, postID)
}

// PostReactionsKey returns the key for a post's reactions payload.
func PostReactionsKey(postID string) string {
	return BuildKey(KeyPostReactions, postID)
}

// CommentLikesKey returns the key for a comment's likes payload.
func CommentLikesKey(commentID string) string {
	return BuildKey(KeyCommentLikes, commentID)
}

// CommentReactionsKey returns the key for a comment's reactions payload.
func CommentReactionsKey(commentID string) string {
	return BuildKey(KeyCommentReactions, commentID)
}

// sanitizeSegment lowercases a key segment and collapses anything outside
// [a-z0-9._-] to a single underscore. We keep this aggressive so identifiers
// coming from the outside world cannot contain the separator, whitespace, or
// characters Redis/Memcache style backends reject.
func sanitizeSegment(s string) string {
	if s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	lastUnderscore := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.', r == '_':
			b.WriteRune(r)
			lastUnderscore = false
		case unicode.IsUpper(r):
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	return b.String()
}
