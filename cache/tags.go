package cache

// The invalidation tag vocabulary is intentionally small and fixed. Each cache
// entry is tagged with the entity kinds that feed into its payload, so a write
// to any of those kinds can sweep every dependent entry in one call.
const (
	TagPosts     = "posts"
	TagComments  = "comments"
	TagLikes     = "likes"
	TagReactions = "reactions"
)

// AllTags returns the full tag family. Feed pages embed comment previews,
// like counts, and reaction previews, so they depend on all four.
func AllTags() []string {
	return []string{TagPosts, TagComments, TagLikes, TagReactions}
}

// FeedPageTags is the tag set for a full feed page entry.
func FeedPageTags() []string { return AllTags() }

// PostCommentsTags is the tag set for a post's comment-thread entry. Threads
// carry per-comment like counts and reaction previews, so they depend on all
// four families as well.
func PostCommentsTags() []string { return AllTags() }

// PostLikesTags is the tag set for a post's likes entry.
func PostLikesTags() []string { return []string{TagPosts, TagLikes} }

// PostReactionsTags is the tag set for a post's reactions entry.
func PostReactionsTags() []string { return []string{TagPosts, TagReactions} }

// CommentLikesTags is the tag set for a comment's likes entry.
func CommentLikesTags() []string { return []string{TagComments, TagLikes} }

// CommentReactionsTags is the tag set for a comment's reactions entry.
func CommentReactionsTags() []string { return []string{TagComments, TagReactions} }
