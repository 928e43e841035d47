package feed

// Output records are the denormalized, serializable payloads stored in the
// cache and returned to API callers. Field names mix snake_case and
// camelCase because they mirror the wire contract of the existing API,
// which clients already depend on.

// UserRecord is the resolved profile embedded wherever an author appears.
// Anywhere a profile could not be resolved the payload carries null instead;
// a raw unresolved identifier is never emitted as a user field.
type UserRecord struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// MediaRecord renders a post attachment.
type MediaRecord struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Kind string `json:"kind"`
}

// LikeRecord renders a single like.
type LikeRecord struct {
	ID   string      `json:"id"`
	User *UserRecord `json:"user"`
}

// ReactionRecord renders a single reaction.
type ReactionRecord struct {
	ID   string      `json:"id"`
	Type string      `json:"type"`
	User *UserRecord `json:"user"`
}

// CommentRecord renders a comment, both as a thread node and as a preview.
// IsReacted carries the viewer's reaction type, or null for no viewer / no
// reaction. LikesCount is only present when the render options ask for it.
// Children is only populated in thread mode; previews stay shallow.
type CommentRecord struct {
	ID               string           `json:"id"`
	Content          string           `json:"content"`
	User             *UserRecord      `json:"user"`
	IsReacted        *string          `json:"isReacted"`
	TotalComments    int              `json:"totalComments"`
	ReactionsCount   int              `json:"reactions_count"`
	PublishedAt      string           `json:"publishedAt"`
	ReactionsPreview []ReactionRecord `json:"reactions_preview"`
	LikesCount       *int             `json:"likes_count,omitempty"`
	Children         []CommentRecord  `json:"children,omitempty"`
}

// PostRecord renders a post for the feed. SharedFrom is at most one level
// deep; the renderer never recurses into a shared post's own share chain.
type PostRecord struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Summary          string           `json:"summary"`
	Content          string           `json:"content"`
	URL              string           `json:"url"`
	Slug             string           `json:"slug"`
	Medias           []MediaRecord    `json:"medias"`
	PublishedAt      string           `json:"publishedAt"`
	SharedFrom       *PostRecord      `json:"sharedFrom"`
	ReactionsCount   int              `json:"reactions_count"`
	TotalComments    int              `json:"totalComments"`
	User             *UserRecord      `json:"user"`
	ReactionsPreview []ReactionRecord `json:"reactions_preview"`
	CommentsPreview  []CommentRecord  `json:"comments_preview"`
}

// PostPage is the cached payload for one page of the feed.
type PostPage struct {
	Items []PostRecord `json:"items"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// CommentPage is the cached payload for one page of a post's root-comment
// threads.
type CommentPage struct {
	Items []CommentRecord `json:"items"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// LikesPayload is the cached payload for a post's or comment's likes.
type LikesPayload struct {
	Total int          `json:"total"`
	Items []LikeRecord `json:"items"`
}

// ReactionsPayload is the cached payload for a post's or comment's reactions.
type ReactionsPayload struct {
	Total int              `json:"total"`
	Items []ReactionRecord `json:"items"`
}
