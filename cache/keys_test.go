package cache

import "testing"

func TestBuildKey(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		segments []string
		want     string
	}{
		{
			name:   "no segments returns prefix",
			prefix: "posts_page",
			want:   "posts_page",
		},
		{
			name:     "plain segments",
			prefix:   "posts_page",
			segments: []string{"1", "10"},
			want:     "posts_page::1::10",
		},
		{
			name:     "empty segment is kept",
			prefix:   "post_comments",
			segments: []string{"p1", "1", "10", ""},
			want:     "post_comments::p1::1::10::",
		},
		{
			name:     "uppercase is lowered",
			prefix:   "post_likes",
			segments: []string{"POST-123"},
			want:     "post_likes::post-123",
		},
		{
			name:     "separator cannot be smuggled in",
			prefix:   "post_likes",
			segments: []string{"a::b"},
			want:     "post_likes::a_b",
		},
		{
			name:     "disallowed runs collapse to one underscore",
			prefix:   "post_likes",
			segments: []string{"Post ID!"},
			want:     "post_likes::post_id_",
		},
		{
			name:     "allowed punctuation survives",
			prefix:   "post_likes",
			segments: []string{"a.b-c_d"},
			want:     "post_likes::a.b-c_d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildKey(tt.prefix, tt.segments...)
			if got != tt.want {
				t.Errorf("BuildKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyHelpers(t *testing.T) {
	if got := FeedPageKey(1, 10); got != "posts_page::1::10" {
		t.Errorf("FeedPageKey(1, 10) = %q", got)
	}

	if got := PostCommentsKey("p1", 2, 10, ""); got != "post_comments::p1::2::10::" {
		t.Errorf("PostCommentsKey anonymous = %q", got)
	}

	if got := PostCommentsKey("p1", 2, 10, "viewer-1"); got != "post_comments::p1::2::10::viewer-1" {
		t.Errorf("PostCommentsKey with viewer = %q", got)
	}

	if got := PostLikesKey("p1"); got != "post_likes::p1" {
		t.Errorf("PostLikesKey = %q", got)
	}

	if got := PostReactionsKey("p1"); got != "post_reactions::p1" {
		t.Errorf("PostReactionsKey = %q", got)
	}

	if got := CommentLikesKey("c1"); got != "comment_likes::c1" {
		t.Errorf("CommentLikesKey = %q", got)
	}

	if got := CommentReactionsKey("c1"); got != "comment_reactions::c1" {
		t.Errorf("CommentReactionsKey = %q", got)
	}
}

func TestKeyDeterminism(t *testing.T) {
	// Same logical parameters must always produce byte-identical keys;
	// delete-then-rewarm depends on it.
	for i := 0; i < 100; i++ {
		if FeedPageKey(3, 25) != "posts_page::3::25" {
			t.Fatal("FeedPageKey is not deterministic")
		}
	}

	// Distinct viewers must produce distinct keys.
	a := PostCommentsKey("p1", 1, 10, "alice")
	b := PostCommentsKey("p1", 1, 10, "bob")
	anon := PostCommentsKey("p1", 1, 10, "")
	if a == b || a == anon || b == anon {
		t.Errorf("viewer qualifier does not separate keys: %q %q %q", a, b, anon)
	}
}
