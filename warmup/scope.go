package warmup

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Scope selects which cache entries a warm-up run repopulates.
type Scope string

const (
	// ScopePosts warms the page-1 feed entry.
	ScopePosts Scope = "posts"

	// ScopeComments warms each working-set post's root-comment thread.
	ScopeComments Scope = "comments"

	// ScopeReactions warms likes and reactions entries: the posts' own, and
	// (when combined with comments) those of every comment in the warmed
	// threads.
	ScopeReactions Scope = "reactions"

	// ScopeAll warms everything.
	ScopeAll Scope = "all"
)

// ParseScope normalizes and validates a raw scope string, typically a CLI
// flag value.
func ParseScope(raw string) (Scope, error) {
	s := Scope(strings.ToLower(strings.TrimSpace(raw)))
	if err := s.Validate(); err != nil {
		return "", fmt.Errorf("invalid scope %q: %w", raw, err)
	}
	return s, nil
}

// Validate checks the scope against the allowed values.
func (s Scope) Validate() error {
	return validation.Validate(string(s),
		validation.Required,
		validation.In(
			string(ScopePosts),
			string(ScopeComments),
			string(ScopeReactions),
			string(ScopeAll),
		).Error("must be one of posts, comments, reactions, all"),
	)
}

func (s Scope) includesPosts() bool     { return s == ScopePosts || s == ScopeAll }
func (s Scope) includesComments() bool  { return s == ScopeComments || s == ScopeAll }
func (s Scope) includesReactions() bool { return s == ScopeReactions || s == ScopeAll }
