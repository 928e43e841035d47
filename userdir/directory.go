package userdir

import "context"

// Profile is a cached copy of an externally-owned user profile. This system
// has no authority over its freshness beyond the proxy TTL.
type Profile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Directory resolves opaque user identifiers to profiles.
//
// BatchResolve accepts an empty list and a list with duplicates (duplicates
// collapse to one lookup) and omits unresolvable ids from the result map.
// Resolve returns (nil, nil) for an unknown id; errors are reserved for
// transport faults.
type Directory interface {
	Resolve(ctx context.Context, id string) (*Profile, error)
	BatchResolve(ctx context.Context, ids []string) (map[string]*Profile, error)
}

// StaticDirectory is a Directory backed by a fixed profile set. It backs the
// example program and tests; production wiring uses HTTPClient behind
// CachedDirectory.
type StaticDirectory map[string]*Profile

// Resolve implements Directory.
func (d StaticDirectory) Resolve(ctx context.Context, id string) (*Profile, error) {
	return d[id], nil
}

// BatchResolve implements Directory.
func (d StaticDirectory) BatchResolve(ctx context.Context, ids []string) (map[string]*Profile, error) {
	out := make(map[string]*Profile, len(ids))
	for _, id := range ids {
		if p, ok := d[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// dedupe collapses duplicate and empty ids while preserving first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
