package feedcache

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-feed-cache/cache"
	"github.com/goliatone/go-feed-cache/feedstore"
)

// Listener turns entity lifecycle events into cache invalidation.
//
// Invalidation is coarse: any post, comment, reaction, or like
// mutation can shift counts and previews transitively across the whole feed,
// so every event sweeps the full tag family. Precise per-entry invalidation
// would need a dependency graph; the TaggedCacheService boundary leaves room
// to drop one in later without touching this type's callers.
//
// Like events are included even though only post, comment, and reaction
// controllers historically invalidated the feed; see DESIGN.md for the
// reasoning.
type Listener struct {
	cache cache.TaggedCacheService
	log   *slog.Logger
}

// NewListener creates a listener sweeping service. A nil logger means
// slog.Default().
func NewListener(service cache.TaggedCacheService, log *slog.Logger) *Listener {
	if log == nil {
		log = slog.Default()
	}
	return &Listener{cache: service, log: log}
}

var _ feedstore.ChangeObserver = (*Listener)(nil)

// observedKinds lists the entity kinds whose mutations invalidate the feed.
var observedKinds = map[string]struct{}{
	feedstore.KindPost:     {},
	feedstore.KindComment:  {},
	feedstore.KindReaction: {},
	feedstore.KindLike:     {},
}

// EntityChanged implements feedstore.ChangeObserver. Invalidation is
// best-effort: a cache backend failure is logged and swallowed. A stale-cache
// window is acceptable; blocking or failing the committed write is not.
func (l *Listener) EntityChanged(ctx context.Context, kind, op string) {
	if _, ok := observedKinds[kind]; !ok {
		return
	}

	if err := l.cache.InvalidateTags(ctx, cache.AllTags()...); err != nil {
		l.log.WarnContext(ctx, "feed cache invalidation failed",
			slog.String("kind", kind),
			slog.String("op", op),
			slog.String("err", err.Error()))
		return
	}

	l.log.DebugContext(ctx, "feed cache invalidated",
		slog.String("kind", kind),
		slog.String("op", op))
}
