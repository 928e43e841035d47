package feedstore

import (
	"context"
	"strings"

	"github.com/uptrace/bun"
)

// Entity kinds and operations reported to a ChangeObserver.
const (
	KindPost     = "post"
	KindComment  = "comment"
	KindReaction = "reaction"
	KindLike     = "like"

	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeObserver receives entity lifecycle notifications. Implementations
// must be best-effort: the write has already committed by the time they run,
// and nothing they do may fail it.
type ChangeObserver interface {
	EntityChanged(ctx context.Context, kind, op string)
}

// tableKinds maps mutated tables to the entity kind they hold. Only these
// four feed the cache, so only these four are reported.
var tableKinds = map[string]string{
	"posts":     KindPost,
	"comments":  KindComment,
	"reactions": KindReaction,
	"likes":     KindLike,
}

// InvalidationHook is a bun query hook that turns successful INSERT, UPDATE,
// and DELETE statements on feed tables into lifecycle notifications. It is
// how the invalidation listener observes writes without the write paths
// knowing the cache exists.
type InvalidationHook struct {
	observer ChangeObserver
}

// NewInvalidationHook creates a hook reporting to observer. Register it with
// bun.DB.AddQueryHook on the same handle the write paths use.
func NewInvalidationHook(observer ChangeObserver) *InvalidationHook {
	return &InvalidationHook{observer: observer}
}

var _ bun.QueryHook = (*InvalidationHook)(nil)

// BeforeQuery implements bun.QueryHook.
func (h *InvalidationHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

// AfterQuery implements bun.QueryHook. Failed statements are ignored: a write
// that did not happen invalidates nothing.
func (h *InvalidationHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if h.observer == nil || event == nil || event.Err != nil {
		return
	}

	kind, op, ok := classifyQuery(event.Query)
	if !ok {
		return
	}
	h.observer.EntityChanged(ctx, kind, op)
}

// classifyQuery extracts the operation and target entity kind from a SQL
// statement. It only needs to understand the statements bun generates:
// INSERT INTO <table>, UPDATE <table>, DELETE FROM <table>.
func classifyQuery(query string) (kind, op string, ok bool) {
	fields := strings.Fields(query)
	if len(fields) < 2 {
		return "", "", false
	}

	var table string
	switch strings.ToUpper(fields[0]) {
	case "INSERT":
		if len(fields) < 3 || !strings.EqualFold(fields[1], "INTO") {
			return "", "", false
		}
		op, table = OpCreate, fields[2]
	case "UPDATE":
		op, table = OpUpdate, fields[1]
	case "DELETE":
		if len(fields) < 3 || !strings.EqualFold(fields[1], "FROM") {
			return "", "", false
		}
		op, table = OpDelete, fields[2]
	default:
		return "", "", false
	}

	table = strings.ToLower(strings.Trim(table, `"'`))
	if i := strings.IndexAny(table, "(.;"); i >= 0 {
		table = table[:i]
	}

	kind, ok = tableKinds[table]
	if !ok {
		return "", "", false
	}
	return kind, op, true
}
