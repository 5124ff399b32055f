package source

import (
	"context"
	"log/slog"

	"github.com/Josphat84/myoffice-sub003/internal/domain"
	"github.com/Josphat84/myoffice-sub003/internal/query"
)

// Store is the writable collection store behind non-remote entities.
type Store interface {
	domain.RecordStore
	Update(ctx context.Context, entity string, fn func([]query.Record) ([]query.Record, error)) error
}

// Router dispatches each entity to its source: remote entities go through a
// Refresher over the HTTP source and are read-only, the rest use the store.
type Router struct {
	store      Store
	refreshers map[string]*Refresher
}

// NewRouter builds a router. remote may be nil when no entity is served remotely.
func NewRouter(store Store, remote *HTTPSource) *Router {
	r := &Router{store: store, refreshers: make(map[string]*Refresher)}
	if remote != nil {
		for _, name := range remote.Entities() {
			r.refreshers[name] = NewRefresher(remote, name)
		}
	}
	return r
}

// ReadOnly reports whether entity is served by a remote source.
func (r *Router) ReadOnly(entity string) bool {
	_, ok := r.refreshers[entity]
	return ok
}

// Load returns the current collection of entity. When a remote load fails and
// an earlier snapshot exists, the snapshot is served instead.
func (r *Router) Load(ctx context.Context, entity string) ([]query.Record, error) {
	ref, ok := r.refreshers[entity]
	if !ok {
		return r.store.Load(ctx, entity)
	}
	records, _, err := ref.Refresh(ctx)
	if err == nil {
		return records, nil
	}
	if snap, at, ok := ref.Snapshot(); ok {
		slog.WarnContext(ctx, "remote load failed, serving snapshot",
			slog.String("entity", entity),
			slog.Time("loaded_at", at),
			slog.Any("error", err),
		)
		return snap, nil
	}
	return nil, err
}

func (r *Router) Save(ctx context.Context, entity string, records []query.Record) error {
	if r.ReadOnly(entity) {
		return readOnly(entity)
	}
	return r.store.Save(ctx, entity, records)
}

// Update applies fn to the stored collection of entity atomically.
func (r *Router) Update(ctx context.Context, entity string, fn func([]query.Record) ([]query.Record, error)) error {
	if r.ReadOnly(entity) {
		return readOnly(entity)
	}
	return r.store.Update(ctx, entity, fn)
}

func readOnly(entity string) error {
	return domain.NewAppError(domain.CodeReadOnly, entity+" records are served remotely and are read only", nil)
}
