package source

import (
	"context"
	"sync"
	"time"

	"github.com/Josphat84/myoffice-sub003/internal/domain"
	"github.com/Josphat84/myoffice-sub003/internal/query"
)

// Refresher serializes the results of overlapping loads of one entity. Every
// Refresh takes a generation number; a result is applied only if no newer
// Refresh was started meanwhile, so the snapshot is always the outcome of the
// latest request.
type Refresher struct {
	src    domain.RecordSource
	entity string

	mu       sync.Mutex
	gen      uint64
	records  []query.Record
	loadedAt time.Time
	loaded   bool
}

func NewRefresher(src domain.RecordSource, entity string) *Refresher {
	return &Refresher{src: src, entity: entity}
}

// Refresh loads the collection. applied is false when a newer Refresh started
// before this one finished; the loaded records are still returned.
func (r *Refresher) Refresh(ctx context.Context) (records []query.Record, applied bool, err error) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	records, err = r.src.Load(ctx, r.entity)
	if err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return records, false, nil
	}
	r.records = records
	r.loadedAt = time.Now()
	r.loaded = true
	return records, true, nil
}

// Snapshot returns the last applied collection and when it was loaded.
func (r *Refresher) Snapshot() ([]query.Record, time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records, r.loadedAt, r.loaded
}
