package domain

import (
	"context"

	"github.com/Josphat84/myoffice-sub003/internal/query"
)

// ListRequest holds the search, filter, sort and pagination parameters of a
// records listing, independent of the transport it arrived on.
type ListRequest struct {
	Search   string
	Sort     string
	Page     int
	PageSize int
	From     string
	To       string
	// Filters maps a field name to its accepted values.
	Filters map[string][]string
}

// RecordSource supplies the raw collection of one entity type.
type RecordSource interface {
	Load(ctx context.Context, entity string) ([]query.Record, error)
}

// RecordStore is a RecordSource that can also persist a whole collection.
type RecordStore interface {
	RecordSource
	Save(ctx context.Context, entity string, records []query.Record) error
}
