package records

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/Josphat84/myoffice-sub003/internal/domain"
	"github.com/Josphat84/myoffice-sub003/internal/entity"
	"github.com/Josphat84/myoffice-sub003/internal/export"
	"github.com/Josphat84/myoffice-sub003/internal/metrics"
	"github.com/Josphat84/myoffice-sub003/internal/pkg"
	"github.com/Josphat84/myoffice-sub003/internal/query"
)

// IDField is the record field that identifies a record within its collection.
const IDField = "id"

const (
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 12
)

// Collections loads and mutates entity collections.
type Collections interface {
	domain.RecordStore
	Update(ctx context.Context, entity string, fn func([]query.Record) ([]query.Record, error)) error
	ReadOnly(entity string) bool
}

// Service is the records use-case layer behind the HTTP handler.
type Service interface {
	Entities() []entity.Info
	Entity(name string) (entity.Info, error)
	List(ctx context.Context, name string, req domain.ListRequest) (*ListResponse, error)
	Get(ctx context.Context, name, id string) (query.Record, error)
	Create(ctx context.Context, name string, rec query.Record) (query.Record, error)
	Update(ctx context.Context, name, id string, rec query.Record) (query.Record, error)
	Delete(ctx context.Context, name, id string) error
	Replace(ctx context.Context, name string, recs []query.Record) (int, error)
	Export(ctx context.Context, name string, req domain.ListRequest, f export.Format) (*ExportFile, error)
}

type service struct {
	registry    *entity.Registry
	collections Collections
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewService wires the registry and collection source. m may be nil.
func NewService(registry *entity.Registry, collections Collections, m *metrics.Metrics) Service {
	return &service{registry: registry, collections: collections, metrics: m, now: time.Now}
}

func (s *service) Entities() []entity.Info {
	all := s.registry.All()
	out := make([]entity.Info, 0, len(all))
	for _, e := range all {
		out = append(out, s.info(e))
	}
	return out
}

func (s *service) Entity(name string) (entity.Info, error) {
	e, err := s.registry.Lookup(name)
	if err != nil {
		return entity.Info{}, err
	}
	return s.info(e), nil
}

func (s *service) info(e *entity.Entity) entity.Info {
	info := e.Info()
	info.ReadOnly = s.collections.ReadOnly(e.Name)
	return info
}

// List runs one query pass over the entity's current collection.
func (s *service) List(ctx context.Context, name string, req domain.ListRequest) (*ListResponse, error) {
	e, records, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}

	c := pkg.NewCriteria(req, e.PageSize, e.DefaultSort)
	start := time.Now()
	res := query.Query(records, c, e.Config)
	s.metrics.ObserveQuery(name, time.Since(start), res.TotalMatched)

	return &ListResponse{
		Entity:   name,
		Criteria: c,
		Result:   res,
	}, nil
}

// Get returns one record with its derived fields evaluated.
func (s *service) Get(ctx context.Context, name, id string) (query.Record, error) {
	e, records, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return nil, domain.RecordNotFound(name, id)
	}
	return withDerived(e, records[i]), nil
}

// Create appends rec to the collection. A record without an id gets a
// generated one; derived fields in rec are dropped before storing.
func (s *service) Create(ctx context.Context, name string, rec query.Record) (query.Record, error) {
	e, err := s.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	rec = stripDerived(e, rec)

	id, err := ensureID(rec)
	if err != nil {
		return nil, err
	}

	err = s.collections.Update(ctx, name, func(records []query.Record) ([]query.Record, error) {
		if indexOf(records, id) >= 0 {
			return nil, domain.RecordExists(name, id)
		}
		return append(records, rec), nil
	})
	if err != nil {
		return nil, err
	}
	return withDerived(e, rec), nil
}

// Update replaces the record identified by id. The stored id always wins over
// one carried in rec.
func (s *service) Update(ctx context.Context, name, id string, rec query.Record) (query.Record, error) {
	e, err := s.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	rec = stripDerived(e, rec)
	rec[IDField] = query.String(id)

	err = s.collections.Update(ctx, name, func(records []query.Record) ([]query.Record, error) {
		i := indexOf(records, id)
		if i < 0 {
			return nil, domain.RecordNotFound(name, id)
		}
		out := slices.Clone(records)
		out[i] = rec
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return withDerived(e, rec), nil
}

func (s *service) Delete(ctx context.Context, name, id string) error {
	if _, err := s.registry.Lookup(name); err != nil {
		return err
	}
	return s.collections.Update(ctx, name, func(records []query.Record) ([]query.Record, error) {
		i := indexOf(records, id)
		if i < 0 {
			return nil, domain.RecordNotFound(name, id)
		}
		return slices.Delete(slices.Clone(records), i, i+1), nil
	})
}

// Replace swaps the whole collection for recs, the bulk import counterpart of
// Create. Ids are assigned the same way and must be unique within recs.
func (s *service) Replace(ctx context.Context, name string, recs []query.Record) (int, error) {
	e, err := s.registry.Lookup(name)
	if err != nil {
		return 0, err
	}

	out := make([]query.Record, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		r = stripDerived(e, r)
		id, err := ensureID(r)
		if err != nil {
			return 0, err
		}
		if _, dup := seen[id]; dup {
			return 0, domain.RecordExists(name, id)
		}
		seen[id] = struct{}{}
		out = append(out, r)
	}

	if err := s.collections.Save(ctx, name, out); err != nil {
		return 0, err
	}
	return len(out), nil
}

// Export renders every record matching req, in query order, ignoring pagination.
func (s *service) Export(ctx context.Context, name string, req domain.ListRequest, f export.Format) (*ExportFile, error) {
	e, records, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}

	selected := query.Select(records, pkg.NewCriteria(req, e.PageSize, e.DefaultSort), e.Config)
	columns := e.Columns
	if len(columns) == 0 {
		columns = export.Columns(selected)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, f, e.Label, columns, selected); err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to export "+name+" records", err)
	}
	return &ExportFile{
		Filename:    export.Filename(name, f, s.now()),
		ContentType: f.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

func (s *service) load(ctx context.Context, name string) (*entity.Entity, []query.Record, error) {
	e, err := s.registry.Lookup(name)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.collections.Load(ctx, name)
	s.metrics.ObserveLoad(name, err)
	if err != nil {
		var appErr *domain.AppError
		if !errors.As(err, &appErr) {
			err = domain.LoadFailed(name, err)
		}
		return nil, nil, err
	}
	return e, records, nil
}

// ensureID returns rec's id, generating and setting one when it is missing.
func ensureID(rec query.Record) (string, error) {
	if id := rec.Get(IDField).AsString(); id != "" {
		return id, nil
	}
	id, err := nanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "failed to generate record id", err)
	}
	rec[IDField] = query.String(id)
	return id, nil
}

func indexOf(records []query.Record, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(records, func(r query.Record) bool {
		return r.Get(IDField).AsString() == id
	})
}

func withDerived(e *entity.Entity, r query.Record) query.Record {
	return query.Select([]query.Record{r}, nil, e.Config)[0]
}

func stripDerived(e *entity.Entity, r query.Record) query.Record {
	out := r.Clone()
	if out == nil {
		out = query.Record{}
	}
	for _, d := range e.Config.Derived {
		delete(out, d.Field)
	}
	return out
}
