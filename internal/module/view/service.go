package view

import (
	"context"
	"errors"
	"time"

	"github.com/Josphat84/myoffice-sub003/internal/domain"
	"github.com/Josphat84/myoffice-sub003/internal/entity"
	"github.com/Josphat84/myoffice-sub003/internal/metrics"
	"github.com/Josphat84/myoffice-sub003/internal/query"
)

// Service runs the criteria mutations of a mounted screen. Every operation
// returns the freshly rendered page.
type Service interface {
	Create(ctx context.Context, req CreateViewRequest) (*Response, error)
	Render(ctx context.Context, id string) (*Response, error)
	Mutate(ctx context.Context, id string, fn func(c *query.Criteria)) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	registry *entity.Registry
	source   domain.RecordSource
	store    *Store
	metrics  *metrics.Metrics
}

// NewService builds the view service. m may be nil.
func NewService(registry *entity.Registry, source domain.RecordSource, store *Store, m *metrics.Metrics) Service {
	return &service{registry: registry, source: source, store: store, metrics: m}
}

func (s *service) Create(ctx context.Context, req CreateViewRequest) (*Response, error) {
	e, err := s.registry.Lookup(req.Entity)
	if err != nil {
		return nil, err
	}
	v, err := s.store.Create(e.Name, e.NewCriteria(req.PageSize))
	if err != nil {
		return nil, err
	}
	return s.render(ctx, v)
}

func (s *service) Render(ctx context.Context, id string) (*Response, error) {
	v, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, v)
}

func (s *service) Mutate(ctx context.Context, id string, fn func(c *query.Criteria)) (*Response, error) {
	v, err := s.store.Mutate(id, fn)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, v)
}

func (s *service) Delete(_ context.Context, id string) error {
	return s.store.Delete(id)
}

// render queries the view's collection. A page past the end is clamped to
// the last page (page 1 when nothing matches) and the clamp is stored unless
// the view changed in the meantime.
func (s *service) render(ctx context.Context, v View) (*Response, error) {
	e, err := s.registry.Lookup(v.Entity)
	if err != nil {
		return nil, err
	}
	records, err := s.source.Load(ctx, v.Entity)
	s.metrics.ObserveLoad(v.Entity, err)
	if err != nil {
		var appErr *domain.AppError
		if !errors.As(err, &appErr) {
			err = domain.LoadFailed(v.Entity, err)
		}
		return nil, err
	}

	start := time.Now()
	res := query.Query(records, v.Criteria, e.Config)
	if page := clampPage(res.Page, res.TotalPages); page != res.Page {
		v.Criteria.SetPage(page)
		res = query.Query(records, v.Criteria, e.Config)
		s.store.SetPageIfUnchanged(v.ID, v.version, page)
	}
	s.metrics.ObserveQuery(v.Entity, time.Since(start), res.TotalMatched)

	resp := &Response{
		ID:       v.ID,
		Entity:   v.Entity,
		Criteria: v.Criteria,
		Result:   res,
	}
	if exp := s.store.ExpiresAt(v); !exp.IsZero() {
		resp.ExpiresAt = &exp
	}
	return resp, nil
}

func clampPage(page, totalPages int) int {
	return max(1, min(page, max(1, totalPages)))
}
