package view

import (
	"context"
	"log/slog"
	"sync"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/Josphat84/myoffice-sub003/internal/domain"
	"github.com/Josphat84/myoffice-sub003/internal/query"
)

const (
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	idLength   = 16
)

// View is one mounted screen: an entity plus the criteria the user has built.
type View struct {
	ID         string
	Entity     string
	Criteria   *query.Criteria
	LastAccess time.Time
	// version increments on every criteria change.
	version uint64
}

// Store keeps views in memory. Views idle for longer than ttl are dropped on
// access and by Sweep; a zero ttl keeps them until deleted.
type Store struct {
	mu    sync.Mutex
	views map[string]*View
	ttl   time.Duration
	now   func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{views: make(map[string]*View), ttl: ttl, now: time.Now}
}

// Create mounts a view over entity with criteria c.
func (s *Store) Create(entity string, c *query.Criteria) (View, error) {
	id, err := nanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return View{}, domain.NewAppError(domain.CodeInternal, "failed to generate view id", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	v := &View{ID: id, Entity: entity, Criteria: c, LastAccess: s.now()}
	s.views[id] = v
	return snapshot(v), nil
}

// Get returns a copy of the view and refreshes its idle timer.
func (s *Store) Get(id string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	return snapshot(v), nil
}

// Mutate applies fn to the view's criteria under the store lock and returns
// the resulting copy.
func (s *Store) Mutate(id string, fn func(c *query.Criteria)) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	fn(v.Criteria)
	v.version++
	return snapshot(v), nil
}

// SetPageIfUnchanged moves the view to page unless its criteria changed after
// the copy at version was taken. It reports whether the page was set.
func (s *Store) SetPageIfUnchanged(id string, version uint64, page int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[id]
	if !ok || v.version != version {
		return false
	}
	v.Criteria.SetPage(page)
	v.version++
	return true
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookup(id); err != nil {
		return err
	}
	delete(s.views, id)
	return nil
}

// ExpiresAt returns when v expires, or the zero time when views never expire.
func (s *Store) ExpiresAt(v View) time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return v.LastAccess.Add(s.ttl)
}

// Sweep drops expired views and returns how many were removed.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, v := range s.views {
		if s.expired(v, now) {
			delete(s.views, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.DebugContext(ctx, "expired views swept", slog.Int("count", n))
			}
		}
	}
}

// Len returns the number of stored views, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

// lookup must be called with s.mu held.
func (s *Store) lookup(id string) (*View, error) {
	v, ok := s.views[id]
	if !ok {
		return nil, domain.ViewNotFound(id)
	}
	now := s.now()
	if s.expired(v, now) {
		delete(s.views, id)
		return nil, domain.ViewNotFound(id)
	}
	v.LastAccess = now
	return v, nil
}

func (s *Store) expired(v *View, now time.Time) bool {
	return s.ttl > 0 && now.Sub(v.LastAccess) > s.ttl
}

func snapshot(v *View) View {
	cp := *v
	cp.Criteria = v.Criteria.Clone()
	return cp
}
