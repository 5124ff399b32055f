package view

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Josphat84/myoffice-sub003/internal/entity"
	"github.com/Josphat84/myoffice-sub003/internal/pkg"
	"github.com/Josphat84/myoffice-sub003/internal/query"
)

type staticSource struct {
	records map[string][]query.Record
	err     error
}

func (s staticSource) Load(_ context.Context, name string) ([]query.Record, error) {
	return s.records[name], s.err
}

func trainingFixture() []query.Record {
	rec := func(id, name, expiry string) query.Record {
		return query.NewRecord(map[string]any{"id": id, "employeeName": name, "certification": "First Aid", "expiryDate": expiry})
	}
	return []query.Record{
		rec("t1", "Amina", "2024-05-01"),
		rec("t2", "Brian", "2024-07-15"),
		rec("t3", "Chen", "2025-03-01"),
		rec("t4", "Dora", "2024-06-20"),
		rec("t5", "Eli", "2026-01-01"),
	}
}

func setupViewRouter(t *testing.T, src staticSource) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	registry := entity.Default(entity.Options{Now: func() time.Time { return now }})

	r := gin.New()
	svc := NewService(registry, src, NewStore(time.Hour), nil)
	NewModule(NewHandler(svc)).RegisterRoutes(r.Group("/api/v1"))
	return r
}

type viewData struct {
	ID         string           `json:"id"`
	Entity     string           `json:"entity"`
	Criteria   query.Criteria   `json:"criteria"`
	Records    []map[string]any `json:"records"`
	Total      int              `json:"total_matched"`
	TotalPages int              `json:"total_pages"`
	Page       int              `json:"page"`
	Counts     map[string]int   `json:"counts_by_status"`
	ExpiresAt  *time.Time       `json:"expires_at"`
}

func call(t *testing.T, r *gin.Engine, method, path, body string, wantStatus int) viewData {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != wantStatus {
		t.Fatalf("%s %s status = %d; want %d (%s)", method, path, w.Code, wantStatus, w.Body.String())
	}

	var data viewData
	resp := pkg.Response{Data: &data}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return data
}

func recordIDs(d viewData) []string {
	out := make([]string, len(d.Records))
	for i, r := range d.Records {
		out[i], _ = r["id"].(string)
	}
	return out
}

func TestViewFlow(t *testing.T) {
	r := setupViewRouter(t, staticSource{records: map[string][]query.Record{entity.Training: trainingFixture()}})

	v := call(t, r, http.MethodPost, "/api/v1/views", `{"entity":"training","page_size":2}`, http.StatusCreated)
	if v.ID == "" || v.Entity != entity.Training {
		t.Fatalf("created view = %+v", v)
	}
	if v.ExpiresAt == nil {
		t.Error("expected expires_at with a ttl")
	}
	// default sort is expiryDate ascending
	if got := strings.Join(recordIDs(v), ","); got != "t1,t4" {
		t.Errorf("first page = %s; want t1,t4", got)
	}
	if v.Counts[entity.CertExpired] != 1 || v.Counts[entity.CertDueSoon] != 2 || v.Counts[entity.CertValid] != 2 {
		t.Errorf("counts = %v", v.Counts)
	}
	base := "/api/v1/views/" + v.ID

	v = call(t, r, http.MethodPut, base+"/page", `{"page":3}`, http.StatusOK)
	if v.Page != 3 || strings.Join(recordIDs(v), ",") != "t5" {
		t.Errorf("page 3 = %v (page %d)", recordIDs(v), v.Page)
	}

	v = call(t, r, http.MethodPost, base+"/filters/toggle", `{"field":"status","value":"Due Soon"}`, http.StatusOK)
	if v.Page != 1 || v.Total != 2 {
		t.Errorf("after toggle: page %d total %d; want 1 and 2", v.Page, v.Total)
	}
	if v.Counts[entity.CertExpired] != 1 {
		t.Errorf("counts should ignore the status filter: %v", v.Counts)
	}

	v = call(t, r, http.MethodPut, base+"/sort", `{"field":"employeeName","direction":"desc"}`, http.StatusOK)
	if got := strings.Join(recordIDs(v), ","); got != "t4,t2" {
		t.Errorf("sorted = %s; want t4,t2", got)
	}

	v = call(t, r, http.MethodPut, base+"/search", `{"term":"dora"}`, http.StatusOK)
	if got := strings.Join(recordIDs(v), ","); got != "t4" {
		t.Errorf("search = %s; want t4", got)
	}

	v = call(t, r, http.MethodPost, base+"/clear", "", http.StatusOK)
	if v.Total != 5 || v.Criteria.Sort.Field != "expiryDate" || v.Criteria.SearchTerm != "" {
		t.Errorf("after clear: total %d criteria %+v", v.Total, v.Criteria)
	}

	v = call(t, r, http.MethodPut, base+"/date-range", `{"start":"2024-06-01","end":"2024-12-31"}`, http.StatusOK)
	if got := strings.Join(recordIDs(v), ","); got != "t4,t2" {
		t.Errorf("date range = %s; want t4,t2", got)
	}

	v = call(t, r, http.MethodPut, base+"/filters", `{"field":"status","values":["Valid","Expired"]}`, http.StatusOK)
	if v.Total != 0 {
		t.Errorf("Valid or Expired inside the window = %d; want 0", v.Total)
	}

	call(t, r, http.MethodDelete, base, "", http.StatusOK)
	call(t, r, http.MethodGet, base, "", http.StatusNotFound)
}

func TestView_GetClampsPagePastEnd(t *testing.T) {
	r := setupViewRouter(t, staticSource{records: map[string][]query.Record{entity.Training: trainingFixture()}})

	v := call(t, r, http.MethodPost, "/api/v1/views", `{"entity":"training","page_size":2}`, http.StatusCreated)
	base := "/api/v1/views/" + v.ID

	v = call(t, r, http.MethodPut, base+"/page", `{"page":9}`, http.StatusOK)
	if v.Page != 3 || len(v.Records) != 1 {
		t.Errorf("page = %d with %d records; want the last page", v.Page, len(v.Records))
	}
	v = call(t, r, http.MethodGet, base, "", http.StatusOK)
	if v.Criteria.Page != 3 {
		t.Errorf("stored page = %d; want clamped 3", v.Criteria.Page)
	}
}

func TestView_EmptyCollectionClampsToFirstPage(t *testing.T) {
	r := setupViewRouter(t, staticSource{records: map[string][]query.Record{}})

	v := call(t, r, http.MethodPost, "/api/v1/views", `{"entity":"leave"}`, http.StatusCreated)
	v = call(t, r, http.MethodPut, "/api/v1/views/"+v.ID+"/page", `{"page":4}`, http.StatusOK)
	if v.Page != 1 || v.TotalPages != 0 || len(v.Records) != 0 {
		t.Errorf("empty view = page %d, totalPages %d, %d records", v.Page, v.TotalPages, len(v.Records))
	}
}

func TestView_ToggleEmptyValueMatchesAbsentField(t *testing.T) {
	records := []query.Record{
		query.NewRecord(map[string]any{"id": "t1", "employeeName": "Amina", "certification": "First Aid", "expiryDate": "2025-01-01"}),
		query.NewRecord(map[string]any{"id": "t2", "employeeName": "Brian", "expiryDate": "2025-01-01"}),
	}
	r := setupViewRouter(t, staticSource{records: map[string][]query.Record{entity.Training: records}})

	v := call(t, r, http.MethodPost, "/api/v1/views", `{"entity":"training"}`, http.StatusCreated)
	v = call(t, r, http.MethodPost, "/api/v1/views/"+v.ID+"/filters/toggle", `{"field":"certification","value":""}`, http.StatusOK)

	if got := recordIDs(v); len(got) != 1 || got[0] != "t2" {
		t.Errorf("records = %v; want [t2]", got)
	}
	if len(v.Criteria.FieldFilters) != 1 || v.Criteria.FieldFilters[0].Field != "certification" {
		t.Errorf("filters = %+v", v.Criteria.FieldFilters)
	}
}

func TestView_Errors(t *testing.T) {
	r := setupViewRouter(t, staticSource{err: errors.New("upstream timeout")})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing entity", http.MethodPost, "/api/v1/views", `{}`, http.StatusBadRequest},
		{"page size too big", http.MethodPost, "/api/v1/views", `{"entity":"training","page_size":500}`, http.StatusBadRequest},
		{"unknown entity", http.MethodPost, "/api/v1/views", `{"entity":"payroll"}`, http.StatusNotFound},
		{"load failure", http.MethodPost, "/api/v1/views", `{"entity":"training"}`, http.StatusInternalServerError},
		{"unknown view", http.MethodGet, "/api/v1/views/nope", "", http.StatusNotFound},
		{"bad direction", http.MethodPut, "/api/v1/views/nope/sort", `{"field":"x","direction":"up"}`, http.StatusBadRequest},
		{"page zero", http.MethodPut, "/api/v1/views/nope/page", `{"page":0}`, http.StatusBadRequest},
		{"toggle without field", http.MethodPost, "/api/v1/views/nope/filters/toggle", `{"value":"Valid"}`, http.StatusBadRequest},
		{"mutate unknown view", http.MethodPost, "/api/v1/views/nope/clear", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d; want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
