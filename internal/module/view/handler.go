package view

import (
	"github.com/gin-gonic/gin"

	"github.com/Josphat84/myoffice-sub003/internal/pkg"
	"github.com/Josphat84/myoffice-sub003/internal/query"
)

// Handler serves the view API.
type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /api/v1/views.
func (h *Handler) Create(c *gin.Context) {
	var req CreateViewRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, resp)
}

// Get handles GET /api/v1/views/:id.
func (h *Handler) Get(c *gin.Context) {
	resp, err := h.svc.Render(c.Request.Context(), c.Param("id"))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, resp)
}

// Delete handles DELETE /api/v1/views/:id.
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

// Search handles PUT /api/v1/views/:id/search.
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	h.mutate(c, func(cr *query.Criteria) { cr.SetSearchTerm(req.Term) })
}

// ToggleFilter handles POST /api/v1/views/:id/filters/toggle.
func (h *Handler) ToggleFilter(c *gin.Context) {
	var req ToggleFilterRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	h.mutate(c, func(cr *query.Criteria) { cr.ToggleFieldFilterValue(req.Field, req.Value) })
}

// SetFilter handles PUT /api/v1/views/:id/filters.
func (h *Handler) SetFilter(c *gin.Context) {
	var req SetFilterRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	h.mutate(c, func(cr *query.Criteria) { cr.SetFieldFilter(req.Field, req.Values...) })
}

// Sort handles PUT /api/v1/views/:id/sort.
func (h *Handler) Sort(c *gin.Context) {
	var req SortRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	h.mutate(c, func(cr *query.Criteria) { cr.SetSort(req.Field, query.ParseDirection(req.Direction)) })
}

// Page handles PUT /api/v1/views/:id/page.
func (h *Handler) Page(c *gin.Context) {
	var req PageRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	h.mutate(c, func(cr *query.Criteria) { cr.SetPage(req.Page) })
}

// DateRange handles PUT /api/v1/views/:id/date-range.
func (h *Handler) DateRange(c *gin.Context) {
	var req DateRangeRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	h.mutate(c, func(cr *query.Criteria) { cr.SetDateRange(req.Start, req.End) })
}

// Clear handles POST /api/v1/views/:id/clear.
func (h *Handler) Clear(c *gin.Context) {
	h.mutate(c, (*query.Criteria).ClearAll)
}

func (h *Handler) mutate(c *gin.Context, fn func(*query.Criteria)) {
	resp, err := h.svc.Mutate(c.Request.Context(), c.Param("id"), fn)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, resp)
}
