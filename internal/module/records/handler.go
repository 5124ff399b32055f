package records

import (
	"github.com/gin-gonic/gin"

	"github.com/Josphat84/myoffice-sub003/internal/domain"
	"github.com/Josphat84/myoffice-sub003/internal/export"
	"github.com/Josphat84/myoffice-sub003/internal/pkg"
	"github.com/Josphat84/myoffice-sub003/internal/query"
)

// Handler serves the records REST API.
type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Entities handles GET /api/v1/entities.
func (h *Handler) Entities(c *gin.Context) {
	pkg.Success(c, h.svc.Entities())
}

// Entity handles GET /api/v1/entities/:entity.
func (h *Handler) Entity(c *gin.Context) {
	info, err := h.svc.Entity(c.Param("entity"))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, info)
}

// List handles GET /api/v1/entities/:entity/records.
func (h *Handler) List(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context(), c.Param("entity"), pkg.ParseListRequest(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, res)
}

// Get handles GET /api/v1/entities/:entity/records/:id.
func (h *Handler) Get(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), c.Param("entity"), c.Param("id"))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, rec)
}

// Create handles POST /api/v1/entities/:entity/records.
func (h *Handler) Create(c *gin.Context) {
	rec, ok := bindRecord(c)
	if !ok {
		return
	}
	created, err := h.svc.Create(c.Request.Context(), c.Param("entity"), rec)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, created)
}

// Update handles PUT /api/v1/entities/:entity/records/:id.
func (h *Handler) Update(c *gin.Context) {
	rec, ok := bindRecord(c)
	if !ok {
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), c.Param("entity"), c.Param("id"), rec)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, updated)
}

// Delete handles DELETE /api/v1/entities/:entity/records/:id.
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("entity"), c.Param("id")); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

// Replace handles PUT /api/v1/entities/:entity/records with a JSON array body.
func (h *Handler) Replace(c *gin.Context) {
	var recs []query.Record
	if err := c.ShouldBindJSON(&recs); err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "request body must be a JSON array of objects", err))
		return
	}
	n, err := h.svc.Replace(c.Request.Context(), c.Param("entity"), recs)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, ReplaceResponse{Entity: c.Param("entity"), Count: n})
}

// Export handles GET /api/v1/entities/:entity/export.
func (h *Handler) Export(c *gin.Context) {
	var req ExportRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	file, err := h.svc.Export(c.Request.Context(), c.Param("entity"), pkg.ParseListRequest(c), format)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// bindRecord decodes a JSON object body. Anything else is a 400.
func bindRecord(c *gin.Context) (query.Record, bool) {
	var rec query.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "request body must be a JSON object", err))
		return nil, false
	}
	return rec, true
}
