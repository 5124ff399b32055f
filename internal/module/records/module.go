package records

import "github.com/gin-gonic/gin"

// Module exposes entity metadata, record CRUD, listing and export.
type Module struct {
	handler *Handler
}

// NewModule panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("records.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/entities", m.handler.Entities)
	api.GET("/entities/:entity", m.handler.Entity)
	api.GET("/entities/:entity/export", m.handler.Export)

	records := api.Group("/entities/:entity/records")
	records.GET("", m.handler.List)
	records.POST("", m.handler.Create)
	records.PUT("", m.handler.Replace)
	records.GET("/:id", m.handler.Get)
	records.PUT("/:id", m.handler.Update)
	records.DELETE("/:id", m.handler.Delete)
}
