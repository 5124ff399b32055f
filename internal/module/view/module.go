package view

import "github.com/gin-gonic/gin"

// Module exposes server-side screen state: mount a view, change its criteria
// one step at a time and read back the page it selects.
type Module struct {
	handler *Handler
}

// NewModule panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("view.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	views := api.Group("/views")
	views.POST("", m.handler.Create)
	views.GET("/:id", m.handler.Get)
	views.DELETE("/:id", m.handler.Delete)
	views.PUT("/:id/search", m.handler.Search)
	views.POST("/:id/filters/toggle", m.handler.ToggleFilter)
	views.PUT("/:id/filters", m.handler.SetFilter)
	views.PUT("/:id/sort", m.handler.Sort)
	views.PUT("/:id/page", m.handler.Page)
	views.PUT("/:id/date-range", m.handler.DateRange)
	views.POST("/:id/clear", m.handler.Clear)
}
