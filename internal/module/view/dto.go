package view

import (
	"time"

	"github.com/Josphat84/myoffice-sub003/internal/query"
)

// CreateViewRequest mounts a screen. PageSize 0 uses the entity default.
type CreateViewRequest struct {
	Entity   string `json:"entity" binding:"required"`
	PageSize int    `json:"page_size" binding:"omitempty,min=1,max=100"`
}

type SearchRequest struct {
	Term string `json:"term" binding:"max=200"`
}

type ToggleFilterRequest struct {
	Field string `json:"field" binding:"required"`
	// Value may be empty; "" matches records without the field.
	Value string `json:"value"`
}

// SetFilterRequest replaces a field's accepted set; an empty Values clears it.
type SetFilterRequest struct {
	Field  string   `json:"field" binding:"required"`
	Values []string `json:"values"`
}

type SortRequest struct {
	Field     string `json:"field"`
	Direction string `json:"direction" binding:"omitempty,oneof=asc desc"`
}

type PageRequest struct {
	Page int `json:"page" binding:"required,min=1"`
}

type DateRangeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Response is a view's criteria together with the page they select.
type Response struct {
	ID        string          `json:"id"`
	Entity    string          `json:"entity"`
	Criteria  *query.Criteria `json:"criteria"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	query.Result
}
