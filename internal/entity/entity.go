// Package entity registers the dashboard entity types and the configuration
// the query engine needs for each of them.
package entity

import (
	"github.com/Josphat84/myoffice-sub003/internal/query"
)

// Entity describes one dashboard screen's record type.
type Entity struct {
	Name        string
	Label       string
	Config      *query.EntityConfig
	DefaultSort query.Sort
	PageSize    int
	// Columns is the export column order.
	Columns []string
}

// NewCriteria returns the criteria a freshly mounted screen starts with.
// pageSize overrides the entity default when positive.
func (e *Entity) NewCriteria(pageSize int) *query.Criteria {
	if pageSize < 1 {
		pageSize = e.PageSize
	}
	return query.NewCriteria(pageSize, e.DefaultSort)
}

// Info is the JSON description of an entity.
type Info struct {
	Name             string                     `json:"name"`
	Label            string                     `json:"label"`
	SearchableFields []string                   `json:"searchable_fields"`
	StatusField      string                     `json:"status_field,omitempty"`
	DateField        string                     `json:"date_field,omitempty"`
	Fields           map[string]query.FieldType `json:"fields"`
	DerivedFields    []string                   `json:"derived_fields,omitempty"`
	DefaultSort      string                     `json:"default_sort,omitempty"`
	PageSize         int                        `json:"page_size"`
	Columns          []string                   `json:"columns"`
	// ReadOnly is set by callers that know the entity's record source.
	ReadOnly bool `json:"read_only"`
}

// Info summarizes e for listing endpoints.
func (e *Entity) Info() Info {
	fields := make(map[string]query.FieldType, len(e.Config.Fields)+len(e.Config.Derived))
	for k, v := range e.Config.Fields {
		fields[k] = v
	}
	var derived []string
	for _, d := range e.Config.Derived {
		typ, _ := e.Config.FieldType(d.Field)
		fields[d.Field] = typ
		derived = append(derived, d.Field)
	}
	info := Info{
		Name:             e.Name,
		Label:            e.Label,
		SearchableFields: e.Config.SearchableFields,
		StatusField:      e.Config.StatusField,
		DateField:        e.Config.DateField,
		Fields:           fields,
		DerivedFields:    derived,
		PageSize:         e.PageSize,
		Columns:          e.Columns,
	}
	if e.DefaultSort.Field != "" {
		info.DefaultSort = e.DefaultSort.String()
	}
	return info
}
