package entity

import (
	"slices"
	"time"

	"golang.org/x/text/language"

	"github.com/Josphat84/myoffice-sub003/internal/domain"
	"github.com/Josphat84/myoffice-sub003/internal/query"
)

// Entity names.
const (
	Personnel   = "personnel"
	Inventory   = "inventory"
	Maintenance = "maintenance"
	Leave       = "leave"
	Safety      = "safety"
	Training    = "training"
	Reports     = "reports"
	Store       = "store"
)

// Options tune the built-in entity set.
type Options struct {
	// PageSize is the default page size of every screen. Zero means query.DefaultPageSize.
	PageSize int
	// CertificationWarning is the due-soon window for training records.
	CertificationWarning time.Duration
	Locale               language.Tag
	// Now overrides the clock used by derivations.
	Now func() time.Time
}

// Registry maps entity names to their definitions.
type Registry struct {
	entities map[string]*Entity
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{entities: make(map[string]*Entity)}
}

// Register adds or replaces e.
func (r *Registry) Register(e *Entity) {
	if _, exists := r.entities[e.Name]; !exists {
		r.order = append(r.order, e.Name)
	}
	r.entities[e.Name] = e
}

// Lookup returns the entity named name or a not-found AppError.
func (r *Registry) Lookup(name string) (*Entity, error) {
	e, ok := r.entities[name]
	if !ok {
		return nil, domain.EntityNotFound(name)
	}
	return e, nil
}

// All returns the entities in registration order.
func (r *Registry) All() []*Entity {
	out := make([]*Entity, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entities[name])
	}
	return out
}

// Names returns the registered entity names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Default builds the registry of every dashboard screen.
func Default(opts Options) *Registry {
	if opts.PageSize < 1 {
		opts.PageSize = query.DefaultPageSize
	}
	if opts.CertificationWarning <= 0 {
		opts.CertificationWarning = DefaultCertificationWarning
	}

	r := NewRegistry()
	for _, e := range builtins(opts) {
		e.Config.Name = e.Name
		e.Config.Locale = opts.Locale
		e.Config.Now = opts.Now
		if e.PageSize == 0 {
			e.PageSize = opts.PageSize
		}
		r.Register(e)
	}
	return r
}

func builtins(opts Options) []*Entity {
	return []*Entity{
		{
			Name:  Personnel,
			Label: "Personnel",
			Config: &query.EntityConfig{
				SearchableFields: []string{"firstName", "lastName", "employeeId", "department", "position", "email"},
				StatusField:      "status",
				DateField:        "hireDate",
				Fields: map[string]query.FieldType{
					"firstName":  query.FieldString,
					"lastName":   query.FieldString,
					"employeeId": query.FieldString,
					"department": query.FieldString,
					"position":   query.FieldString,
					"email":      query.FieldString,
					"status":     query.FieldString,
					"hireDate":   query.FieldDate,
					"salary":     query.FieldNumber,
				},
			},
			DefaultSort: query.Sort{Field: "lastName", Direction: query.Ascending},
			Columns:     []string{"id", "employeeId", "firstName", "lastName", "department", "position", "email", "status", "hireDate"},
		},
		{
			Name:  Inventory,
			Label: "Inventory",
			Config: &query.EntityConfig{
				SearchableFields: []string{"name", "sku", "description"},
				StatusField:      "status",
				DateField:        "lastRestocked",
				Fields: map[string]query.FieldType{
					"name":          query.FieldString,
					"sku":           query.FieldString,
					"category":      query.FieldString,
					"location":      query.FieldString,
					"currentStock":  query.FieldNumber,
					"minStock":      query.FieldNumber,
					"unitPrice":     query.FieldNumber,
					"lastRestocked": query.FieldDate,
				},
				Derived: []query.Derivation{{Field: "status", Type: query.FieldString, Derive: StockStatus}},
			},
			DefaultSort: query.Sort{Field: "name", Direction: query.Ascending},
			Columns:     []string{"id", "sku", "name", "category", "location", "currentStock", "minStock", "unitPrice", "status", "lastRestocked"},
		},
		{
			Name:  Maintenance,
			Label: "Maintenance",
			Config: &query.EntityConfig{
				SearchableFields: []string{"equipment", "description", "assignedTo", "location"},
				StatusField:      "status",
				DateField:        "scheduledDate",
				Fields: map[string]query.FieldType{
					"equipment":     query.FieldString,
					"assignedTo":    query.FieldString,
					"location":      query.FieldString,
					"type":          query.FieldString,
					"status":        query.FieldString,
					"scheduledDate": query.FieldDate,
					"estimatedCost": query.FieldNumber,
				},
				Derived: []query.Derivation{{Field: "priority", Type: query.FieldString, Derive: MaintenancePriority}},
			},
			DefaultSort: query.Sort{Field: "scheduledDate", Direction: query.Ascending},
			Columns:     []string{"id", "equipment", "type", "assignedTo", "location", "status", "priority", "scheduledDate", "estimatedCost"},
		},
		{
			Name:  Leave,
			Label: "Leave",
			Config: &query.EntityConfig{
				SearchableFields: []string{"employeeName", "leaveType", "reason"},
				StatusField:      "status",
				DateField:        "startDate",
				Fields: map[string]query.FieldType{
					"employeeName": query.FieldString,
					"leaveType":    query.FieldString,
					"status":       query.FieldString,
					"startDate":    query.FieldDate,
					"endDate":      query.FieldDate,
					"days":         query.FieldNumber,
				},
			},
			DefaultSort: query.Sort{Field: "startDate", Direction: query.Descending},
			Columns:     []string{"id", "employeeName", "leaveType", "startDate", "endDate", "days", "status", "reason"},
		},
		{
			Name:  Safety,
			Label: "Safety",
			Config: &query.EntityConfig{
				SearchableFields: []string{"title", "description", "location", "reportedBy"},
				StatusField:      "status",
				DateField:        "incidentDate",
				Fields: map[string]query.FieldType{
					"title":        query.FieldString,
					"location":     query.FieldString,
					"reportedBy":   query.FieldString,
					"severity":     query.FieldString,
					"status":       query.FieldString,
					"incidentDate": query.FieldDate,
					"lostDays":     query.FieldNumber,
				},
			},
			DefaultSort: query.Sort{Field: "incidentDate", Direction: query.Descending},
			Columns:     []string{"id", "title", "severity", "location", "reportedBy", "status", "incidentDate", "lostDays"},
		},
		{
			Name:  Training,
			Label: "Training",
			Config: &query.EntityConfig{
				SearchableFields: []string{"employeeName", "certification", "provider"},
				StatusField:      "status",
				DateField:        "expiryDate",
				Fields: map[string]query.FieldType{
					"employeeName":  query.FieldString,
					"certification": query.FieldString,
					"provider":      query.FieldString,
					"issueDate":     query.FieldDate,
					"expiryDate":    query.FieldDate,
				},
				Derived: []query.Derivation{{Field: "status", Type: query.FieldString, Derive: CertificationStatus(opts.CertificationWarning)}},
			},
			DefaultSort: query.Sort{Field: "expiryDate", Direction: query.Ascending},
			Columns:     []string{"id", "employeeName", "certification", "provider", "issueDate", "expiryDate", "status"},
		},
		{
			Name:  Reports,
			Label: "Reports",
			Config: &query.EntityConfig{
				SearchableFields: []string{"title", "author", "category", "summary"},
				StatusField:      "status",
				DateField:        "createdAt",
				Fields: map[string]query.FieldType{
					"title":     query.FieldString,
					"author":    query.FieldString,
					"category":  query.FieldString,
					"status":    query.FieldString,
					"createdAt": query.FieldDate,
				},
			},
			DefaultSort: query.Sort{Field: "createdAt", Direction: query.Descending},
			Columns:     []string{"id", "title", "author", "category", "status", "createdAt"},
		},
		{
			Name:  Store,
			Label: "Store",
			Config: &query.EntityConfig{
				SearchableFields: []string{"name", "category", "description"},
				StatusField:      "category",
				Fields: map[string]query.FieldType{
					"name":     query.FieldString,
					"category": query.FieldString,
					"price":    query.FieldNumber,
					"rating":   query.FieldNumber,
					"inStock":  query.FieldBool,
				},
			},
			DefaultSort: query.Sort{Field: "name", Direction: query.Ascending},
			PageSize:    12,
			Columns:     []string{"id", "name", "category", "price", "rating", "inStock"},
		},
	}
}
