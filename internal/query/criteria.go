package query

import (
	"slices"
	"strings"
)

// DefaultPageSize is used when a Criteria carries a non-positive page size.
const DefaultPageSize = 10

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection reads "asc"/"desc" (and the long forms) case-insensitively.
// Anything else is ascending.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desc", "descending":
		return Descending
	default:
		return Ascending
	}
}

// Sort is the single active sort key.
type Sort struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// ParseSort reads "field:dir" or "-field" (descending). An empty string yields
// the zero Sort, which keeps collection order.
func ParseSort(s string) Sort {
	s = strings.TrimSpace(s)
	if s == "" {
		return Sort{}
	}
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		return Sort{Field: strings.TrimSpace(rest), Direction: Descending}
	}
	field, dir, _ := strings.Cut(s, ":")
	return Sort{Field: strings.TrimSpace(field), Direction: ParseDirection(dir)}
}

// String renders the sort as "field:dir".
func (s Sort) String() string {
	if s.Field == "" {
		return ""
	}
	dir := s.Direction
	if dir == "" {
		dir = Ascending
	}
	return s.Field + ":" + string(dir)
}

// DateRange is an inclusive window over an entity's date field. Empty bounds
// do not constrain their side.
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// IsZero reports whether neither bound is set.
func (d DateRange) IsZero() bool {
	return strings.TrimSpace(d.Start) == "" && strings.TrimSpace(d.End) == ""
}

// FieldFilter is the accepted-value set of one field. Values keep the order in
// which they were selected.
type FieldFilter struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

// Criteria is the full query state of one screen.
type Criteria struct {
	SearchTerm   string        `json:"search_term"`
	FieldFilters []FieldFilter `json:"field_filters"`
	Sort         Sort          `json:"sort"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
	DateRange    DateRange     `json:"date_range"`

	defaultSort Sort
}

// NewCriteria returns the mount-time state of a screen.
func NewCriteria(pageSize int, defaultSort Sort) *Criteria {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Criteria{
		FieldFilters: []FieldFilter{},
		Sort:         defaultSort,
		Page:         1,
		PageSize:     pageSize,
		defaultSort:  defaultSort,
	}
}

// SetSearchTerm replaces the free-text term.
func (c *Criteria) SetSearchTerm(term string) {
	c.SearchTerm = term
	c.Page = 1
}

// ToggleFieldFilterValue adds value to field's accepted set, or removes it if
// already present. An emptied set is dropped.
func (c *Criteria) ToggleFieldFilterValue(field, value string) {
	defer c.resetPage()

	for i := range c.FieldFilters {
		f := &c.FieldFilters[i]
		if f.Field != field {
			continue
		}
		if idx := slices.Index(f.Values, value); idx >= 0 {
			f.Values = slices.Delete(f.Values, idx, idx+1)
			if len(f.Values) == 0 {
				c.FieldFilters = slices.Delete(c.FieldFilters, i, i+1)
			}
			return
		}
		f.Values = append(f.Values, value)
		return
	}
	c.FieldFilters = append(c.FieldFilters, FieldFilter{Field: field, Values: []string{value}})
}

// SetFieldFilter replaces field's accepted set. No values clears the filter.
func (c *Criteria) SetFieldFilter(field string, values ...string) {
	defer c.resetPage()

	idx := slices.IndexFunc(c.FieldFilters, func(f FieldFilter) bool { return f.Field == field })
	values = dedupe(values)
	switch {
	case len(values) == 0 && idx >= 0:
		c.FieldFilters = slices.Delete(c.FieldFilters, idx, idx+1)
	case len(values) == 0:
		// nothing to clear
	case idx >= 0:
		c.FieldFilters[idx].Values = values
	default:
		c.FieldFilters = append(c.FieldFilters, FieldFilter{Field: field, Values: values})
	}
}

// SetSort replaces the active sort key.
func (c *Criteria) SetSort(field string, dir Direction) {
	if dir != Descending {
		dir = Ascending
	}
	c.Sort = Sort{Field: field, Direction: dir}
	c.Page = 1
}

// SetPage moves to page n. It is the only mutator that keeps the position.
func (c *Criteria) SetPage(n int) {
	c.Page = n
}

// SetDateRange replaces the date window.
func (c *Criteria) SetDateRange(start, end string) {
	c.DateRange = DateRange{Start: start, End: end}
	c.Page = 1
}

// ClearAll drops search, filters and date range and restores the mount-time sort.
func (c *Criteria) ClearAll() {
	c.SearchTerm = ""
	c.FieldFilters = []FieldFilter{}
	c.DateRange = DateRange{}
	c.Sort = c.defaultSort
	c.Page = 1
}

// Clone returns a deep copy of c.
func (c *Criteria) Clone() *Criteria {
	out := *c
	out.FieldFilters = make([]FieldFilter, len(c.FieldFilters))
	for i, f := range c.FieldFilters {
		out.FieldFilters[i] = FieldFilter{Field: f.Field, Values: slices.Clone(f.Values)}
	}
	return &out
}

func (c *Criteria) resetPage() { c.Page = 1 }

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
