package query

import (
	"slices"
	"strings"
	"time"
)

// predicate is the per-pass compiled form of the record-level criteria.
type predicate struct {
	term         string
	searchFields []string
	filters      []FieldFilter

	dateField string
	start     time.Time
	end       time.Time
	hasStart  bool
	hasEnd    bool
}

func newPredicate(c *Criteria, cfg *EntityConfig) predicate {
	p := predicate{
		term:         strings.ToLower(c.SearchTerm),
		searchFields: cfg.SearchableFields,
		dateField:    cfg.DateField,
	}
	for _, f := range c.FieldFilters {
		if f.Field != "" && len(f.Values) > 0 {
			p.filters = append(p.filters, f)
		}
	}

	if p.dateField == "" {
		return p
	}
	if t, ok := ParseDate(c.DateRange.Start); ok {
		p.start, p.hasStart = t, true
	}
	if t, ok := ParseDate(c.DateRange.End); ok {
		if isDateOnly(c.DateRange.End) {
			// A bare end date covers that whole day.
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		p.end, p.hasEnd = t, true
	}
	return p
}

// match evaluates search AND field filters AND date range. skipField excludes
// one field filter, which lets status counts ignore their own selection.
func (p *predicate) match(r Record, skipField string) bool {
	return p.matchSearch(r) && p.matchFilters(r, skipField) && p.matchDate(r)
}

func (p *predicate) matchSearch(r Record) bool {
	if p.term == "" {
		return true
	}
	parts := make([]string, len(p.searchFields))
	for i, f := range p.searchFields {
		parts[i] = r.Get(f).AsString()
	}
	return strings.Contains(strings.ToLower(strings.Join(parts, " ")), p.term)
}

func (p *predicate) matchFilters(r Record, skipField string) bool {
	for _, f := range p.filters {
		if f.Field == skipField {
			continue
		}
		if !slices.Contains(f.Values, r.Get(f.Field).AsString()) {
			return false
		}
	}
	return true
}

func (p *predicate) matchDate(r Record) bool {
	if !p.hasStart && !p.hasEnd {
		return true
	}
	t, ok := r.Get(p.dateField).AsDate()
	if !ok {
		return false
	}
	if p.hasStart && t.Before(p.start) {
		return false
	}
	if p.hasEnd && t.After(p.end) {
		return false
	}
	return true
}
