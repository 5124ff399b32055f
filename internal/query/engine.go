// Package query is the client-side record query engine shared by every
// dashboard screen: free-text search, multi-select field filters, an optional
// date window, a single stable sort key, pagination and per-status counts over
// an in-memory collection.
//
// The engine is a pure function of (collection, criteria, config). It never
// mutates the collection and never fails: malformed or missing fields degrade
// to "does not match" or to a deterministic sort position.
package query

import "slices"

// Result is the visible page of a query plus the counts the UI renders around it.
type Result struct {
	Records      []Record `json:"records"`
	TotalMatched int      `json:"total_matched"`
	TotalPages   int      `json:"total_pages"`
	Page         int      `json:"page"`
	PageSize     int      `json:"page_size"`
	// CountsByStatus is computed before pagination and without the status
	// field's own filter. Nil when the entity has no status field.
	CountsByStatus map[string]int `json:"counts_by_status,omitempty"`
}

// Query runs the full pipeline and returns the requested page.
func Query(collection []Record, c *Criteria, cfg *EntityConfig) Result {
	c, cfg = normalize(c, cfg)

	view := deriveAll(collection, cfg)
	p := newPredicate(c, cfg)
	matched := filterSorted(view, c, cfg, &p)

	size := c.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	res := Result{
		Records:      pageOf(matched, c.Page, size),
		TotalMatched: len(matched),
		TotalPages:   totalPages(len(matched), size),
		Page:         c.Page,
		PageSize:     size,
	}
	if cfg.StatusField != "" {
		res.CountsByStatus = countByStatus(view, cfg, &p)
	}
	return res
}

// Select returns the whole filtered and sorted sequence, ignoring pagination.
func Select(collection []Record, c *Criteria, cfg *EntityConfig) []Record {
	c, cfg = normalize(c, cfg)

	view := deriveAll(collection, cfg)
	p := newPredicate(c, cfg)
	return filterSorted(view, c, cfg, &p)
}

func normalize(c *Criteria, cfg *EntityConfig) (*Criteria, *EntityConfig) {
	if c == nil {
		c = NewCriteria(DefaultPageSize, Sort{})
	}
	if cfg == nil {
		cfg = &EntityConfig{}
	}
	return c, cfg
}

// deriveAll overlays derived fields on copies of the records. Now is sampled
// once so every record in the pass sees the same instant.
func deriveAll(collection []Record, cfg *EntityConfig) []Record {
	if len(cfg.Derived) == 0 {
		return collection
	}
	now := cfg.now()
	out := make([]Record, len(collection))
	for i, r := range collection {
		v := make(Record, len(r)+len(cfg.Derived))
		for k, val := range r {
			v[k] = val
		}
		for _, d := range cfg.Derived {
			if d.Derive != nil {
				v[d.Field] = d.Derive(r, now)
			}
		}
		out[i] = v
	}
	return out
}

func filterSorted(view []Record, c *Criteria, cfg *EntityConfig, p *predicate) []Record {
	matched := make([]Record, 0, len(view))
	for _, r := range view {
		if p.match(r, "") {
			matched = append(matched, r)
		}
	}
	sortRecords(matched, c.Sort, cfg)
	return matched
}

func countByStatus(view []Record, cfg *EntityConfig, p *predicate) map[string]int {
	counts := make(map[string]int)
	resolvable := cfg.Resolves(cfg.StatusField)
	for _, r := range view {
		if !p.match(r, cfg.StatusField) {
			continue
		}
		key := UnknownStatus
		if resolvable {
			if s := r.Get(cfg.StatusField).AsString(); s != "" {
				key = s
			}
		}
		counts[key]++
	}
	return counts
}

func totalPages(total, size int) int {
	if total == 0 {
		return 0
	}
	return (total-1)/size + 1
}

// pageOf returns page (1-based) of records. Out-of-range pages are empty.
func pageOf(records []Record, page, size int) []Record {
	if page < 1 || page > totalPages(len(records), size) {
		return []Record{}
	}
	start := (page - 1) * size
	end := start + min(size, len(records)-start)
	return slices.Clip(records[start:end])
}
