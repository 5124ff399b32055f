package pkg

import (
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Josphat84/myoffice-sub003/internal/domain"
	"github.com/Josphat84/myoffice-sub003/internal/query"
)

const (
	defaultPage = 1
	maxPageSize = 100
)

// reservedParams are query parameters that are not field filters.
var reservedParams = map[string]bool{
	"q":         true,
	"search":    true,
	"page":      true,
	"page_size": true,
	"sort":      true,
	"from":      true,
	"to":        true,
	"format":    true,
}

// validFieldName matches record field names usable as filters.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// ParseListRequest reads search, sort, date window, pagination and field
// filters from the query string. A page size of 0 means the entity default.
// Every non-reserved parameter is a filter; repeating it accepts several values.
func ParseListRequest(c *gin.Context) domain.ListRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if page < 1 {
		page = defaultPage
	}

	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	if pageSize < 0 {
		pageSize = 0
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	search := c.Query("q")
	if search == "" {
		search = c.Query("search")
	}

	filters := make(map[string][]string)
	for key, values := range c.Request.URL.Query() {
		if reservedParams[key] || !validFieldName.MatchString(key) {
			continue
		}
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				filters[key] = append(filters[key], v)
			}
		}
	}

	return domain.ListRequest{
		Search:   search,
		Sort:     strings.TrimSpace(c.Query("sort")),
		Page:     page,
		PageSize: pageSize,
		From:     strings.TrimSpace(c.Query("from")),
		To:       strings.TrimSpace(c.Query("to")),
		Filters:  filters,
	}
}

// NewCriteria turns req into engine criteria. defaultSort applies when req has
// no sort and defaultPageSize when req has no page size.
func NewCriteria(req domain.ListRequest, defaultPageSize int, defaultSort query.Sort) *query.Criteria {
	size := req.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	c := query.NewCriteria(size, defaultSort)
	if req.Sort != "" {
		s := query.ParseSort(req.Sort)
		c.SetSort(s.Field, s.Direction)
	}
	c.SetSearchTerm(req.Search)
	c.SetDateRange(req.From, req.To)
	for _, field := range slices.Sorted(maps.Keys(req.Filters)) {
		c.SetFieldFilter(field, req.Filters[field]...)
	}
	c.SetPage(req.Page)
	return c
}
