package records

import "github.com/Josphat84/myoffice-sub003/internal/query"

// ListResponse is one page of an entity's records plus the criteria that
// produced it, so a client can render its filter controls.
type ListResponse struct {
	Entity   string          `json:"entity"`
	Criteria *query.Criteria `json:"criteria"`
	query.Result
}

// ReplaceResponse reports a bulk collection replacement.
type ReplaceResponse struct {
	Entity string `json:"entity"`
	Count  int    `json:"count"`
}

// ExportRequest is the query string of the export endpoint. Filters, search,
// sort and date window are read with the listing parameters.
type ExportRequest struct {
	Format string `form:"format" json:"format" binding:"omitempty,oneof=csv xlsx"`
}

// ExportFile is a rendered export ready to download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
