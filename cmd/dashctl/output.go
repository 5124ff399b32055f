package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/Josphat84/myoffice-sub003/internal/export"
	"github.com/Josphat84/myoffice-sub003/internal/module/records"
)

// maxCell truncates wide values so the table stays readable.
const maxCell = 40

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeTable prints one page of records followed by the page summary and the
// per-status counts. columns falls back to the union of record fields.
func writeTable(out io.Writer, columns []string, resp *records.ListResponse) error {
	if len(columns) == 0 {
		columns = export.Columns(resp.Records)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = strings.ToUpper(c)
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, r := range resp.Records {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = truncate(r.Get(c).AsString())
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nPage %d of %d (%d matched, %d per page)\n", resp.Page, resp.TotalPages, resp.TotalMatched, resp.PageSize)
	if len(resp.CountsByStatus) > 0 {
		keys := make([]string, 0, len(resp.CountsByStatus))
		for k := range resp.CountsByStatus {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%d", k, resp.CountsByStatus[k])
		}
		fmt.Fprintf(out, "Status: %s\n", strings.Join(parts, " "))
	}
	return nil
}

func truncate(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > maxCell {
		return string(r[:maxCell-3]) + "..."
	}
	return s
}
