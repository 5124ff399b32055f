// Package export writes query results as CSV or XLSX.
package export

import (
	"encoding/csv"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Josphat84/myoffice-sub003/internal/domain"
	"github.com/Josphat84/myoffice-sub003/internal/query"
)

type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// ParseFormat accepts "csv" and "xlsx"; empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", CSV:
		return CSV, nil
	case XLSX:
		return XLSX, nil
	default:
		return "", domain.NewAppError(domain.CodeValidation, "unsupported export format "+s, nil)
	}
}

func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename names an export of entity taken at t, e.g. "inventory-2024-06-01.csv".
func Filename(entity string, f Format, t time.Time) string {
	return entity + "-" + t.Format("2006-01-02") + "." + string(f)
}

// Columns returns the sorted union of field names across records. It is the
// fallback column set for entities without a declared column order.
func Columns(records []query.Record) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	slices.Sort(cols)
	return cols
}

// Write encodes records in format f. sheet names the XLSX worksheet.
func Write(w io.Writer, f Format, sheet string, columns []string, records []query.Record) error {
	if len(columns) == 0 {
		columns = Columns(records)
	}
	if f == XLSX {
		return WriteXLSX(w, sheet, columns, records)
	}
	return WriteCSV(w, columns, records)
}

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(w io.Writer, columns []string, records []query.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	row := make([]string, len(columns))
	for _, r := range records {
		for i, c := range columns {
			row[i] = r.Get(c).AsString()
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook. Numbers and booleans keep their
// cell types; everything else is written as text.
func WriteXLSX(w io.Writer, sheet string, columns []string, records []query.Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet = sheetName(sheet)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for n, r := range records {
		row := make([]any, len(columns))
		for i, c := range columns {
			row[i] = cellValue(r.Get(c))
		}
		cell, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func cellValue(v query.Value) any {
	switch v.Kind() {
	case query.KindNull:
		return nil
	case query.KindNumber:
		return v.AsNumber()
	case query.KindBool:
		return v.AsBool()
	default:
		return v.AsString()
	}
}

// sheetName trims name to the 31 characters a worksheet name may hold and
// drops the characters Excel rejects.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return -1
		}
		return r
	}, name)
	if name == "" {
		return "Sheet1"
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}
