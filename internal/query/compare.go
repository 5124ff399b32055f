package query

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
)

type comparator func(a, b Value) int

// sortRecords orders records in place by s. The sort is stable in both
// directions; an unresolvable field leaves the order untouched.
func sortRecords(records []Record, s Sort, cfg *EntityConfig) {
	typ, ok := cfg.FieldType(s.Field)
	if !ok {
		return
	}
	compare := comparatorFor(typ, cfg)
	sign := 1
	if s.Direction == Descending {
		sign = -1
	}
	slices.SortStableFunc(records, func(a, b Record) int {
		return sign * compare(a.Get(s.Field), b.Get(s.Field))
	})
}

func comparatorFor(typ FieldType, cfg *EntityConfig) comparator {
	switch typ {
	case FieldNumber:
		return compareNumbers
	case FieldDate:
		return compareDates
	case FieldBool:
		return compareBools
	default:
		// Collators keep scratch buffers; one per pass, never shared.
		col := collate.New(cfg.Locale)
		return func(a, b Value) int {
			return col.CompareString(a.AsString(), b.AsString())
		}
	}
}

func compareNumbers(a, b Value) int {
	return cmp.Compare(a.AsNumber(), b.AsNumber())
}

// compareDates places missing and unparseable dates before every valid instant.
func compareDates(a, b Value) int {
	ta, okA := a.AsDate()
	tb, okB := b.AsDate()
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}
	return ta.Compare(tb)
}

func compareBools(a, b Value) int {
	x, y := a.AsBool(), b.AsBool()
	switch {
	case x == y:
		return 0
	case !x:
		return -1
	default:
		return 1
	}
}
