package query

import (
	"time"

	"golang.org/x/text/language"
)

// FieldType selects the comparison domain used when sorting by a field.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldNumber FieldType = "number"
	FieldDate   FieldType = "date"
	FieldBool   FieldType = "bool"
)

// UnknownStatus is the bucket for records whose status cannot be resolved.
const UnknownStatus = "unknown"

// Derivation computes a categorical field from other fields of a record.
// It must be a pure function of the record and now.
type Derivation struct {
	Field  string
	Type   FieldType
	Derive func(r Record, now time.Time) Value
}

// EntityConfig parameterizes the engine for one entity type.
type EntityConfig struct {
	Name             string
	SearchableFields []string
	// StatusField groups CountsByStatus. Empty disables grouping.
	StatusField string
	// DateField is matched against Criteria.DateRange. Empty disables the range.
	DateField string
	// Fields declares the sortable field set and each field's comparison domain.
	Fields  map[string]FieldType
	Derived []Derivation
	// Locale drives string collation. The zero tag uses the root collation.
	Locale language.Tag
	// Now is sampled once per query pass. Nil means time.Now.
	Now func() time.Time
}

// FieldType returns the comparison domain of field, including derived fields.
func (c *EntityConfig) FieldType(field string) (FieldType, bool) {
	if field == "" {
		return "", false
	}
	for _, d := range c.Derived {
		if d.Field == field {
			if d.Type == "" {
				return FieldString, true
			}
			return d.Type, true
		}
	}
	t, ok := c.Fields[field]
	return t, ok
}

// Resolves reports whether field is declared or derived.
func (c *EntityConfig) Resolves(field string) bool {
	_, ok := c.FieldType(field)
	return ok
}

func (c *EntityConfig) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
