package query

import (
	"encoding/json"
	"maps"
)

// Record is one entity instance as a field/value mapping. Absent fields read as null.
type Record map[string]Value

// NewRecord converts a decoded JSON object into a Record.
func NewRecord(m map[string]any) Record {
	r := make(Record, len(m))
	for k, v := range m {
		r[k] = FromAny(v)
	}
	return r
}

// Get returns the value of field, or null when the field is absent.
func (r Record) Get(field string) Value {
	if r == nil {
		return Value{}
	}
	return r[field]
}

// Clone returns a shallow copy of r. Values are immutable so the copy is
// independent for writes.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// Map converts r back to plain Go values.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r))
	for k, v := range r {
		m[k] = v.Any()
	}
	return m
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = NewRecord(raw)
	return nil
}

// DecodeRecords parses a JSON array of objects.
func DecodeRecords(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}
