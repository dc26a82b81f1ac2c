package field

import (
	"strings"

	"github.com/elliotchance/orderedmap/v3"
)

// PaddingMarker marks fields that only fill space between real settings.
const PaddingMarker = "padding"

// Map is an insertion-ordered field name to value mapping, as produced by a mapper.
type Map = orderedmap.OrderedMap[string, Value]

// NewMap returns an empty Map.
func NewMap() *Map {
	return orderedmap.NewOrderedMap[string, Value]()
}

// Record is one field of an open section.
type Record struct {
	Name  string
	Value Value
	// Padding is set for fields whose name contains "padding". They are re-encoded
	// unchanged but never edited.
	Padding bool
	// Placeholder is set for the single synthetic record of a section that has no mapper.
	Placeholder bool
}

// ReadOnly reports whether the record must not be edited.
func (r Record) ReadOnly() bool {
	return r.Padding || r.Placeholder
}

// IsPadding reports whether a field name denotes padding.
func IsPadding(name string) bool {
	return strings.Contains(name, PaddingMarker)
}

// RecordsFromMap converts a decoded field map into records, keeping its order.
func RecordsFromMap(m *Map) []Record {
	out := make([]Record, 0, m.Len())
	for name, v := range m.AllFromFront() {
		out = append(out, Record{Name: name, Value: v, Padding: IsPadding(name)})
	}

	return out
}

// CloneRecords returns a copy of records.
func CloneRecords(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	copy(out, records)

	return out
}
