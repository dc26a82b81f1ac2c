// Package mapper defines how a section's bytes become named fields.
//
// A FieldMapper knows the layout of one family of sections. The archive document
// looks mappers up in a Registry by section name when a section is opened; a
// section without a mapper stays visible but read-only.
//
// The package ships LayoutMapper, a mapper driven by a declarative field list, and
// LayoutSet, which loads such lists for a whole archive variant from YAML.
package mapper

import (
	"github.com/arloliu/pesbin/field"
)

// FieldMapper decodes the fields of a section.
//
// Decode reads buf[offset:offset+length] with codec and returns the fields in
// storage order. The order is the write contract: the document re-encodes the
// fields consecutively in exactly this order.
type FieldMapper interface {
	Decode(codec *field.Codec, buf []byte, offset, length int) (*field.Map, error)
}

// FieldMapperFunc adapts a function to the FieldMapper interface.
type FieldMapperFunc func(codec *field.Codec, buf []byte, offset, length int) (*field.Map, error)

var _ FieldMapper = FieldMapperFunc(nil)

// Decode calls f.
func (f FieldMapperFunc) Decode(codec *field.Codec, buf []byte, offset, length int) (*field.Map, error) {
	return f(codec, buf, offset, length)
}
