package mapper

import (
	"fmt"

	"github.com/arloliu/pesbin/errs"
	"github.com/arloliu/pesbin/field"
)

// FieldLayout declares one field of a section.
//
// Fields are written back consecutively, so a layout cannot skip bytes: gaps are
// declared as padding fields ("padding00"), which are decoded and re-encoded
// unchanged.
type FieldLayout struct {
	Name string `yaml:"name"`
	// Type is "int", "float" or "bool".
	Type string `yaml:"type"`
	// Count repeats the field; the copies are named <Name>00, <Name>01, ...
	Count int `yaml:"count,omitempty"`
}

// SectionLayout declares the fields of a family of sections.
type SectionLayout struct {
	// Pattern selects the sections (see Registry).
	Pattern string `yaml:"pattern"`
	// Start is the number of bytes between the section offset and the first field.
	// It must match the write shift of the selected sections: 16 for subConcept,
	// 0 otherwise.
	Start int `yaml:"start,omitempty"`
	// Fields in storage order.
	Fields []FieldLayout `yaml:"fields"`
}

type layoutStep struct {
	name string
	kind field.Kind
}

// LayoutMapper decodes sections from a SectionLayout.
type LayoutMapper struct {
	pattern string
	start   int
	steps   []layoutStep
}

var _ FieldMapper = (*LayoutMapper)(nil)

// NewLayoutMapper compiles a section layout.
//
// Returns:
//   - *LayoutMapper: compiled mapper
//   - error: ErrInvalidLayout for unknown types, bad counts or duplicate field names
func NewLayoutMapper(l SectionLayout) (*LayoutMapper, error) {
	if l.Start < 0 {
		return nil, fmt.Errorf("%w: section %q has negative start %d", errs.ErrInvalidLayout, l.Pattern, l.Start)
	}

	m := &LayoutMapper{pattern: l.Pattern, start: l.Start}
	seen := make(map[string]struct{}, len(l.Fields))

	for i, f := range l.Fields {
		kind, err := field.ParseKind(f.Type)
		if err != nil || kind == field.KindNull {
			return nil, fmt.Errorf("%w: section %q field %q: unknown type %q",
				errs.ErrInvalidLayout, l.Pattern, f.Name, f.Type)
		}
		if f.Name == "" {
			return nil, fmt.Errorf("%w: section %q entry %d has no name", errs.ErrInvalidLayout, l.Pattern, i)
		}
		if f.Count < 0 {
			return nil, fmt.Errorf("%w: section %q field %q: negative count", errs.ErrInvalidLayout, l.Pattern, f.Name)
		}

		for _, name := range expand(f) {
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("%w: section %q declares field %q twice", errs.ErrInvalidLayout, l.Pattern, name)
			}
			seen[name] = struct{}{}
			m.steps = append(m.steps, layoutStep{name: name, kind: kind})
		}
	}

	return m, nil
}

func expand(f FieldLayout) []string {
	if f.Count <= 1 {
		return []string{f.Name}
	}

	names := make([]string, f.Count)
	for i := range names {
		names[i] = fmt.Sprintf("%s%02d", f.Name, i)
	}

	return names
}

// Pattern returns the section pattern the layout was declared for.
func (m *LayoutMapper) Pattern() string {
	return m.pattern
}

// Start returns the number of bytes skipped before the first field.
func (m *LayoutMapper) Start() int {
	return m.start
}

// FieldCount returns the number of fields Decode produces.
func (m *LayoutMapper) FieldCount() int {
	return len(m.steps)
}

// Decode implements FieldMapper.
func (m *LayoutMapper) Decode(codec *field.Codec, buf []byte, offset, length int) (*field.Map, error) {
	dec, err := codec.NewDecoder(buf, offset, offset+length)
	if err != nil {
		return nil, err
	}
	if err := dec.Skip(m.start); err != nil {
		return nil, err
	}

	out := field.NewMap()
	for _, s := range m.steps {
		v, err := dec.Read(s.name, s.kind)
		if err != nil {
			return nil, err
		}
		out.Set(s.name, v)
	}

	return out, nil
}
