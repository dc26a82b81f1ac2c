package archive

import (
	"fmt"
	"math"
	"strings"

	"github.com/arloliu/pesbin/errs"
	"github.com/arloliu/pesbin/field"
)

// canonicalNaN is written when a float field is cleared to null.
const canonicalNaN = 0x7FC00000

// Field returns the named field of the open section.
func (d *Document) Field(name string) (field.Record, error) {
	if err := d.requireOpen(); err != nil {
		return field.Record{}, err
	}

	i := d.fieldIndex(name)
	if i < 0 {
		return field.Record{}, fmt.Errorf("%w: %q in section %q", errs.ErrUnknownField, name, d.current.Name)
	}

	return d.records[i], nil
}

// SetField changes a field of the open section. The change reaches the archive
// bytes when the section is flushed.
//
// Returns:
//   - error: ErrNoOpenSection, ErrUnknownField, ErrReadOnlyField for padding and
//     placeholder records and for the field of a single-field section,
//     ErrFieldTypeMismatch when v does not fit the field
func (d *Document) SetField(name string, v field.Value) error {
	if err := d.requireOpen(); err != nil {
		return err
	}

	i := d.fieldIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %q in section %q", errs.ErrUnknownField, name, d.current.Name)
	}

	rec := d.records[i]
	if rec.ReadOnly() {
		return fmt.Errorf("%w: %q", errs.ErrReadOnlyField, name)
	}
	// A single-field section is never flushed, so its field cannot change.
	if len(d.records) <= 1 {
		return fmt.Errorf("%w: %q is the only field of section %q", errs.ErrReadOnlyField, name, d.current.Name)
	}

	nv, err := coerce(rec, v)
	if err != nil {
		return err
	}
	if !nv.Equal(rec.Value) {
		d.records[i].Value = nv
		d.dirty = true
	}

	return nil
}

// ImportFields applies a partial update to a section, switching to it first
// when another section is open.
//
// Only fields present in both the section and incoming are considered; padding
// fields and unchanged values are skipped. Every value is checked before any
// field is modified, so a rejected import changes nothing.
//
// Returns:
//   - int: number of fields that changed
//   - error: ErrUnknownSection, or ErrFieldTypeMismatch wrapped in ErrInvalidImport
func (d *Document) ImportFields(sectionName string, incoming *field.Map) (int, error) {
	if d.state != StateSectionOpen || d.current.Name != sectionName {
		if _, err := d.OpenSection(sectionName); err != nil {
			return 0, err
		}
	}

	if len(d.records) <= 1 {
		return 0, nil
	}

	type change struct {
		idx   int
		value field.Value
	}
	changes := make([]change, 0, incoming.Len())

	for i, rec := range d.records {
		if rec.ReadOnly() {
			continue
		}
		v, ok := incoming.Get(rec.Name)
		if !ok {
			continue
		}

		nv, err := coerce(rec, v)
		if err != nil {
			return 0, fmt.Errorf("%w: section %q: %w", errs.ErrInvalidImport, sectionName, err)
		}
		if !nv.Equal(rec.Value) {
			changes = append(changes, change{idx: i, value: nv})
		}
	}

	for _, c := range changes {
		d.records[c.idx].Value = c.value
	}
	if len(changes) > 0 {
		d.dirty = true
	}
	d.log.Debug("fields imported", "section", sectionName, "changed", len(changes))

	return len(changes), nil
}

// Find returns the first field of the open section whose name contains substr,
// ignoring case, and its position.
func (d *Document) Find(substr string) (field.Record, int, bool) {
	needle := strings.ToLower(strings.TrimSpace(substr))
	if d.state != StateSectionOpen || needle == "" {
		return field.Record{}, -1, false
	}

	for i, rec := range d.records {
		if strings.Contains(strings.ToLower(rec.Name), needle) {
			return rec, i, true
		}
	}

	return field.Record{}, -1, false
}

func (d *Document) fieldIndex(name string) int {
	for i, rec := range d.records {
		if rec.Name == name {
			return i
		}
	}

	return -1
}

// coerce checks that v may replace the value of rec and returns the value to store.
//
// Null is accepted by integer fields as is. A float field cleared to null keeps
// a NaN or infinite value unchanged and otherwise becomes NaN, which keeps the
// field at its 4-byte width. Fields decoded as null are integer fields.
func coerce(rec field.Record, v field.Value) (field.Value, error) {
	want := rec.Value.Kind()
	if want == field.KindNull {
		want = field.KindInteger
	}

	switch v.Kind() {
	case field.KindInvalid:
		return field.Value{}, fmt.Errorf("%w: field %q", errs.ErrUnsupportedFieldType, rec.Name)
	case field.KindNull:
		switch want {
		case field.KindInteger:
			return v, nil
		case field.KindFloat:
			f := float64(rec.Value.Float32())
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return rec.Value, nil
			}

			return field.FloatBits(canonicalNaN), nil
		}
	case want:
		return v, nil
	}

	return field.Value{}, fmt.Errorf("%w: field %q is %s, got %s", errs.ErrFieldTypeMismatch, rec.Name, want, v.Kind())
}
