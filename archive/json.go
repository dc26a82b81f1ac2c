package archive

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/arloliu/pesbin/errs"
	"github.com/arloliu/pesbin/field"
	"github.com/arloliu/pesbin/section"
)

// ExportIndent is the indentation of exported section JSON.
const ExportIndent = "    "

// DefaultExportName returns the file name suggested for a section export: the
// section's base name with a .json extension ("subConcept01" -> "subConcept.json").
func DefaultExportName(sectionName string) string {
	base := section.BaseName(sectionName)
	if base == "" {
		base = sectionName
	}

	return base + ".json"
}

// ExportJSON writes the open section as {"<section>": {"<field>": value, ...}}
// with fields in storage order. NaN and infinite floats are written as null.
//
// Returns:
//   - error: ErrNoOpenSection, or ErrReadOnlyField for an unmapped section
func (d *Document) ExportJSON(w io.Writer) error {
	if err := d.requireOpen(); err != nil {
		return err
	}
	if len(d.records) == 1 && d.records[0].Placeholder {
		return fmt.Errorf("%w: section %q has no field layout", errs.ErrReadOnlyField, d.current.Name)
	}

	var compact bytes.Buffer
	if err := writeSectionObject(&compact, d.current.Name, d.records); err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", ExportIndent); err != nil {
		return err
	}
	out.WriteByte('\n')

	_, err := out.WriteTo(w)

	return err
}

func writeSectionObject(b *bytes.Buffer, name string, records []field.Record) error {
	key, err := json.Marshal(name)
	if err != nil {
		return err
	}

	b.WriteByte('{')
	b.Write(key)
	b.WriteString(":{")
	for i, rec := range records {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(rec.Name)
		if err != nil {
			return err
		}
		b.Write(k)
		b.WriteByte(':')
		b.WriteString(jsonValue(rec.Value))
	}
	b.WriteString("}}")

	return nil
}

func jsonValue(v field.Value) string {
	switch v.Kind() {
	case field.KindInteger:
		return strconv.FormatUint(uint64(v.Uint16()), 10)
	case field.KindFloat:
		f := float64(v.Float32())
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "null"
		}

		return strconv.FormatFloat(f, 'g', -1, 32)
	case field.KindBoolean:
		return strconv.FormatBool(v.Bool())
	default:
		return "null"
	}
}

// ImportJSON reads a section export and applies it with ImportFields.
//
// The document must hold exactly one section key. JSON numbers are converted to
// the kind of the field they update; fields the section does not have are ignored.
//
// Returns:
//   - string: the imported section name
//   - int: number of fields that changed
//   - error: ErrInvalidImport for malformed documents, ErrUnknownSection
func (d *Document) ImportJSON(r io.Reader) (string, int, error) {
	var top map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&top); err != nil {
		return "", 0, fmt.Errorf("%w: %w", errs.ErrInvalidImport, err)
	}
	if len(top) != 1 {
		return "", 0, fmt.Errorf("%w: expected one section, found %d", errs.ErrInvalidImport, len(top))
	}

	var name string
	var raw json.RawMessage
	for k, v := range top {
		name, raw = k, v
	}

	var values map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&values); err != nil {
		return name, 0, fmt.Errorf("%w: section %q: %w", errs.ErrInvalidImport, name, err)
	}

	if d.state != StateSectionOpen || d.current.Name != name {
		if _, err := d.OpenSection(name); err != nil {
			return name, 0, err
		}
	}

	incoming := field.NewMap()
	for _, rec := range d.records {
		jv, ok := values[rec.Name]
		if !ok || rec.ReadOnly() {
			continue
		}
		v, err := fromJSON(rec, jv)
		if err != nil {
			return name, 0, fmt.Errorf("%w: section %q: %w", errs.ErrInvalidImport, name, err)
		}
		incoming.Set(rec.Name, v)
	}

	n, err := d.ImportFields(name, incoming)

	return name, n, err
}

func fromJSON(rec field.Record, jv any) (field.Value, error) {
	switch x := jv.(type) {
	case nil:
		return field.Null(), nil
	case bool:
		return field.Bool(x), nil
	case json.Number:
		switch rec.Value.Kind() {
		case field.KindInteger, field.KindNull:
			n, err := strconv.ParseUint(x.String(), 10, 16)
			if err != nil {
				return field.Value{}, fmt.Errorf("field %q: %w", rec.Name, err)
			}

			return field.Int(uint16(n)), nil
		case field.KindFloat:
			f, err := strconv.ParseFloat(x.String(), 32)
			if err != nil {
				return field.Value{}, fmt.Errorf("field %q: %w", rec.Name, err)
			}

			return field.Float(float32(f)), nil
		default:
			return field.Value{}, fmt.Errorf("%w: field %q is %s, got number",
				errs.ErrFieldTypeMismatch, rec.Name, rec.Value.Kind())
		}
	default:
		return field.Value{}, fmt.Errorf("field %q: unsupported JSON value %v", rec.Name, jv)
	}
}
