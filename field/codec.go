package field

import (
	"fmt"
	"strings"

	"github.com/arloliu/pesbin/endian"
	"github.com/arloliu/pesbin/errs"
	"github.com/arloliu/pesbin/format"
)

// NullMarker is the substring that subjects a field to the null sentinel rule.
const NullMarker = "null"

// Field widths in bytes.
const (
	IntegerSize     = 2
	FloatSize       = 4
	WideBooleanSize = 2
	ByteBooleanSize = 1
)

// Codec encodes field values with the rules of one archive variant.
//
// Encoding precedence:
//  1. a field whose name contains "null" and whose value is numerically zero is
//     written as the null sentinel, whatever its kind;
//  2. a boolean not in the variant's one-byte set is widened to 2 bytes;
//  3. everything else is written at its natural width: integer 2 bytes, float 4
//     bytes, one-byte boolean 1 byte, null the sentinel.
//
// A Codec is immutable and safe for concurrent use.
type Codec struct {
	desc     format.Descriptor
	engine   endian.EndianEngine
	sentinel []byte
}

// NewCodec creates a codec for the given descriptor.
func NewCodec(desc format.Descriptor) *Codec {
	desc = desc.Clone()

	return &Codec{
		desc:     desc,
		engine:   endian.GetArchiveEngine(),
		sentinel: desc.Sentinel(),
	}
}

// Descriptor returns a copy of the codec's descriptor.
func (c *Codec) Descriptor() format.Descriptor {
	return c.desc.Clone()
}

// Encode returns the encoded bytes of one field.
func (c *Codec) Encode(name string, v Value) ([]byte, error) {
	return c.AppendEncode(nil, name, v)
}

// AppendEncode appends the encoded bytes of one field to dst.
//
// Returns:
//   - []byte: dst with the field appended; dst unchanged on error
//   - error: ErrUnsupportedFieldType for a value without a valid kind
func (c *Codec) AppendEncode(dst []byte, name string, v Value) ([]byte, error) {
	switch v.kind {
	case KindInteger, KindFloat, KindBoolean, KindNull:
	default:
		return dst, fmt.Errorf("%w: field %q has kind %s", errs.ErrUnsupportedFieldType, name, v.kind)
	}

	if strings.Contains(name, NullMarker) && v.IsZero() {
		return append(dst, c.sentinel...), nil
	}

	switch v.kind {
	case KindInteger:
		return c.engine.AppendUint16(dst, uint16(v.bits)), nil //nolint: gosec
	case KindFloat:
		return c.engine.AppendUint32(dst, v.bits), nil
	case KindBoolean:
		if c.desc.IsOneByteBoolean(name) {
			return append(dst, byte(v.bits)), nil
		}

		return c.engine.AppendUint16(dst, uint16(v.bits)), nil //nolint: gosec
	default: // KindNull
		return append(dst, c.sentinel...), nil
	}
}

// EncodedSize returns the number of bytes AppendEncode writes for the field.
func (c *Codec) EncodedSize(name string, v Value) (int, error) {
	switch v.kind {
	case KindInteger, KindFloat, KindBoolean, KindNull:
	default:
		return 0, fmt.Errorf("%w: field %q has kind %s", errs.ErrUnsupportedFieldType, name, v.kind)
	}

	if strings.Contains(name, NullMarker) && v.IsZero() {
		return len(c.sentinel), nil
	}

	switch v.kind {
	case KindInteger:
		return IntegerSize, nil
	case KindFloat:
		return FloatSize, nil
	case KindBoolean:
		return c.BooleanSize(name), nil
	default:
		return len(c.sentinel), nil
	}
}

// BooleanSize returns the stored width of the boolean field name.
func (c *Codec) BooleanSize(name string) int {
	if c.desc.IsOneByteBoolean(name) {
		return ByteBooleanSize
	}

	return WideBooleanSize
}

// EncodeRecords appends every record to dst in order.
//
// On error dst is returned unchanged together with the error of the first field
// that could not be encoded.
func (c *Codec) EncodeRecords(dst []byte, records []Record) ([]byte, error) {
	start := len(dst)
	for _, r := range records {
		var err error
		dst, err = c.AppendEncode(dst, r.Name, r.Value)
		if err != nil {
			return dst[:start], err
		}
	}

	return dst, nil
}
