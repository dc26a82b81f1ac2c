package field

import (
	"fmt"
	"strings"

	"github.com/arloliu/pesbin/errs"
)

// Decoder reads consecutive fields from a byte range of the archive.
//
// It applies the codec's rules in reverse so that decoding and re-encoding an
// unedited field yields the original bytes:
//   - an integer field whose name contains "null" and whose bytes are the null
//     sentinel decodes to Null;
//   - a boolean field reads 1 or 2 bytes depending on the one-byte set;
//   - a float keeps its raw bits.
type Decoder struct {
	codec *Codec
	buf   []byte
	pos   int
	end   int
}

// NewDecoder returns a decoder over buf[start:end].
//
// Returns:
//   - *Decoder: decoder positioned at start
//   - error: ErrSectionTruncated if the range is outside buf
func (c *Codec) NewDecoder(buf []byte, start, end int) (*Decoder, error) {
	if start < 0 || end < start || end > len(buf) {
		return nil, fmt.Errorf("%w: range [%d, %d) outside buffer of %d bytes",
			errs.ErrSectionTruncated, start, end, len(buf))
	}

	return &Decoder{codec: c, buf: buf, pos: start, end: end}, nil
}

// Pos returns the absolute position of the next read.
func (d *Decoder) Pos() int {
	return d.pos
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return d.end - d.pos
}

func (d *Decoder) take(name string, n int) ([]byte, error) {
	if d.pos+n > d.end {
		return nil, fmt.Errorf("%w: field %q needs %d bytes at %d, %d left",
			errs.ErrSectionTruncated, name, n, d.pos, d.end-d.pos)
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n

	return b, nil
}

// Integer reads a 2-byte integer field.
func (d *Decoder) Integer(name string) (Value, error) {
	if strings.Contains(name, NullMarker) && d.Remaining() >= len(d.codec.sentinel) &&
		d.codec.desc.IsSentinel(d.buf[d.pos:d.end]) {
		d.pos += len(d.codec.sentinel)
		return Null(), nil
	}

	b, err := d.take(name, IntegerSize)
	if err != nil {
		return Value{}, err
	}

	return Int(d.codec.engine.Uint16(b)), nil
}

// Float reads a 4-byte float field.
func (d *Decoder) Float(name string) (Value, error) {
	b, err := d.take(name, FloatSize)
	if err != nil {
		return Value{}, err
	}

	return FloatBits(d.codec.engine.Uint32(b)), nil
}

// Boolean reads a boolean field of 1 or 2 bytes.
func (d *Decoder) Boolean(name string) (Value, error) {
	size := d.codec.BooleanSize(name)
	b, err := d.take(name, size)
	if err != nil {
		return Value{}, err
	}

	if size == ByteBooleanSize {
		return Bool(b[0] != 0), nil
	}

	return Bool(d.codec.engine.Uint16(b) != 0), nil
}

// Read reads a field of kind k.
func (d *Decoder) Read(name string, k Kind) (Value, error) {
	switch k {
	case KindInteger:
		return d.Integer(name)
	case KindFloat:
		return d.Float(name)
	case KindBoolean:
		return d.Boolean(name)
	default:
		return Value{}, fmt.Errorf("%w: cannot decode field %q as %s", errs.ErrUnsupportedFieldType, name, k)
	}
}

// Skip advances past n bytes that belong to no field.
func (d *Decoder) Skip(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative skip %d", errs.ErrSectionTruncated, n)
	}
	_, err := d.take("skip", n)

	return err
}
