// Package format describes the archive variants pesbin understands.
//
// A Descriptor carries everything the core needs to know about one variant: where
// the index table sits, which boolean fields are stored in a single byte, and which
// byte pattern marks an absent value. Descriptors are plain values; the field
// layouts that go with them live in the mapper package.
package format

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"

	"github.com/arloliu/pesbin/errs"
)

// defaultNullSentinel is the byte pattern written for absent values. It has the
// width of an integer field; a null float or one-byte boolean field therefore
// takes two bytes instead of its natural width.
var defaultNullSentinel = []byte{0xFF, 0xFF}

// Descriptor identifies one archive variant.
type Descriptor struct {
	// Variant names the archive family.
	Variant Variant
	// HeaderLength is the byte length of the index triple block at the start of the archive.
	HeaderLength int
	// IndexTableLength is the byte length of the NUL-separated section name table
	// that follows the header.
	IndexTableLength int
	// OneByteBooleans lists boolean fields stored in one byte instead of two.
	OneByteBooleans map[string]struct{}
	// NullSentinel is written for null values and for zero values of fields whose
	// name contains "null". Empty means FF FF.
	NullSentinel []byte
}

// known pairs every variant with its filename marker and fixed lengths.
var known = []struct {
	marker string
	desc   Descriptor
}{
	{"constant_match", Descriptor{Variant: VariantMatch, HeaderLength: 296, IndexTableLength: 392}},
	{"constant_player", Descriptor{Variant: VariantPlayer, HeaderLength: 440, IndexTableLength: 456}},
	{"constant_team", Descriptor{Variant: VariantTeam, HeaderLength: 200, IndexTableLength: 218}},
}

// ForVariant returns the built-in descriptor for v.
//
// Returns:
//   - Descriptor: descriptor with an empty one-byte boolean set
//   - error: ErrUnrecognizedFormat if v is not a known variant
func ForVariant(v Variant) (Descriptor, error) {
	for _, k := range known {
		if k.desc.Variant == v {
			return k.desc.Clone(), nil
		}
	}

	return Descriptor{}, errs.ErrUnrecognizedFormat
}

// Detect infers the descriptor from an archive file name.
//
// Only the base name is inspected, so directories containing a marker do not
// influence the result.
//
// Returns:
//   - Descriptor: the matching built-in descriptor
//   - error: ErrUnrecognizedFormat if no marker is present
func Detect(filename string) (Descriptor, error) {
	base := filepath.Base(filename)
	for _, k := range known {
		if strings.Contains(base, k.marker) {
			return k.desc.Clone(), nil
		}
	}

	return Descriptor{}, errs.ErrUnrecognizedFormat
}

// IsZero reports whether d carries no layout information.
func (d Descriptor) IsZero() bool {
	return d.Variant == VariantUnknown && d.HeaderLength == 0 && d.IndexTableLength == 0
}

// Validate checks that d can be used to parse an archive.
func (d Descriptor) Validate() error {
	if d.IsZero() || d.HeaderLength <= 0 || d.IndexTableLength < 0 {
		return errs.ErrUnrecognizedFormat
	}

	return nil
}

// IsOneByteBoolean reports whether the boolean field name is stored in one byte.
func (d Descriptor) IsOneByteBoolean(name string) bool {
	_, ok := d.OneByteBooleans[name]
	return ok
}

// Sentinel returns a copy of the null sentinel byte pattern.
func (d Descriptor) Sentinel() []byte {
	return slices.Clone(d.sentinel())
}

// IsSentinel reports whether b starts with the null sentinel.
func (d Descriptor) IsSentinel(b []byte) bool {
	return bytes.HasPrefix(b, d.sentinel())
}

func (d Descriptor) sentinel() []byte {
	if len(d.NullSentinel) == 0 {
		return defaultNullSentinel
	}

	return d.NullSentinel
}

// WithOneByteBooleans returns a copy of d whose one-byte boolean set also contains names.
func (d Descriptor) WithOneByteBooleans(names ...string) Descriptor {
	c := d.Clone()
	if c.OneByteBooleans == nil {
		c.OneByteBooleans = make(map[string]struct{}, len(names))
	}
	for _, n := range names {
		c.OneByteBooleans[n] = struct{}{}
	}

	return c
}

// OneByteBooleanNames returns the one-byte boolean set in sorted order.
func (d Descriptor) OneByteBooleanNames() []string {
	names := make([]string, 0, len(d.OneByteBooleans))
	for n := range d.OneByteBooleans {
		names = append(names, n)
	}
	slices.Sort(names)

	return names
}

// Clone returns a deep copy of d.
func (d Descriptor) Clone() Descriptor {
	c := d
	if d.OneByteBooleans != nil {
		c.OneByteBooleans = make(map[string]struct{}, len(d.OneByteBooleans))
		for n := range d.OneByteBooleans {
			c.OneByteBooleans[n] = struct{}{}
		}
	}
	if d.NullSentinel != nil {
		c.NullSentinel = slices.Clone(d.NullSentinel)
	}

	return c
}
