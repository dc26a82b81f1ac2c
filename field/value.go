package field

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	KindInvalid Kind = iota // KindInvalid is the tag of the zero Value and is rejected by the codec.
	KindInteger             // KindInteger is an unsigned 16-bit integer.
	KindFloat               // KindFloat is an IEEE-754 single precision float.
	KindBoolean             // KindBoolean is a boolean flag.
	KindNull                // KindNull is an absent value.
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "int"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "bool"
	case KindNull:
		return "null"
	default:
		return "invalid"
	}
}

// ParseKind converts a layout type name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "int", "integer", "uint16":
		return KindInteger, nil
	case "float", "float32":
		return KindFloat, nil
	case "bool", "boolean":
		return KindBoolean, nil
	case "null":
		return KindNull, nil
	default:
		return KindInvalid, fmt.Errorf("unknown field kind %q", s)
	}
}

// Value is a typed scalar decoded from, or encoded into, a section.
//
// Floats keep their raw IEEE-754 bits so NaN payloads survive a round trip.
// The zero Value has KindInvalid.
type Value struct {
	kind Kind
	bits uint32
}

// Int returns an integer value.
func Int(v uint16) Value {
	return Value{kind: KindInteger, bits: uint32(v)}
}

// Float returns a float value.
func Float(f float32) Value {
	return Value{kind: KindFloat, bits: math.Float32bits(f)}
}

// FloatBits returns a float value from its raw IEEE-754 bits.
func FloatBits(bits uint32) Value {
	return Value{kind: KindFloat, bits: bits}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	if b {
		return Value{kind: KindBoolean, bits: 1}
	}

	return Value{kind: KindBoolean}
}

// Null returns the absent value.
func Null() Value {
	return Value{kind: KindNull}
}

// Kind returns the tag of v.
func (v Value) Kind() Kind {
	return v.kind
}

// Uint16 returns the integer payload. It is 0 for other kinds.
func (v Value) Uint16() uint16 {
	if v.kind != KindInteger {
		return 0
	}

	return uint16(v.bits) //nolint: gosec
}

// Float32 returns the float payload. It is 0 for other kinds.
func (v Value) Float32() float32 {
	if v.kind != KindFloat {
		return 0
	}

	return math.Float32frombits(v.bits)
}

// Bits returns the raw float bits. It is 0 for other kinds.
func (v Value) Bits() uint32 {
	if v.kind != KindFloat {
		return 0
	}

	return v.bits
}

// Bool returns the boolean payload. It is false for other kinds.
func (v Value) Bool() bool {
	return v.kind == KindBoolean && v.bits != 0
}

// IsNull reports whether v is the absent value.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsNaN reports whether v is a NaN float. NaN marks a disabled or unused setting.
func (v Value) IsNaN() bool {
	return v.kind == KindFloat && math.IsNaN(float64(math.Float32frombits(v.bits)))
}

// IsZero reports whether v compares equal to the number 0: integer 0, float ±0
// or boolean false. Null is not zero.
func (v Value) IsZero() bool {
	switch v.kind {
	case KindInteger, KindBoolean:
		return v.bits == 0
	case KindFloat:
		return math.Float32frombits(v.bits) == 0
	default:
		return false
	}
}

// Equal reports whether v and o have the same kind and payload.
// Floats compare by bits, so two identical NaNs are equal.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.bits == o.bits
}

// String formats v for display.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatUint(uint64(v.bits), 10)
	case KindFloat:
		return strconv.FormatFloat(float64(math.Float32frombits(v.bits)), 'g', -1, 32)
	case KindBoolean:
		return strconv.FormatBool(v.bits != 0)
	case KindNull:
		return "null"
	default:
		return "<invalid>"
	}
}

// Parse parses s as a value of kind k. "null" yields Null for every kind.
func Parse(k Kind, s string) (Value, error) {
	if s == "null" {
		return Null(), nil
	}

	switch k {
	case KindInteger:
		n, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return Value{}, fmt.Errorf("parse int %q: %w", s, err)
		}

		return Int(uint16(n)), nil
	case KindFloat:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return Value{}, fmt.Errorf("parse float %q: %w", s, err)
		}

		return Float(float32(f)), nil
	case KindBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, fmt.Errorf("parse bool %q: %w", s, err)
		}

		return Bool(b), nil
	case KindNull:
		return Value{}, fmt.Errorf("parse null %q: only \"null\" is accepted", s)
	default:
		return Value{}, fmt.Errorf("parse %q: unsupported kind %s", s, k)
	}
}
