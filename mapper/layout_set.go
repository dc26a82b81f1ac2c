package mapper

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/pesbin/errs"
	"github.com/arloliu/pesbin/format"
)

// LayoutSet is the field layout plug-in of one archive variant.
//
// Example document:
//
//	variant: player
//	one_byte_bools: [isCaptain]
//	sections:
//	  - pattern: playerConcept
//	    fields:
//	      - {name: speed, type: int}
//	      - {name: isCaptain, type: bool}
//	  - pattern: subConcept
//	    start: 16
//	    fields:
//	      - {name: weight, type: float, count: 4}
type LayoutSet struct {
	Variant      string          `yaml:"variant"`
	OneByteBools []string        `yaml:"one_byte_bools"`
	NullSentinel string          `yaml:"null_sentinel,omitempty"` // hex, e.g. "ffff"
	Sections     []SectionLayout `yaml:"sections"`
}

// ParseLayoutSet decodes a YAML layout set. Unknown keys are rejected.
func ParseLayoutSet(r io.Reader) (*LayoutSet, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var ls LayoutSet
	if err := dec.Decode(&ls); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty layout document", errs.ErrInvalidLayout)
		}

		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidLayout, err)
	}

	if _, err := format.ParseVariant(ls.Variant); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidLayout, err)
	}
	if _, err := ls.sentinel(); err != nil {
		return nil, err
	}

	return &ls, nil
}

// LoadLayoutSet reads a YAML layout set from path.
func LoadLayoutSet(path string) (*LayoutSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ls, err := ParseLayoutSet(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return ls, nil
}

// LayoutPath returns the conventional file name of a variant's layout set in dir,
// for example "<dir>/player.yaml".
func LayoutPath(dir string, v format.Variant) string {
	return filepath.Join(dir, v.String()+".yaml")
}

func (ls *LayoutSet) sentinel() ([]byte, error) {
	if ls.NullSentinel == "" {
		return nil, nil
	}

	b, err := hex.DecodeString(ls.NullSentinel)
	if err != nil || len(b) == 0 {
		return nil, fmt.Errorf("%w: null_sentinel %q is not a hex byte string", errs.ErrInvalidLayout, ls.NullSentinel)
	}

	return b, nil
}

// Descriptor returns the built-in descriptor of the set's variant extended with
// its one-byte booleans and null sentinel.
func (ls *LayoutSet) Descriptor() (format.Descriptor, error) {
	v, err := format.ParseVariant(ls.Variant)
	if err != nil {
		return format.Descriptor{}, fmt.Errorf("%w: %w", errs.ErrInvalidLayout, err)
	}

	desc, err := format.ForVariant(v)
	if err != nil {
		return format.Descriptor{}, err
	}

	sentinel, err := ls.sentinel()
	if err != nil {
		return format.Descriptor{}, err
	}

	desc = desc.WithOneByteBooleans(ls.OneByteBools...)
	if sentinel != nil {
		desc.NullSentinel = sentinel
	}

	return desc, nil
}

// Registry compiles every section layout and registers it under its pattern.
func (ls *LayoutSet) Registry() (*Registry, error) {
	reg := NewRegistry()
	for _, sl := range ls.Sections {
		m, err := NewLayoutMapper(sl)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(sl.Pattern, m); err != nil {
			return nil, err
		}
	}

	return reg, nil
}
