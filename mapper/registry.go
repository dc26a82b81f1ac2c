package mapper

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/arloliu/pesbin/errs"
	"github.com/arloliu/pesbin/section"
)

type patternEntry struct {
	pattern string
	mapper  FieldMapper
}

// Registry selects the FieldMapper of a section by name.
//
// Lookup order:
//  1. a mapper registered under the full section name;
//  2. a mapper registered under the section base name (name minus its ordinal);
//  3. the first registered glob pattern matching the base name.
//
// Patterns use doublestar syntax ("player*", "{team,club}Concept").
type Registry struct {
	exact    map[string]FieldMapper
	patterns []patternEntry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{exact: make(map[string]FieldMapper)}
}

// Register adds m under pattern. A pattern without glob metacharacters is an
// exact name and replaces any mapper previously registered under it.
//
// Returns:
//   - error: ErrInvalidPattern for an empty or malformed pattern, or a nil mapper
func (r *Registry) Register(pattern string, m FieldMapper) error {
	if pattern == "" || m == nil {
		return fmt.Errorf("%w: pattern %q", errs.ErrInvalidPattern, pattern)
	}

	if !isGlob(pattern) {
		r.exact[pattern] = m
		return nil
	}

	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("%w: %q", errs.ErrInvalidPattern, pattern)
	}
	r.patterns = append(r.patterns, patternEntry{pattern: pattern, mapper: m})

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(pattern string, m FieldMapper) {
	if err := r.Register(pattern, m); err != nil {
		panic(err)
	}
}

// Lookup returns the mapper for the section name.
func (r *Registry) Lookup(name string) (FieldMapper, bool) {
	if r == nil {
		return nil, false
	}

	if m, ok := r.exact[name]; ok {
		return m, true
	}

	base := section.BaseName(name)
	if m, ok := r.exact[base]; ok {
		return m, true
	}

	for _, p := range r.patterns {
		if ok, _ := doublestar.Match(p.pattern, base); ok {
			return p.mapper, true
		}
	}

	return nil, false
}

// Len returns the number of registered names and patterns.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}

	return len(r.exact) + len(r.patterns)
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, `*?[{\`)
}
