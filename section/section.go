package section

// Section is a named, contiguous byte range of the archive.
//
// Sections are created once per load and never change afterwards; edits only
// rewrite bytes inside [Offset, Offset+Length).
type Section struct {
	// Name is unique within the archive.
	Name string
	// Offset is the absolute byte position of the section.
	Offset int
	// Length is the byte count of the section.
	Length int
	// Ordinal is the position of the section in the index table, starting at 0.
	Ordinal int
}

// End returns the byte position just past the section.
func (s Section) End() int {
	return s.Offset + s.Length
}

// BaseName returns the name without its two-character ordinal suffix.
// Names of two characters or fewer have an empty base name.
func (s Section) BaseName() string {
	return BaseName(s.Name)
}

// WriteOffset returns the position where field data of the section starts.
//
// subConcept sections keep a 16-byte prefix that is not part of their fields.
func (s Section) WriteOffset() int {
	if s.BaseName() == SubConceptBase {
		return s.Offset + SubConceptShift
	}

	return s.Offset
}

// Bytes returns the section's slice of buf. The result aliases buf.
func (s Section) Bytes(buf []byte) []byte {
	return buf[s.Offset:s.End():s.End()]
}

// BaseName strips the two-character ordinal suffix from a section name.
func BaseName(name string) string {
	r := []rune(name)
	if len(r) <= SuffixLength {
		return ""
	}

	return string(r[:len(r)-SuffixLength])
}
