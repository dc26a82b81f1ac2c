package section

import (
	"bytes"
	"fmt"
	"iter"
	"unicode/utf8"

	"github.com/elliotchance/orderedmap/v3"

	"github.com/arloliu/pesbin/endian"
	"github.com/arloliu/pesbin/errs"
)

// Index is the parsed section index of an archive.
//
// Sections keep the order of the names in the index table.
type Index struct {
	entries  []IndexEntry
	table    Section
	sections *orderedmap.OrderedMap[string, Section]
	size     int
}

// Parse parses the header and index table at the start of buf.
//
// The header holds ceil(headerLength/12)-1 index triples. The first stored length
// is discarded and the length of the last section is derived from len(buf). Entry
// 0 describes the index table itself; every following entry is paired, in order,
// with one name from the NUL-separated table of indexTableLength bytes that starts
// at headerLength.
//
// Parameters:
//   - buf: Whole archive
//   - headerLength: Byte length of the triple block
//   - indexTableLength: Byte length of the name table
//
// Returns:
//   - *Index: Parsed index
//   - error: ErrCorruptIndex or ErrNameCountMismatch
func Parse(buf []byte, headerLength, indexTableLength int) (*Index, error) {
	if headerLength <= 0 || indexTableLength < 0 {
		return nil, fmt.Errorf("%w: invalid header length %d or index table length %d",
			errs.ErrCorruptIndex, headerLength, indexTableLength)
	}
	if len(buf) < headerLength+indexTableLength {
		return nil, fmt.Errorf("%w: archive has %d bytes, header and index table need %d",
			errs.ErrCorruptIndex, len(buf), headerLength+indexTableLength)
	}

	count := EntryCount(headerLength)
	if count < 1 {
		return nil, fmt.Errorf("%w: header length %d holds no index entries", errs.ErrCorruptIndex, headerLength)
	}

	engine := endian.GetArchiveEngine()
	entries := make([]IndexEntry, 0, count)
	for i := range count {
		entry, err := ParseIndexEntry(buf[i*IndexEntrySize:], engine)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	lengths := shiftedLengths(entries, len(buf))

	names, err := parseNames(buf[headerLength : headerLength+indexTableLength])
	if err != nil {
		return nil, err
	}
	if len(names) != count-1 {
		return nil, fmt.Errorf("%w: %d index entries expect %d names, table has %d",
			errs.ErrNameCountMismatch, count, count-1, len(names))
	}

	idx := &Index{
		entries:  entries,
		sections: orderedmap.NewOrderedMapWithCapacity[string, Section](len(names)),
		size:     len(buf),
	}

	idx.table = Section{Offset: int(entries[0].Offset), Length: lengths[0], Ordinal: -1}

	for i, name := range names {
		sec := Section{
			Name:    name,
			Offset:  int(entries[i+1].Offset),
			Length:  lengths[i+1],
			Ordinal: i,
		}
		if sec.Offset < 0 || sec.Length < 0 || sec.End() > len(buf) {
			return nil, fmt.Errorf("%w: section %q range [%d, %d) outside archive of %d bytes",
				errs.ErrCorruptIndex, name, sec.Offset, sec.End(), len(buf))
		}
		if idx.sections.Has(name) {
			return nil, fmt.Errorf("%w: duplicate section name %q", errs.ErrCorruptIndex, name)
		}
		idx.sections.Set(name, sec)
	}

	return idx, nil
}

// shiftedLengths drops the first stored length and appends the length of the
// last section, computed from the archive size.
func shiftedLengths(entries []IndexEntry, size int) []int {
	lengths := make([]int, 0, len(entries))
	for _, e := range entries[1:] {
		lengths = append(lengths, int(e.Length))
	}

	return append(lengths, size-int(entries[len(entries)-1].Offset))
}

// parseNames splits the index table on NUL bytes and decodes every non-empty run.
func parseNames(table []byte) ([]string, error) {
	var names []string
	for _, run := range bytes.Split(table, []byte{NameSeparator}) {
		if len(run) == 0 {
			continue
		}
		if !utf8.Valid(run) {
			return nil, fmt.Errorf("%w: section name %q is not valid UTF-8", errs.ErrCorruptIndex, run)
		}
		names = append(names, string(run))
	}

	return names, nil
}

// Len returns the number of named sections.
func (idx *Index) Len() int {
	return idx.sections.Len()
}

// Size returns the byte length of the archive the index was parsed from.
func (idx *Index) Size() int {
	return idx.size
}

// Get returns the section with the given name.
func (idx *Index) Get(name string) (Section, bool) {
	return idx.sections.Get(name)
}

// Has reports whether a section with the given name exists.
func (idx *Index) Has(name string) bool {
	return idx.sections.Has(name)
}

// Table returns the pseudo-section described by the first index entry: the index
// table itself. It has no name.
func (idx *Index) Table() Section {
	return idx.table
}

// Entries returns a copy of the raw index triples.
func (idx *Index) Entries() []IndexEntry {
	out := make([]IndexEntry, len(idx.entries))
	copy(out, idx.entries)

	return out
}

// All iterates over the sections in index table order.
func (idx *Index) All() iter.Seq2[string, Section] {
	return idx.sections.AllFromFront()
}

// Sections returns the sections in index table order.
func (idx *Index) Sections() []Section {
	out := make([]Section, 0, idx.sections.Len())
	for _, sec := range idx.sections.AllFromFront() {
		out = append(out, sec)
	}

	return out
}

// Names returns the section names in index table order.
func (idx *Index) Names() []string {
	out := make([]string, 0, idx.sections.Len())
	for name := range idx.sections.AllFromFront() {
		out = append(out, name)
	}

	return out
}
