package section

import (
	"fmt"

	"github.com/arloliu/pesbin/endian"
	"github.com/arloliu/pesbin/errs"
)

// IndexEntry is one fixed 12-byte triple of the archive header.
//
// Layout (little-endian):
//
//	Bytes | Field    | Type
//	------|----------|------
//	0-3   | Length   | int32
//	4-7   | Reserved | int32
//	8-11  | Offset   | int32
//
// The Length stored in entry i does not describe entry i: the first stored length
// is meaningless and the remaining ones are shifted by one position. Parse
// reconstructs per-section lengths; IndexEntry keeps the raw values.
type IndexEntry struct {
	// Length is the raw stored length.
	//
	// Offset: 0, Size: 4 bytes
	Length int32

	// Reserved is kept verbatim.
	//
	// Offset: 4, Size: 4 bytes
	Reserved int32

	// Offset is the absolute byte position of the section in the archive.
	//
	// Offset: 8, Size: 4 bytes
	Offset int32
}

// Bytes returns the index entry as a 12-byte slice using the specified endian engine.
func (e *IndexEntry) Bytes(engine endian.EndianEngine) []byte {
	var b [IndexEntrySize]byte
	e.WriteToSlice(b[:], 0, engine)

	return b[:]
}

// WriteToSlice writes to a pre-allocated slice and returns the next position.
//
// Parameters:
//   - data: Pre-allocated byte slice (must have space for 12 bytes at offset)
//   - offset: Starting position in data slice
//   - engine: Endian engine for byte order
//
// Returns:
//   - int: Next write position (offset + 12)
func (e *IndexEntry) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	endian.PutInt32(engine, data[offset:offset+4], e.Length)
	endian.PutInt32(engine, data[offset+4:offset+8], e.Reserved)
	endian.PutInt32(engine, data[offset+8:offset+12], e.Offset)

	return offset + IndexEntrySize
}

// ParseIndexEntry parses an IndexEntry from a byte slice.
//
// Returns:
//   - IndexEntry: Parsed index entry
//   - error: ErrCorruptIndex if data is shorter than 12 bytes
func ParseIndexEntry(data []byte, engine endian.EndianEngine) (IndexEntry, error) {
	if len(data) < IndexEntrySize {
		return IndexEntry{}, fmt.Errorf("%w: index entry needs %d bytes, got %d",
			errs.ErrCorruptIndex, IndexEntrySize, len(data))
	}

	return IndexEntry{
		Length:   endian.Int32(engine, data[0:4]),
		Reserved: endian.Int32(engine, data[4:8]),
		Offset:   endian.Int32(engine, data[8:12]),
	}, nil
}

// EntryCount returns the number of index triples stored in a header of headerLength bytes.
func EntryCount(headerLength int) int {
	return (headerLength+IndexEntrySize-1)/IndexEntrySize - 1
}
