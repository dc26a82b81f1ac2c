// Package section defines the low-level binary structures of a game-data archive
// and parses its section index.
//
// # Archive Structure
//
// An archive is a flat byte sequence with no compression:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (headerLength bytes)                             │
//	│  - ceil(headerLength/12)-1 index triples, 12 bytes each │
//	│  - zero fill up to headerLength                         │
//	├─────────────────────────────────────────────────────────┤
//	│ Index Table (indexTableLength bytes)                    │
//	│  - NUL-separated UTF-8 section names                    │
//	├─────────────────────────────────────────────────────────┤
//	│ Section payloads (variable)                             │
//	│  - concatenated, at the offsets recorded in the header  │
//	└─────────────────────────────────────────────────────────┘
//
// # Index Triple Format
//
//	Bytes | Field    | Type  | Description
//	------|----------|-------|------------------------------------------
//	0-3   | Length   | int32 | length of the region of the previous entry
//	4-7   | Reserved | int32 | kept verbatim
//	8-11  | Offset   | int32 | absolute offset of this entry's region
//
// Entry 0 points at the index table. Its stored length carries no information and
// is discarded; every later stored length belongs to the entry before it, and the
// last section's length is the distance from its offset to the end of the archive.
//
// # Section Names
//
// Section names end in a two-character ordinal ("subConcept01"). The base name
// without the ordinal selects the field layout. subConcept sections keep a 16-byte
// prefix before their first field (see Section.WriteOffset).
//
// # Example
//
//	idx, err := section.Parse(data, 296, 392)
//	if err != nil {
//	    return err
//	}
//	for name, sec := range idx.All() {
//	    fmt.Printf("%s at %d (%d bytes)\n", name, sec.Offset, sec.Length)
//	}
package section
