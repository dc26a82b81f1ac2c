// Package archivetest builds synthetic archives for tests.
//
// The layout it produces is the one the section index parser expects: a header of
// index triples, a NUL-separated name table, then the section payloads back to
// back. Entry 0 points at the name table and carries a junk length; entry j stores
// the length of the region described by entry j-1.
package archivetest

import (
	"fmt"

	"github.com/arloliu/pesbin/endian"
)

const (
	entrySize = 12

	// JunkLength is stored in the first index triple, whose length is never read.
	JunkLength = 0x7EADBEEF
)

// Section is one named payload of a synthetic archive.
type Section struct {
	Name    string
	Payload []byte
}

// Build returns an archive with the given header and index table lengths.
//
// It panics if the header cannot hold exactly len(sections)+1 triples or if the
// names do not fit the index table; both are mistakes in the test itself.
func Build(headerLength, indexTableLength int, sections ...Section) []byte {
	count := (headerLength+entrySize-1)/entrySize - 1
	if count != len(sections)+1 {
		panic(fmt.Sprintf("archivetest: header length %d holds %d entries, got %d sections",
			headerLength, count, len(sections)))
	}

	size := headerLength + indexTableLength
	for _, s := range sections {
		size += len(s.Payload)
	}
	buf := make([]byte, size)
	engine := endian.GetArchiveEngine()

	pos := headerLength
	for _, s := range sections {
		if pos+len(s.Name) > headerLength+indexTableLength {
			panic(fmt.Sprintf("archivetest: name %q does not fit index table of %d bytes", s.Name, indexTableLength))
		}
		pos += copy(buf[pos:], s.Name) + 1
	}

	putEntry(engine, buf, 0, JunkLength, int32(headerLength)) //nolint: gosec

	prevLength := indexTableLength
	offset := headerLength + indexTableLength
	for i, s := range sections {
		putEntry(engine, buf, i+1, int32(prevLength), int32(offset)) //nolint: gosec
		copy(buf[offset:], s.Payload)
		prevLength = len(s.Payload)
		offset += len(s.Payload)
	}

	return buf
}

// Names returns count section names of the form <base><ordinal>, for example
// "section00", "section01".
func Names(base string, count int) []string {
	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("%s%02d", base, i)
	}

	return names
}

// Sections pairs names with payloads of the given sizes filled with a repeating pattern.
func Sections(names []string, size int) []Section {
	out := make([]Section, len(names))
	for i, n := range names {
		p := make([]byte, size)
		for j := range p {
			p[j] = byte(i*31 + j)
		}
		out[i] = Section{Name: n, Payload: p}
	}

	return out
}

func putEntry(engine endian.EndianEngine, buf []byte, i int, length, offset int32) {
	pos := i * entrySize
	endian.PutInt32(engine, buf[pos:pos+4], length)
	endian.PutInt32(engine, buf[pos+4:pos+8], 0)
	endian.PutInt32(engine, buf[pos+8:pos+12], offset)
}
