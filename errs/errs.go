// Package errs defines the sentinel errors returned by pesbin packages.
//
// Callers match them with errors.Is; packages wrap them with fmt.Errorf("...: %w")
// to add the section or field that triggered the failure.
package errs

import "errors"

// Archive load errors. All of them are fatal for the load: no document is produced.
var (
	// ErrCorruptIndex is returned when the header or index table is too short or malformed.
	ErrCorruptIndex = errors.New("corrupt section index")
	// ErrNameCountMismatch is returned when the index table names do not match the entry count.
	ErrNameCountMismatch = errors.New("section name count mismatch")
	// ErrUnrecognizedFormat is returned when no format descriptor matches the archive.
	ErrUnrecognizedFormat = errors.New("unrecognized archive format")
)

// Section and field errors.
var (
	ErrUnknownSection       = errors.New("unknown section")
	ErrUnknownField         = errors.New("unknown field")
	ErrNoOpenSection        = errors.New("no section is open")
	ErrUnsupportedFieldType = errors.New("unsupported field type")
	ErrSectionTruncated     = errors.New("section data truncated")
	ErrSectionOverflow      = errors.New("encoded fields exceed section length")
	ErrReadOnlyField        = errors.New("field is read-only")
	ErrFieldTypeMismatch    = errors.New("field type mismatch")
)

// Layout, import and backup errors.
var (
	ErrInvalidLayout    = errors.New("invalid field layout")
	ErrInvalidPattern   = errors.New("invalid section pattern")
	ErrInvalidImport    = errors.New("invalid section import")
	ErrInvalidBackup    = errors.New("invalid backup snapshot")
	ErrChecksumMismatch = errors.New("backup checksum mismatch")
)
