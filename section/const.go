package section

// offset and sizes in the archive header
const (
	IndexEntrySize = 12 // fixed index triple size in bytes: length, reserved, offset
	NameSeparator  = 0  // byte separating section names in the index table

	// SuffixLength is the length of the ordinal suffix carried by every section
	// name ("subConcept01" -> "subConcept").
	SuffixLength = 2

	// SubConceptBase is the base name of the section family whose payload starts
	// SubConceptShift bytes after its recorded offset.
	SubConceptBase  = "subConcept"
	SubConceptShift = 16
)
