// Package pesbin edits the constant game-data archives of the match, player and
// team variants.
//
// An archive is a header of index triples, a NUL-separated table of section names
// and the section payloads. Sections are decoded into typed fields by mappers,
// usually compiled from a YAML layout set, edited, and written back in place.
//
// # Basic Usage
//
//	doc, err := pesbin.OpenWithLayouts("constant_player.bin", "layouts")
//	if err != nil {
//		return err
//	}
//	if _, err := doc.OpenSection("playerConcept01"); err != nil {
//		return err
//	}
//	if err := doc.SetField("speed", field.Int(85)); err != nil {
//		return err
//	}
//	if _, err := pesbin.SaveWithBackup(doc, "constant_player.bin", format.CompressionZstd); err != nil {
//		return err
//	}
//
// # Package Structure
//
// This package wraps the most common flows. The archive package holds the
// editable Document; section parses the index; field encodes values; mapper
// selects and compiles section layouts; backup writes compressed snapshots.
package pesbin

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/arloliu/pesbin/archive"
	"github.com/arloliu/pesbin/backup"
	"github.com/arloliu/pesbin/format"
	"github.com/arloliu/pesbin/mapper"
)

// Detect returns the descriptor of the archive variant named by filename.
//
// Returns:
//   - format.Descriptor: descriptor of the detected variant
//   - error: ErrUnrecognizedFormat when the name carries no known variant marker
func Detect(filename string) (format.Descriptor, error) {
	return format.Detect(filename)
}

// Load parses archive bytes with the given descriptor.
func Load(data []byte, desc format.Descriptor, opts ...archive.Option) (*archive.Document, error) {
	return archive.Load(data, desc, opts...)
}

// Open detects the variant of the file at path, reads it and loads it.
func Open(path string, opts ...archive.Option) (*archive.Document, error) {
	desc, err := Detect(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := archive.Load(data, desc, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return doc, nil
}

// OpenWithLayouts is Open with the layout set of the detected variant loaded
// from layoutsDir. A missing layout file is not an error: every section then
// opens as a read-only placeholder.
func OpenWithLayouts(path, layoutsDir string, opts ...archive.Option) (*archive.Document, error) {
	ls, err := LoadLayouts(path, layoutsDir)
	if err != nil {
		return nil, err
	}
	if ls != nil {
		opts = append([]archive.Option{archive.WithLayoutSet(ls)}, opts...)
	}

	return Open(path, opts...)
}

// LoadLayouts loads the layout set for the variant of the archive at path, or
// returns nil when layoutsDir has none.
func LoadLayouts(path, layoutsDir string) (*mapper.LayoutSet, error) {
	desc, err := Detect(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if layoutsDir == "" {
		return nil, nil
	}

	ls, err := mapper.LoadLayoutSet(mapper.LayoutPath(layoutsDir, desc.Variant))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	return ls, err
}

// Save serializes doc and writes it to path.
func Save(doc *archive.Document, path string) error {
	data, err := doc.Serialize()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644) //nolint: gosec
}

// SaveWithBackup snapshots the current file at path to path+".bak" with the
// given compression, then saves doc over it. Nothing is written when the
// snapshot fails.
func SaveWithBackup(doc *archive.Document, path string, ct format.CompressionType) (backup.Header, error) {
	data, err := doc.Serialize()
	if err != nil {
		return backup.Header{}, err
	}

	current, err := os.ReadFile(path)
	if err != nil {
		return backup.Header{}, err
	}

	h, err := backup.WriteFile(backup.Path(path), current, ct)
	if err != nil {
		return backup.Header{}, fmt.Errorf("backup %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint: gosec
		return backup.Header{}, err
	}

	return h, nil
}
