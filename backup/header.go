package backup

import (
	"fmt"

	"github.com/arloliu/pesbin/endian"
	"github.com/arloliu/pesbin/errs"
	"github.com/arloliu/pesbin/format"
)

const (
	// HeaderSize is the fixed size of a snapshot header.
	HeaderSize = 24
	// Version is the snapshot format version written by this package.
	Version uint8 = 1
)

// Magic identifies a snapshot file.
var Magic = [4]byte{'P', 'E', 'S', 'B'}

// Header is the fixed-size header at the start of a snapshot.
type Header struct {
	Version        uint8                  // byte offset 4
	Compression    format.CompressionType // byte offset 5; bytes 6-7 are reserved
	RawSize        uint32                 // byte offset 8-11
	CompressedSize uint32                 // byte offset 12-15
	Checksum       uint64                 // byte offset 16-23, xxHash64 of the raw archive
}

// Bytes serializes the header.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	engine := endian.GetArchiveEngine()

	copy(b[0:4], Magic[:])
	b[4] = h.Version
	b[5] = byte(h.Compression)
	engine.PutUint32(b[8:12], h.RawSize)
	engine.PutUint32(b[12:16], h.CompressedSize)
	engine.PutUint64(b[16:24], h.Checksum)

	return b
}

// ParseHeader parses and validates a snapshot header.
//
// Returns:
//   - Header: parsed header
//   - error: ErrInvalidBackup for a short buffer, bad magic, unknown version or codec
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes is shorter than the header", errs.ErrInvalidBackup, len(data))
	}
	if [4]byte(data[0:4]) != Magic {
		return Header{}, fmt.Errorf("%w: bad magic %q", errs.ErrInvalidBackup, data[0:4])
	}

	engine := endian.GetArchiveEngine()
	h := Header{
		Version:        data[4],
		Compression:    format.CompressionType(data[5]),
		RawSize:        engine.Uint32(data[8:12]),
		CompressedSize: engine.Uint32(data[12:16]),
		Checksum:       engine.Uint64(data[16:24]),
	}

	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidBackup, h.Version)
	}
	if h.Compression.String() == "Unknown" {
		return Header{}, fmt.Errorf("%w: unknown compression 0x%02x", errs.ErrInvalidBackup, data[5])
	}

	return h, nil
}
