// Package backup writes and reads compressed snapshots of an archive.
//
// A snapshot is a 24-byte header followed by the compressed archive bytes:
//
//	┌──────┬─────────┬───────┬──────────┬──────────┬─────────────────┬──────────┬─────────┐
//	│ PESB │ version │ codec │ reserved │ raw size │ compressed size │ xxhash64 │ payload │
//	│  4   │    1    │   1   │    2     │    4     │        4        │    8     │   ...   │
//	└──────┴─────────┴───────┴──────────┴──────────┴─────────────────┴──────────┴─────────┘
//
// All integers are little-endian. The checksum covers the raw archive, so a
// restore is verified end to end.
package backup

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/arloliu/pesbin/compress"
	"github.com/arloliu/pesbin/errs"
	"github.com/arloliu/pesbin/format"
	"github.com/arloliu/pesbin/internal/hash"
	"github.com/arloliu/pesbin/internal/pool"
)

// Extension is appended to an archive path to name its snapshot.
const Extension = ".bak"

// Path returns the snapshot path of an archive.
func Path(archivePath string) string {
	return archivePath + Extension
}

// sizedDecompressor is implemented by codecs that benefit from knowing the
// decoded size up front.
type sizedDecompressor interface {
	DecompressSize(data []byte, sizeHint int) ([]byte, error)
}

// Encode returns a snapshot of data compressed with ct.
func Encode(data []byte, ct format.CompressionType) ([]byte, Header, error) {
	if len(data) > math.MaxUint32 {
		return nil, Header{}, fmt.Errorf("%w: archive of %d bytes is too large", errs.ErrInvalidBackup, len(data))
	}

	payload, stats, err := compress.CompressWithStats(ct, data)
	if err != nil {
		return nil, Header{}, err
	}

	h := Header{
		Version:        Version,
		Compression:    ct,
		RawSize:        uint32(stats.OriginalSize),   //nolint: gosec
		CompressedSize: uint32(stats.CompressedSize), //nolint: gosec
		Checksum:       hash.Fingerprint(data),
	}

	buf := pool.GetArchiveBuffer()
	defer pool.PutArchiveBuffer(buf)

	buf.Grow(HeaderSize + len(payload))
	_, _ = buf.Write(h.Bytes())
	_, _ = buf.Write(payload)

	return append([]byte(nil), buf.Bytes()...), h, nil
}

// Decode verifies a snapshot and returns the raw archive bytes.
//
// Returns:
//   - []byte: the archive as it was when the snapshot was taken
//   - Header: the snapshot header
//   - error: ErrInvalidBackup for a malformed snapshot, ErrChecksumMismatch when
//     the decompressed bytes do not hash to the recorded checksum
func Decode(snapshot []byte) ([]byte, Header, error) {
	h, err := ParseHeader(snapshot)
	if err != nil {
		return nil, Header{}, err
	}

	payload := snapshot[HeaderSize:]
	if uint64(len(payload)) != uint64(h.CompressedSize) {
		return nil, Header{}, fmt.Errorf("%w: payload is %d bytes, header says %d",
			errs.ErrInvalidBackup, len(payload), h.CompressedSize)
	}

	codec, err := compress.GetCodec(h.Compression)
	if err != nil {
		return nil, Header{}, fmt.Errorf("%w: %w", errs.ErrInvalidBackup, err)
	}

	var raw []byte
	if sd, ok := codec.(sizedDecompressor); ok {
		raw, err = sd.DecompressSize(payload, int(h.RawSize))
	} else {
		raw, err = codec.Decompress(payload)
	}
	if err != nil {
		return nil, Header{}, fmt.Errorf("%w: %w", errs.ErrInvalidBackup, err)
	}

	if uint64(len(raw)) != uint64(h.RawSize) {
		return nil, Header{}, fmt.Errorf("%w: decoded %d bytes, header says %d",
			errs.ErrInvalidBackup, len(raw), h.RawSize)
	}
	if sum := hash.Fingerprint(raw); sum != h.Checksum {
		return nil, Header{}, fmt.Errorf("%w: got %016x, want %016x", errs.ErrChecksumMismatch, sum, h.Checksum)
	}

	return raw, h, nil
}

// Write writes a snapshot of data to w.
func Write(w io.Writer, data []byte, ct format.CompressionType) (Header, error) {
	snapshot, h, err := Encode(data, ct)
	if err != nil {
		return Header{}, err
	}
	if _, err := w.Write(snapshot); err != nil {
		return Header{}, err
	}

	return h, nil
}

// Read reads a whole snapshot from r and returns the raw archive bytes.
func Read(r io.Reader) ([]byte, Header, error) {
	snapshot, err := io.ReadAll(r)
	if err != nil {
		return nil, Header{}, err
	}

	return Decode(snapshot)
}

// WriteFile writes a snapshot of data to path.
func WriteFile(path string, data []byte, ct format.CompressionType) (Header, error) {
	snapshot, h, err := Encode(data, ct)
	if err != nil {
		return Header{}, err
	}
	if err := os.WriteFile(path, snapshot, 0o644); err != nil { //nolint: gosec
		return Header{}, err
	}

	return h, nil
}

// ReadFile reads and verifies the snapshot at path.
func ReadFile(path string) ([]byte, Header, error) {
	snapshot, err := os.ReadFile(path)
	if err != nil {
		return nil, Header{}, err
	}

	raw, h, err := Decode(snapshot)
	if err != nil {
		return nil, Header{}, fmt.Errorf("%s: %w", path, err)
	}

	return raw, h, nil
}

// Restore verifies the snapshot at snapshotPath and writes the archive it holds
// to dest. dest is not touched when verification fails.
func Restore(snapshotPath, dest string) (Header, error) {
	raw, h, err := ReadFile(snapshotPath)
	if err != nil {
		return Header{}, err
	}
	if err := os.WriteFile(dest, raw, 0o644); err != nil { //nolint: gosec
		return Header{}, err
	}

	return h, nil
}
