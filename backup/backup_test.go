package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/pesbin/errs"
	"github.com/arloliu/pesbin/format"
	"github.com/arloliu/pesbin/internal/archivetest"
	"github.com/arloliu/pesbin/internal/hash"
)

func testArchive() []byte {
	names := archivetest.Names("teamLink", 15)
	return archivetest.Build(200, 218, archivetest.Sections(names, 64)...)
}

var allCodecs = []format.CompressionType{
	format.CompressionNone,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
}

func TestEncodeDecode(t *testing.T) {
	data := testArchive()

	for _, ct := range allCodecs {
		t.Run(ct.String(), func(t *testing.T) {
			snapshot, h, err := Encode(data, ct)
			require.NoError(t, err)
			require.Equal(t, Magic[:], snapshot[:4])
			require.Equal(t, Version, h.Version)
			require.Equal(t, ct, h.Compression)
			require.Equal(t, uint32(len(data)), h.RawSize)
			require.Equal(t, int(h.CompressedSize), len(snapshot)-HeaderSize)
			require.Equal(t, hash.Fingerprint(data), h.Checksum)

			raw, got, err := Decode(snapshot)
			require.NoError(t, err)
			require.Equal(t, data, raw)
			require.Equal(t, h, got)
		})
	}
}

func TestWriteRead(t *testing.T) {
	data := testArchive()

	var buf bytes.Buffer
	h, err := Write(&buf, data, format.CompressionZstd)
	require.NoError(t, err)
	require.Less(t, int(h.CompressedSize), len(data))

	raw, _, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, data, raw)
}

func TestDecode_Errors(t *testing.T) {
	data := testArchive()
	snapshot, _, err := Encode(data, format.CompressionS2)
	require.NoError(t, err)

	corrupt := func(fn func(b []byte) []byte) []byte {
		b := append([]byte(nil), snapshot...)
		return fn(b)
	}

	testCases := []struct {
		name string
		in   []byte
		want error
	}{
		{"short", snapshot[:10], errs.ErrInvalidBackup},
		{"magic", corrupt(func(b []byte) []byte { b[0] = 'X'; return b }), errs.ErrInvalidBackup},
		{"version", corrupt(func(b []byte) []byte { b[4] = 9; return b }), errs.ErrInvalidBackup},
		{"codec", corrupt(func(b []byte) []byte { b[5] = 0x7F; return b }), errs.ErrInvalidBackup},
		{"truncated payload", snapshot[:len(snapshot)-1], errs.ErrInvalidBackup},
		{"raw size", corrupt(func(b []byte) []byte { b[8]++; return b }), errs.ErrInvalidBackup},
		{"checksum", corrupt(func(b []byte) []byte { b[16] ^= 0xFF; return b }), errs.ErrChecksumMismatch},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode(tc.in)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDecode_PayloadTamper(t *testing.T) {
	data := testArchive()
	snapshot, _, err := Encode(data, format.CompressionNone)
	require.NoError(t, err)

	snapshot[HeaderSize+300] ^= 0x01
	_, _, err = Decode(snapshot)
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)
}

func TestRestore(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "constant_team.bin")
	data := testArchive()

	_, err := WriteFile(Path(archivePath), data, format.CompressionLZ4)
	require.NoError(t, err)
	require.Equal(t, archivePath+".bak", Path(archivePath))

	require.NoError(t, os.WriteFile(archivePath, []byte("clobbered"), 0o600))

	h, err := Restore(Path(archivePath), archivePath)
	require.NoError(t, err)
	require.Equal(t, format.CompressionLZ4, h.Compression)

	restored, err := os.ReadFile(archivePath)
	require.NoError(t, err)
	require.Equal(t, data, restored)
}

func TestRestore_KeepsDestOnFailure(t *testing.T) {
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "bad.bak")
	dest := filepath.Join(dir, "dest.bin")
	require.NoError(t, os.WriteFile(snapPath, []byte("not a snapshot at all, really"), 0o600))
	require.NoError(t, os.WriteFile(dest, []byte("keep"), 0o600))

	_, err := Restore(snapPath, dest)
	require.ErrorIs(t, err, errs.ErrInvalidBackup)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "keep", string(got))
}

func TestEncode_UnknownCodec(t *testing.T) {
	_, _, err := Encode(testArchive(), format.CompressionType(0))
	require.Error(t, err)
}
