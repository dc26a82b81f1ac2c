// Package endian provides the byte order used by pesbin archives.
//
// Every multi-byte quantity in a game-data archive (index triples, integer fields,
// float fields and widened booleans) is stored little-endian. The package wraps the
// standard encoding/binary byte orders behind a single EndianEngine interface so the
// section and field codecs can read, write and append with one value.
//
// # Basic Usage
//
//	engine := endian.GetArchiveEngine()
//	length := endian.Int32(engine, data[0:4])
//	buf = engine.AppendUint16(buf, 80)
//
// # Thread Safety
//
// All functions are safe for concurrent use. Engines are immutable and stateless.
package endian

import (
	"encoding/binary"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// binary.LittleEndian satisfies it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetArchiveEngine returns the engine used by game-data archives (little-endian).
func GetArchiveEngine() EndianEngine {
	return binary.LittleEndian
}

// Int32 decodes a signed 32-bit integer from the first 4 bytes of b.
func Int32(engine EndianEngine, b []byte) int32 {
	return int32(engine.Uint32(b)) //nolint: gosec
}

// PutInt32 encodes a signed 32-bit integer into the first 4 bytes of b.
func PutInt32(engine EndianEngine, b []byte, v int32) {
	engine.PutUint32(b, uint32(v)) //nolint: gosec
}
