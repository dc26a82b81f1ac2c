// Package compress provides the codecs used for archive backup snapshots.
//
// Four algorithms are built in and selected by format.CompressionType:
//
//	None  stored as-is
//	Zstd  best ratio, default for snapshots (klauspost/compress/zstd)
//	S2    fastest (klauspost/compress/s2)
//	LZ4   raw LZ4 blocks (pierrec/lz4)
//
// All codecs are stateless values backed by pooled encoders and are safe for
// concurrent use.
package compress
