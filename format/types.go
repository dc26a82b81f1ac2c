package format

import (
	"fmt"
	"strings"
)

type (
	Variant         uint8
	CompressionType uint8
)

const (
	VariantUnknown Variant = 0x0 // VariantUnknown marks an archive whose layout has not been identified.
	VariantMatch   Variant = 0x1 // VariantMatch is the match constants archive.
	VariantPlayer  Variant = 0x2 // VariantPlayer is the player constants archive.
	VariantTeam    Variant = 0x3 // VariantTeam is the team constants archive.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (v Variant) String() string {
	switch v {
	case VariantMatch:
		return "match"
	case VariantPlayer:
		return "player"
	case VariantTeam:
		return "team"
	default:
		return "unknown"
	}
}

// ParseVariant converts a variant name ("match", "player", "team") to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "match":
		return VariantMatch, nil
	case "player":
		return VariantPlayer, nil
	case "team":
		return VariantTeam, nil
	default:
		return VariantUnknown, fmt.Errorf("unknown archive variant %q", s)
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompressionType converts a codec name (case-insensitive) to a CompressionType.
// The empty string maps to CompressionNone.
func ParseCompressionType(s string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression type %q", s)
	}
}
