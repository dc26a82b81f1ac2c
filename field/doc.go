// Package field implements typed field values and the value codec shared by every
// archive variant.
//
// A section is a run of little-endian fields with no framing:
//
//	Kind    | Width | Encoding
//	--------|-------|----------------------------------------------
//	int     | 2     | uint16
//	float   | 4     | IEEE-754 float32, raw bits (NaN = disabled)
//	bool    | 2     | uint16 0/1, or 1 byte for the one-byte set
//	null    | n     | the descriptor's null sentinel (FF FF)
//
// Codec writes values and Decoder reads them with the same rules, so a field that
// is decoded and encoded again without edits keeps its bytes. The exceptions are
// fields named "...null..." holding zero (always written as the sentinel) and
// booleans stored with a non-canonical byte.
package field
