package format

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/pesbin/errs"
)

func TestDetect(t *testing.T) {
	testCases := []struct {
		filename string
		variant  Variant
		header   int
		index    int
	}{
		{"constant_match.bin", VariantMatch, 296, 392},
		{"/games/pes/constant_player.bin", VariantPlayer, 440, 456},
		{"C:/data/common/constant_team.cpk", VariantTeam, 200, 218},
	}

	for _, tc := range testCases {
		t.Run(tc.filename, func(t *testing.T) {
			desc, err := Detect(tc.filename)
			require.NoError(t, err)
			require.Equal(t, tc.variant, desc.Variant)
			require.Equal(t, tc.header, desc.HeaderLength)
			require.Equal(t, tc.index, desc.IndexTableLength)
			require.NoError(t, desc.Validate())
		})
	}
}

func TestDetect_Unrecognized(t *testing.T) {
	_, err := Detect("constant_stadium.bin")
	require.ErrorIs(t, err, errs.ErrUnrecognizedFormat)

	// markers in directory names are ignored
	_, err = Detect("/constant_match/other.bin")
	require.ErrorIs(t, err, errs.ErrUnrecognizedFormat)
}

func TestForVariant(t *testing.T) {
	desc, err := ForVariant(VariantTeam)
	require.NoError(t, err)
	require.Equal(t, 200, desc.HeaderLength)

	_, err = ForVariant(VariantUnknown)
	require.ErrorIs(t, err, errs.ErrUnrecognizedFormat)
}

func TestDescriptor_Validate(t *testing.T) {
	require.ErrorIs(t, Descriptor{}.Validate(), errs.ErrUnrecognizedFormat)
	require.ErrorIs(t, Descriptor{Variant: VariantMatch}.Validate(), errs.ErrUnrecognizedFormat)
	require.NoError(t, Descriptor{HeaderLength: 36, IndexTableLength: 8}.Validate())
}

func TestDescriptor_OneByteBooleans(t *testing.T) {
	base, err := ForVariant(VariantMatch)
	require.NoError(t, err)
	require.False(t, base.IsOneByteBoolean("isStarter"))

	desc := base.WithOneByteBooleans("isStarter", "isCaptain")
	require.True(t, desc.IsOneByteBoolean("isStarter"))
	require.True(t, desc.IsOneByteBoolean("isCaptain"))
	require.Equal(t, []string{"isCaptain", "isStarter"}, desc.OneByteBooleanNames())

	// the original descriptor is not modified
	require.False(t, base.IsOneByteBoolean("isStarter"))
}

func TestDescriptor_Sentinel(t *testing.T) {
	desc := Descriptor{HeaderLength: 36}
	require.Equal(t, []byte{0xFF, 0xFF}, desc.Sentinel())
	require.True(t, desc.IsSentinel([]byte{0xFF, 0xFF, 0x00}))
	require.False(t, desc.IsSentinel([]byte{0xFF, 0x00}))
	require.False(t, desc.IsSentinel([]byte{0xFF}))

	desc.Sentinel()[0] = 0x00
	require.Equal(t, []byte{0xFF, 0xFF}, Descriptor{HeaderLength: 36}.Sentinel(), "Sentinel returns a copy")

	desc.NullSentinel = []byte{0xFF, 0xFF, 0xFF, 0xFF}
	require.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, desc.Sentinel())
	require.False(t, desc.IsSentinel([]byte{0xFF, 0xFF}))
}

func TestDescriptor_Clone(t *testing.T) {
	desc := Descriptor{
		Variant:         VariantPlayer,
		HeaderLength:    440,
		OneByteBooleans: map[string]struct{}{"a": {}},
		NullSentinel:    []byte{0x01, 0x02},
	}

	c := desc.Clone()
	c.OneByteBooleans["b"] = struct{}{}
	c.NullSentinel[0] = 0x09

	require.False(t, desc.IsOneByteBoolean("b"))
	require.Equal(t, byte(0x01), desc.NullSentinel[0])
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant(" Player ")
	require.NoError(t, err)
	require.Equal(t, VariantPlayer, v)
	require.Equal(t, "player", v.String())

	_, err = ParseVariant("stadium")
	require.Error(t, err)
	require.Equal(t, "unknown", VariantUnknown.String())
}

func TestParseCompressionType(t *testing.T) {
	testCases := []struct {
		in   string
		want CompressionType
	}{
		{"", CompressionNone},
		{"none", CompressionNone},
		{"ZSTD", CompressionZstd},
		{"s2", CompressionS2},
		{"lz4", CompressionLZ4},
	}

	for _, tc := range testCases {
		got, err := ParseCompressionType(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got)
	}

	_, err := ParseCompressionType("gzip")
	require.Error(t, err)
	require.Equal(t, "Unknown", CompressionType(0x9).String())
}
