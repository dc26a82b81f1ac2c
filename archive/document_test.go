package archive

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/pesbin/errs"
	"github.com/arloliu/pesbin/field"
	"github.com/arloliu/pesbin/format"
	"github.com/arloliu/pesbin/internal/archivetest"
	"github.com/arloliu/pesbin/mapper"
)

const testLayout = `
variant: player
one_byte_bools: [isCaptain]
sections:
  - pattern: playerConcept
    fields:
      - {name: speed, type: int}
      - {name: ratio, type: float}
      - {name: isStarter, type: bool}
      - {name: isCaptain, type: bool}
      - {name: padding00, type: int}
      - {name: nullTeamId, type: int}
  - pattern: "sub*"
    start: 16
    fields:
      - {name: weight, type: float, count: 2}
`

const (
	playerOffset  = 108
	subOffset     = 125
	stadiumOffset = 149
)

var testDesc = format.Descriptor{
	Variant:          format.VariantPlayer,
	HeaderLength:     60,
	IndexTableLength: 48,
}

func playerPayload() []byte {
	return []byte{
		0x50, 0x00, // speed 80
		0x00, 0x00, 0x20, 0x41, // ratio 10.0
		0x01, 0x00, // isStarter, widened
		0x01,       // isCaptain, one byte
		0xCD, 0xAB, // padding00
		0xFF, 0xFF, // nullTeamId, sentinel
		0x00, 0x00, 0x00, 0x00, // unused tail
	}
}

func subPayload() []byte {
	p := bytes.Repeat([]byte{0x11}, 16)
	p = append(p, 0x00, 0x00, 0x80, 0x3F) // weight00 1.0
	p = append(p, 0x01, 0x00, 0xC0, 0x7F) // weight01 NaN with payload

	return p
}

func testArchive() []byte {
	return archivetest.Build(testDesc.HeaderLength, testDesc.IndexTableLength,
		archivetest.Section{Name: "playerConcept01", Payload: playerPayload()},
		archivetest.Section{Name: "subConcept01", Payload: subPayload()},
		archivetest.Section{Name: "stadium01", Payload: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
	)
}

func testLayoutSet(t *testing.T) *mapper.LayoutSet {
	t.Helper()
	ls, err := mapper.ParseLayoutSet(strings.NewReader(testLayout))
	require.NoError(t, err)

	return ls
}

func loadTestDoc(t *testing.T) (*Document, []byte) {
	t.Helper()
	data := testArchive()
	doc, err := Load(data, testDesc, WithLayoutSet(testLayoutSet(t)))
	require.NoError(t, err)

	return doc, data
}

func openSection(t *testing.T, doc *Document, name string) []field.Record {
	t.Helper()
	records, err := doc.OpenSection(name)
	require.NoError(t, err)

	return records
}

func TestLoad(t *testing.T) {
	doc, data := loadTestDoc(t)

	require.Equal(t, StateLoaded, doc.State())
	require.Equal(t, len(data), doc.Size())
	require.Equal(t, 3, doc.Index().Len())
	require.False(t, doc.Modified())

	var names []string
	for _, s := range doc.Sections() {
		names = append(names, s.Name)
	}
	require.Equal(t, []string{"playerConcept01", "subConcept01", "stadium01"}, names)

	sec, err := doc.Section("subConcept01")
	require.NoError(t, err)
	require.Equal(t, subOffset, sec.Offset)
	require.Equal(t, 24, sec.Length)

	require.True(t, doc.IsMapped("playerConcept01"))
	require.True(t, doc.IsMapped("subConcept01"))
	require.False(t, doc.IsMapped("stadium01"))
	require.True(t, doc.Descriptor().IsOneByteBoolean("isCaptain"))

	_, err = doc.Section("arena01")
	require.ErrorIs(t, err, errs.ErrUnknownSection)
}

func TestLoad_Errors(t *testing.T) {
	data := testArchive()

	_, err := Load(data, format.Descriptor{})
	require.ErrorIs(t, err, errs.ErrUnrecognizedFormat)

	_, err = Load(data[:80], testDesc)
	require.ErrorIs(t, err, errs.ErrCorruptIndex)

	bad := &mapper.LayoutSet{Variant: "player", Sections: []mapper.SectionLayout{
		{Pattern: "x", Fields: []mapper.FieldLayout{{Name: "a", Type: "str"}}},
	}}
	_, err = Load(data, testDesc, WithLayoutSet(bad))
	require.ErrorIs(t, err, errs.ErrInvalidLayout)
}

func TestLoad_CopiesInput(t *testing.T) {
	doc, data := loadTestDoc(t)
	data[playerOffset] = 0x99

	records := openSection(t, doc, "playerConcept01")
	require.Equal(t, uint16(80), records[0].Value.Uint16())
}

func TestOpenSection(t *testing.T) {
	doc, _ := loadTestDoc(t)

	records := openSection(t, doc, "playerConcept01")
	require.Equal(t, StateSectionOpen, doc.State())
	require.Len(t, records, 6)

	require.Equal(t, field.Int(80), records[0].Value)
	require.Equal(t, float32(10), records[1].Value.Float32())
	require.Equal(t, field.Bool(true), records[2].Value)
	require.Equal(t, field.Bool(true), records[3].Value)
	require.True(t, records[4].Padding)
	require.Equal(t, uint16(0xABCD), records[4].Value.Uint16())
	require.True(t, records[5].Value.IsNull())

	cur, ok := doc.Current()
	require.True(t, ok)
	require.Equal(t, "playerConcept01", cur.Name)

	_, err := doc.OpenSection("arena01")
	require.ErrorIs(t, err, errs.ErrUnknownSection)
	cur, _ = doc.Current()
	require.Equal(t, "playerConcept01", cur.Name, "failed open keeps the previous section")
}

func TestOpenSection_Placeholder(t *testing.T) {
	doc, _ := loadTestDoc(t)

	records := openSection(t, doc, "stadium01")
	require.Len(t, records, 1)
	require.Equal(t, "8", records[0].Name)
	require.True(t, records[0].Placeholder)
	require.True(t, records[0].ReadOnly())
	require.Equal(t, field.Int(8), records[0].Value)

	err := doc.SetField("8", field.Int(1))
	require.ErrorIs(t, err, errs.ErrReadOnlyField)
}

func TestOpenSection_WithoutRegistry(t *testing.T) {
	doc, err := Load(testArchive(), testDesc)
	require.NoError(t, err)

	records := openSection(t, doc, "playerConcept01")
	require.Len(t, records, 1)
	require.Equal(t, "17", records[0].Name)
}

func TestOpenSection_LayoutStartMismatch(t *testing.T) {
	stadium := append(bytes.Repeat([]byte{0x11}, 16), 0, 0, 0, 0, 0, 0, 0, 0)
	data := archivetest.Build(48, testDesc.IndexTableLength,
		archivetest.Section{Name: "subConcept01", Payload: subPayload()},
		archivetest.Section{Name: "subStadium01", Payload: stadium},
	)
	desc := testDesc
	desc.HeaderLength = 48

	doc, err := Load(data, desc, WithLayoutSet(testLayoutSet(t)))
	require.NoError(t, err)

	openSection(t, doc, "subConcept01")
	_, err = doc.OpenSection("subStadium01")
	require.ErrorIs(t, err, errs.ErrInvalidLayout)
	cur, _ := doc.Current()
	require.Equal(t, "subConcept01", cur.Name)

	out, err := doc.Serialize()
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestSetField_SingleFieldSection(t *testing.T) {
	reg := mapper.NewRegistry()
	m, err := mapper.NewLayoutMapper(mapper.SectionLayout{
		Pattern: "playerConcept",
		Fields:  []mapper.FieldLayout{{Name: "speed", Type: "int"}},
	})
	require.NoError(t, err)
	reg.MustRegister("playerConcept", m)

	data := testArchive()
	doc, err := Load(data, testDesc, WithRegistry(reg))
	require.NoError(t, err)

	records := openSection(t, doc, "playerConcept01")
	require.Len(t, records, 1)
	require.Equal(t, field.Int(80), records[0].Value)

	require.ErrorIs(t, doc.SetField("speed", field.Int(99)), errs.ErrReadOnlyField)
	require.False(t, doc.Modified())

	out, err := doc.Serialize()
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestSerialize_Identity(t *testing.T) {
	doc, data := loadTestDoc(t)

	for _, name := range []string{"playerConcept01", "subConcept01", "stadium01", "playerConcept01"} {
		openSection(t, doc, name)
	}

	out, err := doc.Serialize()
	require.NoError(t, err)
	require.Equal(t, data, out)
	require.Equal(t, StateLoaded, doc.State())
	require.False(t, doc.Modified())

	again, err := doc.Serialize()
	require.NoError(t, err)
	require.Equal(t, out, again)

	out[0] = 0x42
	require.NotEqual(t, out[0], again[0], "Serialize returns a copy")
}

func TestSetField_Flush(t *testing.T) {
	doc, data := loadTestDoc(t)
	openSection(t, doc, "playerConcept01")

	require.NoError(t, doc.SetField("speed", field.Int(80)))
	require.False(t, doc.Modified(), "same value is not an edit")

	require.NoError(t, doc.SetField("speed", field.Int(85)))
	require.True(t, doc.Modified())

	rec, err := doc.Field("speed")
	require.NoError(t, err)
	require.Equal(t, uint16(85), rec.Value.Uint16())

	out, err := doc.Serialize()
	require.NoError(t, err)
	require.Equal(t, byte(0x55), out[playerOffset])

	want := append([]byte(nil), data...)
	want[playerOffset] = 0x55
	require.Equal(t, want, out)
	require.True(t, doc.Modified())
}

func TestSetField_Errors(t *testing.T) {
	doc, _ := loadTestDoc(t)

	require.ErrorIs(t, doc.SetField("speed", field.Int(1)), errs.ErrNoOpenSection)
	_, err := doc.Field("speed")
	require.ErrorIs(t, err, errs.ErrNoOpenSection)

	openSection(t, doc, "playerConcept01")

	testCases := []struct {
		name  string
		field string
		value field.Value
		want  error
	}{
		{"unknown field", "stamina", field.Int(1), errs.ErrUnknownField},
		{"padding", "padding00", field.Int(1), errs.ErrReadOnlyField},
		{"int into float", "ratio", field.Int(1), errs.ErrFieldTypeMismatch},
		{"float into bool", "isStarter", field.Float(1), errs.ErrFieldTypeMismatch},
		{"null into bool", "isCaptain", field.Null(), errs.ErrFieldTypeMismatch},
		{"invalid", "speed", field.Value{}, errs.ErrUnsupportedFieldType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, doc.SetField(tc.field, tc.value), tc.want)
		})
	}
	require.False(t, doc.Modified())
}

func TestSetField_Null(t *testing.T) {
	doc, _ := loadTestDoc(t)
	openSection(t, doc, "playerConcept01")

	require.NoError(t, doc.SetField("speed", field.Null()))
	require.NoError(t, doc.SetField("ratio", field.Null()))
	require.NoError(t, doc.SetField("nullTeamId", field.Int(7)))

	out, err := doc.Serialize()
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xFF}, out[playerOffset:playerOffset+2])
	require.Equal(t, []byte{0x00, 0x00, 0xC0, 0x7F}, out[playerOffset+2:playerOffset+6])
	require.Equal(t, []byte{0x07, 0x00}, out[playerOffset+11:playerOffset+13])

	records := openSection(t, doc, "playerConcept01")
	require.True(t, records[1].Value.IsNaN())
	require.NoError(t, doc.SetField("nullTeamId", field.Int(0)))

	out, err = doc.Serialize()
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xFF}, out[playerOffset+11:playerOffset+13], "zero null field writes the sentinel")
}

func TestSubConceptShift(t *testing.T) {
	doc, data := loadTestDoc(t)

	records := openSection(t, doc, "subConcept01")
	require.Len(t, records, 2)
	require.Equal(t, float32(1), records[0].Value.Float32())
	require.Equal(t, uint32(0x7FC00001), records[1].Value.Bits())

	require.NoError(t, doc.SetField("weight00", field.Float(2)))
	out, err := doc.Serialize()
	require.NoError(t, err)

	require.Equal(t, data[subOffset:subOffset+16], out[subOffset:subOffset+16], "prefix untouched")
	require.Equal(t, []byte{0x00, 0x00, 0x00, 0x40}, out[subOffset+16:subOffset+20])
	require.Equal(t, []byte{0x01, 0x00, 0xC0, 0x7F}, out[subOffset+20:subOffset+24], "NaN payload kept")
}

func TestOpenSection_FlushesPrevious(t *testing.T) {
	doc, _ := loadTestDoc(t)
	openSection(t, doc, "playerConcept01")
	require.NoError(t, doc.SetField("isStarter", field.Bool(false)))

	openSection(t, doc, "stadium01")
	records := openSection(t, doc, "playerConcept01")
	require.Equal(t, field.Bool(false), records[2].Value)
}

func TestFlushSection(t *testing.T) {
	t.Run("guard skips single record", func(t *testing.T) {
		doc, data := loadTestDoc(t)
		err := doc.FlushSection("stadium01", []field.Record{{Name: "a", Value: field.Int(9)}})
		require.NoError(t, err)
		out, err := doc.Serialize()
		require.NoError(t, err)
		require.Equal(t, data, out)
	})

	t.Run("overflow leaves buffer untouched", func(t *testing.T) {
		doc, data := loadTestDoc(t)
		records := make([]field.Record, 5)
		for i := range records {
			records[i] = field.Record{Name: "f", Value: field.Int(0xEEEE)}
		}
		err := doc.FlushSection("stadium01", records)
		require.ErrorIs(t, err, errs.ErrSectionOverflow)
		out, err := doc.Serialize()
		require.NoError(t, err)
		require.Equal(t, data, out)
	})

	t.Run("exact fit", func(t *testing.T) {
		doc, _ := loadTestDoc(t)
		records := make([]field.Record, 4)
		for i := range records {
			records[i] = field.Record{Name: "f", Value: field.Int(0x0102)}
		}
		require.NoError(t, doc.FlushSection("stadium01", records))
		out, err := doc.Serialize()
		require.NoError(t, err)
		require.Equal(t, bytes.Repeat([]byte{0x02, 0x01}, 4), out[stadiumOffset:stadiumOffset+8])
	})

	t.Run("unsupported kind", func(t *testing.T) {
		doc, data := loadTestDoc(t)
		err := doc.FlushSection("stadium01", []field.Record{
			{Name: "a", Value: field.Int(1)},
			{Name: "b"},
		})
		require.ErrorIs(t, err, errs.ErrUnsupportedFieldType)
		out, err := doc.Serialize()
		require.NoError(t, err)
		require.Equal(t, data, out)
	})

	t.Run("open section records replaced", func(t *testing.T) {
		doc, _ := loadTestDoc(t)
		records := openSection(t, doc, "playerConcept01")
		records[0].Value = field.Int(99)
		require.NoError(t, doc.FlushSection("playerConcept01", records))
		require.Equal(t, field.Int(99), doc.Records()[0].Value)
	})

	t.Run("unknown section", func(t *testing.T) {
		doc, _ := loadTestDoc(t)
		require.ErrorIs(t, doc.FlushSection("arena01", nil), errs.ErrUnknownSection)
	})
}

func TestCloseSection(t *testing.T) {
	doc, _ := loadTestDoc(t)
	require.NoError(t, doc.CloseSection())

	openSection(t, doc, "playerConcept01")
	require.NoError(t, doc.SetField("speed", field.Int(1)))
	require.NoError(t, doc.CloseSection())
	require.Equal(t, StateLoaded, doc.State())
	require.Nil(t, doc.Records())
	require.True(t, doc.Modified())
}

func TestFind(t *testing.T) {
	doc, _ := loadTestDoc(t)

	_, _, ok := doc.Find("speed")
	require.False(t, ok, "no open section")

	openSection(t, doc, "playerConcept01")

	rec, idx, ok := doc.Find("CAPT")
	require.True(t, ok)
	require.Equal(t, "isCaptain", rec.Name)
	require.Equal(t, 3, idx)

	rec, idx, ok = doc.Find("is")
	require.True(t, ok)
	require.Equal(t, "isStarter", rec.Name, "first match wins")
	require.Equal(t, 2, idx)

	_, _, ok = doc.Find("  ")
	require.False(t, ok)
	_, _, ok = doc.Find("stamina")
	require.False(t, ok)
}

func TestState_String(t *testing.T) {
	require.Equal(t, "loaded", StateLoaded.String())
	require.Equal(t, "section-open", StateSectionOpen.String())
	require.Equal(t, "unknown", State(9).String())
}

func TestFingerprint(t *testing.T) {
	doc, _ := loadTestDoc(t)
	before := doc.Fingerprint()

	openSection(t, doc, "playerConcept01")
	require.NoError(t, doc.SetField("speed", field.Int(81)))
	require.Equal(t, before, doc.Fingerprint(), "unflushed edits are not hashed")

	_, err := doc.Serialize()
	require.NoError(t, err)
	require.NotEqual(t, before, doc.Fingerprint())
}

func TestWithRegistry(t *testing.T) {
	reg := mapper.NewRegistry()
	reg.MustRegister("stadium", mapper.FieldMapperFunc(
		func(codec *field.Codec, buf []byte, offset, length int) (*field.Map, error) {
			dec, err := codec.NewDecoder(buf, offset, offset+length)
			if err != nil {
				return nil, err
			}
			m := field.NewMap()
			for _, name := range []string{"seats", "roof"} {
				v, err := dec.Integer(name)
				if err != nil {
					return nil, err
				}
				m.Set(name, v)
			}

			return m, nil
		}))

	doc, err := Load(testArchive(), testDesc, WithRegistry(reg), WithOneByteBooleans("isCaptain"))
	require.NoError(t, err)

	records := openSection(t, doc, "stadium01")
	require.Equal(t, "seats", records[0].Name)
	require.Equal(t, uint16(0x0201), records[0].Value.Uint16())
	require.True(t, doc.Descriptor().IsOneByteBoolean("isCaptain"))
}
