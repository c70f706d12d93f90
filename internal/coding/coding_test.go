package coding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obdlabs/codingreg/internal/manufacturer"
	"github.com/obdlabs/codingreg/internal/models"
)

func bitDef(address string, byteIdx, bitIdx int, name string) models.CodingBitDefinition {
	return models.CodingBitDefinition{
		Manufacturer:  manufacturer.VAG,
		ModuleAddress: address,
		ByteIndex:     byteIdx,
		BitIndex:      bitIdx,
		Name:          name,
		Category:      models.CategoryComfort,
		SafetyLevel:   models.SafetySafe,
	}
}

func TestDecodeReadsBits(t *testing.T) {
	defs := []models.CodingBitDefinition{
		bitDef("17", 0, 0, "Needle Sweep"),
		bitDef("17", 0, 3, "Lap Timer"),
		bitDef("17", 0, 4, "Digital Speed"),
		bitDef("17", 1, 2, "Efficiency Display"),
	}

	// byte 0 = 0x0B = 0000 1011: bits 0, 1, 3 set
	report := Decode("17", "Instrument Cluster", "0B0400000000", defs)

	assert.Empty(t, report.Error)
	assert.Equal(t, "17", report.ModuleAddress)
	assert.Equal(t, "Instrument Cluster", report.ModuleName)
	assert.Equal(t, "0B0400000000", report.RawBytes)
	assert.Equal(t, 48, report.TotalBits)
	assert.Equal(t, 44, report.UnknownBitCount)

	values := map[string]bool{}
	for _, b := range report.KnownBits {
		values[b.Name] = b.CurrentValue
	}
	assert.Equal(t, map[string]bool{
		"Needle Sweep":       true,
		"Lap Timer":          true,
		"Digital Speed":      false,
		"Efficiency Display": true, // byte 1 = 0x04, bit 2
	}, values)
}

func TestDecodeNormalizesHex(t *testing.T) {
	defs := []models.CodingBitDefinition{bitDef("09", 0, 0, "Coming Home")}

	report := Decode("09", "", " 0b 04\n00 ", defs)
	assert.Empty(t, report.Error)
	assert.Equal(t, "0B0400", report.RawBytes)
	assert.True(t, report.KnownBits[0].CurrentValue)
}

func TestDecodeInvalidHex(t *testing.T) {
	defs := []models.CodingBitDefinition{bitDef("17", 0, 0, "Needle Sweep")}

	for _, raw := range []string{"ZZ", "0B0", "not hex"} {
		report := Decode("17", "Instrument Cluster", raw, defs)
		assert.Equal(t, ErrInvalidHex, report.Error, "input %q", raw)
		assert.Empty(t, report.KnownBits)
		assert.Zero(t, report.TotalBits)
		assert.Zero(t, report.UnknownBitCount)
		// Context survives so the caller can still label the failure.
		assert.Equal(t, "Instrument Cluster", report.ModuleName)
	}
}

func TestDecodeBitBeyondValueIsFalse(t *testing.T) {
	defs := []models.CodingBitDefinition{bitDef("17", 5, 1, "Long Coding Feature")}

	report := Decode("17", "", "FF", defs)
	assert.Empty(t, report.Error)
	assert.Len(t, report.KnownBits, 1)
	assert.False(t, report.KnownBits[0].CurrentValue)
	assert.Equal(t, 8, report.TotalBits)
	assert.Equal(t, 7, report.UnknownBitCount)
}

func TestDecodeEmptyInput(t *testing.T) {
	report := Decode("17", "", "", nil)
	assert.Empty(t, report.Error)
	assert.Empty(t, report.KnownBits)
	assert.Zero(t, report.TotalBits)
	assert.Zero(t, report.UnknownBitCount)
}

func TestEncodeSetsAndClearsBits(t *testing.T) {
	defs := []models.CodingBitDefinition{
		bitDef("17", 0, 0, "Needle Sweep"),
		bitDef("17", 0, 3, "Lap Timer"),
	}

	result := Encode("17", "0B00", defs, []Change{
		{BitName: "needle sweep", Value: false}, // name lookup is case-insensitive
		{BitName: "Lap Timer", Value: true},
	})

	assert.Empty(t, result.Error)
	assert.Equal(t, "0B00", result.CurrentBytes)
	assert.Equal(t, "0A00", result.NewBytes)
	assert.Equal(t, []models.BitChange{
		{BitName: "Needle Sweep", From: true, To: false},
		{BitName: "Lap Timer", From: true, To: true},
	}, result.Applied)
}

func TestEncodeRoundTripsThroughDecode(t *testing.T) {
	defs := []models.CodingBitDefinition{
		bitDef("09", 1, 2, "DRL Enable"),
	}

	encoded := Encode("09", "000000", defs, []Change{{BitName: "DRL Enable", Value: true}})
	assert.Empty(t, encoded.Error)

	decoded := Decode("09", "", encoded.NewBytes, defs)
	assert.True(t, decoded.KnownBits[0].CurrentValue)
}

func TestEncodeUnknownBit(t *testing.T) {
	result := Encode("17", "00", nil, []Change{{BitName: "No Such Bit", Value: true}})
	assert.Equal(t, "Unknown coding bit: No Such Bit", result.Error)
	assert.Empty(t, result.NewBytes)
}

func TestEncodeBitOutOfRange(t *testing.T) {
	defs := []models.CodingBitDefinition{bitDef("17", 4, 0, "Far Bit")}

	result := Encode("17", "0000", defs, []Change{{BitName: "Far Bit", Value: true}})
	assert.Contains(t, result.Error, "beyond the 2-byte coding value")
	assert.Empty(t, result.NewBytes)
}

func TestEncodeInvalidHex(t *testing.T) {
	result := Encode("17", "XY", nil, []Change{{BitName: "anything", Value: true}})
	assert.Equal(t, ErrInvalidHex, result.Error)
}

func TestDiff(t *testing.T) {
	defs := []models.CodingBitDefinition{
		bitDef("17", 0, 0, "Needle Sweep"),
		bitDef("17", 0, 3, "Lap Timer"),
		bitDef("17", 1, 2, "Efficiency Display"),
	}

	changes, err := Diff("0B04", "0A00", defs)
	assert.NoError(t, err)
	assert.Equal(t, []models.BitChange{
		{BitName: "Needle Sweep", From: true, To: false},
		{BitName: "Efficiency Display", From: true, To: false},
	}, changes)
}

func TestDiffNoChanges(t *testing.T) {
	defs := []models.CodingBitDefinition{bitDef("17", 0, 0, "Needle Sweep")}

	changes, err := Diff("0B", "0B", defs)
	assert.NoError(t, err)
	assert.Empty(t, changes)
}

func TestDiffInvalidHex(t *testing.T) {
	_, err := Diff("ZZ", "00", nil)
	assert.Error(t, err)

	_, err = Diff("00", "ZZ", nil)
	assert.Error(t, err)
}
