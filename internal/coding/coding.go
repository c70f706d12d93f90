// Package coding implements the bitfield decode/encode engine: it turns an
// opaque hex byte string read from an ECU into labeled boolean feature
// flags using the registry's bit definitions, and back again. Everything
// here is a pure function of its inputs; nothing touches the database.
package coding

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/obdlabs/codingreg/internal/models"
)

// ErrInvalidHex is the in-band error message for malformed byte strings.
// It is returned inside the report rather than as a Go error because the
// caller wants to echo the failure back to an end user alongside the module
// context (see Decode).
const ErrInvalidHex = "Invalid hex format"

// BitReport is one decoded bit: the registry definition plus its current
// value in the bytes that were read.
type BitReport struct {
	ByteIndex    int      `json:"byteIndex"`
	BitIndex     int      `json:"bitIndex"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	SafetyLevel  string   `json:"safetyLevel"`
	Platforms    []string `json:"platforms"`
	Requires     []string `json:"requires"`
	Conflicts    []string `json:"conflicts"`
	IsVerified   bool     `json:"isVerified"`
	CurrentValue bool     `json:"currentValue"`
}

// Report is the result of decoding one module's coding bytes.
type Report struct {
	ModuleAddress   string      `json:"moduleAddress"`
	ModuleName      string      `json:"moduleName"`
	RawBytes        string      `json:"rawBytes"`
	KnownBits       []BitReport `json:"knownBits"`
	UnknownBitCount int         `json:"unknownBitCount"`
	TotalBits       int         `json:"totalBits"`
	Error           string      `json:"error,omitempty"`
}

// Change is one requested bit flip for Encode, addressed by bit name.
type Change struct {
	BitName string `json:"bitName"`
	Value   bool   `json:"value"`
}

// EncodeResult is the outcome of applying bit changes to coding bytes.
type EncodeResult struct {
	ModuleAddress string             `json:"moduleAddress"`
	CurrentBytes  string             `json:"currentBytes"`
	NewBytes      string             `json:"newBytes"`
	Applied       []models.BitChange `json:"applied"`
	Error         string             `json:"error,omitempty"`
}

// normalizeHex strips whitespace and uppercases a raw byte string.
func normalizeHex(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// Decode parses raw coding bytes against the module's bit definitions and
// returns a fully labeled report.
//
// Malformed hex (odd length, non-hex characters) is a reported condition,
// not a returned error: the report comes back with empty KnownBits, zero
// counts, and Error set, so the caller can still show the module context.
// Definitions whose byte index lies beyond the parsed bytes decode to
// false; the bit simply is not present in a response of this length.
func Decode(moduleAddress, moduleName, rawHex string, defs []models.CodingBitDefinition) Report {
	raw := normalizeHex(rawHex)

	report := Report{
		ModuleAddress: moduleAddress,
		ModuleName:    moduleName,
		RawBytes:      raw,
		KnownBits:     []BitReport{},
	}

	byteValues, err := hex.DecodeString(raw)
	if err != nil {
		report.Error = ErrInvalidHex
		return report
	}

	for _, def := range defs {
		current := false
		if def.ByteIndex >= 0 && def.ByteIndex < len(byteValues) && def.BitIndex >= 0 && def.BitIndex <= 7 {
			current = (byteValues[def.ByteIndex]>>uint(def.BitIndex))&1 == 1
		}
		report.KnownBits = append(report.KnownBits, BitReport{
			ByteIndex:    def.ByteIndex,
			BitIndex:     def.BitIndex,
			Name:         def.Name,
			Description:  def.Description,
			Category:     string(def.Category),
			SafetyLevel:  string(def.SafetyLevel),
			Platforms:    emptyIfNil(def.Platforms),
			Requires:     emptyIfNil(def.Requires),
			Conflicts:    emptyIfNil(def.Conflicts),
			IsVerified:   def.IsVerified,
			CurrentValue: current,
		})
	}

	report.TotalBits = len(byteValues) * 8
	report.UnknownBitCount = report.TotalBits - len(report.KnownBits)
	return report
}

// Encode is the inverse of Decode: it applies named bit changes to the
// current coding bytes and re-serializes to hex for write-back. Failures
// (bad hex, unknown bit name, bit outside the byte range) are reported
// in-band like Decode's, since the same UI consumes them.
func Encode(moduleAddress, currentHex string, defs []models.CodingBitDefinition, changes []Change) EncodeResult {
	raw := normalizeHex(currentHex)

	result := EncodeResult{
		ModuleAddress: moduleAddress,
		CurrentBytes:  raw,
		Applied:       []models.BitChange{},
	}

	byteValues, err := hex.DecodeString(raw)
	if err != nil {
		result.Error = ErrInvalidHex
		return result
	}

	byName := make(map[string]models.CodingBitDefinition, len(defs))
	for _, def := range defs {
		byName[strings.ToLower(def.Name)] = def
	}

	for _, ch := range changes {
		def, ok := byName[strings.ToLower(ch.BitName)]
		if !ok {
			result.Error = fmt.Sprintf("Unknown coding bit: %s", ch.BitName)
			return result
		}
		if def.ByteIndex < 0 || def.ByteIndex >= len(byteValues) {
			result.Error = fmt.Sprintf("Bit %q is at byte %d, beyond the %d-byte coding value", def.Name, def.ByteIndex, len(byteValues))
			return result
		}

		mask := byte(1) << uint(def.BitIndex)
		before := byteValues[def.ByteIndex]&mask != 0
		if ch.Value {
			byteValues[def.ByteIndex] |= mask
		} else {
			byteValues[def.ByteIndex] &^= mask
		}
		result.Applied = append(result.Applied, models.BitChange{
			BitName: def.Name,
			From:    before,
			To:      ch.Value,
		})
	}

	result.NewBytes = strings.ToUpper(hex.EncodeToString(byteValues))
	return result
}

// Diff compares two coding values bit-by-bit against the definitions and
// returns the named changes, in definition order. It is the helper callers
// use to fill the history ledger's changes list.
func Diff(beforeHex, afterHex string, defs []models.CodingBitDefinition) ([]models.BitChange, error) {
	before, err := hex.DecodeString(normalizeHex(beforeHex))
	if err != nil {
		return nil, fmt.Errorf("invalid before bytes: %w", err)
	}
	after, err := hex.DecodeString(normalizeHex(afterHex))
	if err != nil {
		return nil, fmt.Errorf("invalid after bytes: %w", err)
	}

	changes := []models.BitChange{}
	for _, def := range defs {
		if def.ByteIndex < 0 || def.BitIndex < 0 || def.BitIndex > 7 {
			continue
		}
		b := bitAt(before, def.ByteIndex, def.BitIndex)
		a := bitAt(after, def.ByteIndex, def.BitIndex)
		if b != a {
			changes = append(changes, models.BitChange{BitName: def.Name, From: b, To: a})
		}
	}
	return changes, nil
}

func bitAt(bytes []byte, byteIdx, bitIdx int) bool {
	if byteIdx >= len(bytes) {
		return false
	}
	return (bytes[byteIdx]>>uint(bitIdx))&1 == 1
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
