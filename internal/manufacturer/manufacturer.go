package manufacturer

import (
	"fmt"
	"strings"
)

// Group is the closed manufacturer taxonomy that partitions the module,
// coding-bit, and PID registries. Free-text vehicle makes enter the system
// only through Classify; everywhere else the code deals in Group values.
type Group string

const (
	VAG        Group = "VAG"
	BMW        Group = "BMW"
	Toyota     Group = "TOYOTA"
	GM         Group = "GM"
	Ford       Group = "FORD"
	Stellantis Group = "STELLANTIS"
	Honda      Group = "HONDA"
	Nissan     Group = "NISSAN"
	Hyundai    Group = "HYUNDAI"
	Mercedes   Group = "MERCEDES"
	Generic    Group = "GENERIC"
)

// groupBrands maps each group to the brand substrings that select it.
// Matching is substring containment on the lowercased, trimmed make.
var groupBrands = []struct {
	group  Group
	brands []string
}{
	{VAG, []string{"volkswagen", "vw", "audi", "porsche", "lamborghini", "bentley", "bugatti", "seat", "skoda", "cupra"}},
	{BMW, []string{"bmw", "mini", "rolls-royce", "rolls royce"}},
	{Toyota, []string{"toyota", "lexus", "scion"}},
	{GM, []string{"chevrolet", "chevy", "gmc", "cadillac", "buick", "oldsmobile", "pontiac", "saturn", "hummer"}},
	{Ford, []string{"ford", "lincoln", "mercury"}},
	{Stellantis, []string{"chrysler", "dodge", "jeep", "ram", "fiat", "alfa romeo", "maserati", "peugeot", "citroen", "opel", "vauxhall"}},
	{Honda, []string{"honda", "acura"}},
	{Nissan, []string{"nissan", "infiniti", "datsun"}},
	{Hyundai, []string{"hyundai", "kia", "genesis"}},
	{Mercedes, []string{"mercedes", "mercedes-benz", "smart", "maybach"}},
}

// Classify maps a free-text vehicle make to its manufacturer group.
// The groups are checked in the order listed in groupBrands and the first
// match wins; that order is part of the contract, not an implementation
// detail, since growing brand lists could otherwise change results.
// Empty or unrecognized input classifies as Generic.
func Classify(make string) Group {
	normalized := strings.ToLower(strings.TrimSpace(make))
	if normalized == "" {
		return Generic
	}
	for _, g := range groupBrands {
		for _, brand := range g.brands {
			if strings.Contains(normalized, brand) {
				return g.group
			}
		}
	}
	return Generic
}

// Parse converts an exact group name (case-insensitive) to a Group.
// Unlike Classify it rejects anything outside the taxonomy, which is what
// route parameters like /modules/{manufacturer} need.
func Parse(s string) (Group, error) {
	switch Group(strings.ToUpper(strings.TrimSpace(s))) {
	case VAG:
		return VAG, nil
	case BMW:
		return BMW, nil
	case Toyota:
		return Toyota, nil
	case GM:
		return GM, nil
	case Ford:
		return Ford, nil
	case Stellantis:
		return Stellantis, nil
	case Honda:
		return Honda, nil
	case Nissan:
		return Nissan, nil
	case Hyundai:
		return Hyundai, nil
	case Mercedes:
		return Mercedes, nil
	case Generic:
		return Generic, nil
	}
	return Generic, fmt.Errorf("invalid manufacturer: %s", s)
}

// VINPrefix derives the platform-matching key from a VIN: the first 11
// characters, uppercased. VINs shorter than 11 characters are used whole.
// The first 11 characters of a VIN encode manufacturer, plant, model and
// year, so vehicles sharing a prefix share platform with high probability.
func VINPrefix(vin string) string {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	if len(vin) > 11 {
		return vin[:11]
	}
	return vin
}
