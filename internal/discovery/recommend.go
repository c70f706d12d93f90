package discovery

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/obdlabs/codingreg/internal/manufacturer"
	"github.com/obdlabs/codingreg/internal/models"
	"github.com/obdlabs/codingreg/internal/registry"
)

// Recommendation combines the catalog PIDs for a manufacturer with what is
// known about a specific vehicle line, grouped by the gauges clients most
// often build.
type Recommendation struct {
	VINPrefix         string                 `json:"vinPrefix"`
	Manufacturer      manufacturer.Group     `json:"manufacturer"`
	Profile           *models.PIDProfile     `json:"profile"`
	BoostPIDs         []models.PIDDefinition `json:"boostPids"`
	OilTempPIDs       []models.PIDDefinition `json:"oilTempPids"`
	ChargeAirTempPIDs []models.PIDDefinition `json:"chargeAirTempPids"`
	AllPIDs           []models.PIDDefinition `json:"allPids"`
}

// RecommendPIDs ranks the catalog PIDs for a vehicle. PIDs the fleet has
// confirmed working for this VIN prefix sort first, known-failed ones last;
// with no profile the catalog priority order stands. vin may be empty for a
// manufacturer-only query.
func RecommendPIDs(db *gorm.DB, vin string, group manufacturer.Group) (*Recommendation, error) {
	defs, err := registry.ListPIDs(db, group, "", "")
	if err != nil {
		return nil, fmt.Errorf("listing PIDs for %s: %w", group, err)
	}

	rec := &Recommendation{
		VINPrefix:         manufacturer.VINPrefix(vin),
		Manufacturer:      group,
		BoostPIDs:         []models.PIDDefinition{},
		OilTempPIDs:       []models.PIDDefinition{},
		ChargeAirTempPIDs: []models.PIDDefinition{},
	}

	if vin != "" {
		profile, err := GetProfile(db, vin)
		if err != nil {
			return nil, err
		}
		rec.Profile = profile
		if profile != nil {
			defs = rankByProfile(defs, profile)
		}
	}
	rec.AllPIDs = defs

	for _, def := range defs {
		id := strings.ToLower(def.PIDID)
		switch {
		case strings.Contains(id, "boost") || def.PID == "70" || def.PID == "87" || def.PID == "6F":
			rec.BoostPIDs = append(rec.BoostPIDs, def)
		case strings.Contains(id, "oil_temp") || def.PID == "5C":
			rec.OilTempPIDs = append(rec.OilTempPIDs, def)
		case strings.Contains(id, "charge_air") || def.PID == "77":
			rec.ChargeAirTempPIDs = append(rec.ChargeAirTempPIDs, def)
		}
	}
	return rec, nil
}

// rankByProfile stably reorders defs so confirmed-working PIDs come first
// and known-failed ones last. Ties keep catalog priority order.
func rankByProfile(defs []models.PIDDefinition, profile *models.PIDProfile) []models.PIDDefinition {
	working := make(map[string]bool, len(profile.WorkingPIDs))
	for _, id := range profile.WorkingPIDs {
		working[id] = true
	}
	failed := make(map[string]bool, len(profile.FailedPIDs))
	for _, id := range profile.FailedPIDs {
		failed[id] = true
	}

	rank := func(d models.PIDDefinition) int {
		switch {
		case working[d.PIDID]:
			return 0
		case failed[d.PIDID]:
			return 2
		default:
			return 1
		}
	}

	out := append([]models.PIDDefinition{}, defs...)
	sort.SliceStable(out, func(i, j int) bool { return rank(out[i]) < rank(out[j]) })
	return out
}
