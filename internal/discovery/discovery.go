// Package discovery ingests crowdsourced field reports of module presence
// and PID behavior and maintains the per-VIN-prefix profiles that improve
// as samples accumulate.
package discovery

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/obdlabs/codingreg/internal/manufacturer"
	"github.com/obdlabs/codingreg/internal/models"
)

// ErrProfileConflict is returned when two reports race to create the same
// profile row; the losing report should be retried.
var ErrProfileConflict = errors.New("pid profile changed concurrently")

// ModuleReport is one field observation of a module on one vehicle.
type ModuleReport struct {
	VIN             string
	Manufacturer    manufacturer.Group
	ModuleAddress   string
	IsPresent       bool
	PartNumber      string
	SoftwareVersion string
	HardwareVersion string
	CodingValue     string
	DeviceType      string
	ReportedBy      *uuid.UUID
}

// ModuleAck acknowledges a stored module report.
type ModuleAck struct {
	Success       bool   `json:"success"`
	VINPrefix     string `json:"vinPrefix"`
	ModuleAddress string `json:"moduleAddress"`
}

// PIDReport is one scan session's worth of PID outcomes for one vehicle.
type PIDReport struct {
	VIN           string
	Manufacturer  manufacturer.Group
	WorkingPIDs   []string
	FailedPIDs    []string
	DeviceType    string
	ReportedBy    *uuid.UUID
	ResponseTimes map[string]int
	RawResponses  map[string]string
}

// PIDAck acknowledges a stored PID report.
type PIDAck struct {
	Success      bool   `json:"success"`
	VINPrefix    string `json:"vinPrefix"`
	WorkingCount int    `json:"workingCount"`
	FailedCount  int    `json:"failedCount"`
}

// ReportModule stores one immutable module-presence fact. There is no
// aggregate profile for module presence; consumers read the fact rows
// directly.
func ReportModule(db *gorm.DB, report ModuleReport) (*ModuleAck, error) {
	if strings.TrimSpace(report.VIN) == "" {
		return nil, fmt.Errorf("VIN is required")
	}
	if report.ModuleAddress == "" {
		return nil, fmt.Errorf("moduleAddress is required")
	}

	prefix := manufacturer.VINPrefix(report.VIN)
	fact := models.DiscoveredModule{
		VIN:             strings.ToUpper(strings.TrimSpace(report.VIN)),
		VINPrefix:       prefix,
		Manufacturer:    report.Manufacturer,
		ModuleAddress:   report.ModuleAddress,
		IsPresent:       report.IsPresent,
		PartNumber:      report.PartNumber,
		SoftwareVersion: report.SoftwareVersion,
		HardwareVersion: report.HardwareVersion,
		CodingValue:     report.CodingValue,
		DeviceType:      report.DeviceType,
		ReportedBy:      report.ReportedBy,
	}
	if err := db.Create(&fact).Error; err != nil {
		return nil, fmt.Errorf("storing module report: %w", err)
	}

	return &ModuleAck{Success: true, VINPrefix: prefix, ModuleAddress: report.ModuleAddress}, nil
}

// ReportPIDs stores one immutable fact row per reported PID and folds the
// report into the vin-prefix profile. Fact insert and profile upsert run in
// one transaction; on postgres the profile row is read FOR UPDATE so that
// concurrent reports for the same prefix serialize instead of losing set
// unions (sqlite has a single writer, the clause would be a syntax error
// there).
func ReportPIDs(db *gorm.DB, report PIDReport) (*PIDAck, error) {
	if strings.TrimSpace(report.VIN) == "" {
		return nil, fmt.Errorf("VIN is required")
	}
	if len(report.WorkingPIDs) == 0 && len(report.FailedPIDs) == 0 {
		return nil, fmt.Errorf("at least one working or failed PID required")
	}

	vin := strings.ToUpper(strings.TrimSpace(report.VIN))
	prefix := manufacturer.VINPrefix(vin)

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, pidID := range report.WorkingPIDs {
			fact := models.DiscoveredPID{
				VIN:          vin,
				VINPrefix:    prefix,
				Manufacturer: report.Manufacturer,
				PIDID:        pidID,
				Success:      true,
				DeviceType:   report.DeviceType,
				ReportedBy:   report.ReportedBy,
			}
			if ms, ok := report.ResponseTimes[pidID]; ok {
				v := ms
				fact.ResponseTimeMS = &v
			}
			if raw, ok := report.RawResponses[pidID]; ok {
				fact.RawResponse = raw
			}
			if err := tx.Create(&fact).Error; err != nil {
				return fmt.Errorf("storing working PID %s: %w", pidID, err)
			}
		}
		for _, pidID := range report.FailedPIDs {
			fact := models.DiscoveredPID{
				VIN:          vin,
				VINPrefix:    prefix,
				Manufacturer: report.Manufacturer,
				PIDID:        pidID,
				Success:      false,
				DeviceType:   report.DeviceType,
				ReportedBy:   report.ReportedBy,
			}
			if err := tx.Create(&fact).Error; err != nil {
				return fmt.Errorf("storing failed PID %s: %w", pidID, err)
			}
		}

		return upsertProfile(tx, prefix, report.Manufacturer, report.WorkingPIDs, report.FailedPIDs)
	})
	if err != nil {
		return nil, err
	}

	return &PIDAck{
		Success:      true,
		VINPrefix:    prefix,
		WorkingCount: len(report.WorkingPIDs),
		FailedCount:  len(report.FailedPIDs),
	}, nil
}

// upsertProfile folds one report into the profile row for a prefix.
// Working status is sticky: a PID that ever succeeded is removed from the
// failed set and can never re-enter it.
func upsertProfile(tx *gorm.DB, prefix string, group manufacturer.Group, newWorking, newFailed []string) error {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var profile models.PIDProfile
	err := q.Where("vin_prefix = ?", prefix).First(&profile).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		working := uniqueSorted(newWorking)
		profile = models.PIDProfile{
			VINPrefix:    prefix,
			Manufacturer: group,
			WorkingPIDs:  working,
			FailedPIDs:   subtract(uniqueSorted(newFailed), working),
			SampleCount:  1,
			Confidence:   ConfidenceForSamples(1),
		}
		setConveniencePIDs(&profile, newWorking)
		if err := tx.Create(&profile).Error; err != nil {
			// A racing report created the row first; the unique index on
			// vin_prefix rejects ours. Surface it as retryable rather
			// than dropping the report.
			return fmt.Errorf("%w: profile for %s: %v", ErrProfileConflict, prefix, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("loading profile for %s: %w", prefix, err)
	}

	working := union(profile.WorkingPIDs, newWorking)
	profile.WorkingPIDs = working
	profile.FailedPIDs = subtract(union(profile.FailedPIDs, newFailed), working)
	profile.SampleCount++
	profile.Confidence = ConfidenceForSamples(profile.SampleCount)
	setConveniencePIDs(&profile, newWorking)

	if err := tx.Save(&profile).Error; err != nil {
		return fmt.Errorf("updating profile for %s: %w", prefix, err)
	}
	return nil
}

// ConfidenceForSamples is the profile trust score: a monotonic step
// function of sample volume only. It deliberately does not measure
// agreement between samples; contradictory reports still raise it.
func ConfidenceForSamples(n int) float64 {
	switch {
	case n >= 10:
		return 0.95
	case n >= 5:
		return 0.85
	case n >= 3:
		return 0.75
	default:
		return 0.5 + 0.1*float64(n)
	}
}

// setConveniencePIDs fills the named shortcut fields the first time a
// matching PID id shows up working. Existing values are never overwritten.
func setConveniencePIDs(profile *models.PIDProfile, working []string) {
	for _, pidID := range working {
		id := strings.ToLower(pidID)
		switch {
		case strings.Contains(id, "boost") && profile.BoostPID == "":
			profile.BoostPID = pidID
		case strings.Contains(id, "oil_temp") && profile.OilTempPID == "":
			profile.OilTempPID = pidID
		case strings.Contains(id, "charge_air") && profile.ChargeAirTempPID == "":
			profile.ChargeAirTempPID = pidID
		case strings.Contains(id, "trans_temp") && profile.TransTempPID == "":
			profile.TransTempPID = pidID
		}
	}
}

// GetProfile returns the accumulated profile for a VIN's prefix, or
// (nil, nil) when no reports exist yet.
func GetProfile(db *gorm.DB, vin string) (*models.PIDProfile, error) {
	prefix := manufacturer.VINPrefix(vin)
	if prefix == "" {
		return nil, nil
	}
	var profile models.PIDProfile
	err := db.Where("vin_prefix = ?", prefix).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile for %s: %w", prefix, err)
	}
	return &profile, nil
}

// Stats summarizes the PID fact table, optionally per manufacturer.
type Stats struct {
	TotalReports      int64        `json:"totalReports"`
	SuccessfulReports int64        `json:"successfulReports"`
	UniqueVehicles    int64        `json:"uniqueVehicles"`
	SuccessRate       float64      `json:"successRate"`
	TopWorkingPIDs    []PIDIDCount `json:"topWorkingPIDs"`
}

// PIDIDCount is one entry of the top-working-PIDs leaderboard. The column
// tag matters: gorm's default naming would map PIDID to p_id_id and the
// leaderboard scan would come back with empty ids.
type PIDIDCount struct {
	PIDID string `gorm:"column:pid_id" json:"pidId"`
	Count int64  `gorm:"column:count" json:"count"`
}

// GetStats computes discovery volume statistics. group == "" means all
// manufacturers.
func GetStats(db *gorm.DB, group manufacturer.Group) (*Stats, error) {
	base := db.Model(&models.DiscoveredPID{})
	if group != "" {
		base = base.Where("manufacturer = ?", group)
	}

	stats := &Stats{TopWorkingPIDs: []PIDIDCount{}}
	if err := base.Session(&gorm.Session{}).Count(&stats.TotalReports).Error; err != nil {
		return nil, fmt.Errorf("counting reports: %w", err)
	}
	if err := base.Session(&gorm.Session{}).Where("success = ?", true).Count(&stats.SuccessfulReports).Error; err != nil {
		return nil, fmt.Errorf("counting successful reports: %w", err)
	}
	if err := base.Session(&gorm.Session{}).Distinct("vin_prefix").Count(&stats.UniqueVehicles).Error; err != nil {
		return nil, fmt.Errorf("counting unique vehicles: %w", err)
	}
	if stats.TotalReports > 0 {
		stats.SuccessRate = float64(stats.SuccessfulReports) / float64(stats.TotalReports) * 100
	}

	err := base.Session(&gorm.Session{}).
		Select("pid_id, count(*) as count").
		Where("success = ?", true).
		Group("pid_id").
		Order("count DESC").
		Limit(10).
		Scan(&stats.TopWorkingPIDs).Error
	if err != nil {
		return nil, fmt.Errorf("ranking working PIDs: %w", err)
	}
	return stats, nil
}

func uniqueSorted(values []string) []string {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func union(a, b []string) []string {
	return uniqueSorted(append(append([]string{}, a...), b...))
}

func subtract(a, b []string) []string {
	remove := make(map[string]bool, len(b))
	for _, v := range b {
		remove[v] = true
	}
	out := []string{}
	for _, v := range a {
		if !remove[v] {
			out = append(out, v)
		}
	}
	return out
}
