package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/obdlabs/codingreg/internal/manufacturer"
	"github.com/obdlabs/codingreg/internal/models"
	"github.com/obdlabs/codingreg/internal/registry"
)

func setupTestDB(t *testing.T) *gorm.DB {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&models.ModuleDefinition{},
		&models.CodingBitDefinition{},
		&models.PIDDefinition{},
		&models.CatalogRevision{},
		&models.DiscoveredModule{},
		&models.DiscoveredPID{},
		&models.PIDProfile{},
	))
	return gdb
}

func TestConfidenceForSamples(t *testing.T) {
	cases := []struct {
		samples int
		want    float64
	}{
		{1, 0.6},
		{2, 0.7},
		{3, 0.75},
		{4, 0.75},
		{5, 0.85},
		{9, 0.85},
		{10, 0.95},
		{50, 0.95},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, ConfidenceForSamples(tc.samples), 1e-9, "samples=%d", tc.samples)
	}
}

func TestReportModule(t *testing.T) {
	gdb := setupTestDB(t)

	ack, err := ReportModule(gdb, ModuleReport{
		VIN:           "wvwzzz1kzam123456",
		Manufacturer:  manufacturer.VAG,
		ModuleAddress: "17",
		IsPresent:     true,
		PartNumber:    "5G0920790",
		CodingValue:   "0B0400",
	})
	require.NoError(t, err)
	assert.True(t, ack.Success)
	assert.Equal(t, "WVWZZZ1KZAM", ack.VINPrefix)
	assert.Equal(t, "17", ack.ModuleAddress)

	var fact models.DiscoveredModule
	require.NoError(t, gdb.First(&fact).Error)
	assert.Equal(t, "WVWZZZ1KZAM123456", fact.VIN)
	assert.Equal(t, "WVWZZZ1KZAM", fact.VINPrefix)
	assert.True(t, fact.IsPresent)
	assert.Equal(t, "5G0920790", fact.PartNumber)
}

func TestReportModuleValidation(t *testing.T) {
	gdb := setupTestDB(t)

	_, err := ReportModule(gdb, ModuleReport{ModuleAddress: "17"})
	assert.ErrorContains(t, err, "VIN is required")

	_, err = ReportModule(gdb, ModuleReport{VIN: "WVWZZZ1KZAM123456"})
	assert.ErrorContains(t, err, "moduleAddress is required")
}

func TestReportPIDsCreatesProfile(t *testing.T) {
	gdb := setupTestDB(t)

	ack, err := ReportPIDs(gdb, PIDReport{
		VIN:           "wvwzzz1kzam123456",
		Manufacturer:  manufacturer.VAG,
		WorkingPIDs:   []string{"oil_temp_std", "boost_std_70"},
		FailedPIDs:    []string{"boost_uds_31ce"},
		ResponseTimes: map[string]int{"boost_std_70": 42},
		RawResponses:  map[string]string{"boost_std_70": "41 70 12 34"},
	})
	require.NoError(t, err)
	assert.True(t, ack.Success)
	assert.Equal(t, "WVWZZZ1KZAM", ack.VINPrefix)
	assert.Equal(t, 2, ack.WorkingCount)
	assert.Equal(t, 1, ack.FailedCount)

	var factCount int64
	require.NoError(t, gdb.Model(&models.DiscoveredPID{}).Count(&factCount).Error)
	assert.Equal(t, int64(3), factCount)

	var boostFact models.DiscoveredPID
	require.NoError(t, gdb.Where("pid_id = ?", "boost_std_70").First(&boostFact).Error)
	require.NotNil(t, boostFact.ResponseTimeMS)
	assert.Equal(t, 42, *boostFact.ResponseTimeMS)
	assert.Equal(t, "41 70 12 34", boostFact.RawResponse)

	profile, err := GetProfile(gdb, "WVWZZZ1KZAM123456")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, 1, profile.SampleCount)
	assert.InDelta(t, 0.6, profile.Confidence, 1e-9)
	assert.Equal(t, []string{"boost_std_70", "oil_temp_std"}, profile.WorkingPIDs)
	assert.Equal(t, []string{"boost_uds_31ce"}, profile.FailedPIDs)
	assert.Equal(t, "boost_std_70", profile.BoostPID)
	assert.Equal(t, "oil_temp_std", profile.OilTempPID)
	assert.Empty(t, profile.TransTempPID)
}

func TestReportPIDsValidation(t *testing.T) {
	gdb := setupTestDB(t)

	_, err := ReportPIDs(gdb, PIDReport{WorkingPIDs: []string{"boost_std_70"}})
	assert.ErrorContains(t, err, "VIN is required")

	_, err = ReportPIDs(gdb, PIDReport{VIN: "WVWZZZ1KZAM123456"})
	assert.ErrorContains(t, err, "at least one working or failed PID")
}

func TestProfileConfidenceSteps(t *testing.T) {
	gdb := setupTestDB(t)

	expect := map[int]float64{1: 0.6, 2: 0.7, 3: 0.75, 5: 0.85, 10: 0.95, 12: 0.95}
	for i := 1; i <= 12; i++ {
		_, err := ReportPIDs(gdb, PIDReport{
			VIN:          "WVWZZZ1KZAM123456",
			Manufacturer: manufacturer.VAG,
			WorkingPIDs:  []string{"boost_std_70"},
		})
		require.NoError(t, err)

		want, checked := expect[i]
		if !checked {
			continue
		}
		profile, err := GetProfile(gdb, "WVWZZZ1KZAM123456")
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, i, profile.SampleCount)
		assert.InDelta(t, want, profile.Confidence, 1e-9, "after %d samples", i)
	}
}

func TestWorkingStatusIsSticky(t *testing.T) {
	gdb := setupTestDB(t)
	vin := "WAUZZZ8V5KA000001"

	_, err := ReportPIDs(gdb, PIDReport{
		VIN:          vin,
		Manufacturer: manufacturer.VAG,
		FailedPIDs:   []string{"boost_uds_2270"},
	})
	require.NoError(t, err)

	// One successful sample promotes the PID to working.
	_, err = ReportPIDs(gdb, PIDReport{
		VIN:          vin,
		Manufacturer: manufacturer.VAG,
		WorkingPIDs:  []string{"boost_uds_2270"},
	})
	require.NoError(t, err)

	// A later failure does not demote it.
	_, err = ReportPIDs(gdb, PIDReport{
		VIN:          vin,
		Manufacturer: manufacturer.VAG,
		FailedPIDs:   []string{"boost_uds_2270"},
	})
	require.NoError(t, err)

	profile, err := GetProfile(gdb, vin)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, []string{"boost_uds_2270"}, profile.WorkingPIDs)
	assert.Empty(t, profile.FailedPIDs)
	assert.Equal(t, 3, profile.SampleCount)
}

func TestConvenienceFieldsAreSetOnce(t *testing.T) {
	gdb := setupTestDB(t)
	vin := "WVWZZZAUZHW000001"

	_, err := ReportPIDs(gdb, PIDReport{
		VIN:          vin,
		Manufacturer: manufacturer.VAG,
		WorkingPIDs:  []string{"boost_std_70"},
	})
	require.NoError(t, err)

	// A second working boost PID must not displace the first one recorded.
	_, err = ReportPIDs(gdb, PIDReport{
		VIN:          vin,
		Manufacturer: manufacturer.VAG,
		WorkingPIDs:  []string{"boost_uds_2270", "trans_temp_std"},
	})
	require.NoError(t, err)

	profile, err := GetProfile(gdb, vin)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "boost_std_70", profile.BoostPID)
	assert.Equal(t, "trans_temp_std", profile.TransTempPID)
}

func TestGetProfileMissing(t *testing.T) {
	gdb := setupTestDB(t)

	profile, err := GetProfile(gdb, "WVWZZZ1KZAM123456")
	require.NoError(t, err)
	assert.Nil(t, profile)

	profile, err = GetProfile(gdb, "")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestGetStats(t *testing.T) {
	gdb := setupTestDB(t)

	_, err := ReportPIDs(gdb, PIDReport{
		VIN:          "WVWZZZ1KZAM123456",
		Manufacturer: manufacturer.VAG,
		WorkingPIDs:  []string{"boost_std_70", "oil_temp_std"},
		FailedPIDs:   []string{"boost_uds_31ce"},
	})
	require.NoError(t, err)
	_, err = ReportPIDs(gdb, PIDReport{
		VIN:          "5YJ3E1EA7KF000001",
		Manufacturer: manufacturer.Generic,
		WorkingPIDs:  []string{"boost_std_70"},
	})
	require.NoError(t, err)

	stats, err := GetStats(gdb, "")
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalReports)
	assert.Equal(t, int64(3), stats.SuccessfulReports)
	assert.Equal(t, int64(2), stats.UniqueVehicles)
	assert.InDelta(t, 75.0, stats.SuccessRate, 1e-9)
	require.NotEmpty(t, stats.TopWorkingPIDs)
	assert.Equal(t, "boost_std_70", stats.TopWorkingPIDs[0].PIDID)
	assert.Equal(t, int64(2), stats.TopWorkingPIDs[0].Count)

	// Manufacturer filter narrows every number.
	stats, err = GetStats(gdb, manufacturer.VAG)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalReports)
	assert.Equal(t, int64(2), stats.SuccessfulReports)
	assert.Equal(t, int64(1), stats.UniqueVehicles)
}

func TestRecommendPIDsWithoutProfile(t *testing.T) {
	gdb := setupTestDB(t)
	for _, cat := range registry.BuiltinCatalogs() {
		_, err := registry.Apply(gdb, cat, "")
		require.NoError(t, err)
	}

	rec, err := RecommendPIDs(gdb, "", manufacturer.VAG)
	require.NoError(t, err)
	assert.Empty(t, rec.VINPrefix)
	assert.Nil(t, rec.Profile)
	assert.Len(t, rec.AllPIDs, 11)

	boostIDs := make([]string, 0, len(rec.BoostPIDs))
	for _, def := range rec.BoostPIDs {
		boostIDs = append(boostIDs, def.PIDID)
	}
	assert.Contains(t, boostIDs, "boost_std_70")
	assert.Contains(t, boostIDs, "boost_uds_2270")

	require.NotEmpty(t, rec.OilTempPIDs)
	require.NotEmpty(t, rec.ChargeAirTempPIDs)
}

func TestRecommendPIDsRanksByProfile(t *testing.T) {
	gdb := setupTestDB(t)
	for _, cat := range registry.BuiltinCatalogs() {
		_, err := registry.Apply(gdb, cat, "")
		require.NoError(t, err)
	}

	vin := "WVWZZZ1KZAM123456"
	_, err := ReportPIDs(gdb, PIDReport{
		VIN:          vin,
		Manufacturer: manufacturer.VAG,
		WorkingPIDs:  []string{"boost_uds_2270"},
		FailedPIDs:   []string{"boost_std_70"},
	})
	require.NoError(t, err)

	rec, err := RecommendPIDs(gdb, vin, manufacturer.VAG)
	require.NoError(t, err)
	require.NotNil(t, rec.Profile)
	assert.Equal(t, "WVWZZZ1KZAM", rec.VINPrefix)

	require.Len(t, rec.AllPIDs, 11)
	assert.Equal(t, "boost_uds_2270", rec.AllPIDs[0].PIDID, "confirmed-working PID sorts first")
	assert.Equal(t, "boost_std_70", rec.AllPIDs[len(rec.AllPIDs)-1].PIDID, "known-failed PID sorts last")
}
