package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/obdlabs/codingreg/internal/manufacturer"
	"github.com/obdlabs/codingreg/internal/models"
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
	))
	return gdb
}

func seedBuiltin(t *testing.T, gdb *gorm.DB) []ApplyResult {
	results := make([]ApplyResult, 0, 2)
	for _, cat := range BuiltinCatalogs() {
		result, err := Apply(gdb, cat, "")
		require.NoError(t, err)
		results = append(results, *result)
	}
	return results
}

func TestApplyBuiltinCatalogs(t *testing.T) {
	gdb := setupTestDB(t)

	results := seedBuiltin(t, gdb)
	require.Len(t, results, 2)

	vag := results[0]
	assert.Equal(t, manufacturer.VAG, vag.Manufacturer)
	assert.Equal(t, 38, vag.ModulesCreated)
	assert.Equal(t, 0, vag.ModulesUpdated)
	assert.Equal(t, 29, vag.BitsCreated)
	assert.Equal(t, 0, vag.BitsUpdated)
	assert.NotEmpty(t, vag.Checksum)

	pids := results[1]
	assert.Equal(t, manufacturer.Generic, pids.Manufacturer)
	assert.Equal(t, 11, pids.PIDsCreated)
	assert.Equal(t, 0, pids.PIDsUpdated)
}

func TestApplyIsIdempotent(t *testing.T) {
	gdb := setupTestDB(t)
	seedBuiltin(t, gdb)

	// Second application updates in place instead of duplicating.
	results := seedBuiltin(t, gdb)
	vag := results[0]
	assert.Equal(t, 0, vag.ModulesCreated)
	assert.Equal(t, 38, vag.ModulesUpdated)
	assert.Equal(t, 0, vag.BitsCreated)
	assert.Equal(t, 29, vag.BitsUpdated)

	var moduleCount, bitCount, pidCount int64
	require.NoError(t, gdb.Model(&models.ModuleDefinition{}).Count(&moduleCount).Error)
	require.NoError(t, gdb.Model(&models.CodingBitDefinition{}).Count(&bitCount).Error)
	require.NoError(t, gdb.Model(&models.PIDDefinition{}).Count(&pidCount).Error)
	assert.Equal(t, int64(38), moduleCount)
	assert.Equal(t, int64(29), bitCount)
	assert.Equal(t, int64(11), pidCount)

	// One revision per (manufacturer, version), not per application.
	var revisionCount int64
	require.NoError(t, gdb.Model(&models.CatalogRevision{}).Count(&revisionCount).Error)
	assert.Equal(t, int64(2), revisionCount)
}

func TestApplyValidation(t *testing.T) {
	gdb := setupTestDB(t)

	_, err := Apply(gdb, Catalog{Version: "1.0.0"}, "")
	assert.ErrorContains(t, err, "manufacturer is required")

	_, err = Apply(gdb, Catalog{Manufacturer: manufacturer.VAG, Version: "not-semver"}, "")
	assert.ErrorContains(t, err, "invalid catalog version")

	_, err = Apply(gdb, Catalog{
		Manufacturer: manufacturer.VAG,
		Version:      "1.0.0",
		CodingBits:   []CatalogBit{{ModuleAddress: "17", ByteIndex: 0, BitIndex: 9, Name: "Bad Bit"}},
	}, "")
	assert.ErrorContains(t, err, "bit index in 0..7")
}

func TestListModulesOrdering(t *testing.T) {
	gdb := setupTestDB(t)
	seedBuiltin(t, gdb)

	modules, err := ListModules(gdb, manufacturer.VAG, "")
	require.NoError(t, err)
	require.Len(t, modules, 38)

	// Priority order: engine first, then transmission.
	assert.Equal(t, "01", modules[0].Address)
	assert.Equal(t, "02", modules[1].Address)

	// Nothing cataloged for BMW yet.
	modules, err = ListModules(gdb, manufacturer.BMW, "")
	require.NoError(t, err)
	assert.Empty(t, modules)
}

func TestListModulesPlatformFilter(t *testing.T) {
	gdb := setupTestDB(t)
	cat := Catalog{
		Manufacturer: manufacturer.VAG,
		Version:      "1.0.0",
		Modules: []CatalogModule{
			{Address: "17", Name: "Cluster", CANID: "714", Priority: 1},
			{Address: "09", Name: "BCM", CANID: "710", Platforms: []string{"MQB"}, Priority: 2},
			{Address: "55", Name: "Headlights", CANID: "737", Platforms: []string{"MLB"}, Priority: 3},
		},
	}
	_, err := Apply(gdb, cat, "")
	require.NoError(t, err)

	modules, err := ListModules(gdb, manufacturer.VAG, "MQB")
	require.NoError(t, err)
	require.Len(t, modules, 2) // unrestricted module plus the MQB one
	assert.Equal(t, "17", modules[0].Address)
	assert.Equal(t, "09", modules[1].Address)
}

func TestGetModule(t *testing.T) {
	gdb := setupTestDB(t)
	seedBuiltin(t, gdb)

	module, err := GetModule(gdb, manufacturer.VAG, "17")
	require.NoError(t, err)
	require.NotNil(t, module)
	assert.Equal(t, "Instrument Cluster", module.Name)
	assert.Equal(t, "F19E", module.CodingDID)

	// Unknown module is not an error.
	module, err = GetModule(gdb, manufacturer.VAG, "FF")
	require.NoError(t, err)
	assert.Nil(t, module)
}

func TestListCodingBitsOrdering(t *testing.T) {
	gdb := setupTestDB(t)
	seedBuiltin(t, gdb)

	bits, err := ListCodingBits(gdb, manufacturer.VAG, "17", "")
	require.NoError(t, err)
	require.Len(t, bits, 8)

	for i := 1; i < len(bits); i++ {
		prev, cur := bits[i-1], bits[i]
		ok := prev.ByteIndex < cur.ByteIndex ||
			(prev.ByteIndex == cur.ByteIndex && prev.BitIndex < cur.BitIndex)
		assert.True(t, ok, "bits out of order at %d: %+v then %+v", i, prev, cur)
	}
	assert.Equal(t, "Needle Sweep", bits[0].Name)
}

func TestListPIDsVisibility(t *testing.T) {
	gdb := setupTestDB(t)
	seedBuiltin(t, gdb)

	// VAG sees its own PIDs plus the generic set.
	pids, err := ListPIDs(gdb, manufacturer.VAG, "", "")
	require.NoError(t, err)
	assert.Len(t, pids, 11)

	// BMW has no brand PIDs, only the generic ones.
	pids, err = ListPIDs(gdb, manufacturer.BMW, "", "")
	require.NoError(t, err)
	assert.Len(t, pids, 5)

	// Category filter.
	pids, err = ListPIDs(gdb, manufacturer.VAG, models.PIDCategoryTransmission, "")
	require.NoError(t, err)
	require.Len(t, pids, 1)
	assert.Equal(t, "trans_temp_std", pids[0].PIDID)

	// Platform filter drops PIDs bound to other platforms.
	pids, err = ListPIDs(gdb, manufacturer.VAG, "", "MQB")
	require.NoError(t, err)
	for _, p := range pids {
		assert.NotEqual(t, "MLB", p.Platform)
	}
	assert.Len(t, pids, 10)
}

func TestCanonicalJSONChecksumIsStable(t *testing.T) {
	cat := vagCatalog()

	_, sum1, err := CanonicalJSON(cat)
	require.NoError(t, err)
	_, sum2, err := CanonicalJSON(cat)
	require.NoError(t, err)
	assert.Equal(t, sum1, sum2)

	cat.Version = "1.0.1"
	_, sum3, err := CanonicalJSON(cat)
	require.NoError(t, err)
	assert.NotEqual(t, sum1, sum3)
}

func TestListRevisionsOrdering(t *testing.T) {
	gdb := setupTestDB(t)

	for _, cat := range []Catalog{
		{Manufacturer: manufacturer.VAG, Version: "1.0.0"},
		{Manufacturer: manufacturer.VAG, Version: "1.10.0"},
		{Manufacturer: manufacturer.VAG, Version: "1.2.0"},
		{Manufacturer: manufacturer.Generic, Version: "1.0.0"},
	} {
		_, err := Apply(gdb, cat, "")
		require.NoError(t, err)
	}

	revisions, err := ListRevisions(gdb)
	require.NoError(t, err)
	require.Len(t, revisions, 4)

	assert.Equal(t, manufacturer.Generic, revisions[0].Manufacturer)
	// Semver descending within the manufacturer, so 1.10.0 beats 1.2.0.
	assert.Equal(t, "1.10.0", revisions[1].Version)
	assert.Equal(t, "1.2.0", revisions[2].Version)
	assert.Equal(t, "1.0.0", revisions[3].Version)
}

func TestGetRevision(t *testing.T) {
	gdb := setupTestDB(t)
	_, err := Apply(gdb, Catalog{Manufacturer: manufacturer.VAG, Version: "1.0.0"}, "catalogs/VAG/1.0.0.json")
	require.NoError(t, err)

	rev, err := GetRevision(gdb, manufacturer.VAG, "1.0.0")
	require.NoError(t, err)
	require.NotNil(t, rev)
	assert.Equal(t, "catalogs/VAG/1.0.0.json", rev.StorageKey)

	rev, err = GetRevision(gdb, manufacturer.VAG, "9.9.9")
	require.NoError(t, err)
	assert.Nil(t, rev)
}
