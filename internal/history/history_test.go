package history

import (
	"testing"
	"time"

	"github.com/google/uuid"
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
	require.NoError(t, gdb.AutoMigrate(&models.CodingHistoryEntry{}))
	return gdb
}

func sampleEntry(userID, vehicleID uuid.UUID) Entry {
	return Entry{
		UserID:        userID,
		VehicleID:     vehicleID,
		Manufacturer:  manufacturer.VAG,
		ModuleAddress: "17",
		CodingBefore:  "0A00",
		CodingAfter:   "0B00",
		Changes: []models.BitChange{
			{BitName: "Needle Sweep", From: false, To: true},
		},
	}
}

func TestRecord(t *testing.T) {
	gdb := setupTestDB(t)
	userID, vehicleID := uuid.New(), uuid.New()

	row, err := Record(gdb, sampleEntry(userID, vehicleID))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, row.ID)
	assert.Equal(t, userID, row.UserID)
	assert.Equal(t, "0A00", row.CodingBefore)
	assert.Equal(t, "0B00", row.CodingAfter)
	assert.False(t, row.Reverted)
	assert.Nil(t, row.RevertOf)
	assert.False(t, row.AppliedAt.IsZero())
}

func TestRecordDefaultsEmptyChanges(t *testing.T) {
	gdb := setupTestDB(t)

	e := sampleEntry(uuid.New(), uuid.New())
	e.Changes = nil
	row, err := Record(gdb, e)
	require.NoError(t, err)
	assert.NotNil(t, row.Changes)
	assert.Empty(t, row.Changes)
}

func TestRecordValidation(t *testing.T) {
	gdb := setupTestDB(t)

	e := sampleEntry(uuid.Nil, uuid.New())
	_, err := Record(gdb, e)
	assert.ErrorContains(t, err, "userId and vehicleId are required")

	e = sampleEntry(uuid.New(), uuid.New())
	e.ModuleAddress = ""
	_, err = Record(gdb, e)
	assert.ErrorContains(t, err, "moduleAddress is required")
}

func TestListFiltersAndOrders(t *testing.T) {
	gdb := setupTestDB(t)
	userID := uuid.New()
	golf, tiguan := uuid.New(), uuid.New()

	first, err := Record(gdb, sampleEntry(userID, golf))
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := Record(gdb, sampleEntry(userID, tiguan))
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	third, err := Record(gdb, sampleEntry(userID, golf))
	require.NoError(t, err)

	// Someone else's entry never shows up.
	_, err = Record(gdb, sampleEntry(uuid.New(), golf))
	require.NoError(t, err)

	entries, err := List(gdb, userID, nil, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, third.ID, entries[0].ID)
	assert.Equal(t, second.ID, entries[1].ID)
	assert.Equal(t, first.ID, entries[2].ID)

	entries, err = List(gdb, userID, &golf, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, third.ID, entries[0].ID)

	entries, err = List(gdb, userID, nil, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, third.ID, entries[0].ID)
}

func TestGet(t *testing.T) {
	gdb := setupTestDB(t)

	row, err := Record(gdb, sampleEntry(uuid.New(), uuid.New()))
	require.NoError(t, err)

	got, err := Get(gdb, row.ID)
	require.NoError(t, err)
	assert.Equal(t, row.ID, got.ID)

	_, err = Get(gdb, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevertCreatesCompensatingEntry(t *testing.T) {
	gdb := setupTestDB(t)
	userID, vehicleID := uuid.New(), uuid.New()

	original, err := Record(gdb, sampleEntry(userID, vehicleID))
	require.NoError(t, err)

	compensating, err := Revert(gdb, original.ID)
	require.NoError(t, err)
	assert.NotEqual(t, original.ID, compensating.ID)
	assert.Equal(t, userID, compensating.UserID)
	assert.Equal(t, vehicleID, compensating.VehicleID)
	assert.Equal(t, "0B00", compensating.CodingBefore, "coding bytes swap direction")
	assert.Equal(t, "0A00", compensating.CodingAfter)
	require.NotNil(t, compensating.RevertOf)
	assert.Equal(t, original.ID, *compensating.RevertOf)

	require.Len(t, compensating.Changes, 1)
	assert.Equal(t, "Needle Sweep", compensating.Changes[0].BitName)
	assert.True(t, compensating.Changes[0].From)
	assert.False(t, compensating.Changes[0].To)

	reloaded, err := Get(gdb, original.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Reverted)
	require.NotNil(t, reloaded.RevertedAt)

	// The compensating entry itself is a normal ledger row.
	entries, err := List(gdb, userID, nil, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRevertTwiceFails(t *testing.T) {
	gdb := setupTestDB(t)

	original, err := Record(gdb, sampleEntry(uuid.New(), uuid.New()))
	require.NoError(t, err)

	_, err = Revert(gdb, original.ID)
	require.NoError(t, err)

	_, err = Revert(gdb, original.ID)
	assert.ErrorIs(t, err, ErrAlreadyReverted)

	// The failed second revert must not leave a second compensating entry.
	var count int64
	require.NoError(t, gdb.Model(&models.CodingHistoryEntry{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestRevertMissingEntry(t *testing.T) {
	gdb := setupTestDB(t)

	_, err := Revert(gdb, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
