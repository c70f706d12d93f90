// Package history keeps the append-only ledger of coding writes and
// implements revert as a compensating entry.
package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/obdlabs/codingreg/internal/manufacturer"
	"github.com/obdlabs/codingreg/internal/models"
)

// ErrAlreadyReverted is returned by Revert when the target entry has a
// compensating entry already.
var ErrAlreadyReverted = errors.New("history entry already reverted")

// ErrNotFound is returned by Revert when the target entry does not exist.
var ErrNotFound = errors.New("history entry not found")

// Entry is the input for recording one applied coding write.
type Entry struct {
	UserID        uuid.UUID
	VehicleID     uuid.UUID
	Manufacturer  manufacturer.Group
	ModuleAddress string
	CodingBefore  string
	CodingAfter   string
	Changes       []models.BitChange
}

// Record appends one ledger entry. Entries are never updated afterwards
// except for the Reverted flag set by Revert.
func Record(db *gorm.DB, e Entry) (*models.CodingHistoryEntry, error) {
	if e.UserID == uuid.Nil || e.VehicleID == uuid.Nil {
		return nil, fmt.Errorf("userId and vehicleId are required")
	}
	if e.ModuleAddress == "" {
		return nil, fmt.Errorf("moduleAddress is required")
	}

	row := models.CodingHistoryEntry{
		UserID:        e.UserID,
		VehicleID:     e.VehicleID,
		Manufacturer:  e.Manufacturer,
		ModuleAddress: e.ModuleAddress,
		CodingBefore:  e.CodingBefore,
		CodingAfter:   e.CodingAfter,
		Changes:       e.Changes,
	}
	if row.Changes == nil {
		row.Changes = []models.BitChange{}
	}
	if err := db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("recording coding history: %w", err)
	}
	return &row, nil
}

// List returns a user's entries newest first, optionally filtered to one
// vehicle. limit <= 0 means no limit.
func List(db *gorm.DB, userID uuid.UUID, vehicleID *uuid.UUID, limit int) ([]models.CodingHistoryEntry, error) {
	q := db.Where("user_id = ?", userID)
	if vehicleID != nil {
		q = q.Where("vehicle_id = ?", *vehicleID)
	}
	q = q.Order("applied_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var entries []models.CodingHistoryEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("listing coding history: %w", err)
	}
	return entries, nil
}

// Get returns one entry by id, or ErrNotFound.
func Get(db *gorm.DB, id uuid.UUID) (*models.CodingHistoryEntry, error) {
	var entry models.CodingHistoryEntry
	err := db.Where("id = ?", id).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading history entry: %w", err)
	}
	return &entry, nil
}

// Revert appends a compensating entry for id: coding bytes swapped, every
// bit change inverted, RevertOf pointing back at the original. The original
// gets its Reverted flag set so it cannot be reverted twice. The ledger
// itself stays append-only.
func Revert(db *gorm.DB, id uuid.UUID) (*models.CodingHistoryEntry, error) {
	var compensating models.CodingHistoryEntry

	err := db.Transaction(func(tx *gorm.DB) error {
		var original models.CodingHistoryEntry
		err := tx.Where("id = ?", id).First(&original).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("loading history entry: %w", err)
		}
		if original.Reverted {
			return ErrAlreadyReverted
		}

		inverted := make([]models.BitChange, len(original.Changes))
		for i, c := range original.Changes {
			inverted[i] = models.BitChange{BitName: c.BitName, From: c.To, To: c.From}
		}

		compensating = models.CodingHistoryEntry{
			UserID:        original.UserID,
			VehicleID:     original.VehicleID,
			Manufacturer:  original.Manufacturer,
			ModuleAddress: original.ModuleAddress,
			CodingBefore:  original.CodingAfter,
			CodingAfter:   original.CodingBefore,
			Changes:       inverted,
			RevertOf:      &original.ID,
		}
		if err := tx.Create(&compensating).Error; err != nil {
			return fmt.Errorf("recording compensating entry: %w", err)
		}

		now := time.Now().UTC()
		res := tx.Model(&models.CodingHistoryEntry{}).
			Where("id = ? AND reverted = ?", original.ID, false).
			Updates(map[string]interface{}{"reverted": true, "reverted_at": now})
		if res.Error != nil {
			return fmt.Errorf("marking entry reverted: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyReverted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &compensating, nil
}
