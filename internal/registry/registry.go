// Package registry is the persistent catalog of module, coding-bit, and PID
// definitions, plus the idempotent seeding pipeline that populates it.
package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/obdlabs/codingreg/internal/manufacturer"
	"github.com/obdlabs/codingreg/internal/models"
)

// Catalog is the import format for a curated definition set: one
// manufacturer partition at one semver version. The same structure is used
// for the built-in seed data and for externally curated imports, and its
// canonical JSON form is what gets checksummed and archived.
type Catalog struct {
	Manufacturer manufacturer.Group `json:"manufacturer"`
	Version      string             `json:"version"`
	Modules      []CatalogModule    `json:"modules,omitempty"`
	CodingBits   []CatalogBit       `json:"codingBits,omitempty"`
	PIDs         []CatalogPID       `json:"pids,omitempty"`
}

// CatalogModule mirrors models.ModuleDefinition minus identity bookkeeping.
type CatalogModule struct {
	Address         string   `json:"address"`
	Name            string   `json:"name"`
	LongName        string   `json:"longName,omitempty"`
	CANID           string   `json:"canId"`
	CANIDResponse   string   `json:"canIdResponse,omitempty"`
	CodingSupported bool     `json:"codingSupported"`
	CodingDID       string   `json:"codingDID,omitempty"`
	CodingLength    *int     `json:"codingLength,omitempty"`
	Platforms       []string `json:"platforms,omitempty"`
	YearMin         *int     `json:"yearMin,omitempty"`
	YearMax         *int     `json:"yearMax,omitempty"`
	Priority        int      `json:"priority"`
}

// CatalogBit mirrors models.CodingBitDefinition.
type CatalogBit struct {
	ModuleAddress string                `json:"moduleAddress"`
	ByteIndex     int                   `json:"byteIndex"`
	BitIndex      int                   `json:"bitIndex"`
	Name          string                `json:"name"`
	Description   string                `json:"description,omitempty"`
	Category      models.CodingCategory `json:"category"`
	SafetyLevel   models.SafetyLevel    `json:"safetyLevel"`
	Platforms     []string              `json:"platforms,omitempty"`
	Requires      []string              `json:"requires,omitempty"`
	Conflicts     []string              `json:"conflicts,omitempty"`
	IsVerified    bool                  `json:"isVerified,omitempty"`
	Source        string                `json:"source,omitempty"`
}

// CatalogPID mirrors models.PIDDefinition. PID entries carry their own
// manufacturer since generic and brand-specific PIDs ship in one catalog.
type CatalogPID struct {
	PIDID        string             `json:"pidId"`
	Name         string             `json:"name"`
	Manufacturer manufacturer.Group `json:"manufacturer"`
	Platform     string             `json:"platform,omitempty"`
	Mode         string             `json:"mode"`
	PID          string             `json:"pid"`
	Header       string             `json:"header,omitempty"`
	Formula      string             `json:"formula"`
	Unit         string             `json:"unit"`
	MinValue     *float64           `json:"min,omitempty"`
	MaxValue     *float64           `json:"max,omitempty"`
	ByteCount    int                `json:"bytes"`
	Category     models.PIDCategory `json:"category"`
	Priority     int                `json:"priority"`
}

// ApplyResult reports what one catalog application did.
type ApplyResult struct {
	Manufacturer   manufacturer.Group `json:"manufacturer"`
	Version        string             `json:"version"`
	ModulesCreated int                `json:"modulesCreated"`
	ModulesUpdated int                `json:"modulesUpdated"`
	BitsCreated    int                `json:"bitsCreated"`
	BitsUpdated    int                `json:"bitsUpdated"`
	PIDsCreated    int                `json:"pidsCreated"`
	PIDsUpdated    int                `json:"pidsUpdated"`
	Checksum       string             `json:"checksum"`
	StorageKey     string             `json:"storageKey,omitempty"`
}

// ListModules returns the active module definitions for a manufacturer,
// ordered by (priority, address). When platform is non-empty, modules
// restricted to other platforms are dropped; modules with no platform list
// always match.
func ListModules(db *gorm.DB, group manufacturer.Group, platform string) ([]models.ModuleDefinition, error) {
	var modules []models.ModuleDefinition
	err := db.Where("manufacturer = ? AND is_active = ?", group, true).
		Order("priority, address").
		Find(&modules).Error
	if err != nil {
		return nil, fmt.Errorf("listing modules for %s: %w", group, err)
	}
	if platform == "" {
		return modules, nil
	}
	// The platform list is a JSON column, so the restriction is applied
	// here instead of in SQL; a manufacturer has a few dozen modules at
	// most.
	filtered := modules[:0]
	for _, m := range modules {
		if len(m.Platforms) == 0 || containsString(m.Platforms, platform) {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

// GetModule looks up a single module definition. A missing module returns
// (nil, nil): callers fall back to a generic display name, it is not an
// error to decode a module nobody has cataloged.
func GetModule(db *gorm.DB, group manufacturer.Group, address string) (*models.ModuleDefinition, error) {
	var module models.ModuleDefinition
	err := db.Where("manufacturer = ? AND address = ?", group, address).First(&module).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up module %s/%s: %w", group, address, err)
	}
	return &module, nil
}

// ListCodingBits returns the bit definitions for one module ordered by
// (byte_index, bit_index). A bit with no platform restriction matches any
// requested platform. An empty result is valid: it means nothing is
// cataloged for that module yet.
func ListCodingBits(db *gorm.DB, group manufacturer.Group, moduleAddress, platform string) ([]models.CodingBitDefinition, error) {
	var bits []models.CodingBitDefinition
	err := db.Where("manufacturer = ? AND module_address = ?", group, moduleAddress).
		Order("byte_index, bit_index").
		Find(&bits).Error
	if err != nil {
		return nil, fmt.Errorf("listing coding bits for %s/%s: %w", group, moduleAddress, err)
	}
	if platform == "" {
		return bits, nil
	}
	filtered := bits[:0]
	for _, b := range bits {
		if len(b.Platforms) == 0 || containsString(b.Platforms, platform) {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

// ListPIDs returns the active curated PIDs visible to a manufacturer: its
// own plus the generic ones, ordered by priority. Category and platform
// filters are optional.
func ListPIDs(db *gorm.DB, group manufacturer.Group, category models.PIDCategory, platform string) ([]models.PIDDefinition, error) {
	query := db.Where("is_active = ?", true).
		Where("manufacturer IN ?", []manufacturer.Group{group, manufacturer.Generic})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if platform != "" {
		query = query.Where("platform = ? OR platform = ''", platform)
	}
	var pids []models.PIDDefinition
	if err := query.Order("priority").Find(&pids).Error; err != nil {
		return nil, fmt.Errorf("listing PIDs for %s: %w", group, err)
	}
	return pids, nil
}

// CanonicalJSON serializes a catalog deterministically and returns the
// bytes together with their sha256 hex digest. The digest is stored on the
// catalog revision and doubles as the snapshot's integrity check.
func CanonicalJSON(cat Catalog) ([]byte, string, error) {
	data, err := json.Marshal(cat)
	if err != nil {
		return nil, "", fmt.Errorf("marshaling catalog: %w", err)
	}
	sum := sha256.Sum256(data)
	return data, hex.EncodeToString(sum[:]), nil
}

// Apply upserts every definition in the catalog and records a
// CatalogRevision, all in one transaction. Identity conflicts resolve as
// updates at the database level (ON CONFLICT DO UPDATE), so re-applying a
// catalog never duplicates rows, even when two admins race. storageKey is
// where the caller archived the catalog snapshot; it may be empty when
// archiving is disabled.
func Apply(db *gorm.DB, cat Catalog, storageKey string) (*ApplyResult, error) {
	if cat.Manufacturer == "" {
		return nil, fmt.Errorf("catalog manufacturer is required")
	}
	if _, err := semver.NewVersion(cat.Version); err != nil {
		return nil, fmt.Errorf("invalid catalog version %q: %w", cat.Version, err)
	}
	for _, b := range cat.CodingBits {
		if b.ByteIndex < 0 || b.BitIndex < 0 || b.BitIndex > 7 {
			return nil, fmt.Errorf("bit %q: byte index must be >= 0 and bit index in 0..7", b.Name)
		}
	}

	_, checksum, err := CanonicalJSON(cat)
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{
		Manufacturer: cat.Manufacturer,
		Version:      cat.Version,
		Checksum:     checksum,
		StorageKey:   storageKey,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		existingModules, err := existingKeys(tx, &models.ModuleDefinition{}, "address", "manufacturer = ?", cat.Manufacturer)
		if err != nil {
			return err
		}
		for _, m := range cat.Modules {
			row := models.ModuleDefinition{
				Manufacturer:    cat.Manufacturer,
				Address:         m.Address,
				Name:            m.Name,
				LongName:        m.LongName,
				CANID:           m.CANID,
				CANIDResponse:   m.CANIDResponse,
				CodingSupported: m.CodingSupported,
				CodingDID:       m.CodingDID,
				CodingLength:    m.CodingLength,
				Platforms:       m.Platforms,
				YearMin:         m.YearMin,
				YearMax:         m.YearMax,
				IsActive:        true,
				Priority:        m.Priority,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "manufacturer"}, {Name: "address"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "long_name", "can_id", "can_id_response",
					"coding_supported", "coding_did", "coding_length",
					"platforms", "year_min", "year_max", "priority", "updated_at",
				}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("upserting module %s: %w", m.Address, err)
			}
			if existingModules[m.Address] {
				result.ModulesUpdated++
			} else {
				result.ModulesCreated++
			}
		}

		existingBits, err := existingBitKeys(tx, cat.Manufacturer)
		if err != nil {
			return err
		}
		for _, b := range cat.CodingBits {
			row := models.CodingBitDefinition{
				Manufacturer:  cat.Manufacturer,
				ModuleAddress: b.ModuleAddress,
				ByteIndex:     b.ByteIndex,
				BitIndex:      b.BitIndex,
				Name:          b.Name,
				Description:   b.Description,
				Category:      b.Category,
				SafetyLevel:   b.SafetyLevel,
				Platforms:     b.Platforms,
				Requires:      b.Requires,
				Conflicts:     b.Conflicts,
				IsVerified:    b.IsVerified,
				Source:        b.Source,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "manufacturer"}, {Name: "module_address"}, {Name: "byte_index"}, {Name: "bit_index"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "description", "category", "safety_level",
					"platforms", "requires", "conflicts", "is_verified",
					"source", "updated_at",
				}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("upserting bit %s/%d.%d: %w", b.ModuleAddress, b.ByteIndex, b.BitIndex, err)
			}
			if existingBits[bitKey(b.ModuleAddress, b.ByteIndex, b.BitIndex)] {
				result.BitsUpdated++
			} else {
				result.BitsCreated++
			}
		}

		existingPIDs, err := existingKeys(tx, &models.PIDDefinition{}, "pid_id", "1 = 1")
		if err != nil {
			return err
		}
		for _, p := range cat.PIDs {
			row := models.PIDDefinition{
				PIDID:        p.PIDID,
				Name:         p.Name,
				Manufacturer: p.Manufacturer,
				Platform:     p.Platform,
				Mode:         p.Mode,
				PID:          p.PID,
				Header:       p.Header,
				Formula:      p.Formula,
				Unit:         p.Unit,
				MinValue:     p.MinValue,
				MaxValue:     p.MaxValue,
				ByteCount:    p.ByteCount,
				Category:     p.Category,
				Priority:     p.Priority,
				IsActive:     true,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "pid_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "manufacturer", "platform", "mode", "pid", "header",
					"formula", "unit", "min_value", "max_value", "byte_count",
					"category", "priority", "updated_at",
				}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("upserting PID %s: %w", p.PIDID, err)
			}
			if existingPIDs[p.PIDID] {
				result.PIDsUpdated++
			} else {
				result.PIDsCreated++
			}
		}

		revision := models.CatalogRevision{
			Manufacturer:   cat.Manufacturer,
			Version:        cat.Version,
			Checksum:       checksum,
			StorageKey:     storageKey,
			ModulesCreated: result.ModulesCreated,
			ModulesUpdated: result.ModulesUpdated,
			BitsCreated:    result.BitsCreated,
			BitsUpdated:    result.BitsUpdated,
			PIDsCreated:    result.PIDsCreated,
			PIDsUpdated:    result.PIDsUpdated,
		}
		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "manufacturer"}, {Name: "version"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"checksum", "storage_key", "modules_created", "modules_updated",
				"bits_created", "bits_updated", "pids_created", "pids_updated",
				"updated_at",
			}),
		}).Create(&revision).Error
		if err != nil {
			return fmt.Errorf("recording catalog revision: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListRevisions returns all applied catalog revisions grouped by
// manufacturer, newest version first within each group.
func ListRevisions(db *gorm.DB) ([]models.CatalogRevision, error) {
	var revisions []models.CatalogRevision
	if err := db.Find(&revisions).Error; err != nil {
		return nil, fmt.Errorf("listing catalog revisions: %w", err)
	}
	sortRevisions(revisions)
	return revisions, nil
}

// GetRevision looks up one applied catalog revision; (nil, nil) when absent.
func GetRevision(db *gorm.DB, group manufacturer.Group, version string) (*models.CatalogRevision, error) {
	var revision models.CatalogRevision
	err := db.Where("manufacturer = ? AND version = ?", group, version).First(&revision).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up catalog revision %s@%s: %w", group, version, err)
	}
	return &revision, nil
}

// sortRevisions orders by manufacturer ascending, then semantic version
// descending. Versions that fail to parse sort last within their group.
func sortRevisions(revisions []models.CatalogRevision) {
	sort.SliceStable(revisions, func(i, j int) bool {
		if revisions[i].Manufacturer != revisions[j].Manufacturer {
			return revisions[i].Manufacturer < revisions[j].Manufacturer
		}
		vi, erri := semver.NewVersion(revisions[i].Version)
		vj, errj := semver.NewVersion(revisions[j].Version)
		if erri != nil || errj != nil {
			return errj != nil && erri == nil
		}
		return vi.GreaterThan(vj)
	})
}

func bitKey(address string, byteIdx, bitIdx int) string {
	return fmt.Sprintf("%s/%d/%d", address, byteIdx, bitIdx)
}

// existingKeys collects the values of one column as a set, used to tell
// creates from updates around the ON CONFLICT upserts.
func existingKeys(tx *gorm.DB, model interface{}, column, cond string, args ...interface{}) (map[string]bool, error) {
	var keys []string
	if err := tx.Model(model).Where(cond, args...).Pluck(column, &keys).Error; err != nil {
		return nil, fmt.Errorf("collecting existing %s keys: %w", column, err)
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set, nil
}

func existingBitKeys(tx *gorm.DB, group manufacturer.Group) (map[string]bool, error) {
	var rows []models.CodingBitDefinition
	err := tx.Select("module_address", "byte_index", "bit_index").
		Where("manufacturer = ?", group).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("collecting existing bit keys: %w", err)
	}
	set := make(map[string]bool, len(rows))
	for _, r := range rows {
		set[bitKey(r.ModuleAddress, r.ByteIndex, r.BitIndex)] = true
	}
	return set, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
