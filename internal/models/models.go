package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/obdlabs/codingreg/internal/manufacturer"
)

// CodingCategory groups coding bits by what they affect in the vehicle.
type CodingCategory string

const (
	CategoryComfort     CodingCategory = "comfort"
	CategoryLighting    CodingCategory = "lighting"
	CategoryDisplay     CodingCategory = "display"
	CategorySafety      CodingCategory = "safety"
	CategoryPerformance CodingCategory = "performance"
	CategoryAudio       CodingCategory = "audio"
	CategoryOther       CodingCategory = "other"
)

// SafetyLevel marks how risky toggling a coding bit is. Caution and
// advanced bits require explicit user acknowledgment before being written
// back to the vehicle; that gate lives in the caller, not in this engine.
type SafetyLevel string

const (
	SafetySafe     SafetyLevel = "safe"
	SafetyCaution  SafetyLevel = "caution"
	SafetyAdvanced SafetyLevel = "advanced"
)

// PIDCategory groups live-data parameter IDs by subsystem.
type PIDCategory string

const (
	PIDCategoryEngine       PIDCategory = "engine"
	PIDCategoryFuel         PIDCategory = "fuel"
	PIDCategoryElectrical   PIDCategory = "electrical"
	PIDCategoryTransmission PIDCategory = "transmission"
	PIDCategoryClimate      PIDCategory = "climate"
	PIDCategoryOther        PIDCategory = "other"
)

// ModuleDefinition is one row of the per-manufacturer ECU module catalog.
// Identity is (manufacturer, address); seeding upserts on that pair.
type ModuleDefinition struct {
	ID           uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Manufacturer manufacturer.Group `gorm:"type:varchar(32);not null;uniqueIndex:idx_module_manufacturer_address;index" json:"manufacturer"`
	Address      string             `gorm:"type:varchar(16);not null;uniqueIndex:idx_module_manufacturer_address" json:"address"` // e.g. "17" for VAG, "7E0" for generic

	Name     string `gorm:"type:text;not null" json:"name"`
	LongName string `gorm:"type:text" json:"longName,omitempty"`

	// CAN addressing for the diagnostic hardware.
	CANID         string `gorm:"column:can_id;type:varchar(16);not null" json:"canId"`
	CANIDResponse string `gorm:"column:can_id_response;type:varchar(16)" json:"canIdResponse,omitempty"`

	CodingSupported bool   `gorm:"not null" json:"codingSupported"`
	CodingDID       string `gorm:"column:coding_did;type:varchar(16)" json:"codingDID,omitempty"` // data identifier for reading coding, usually F19E
	CodingLength    *int   `json:"codingLength,omitempty"`                                        // expected coding length in bytes, when known

	Platforms []string `gorm:"serializer:json" json:"platforms,omitempty"` // e.g. ["MQB","MLB"]; empty means all platforms
	YearMin   *int     `json:"yearMin,omitempty"`
	YearMax   *int     `json:"yearMax,omitempty"`

	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
	Priority  int       `gorm:"not null;default:50" json:"priority"` // lower scans first
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (m *ModuleDefinition) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// CodingBitDefinition labels one physical bit inside a module's coding
// bytes. Identity is (manufacturer, module_address, byte_index, bit_index):
// at most one label per bit. The requires/conflicts lists reference other
// bit names by string; they are advisory hints for the UI, not validated
// foreign keys.
type CodingBitDefinition struct {
	ID            uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Manufacturer  manufacturer.Group `gorm:"type:varchar(32);not null;uniqueIndex:idx_coding_bit_location;index:idx_coding_bit_module" json:"manufacturer"`
	ModuleAddress string             `gorm:"type:varchar(16);not null;uniqueIndex:idx_coding_bit_location;index:idx_coding_bit_module" json:"moduleAddress"`

	ByteIndex int `gorm:"not null;uniqueIndex:idx_coding_bit_location" json:"byteIndex"` // 0-based
	BitIndex  int `gorm:"not null;uniqueIndex:idx_coding_bit_location" json:"bitIndex"`  // 0..7 within the byte

	Name        string         `gorm:"type:text;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Category    CodingCategory `gorm:"type:varchar(16);not null;default:other" json:"category"`
	SafetyLevel SafetyLevel    `gorm:"type:varchar(16);not null;default:safe" json:"safetyLevel"`

	Platforms []string `gorm:"serializer:json" json:"platforms,omitempty"`
	Requires  []string `gorm:"serializer:json" json:"requires,omitempty"`
	Conflicts []string `gorm:"serializer:json" json:"conflicts,omitempty"`

	IsVerified bool      `gorm:"not null" json:"isVerified"` // community verified
	Source     string    `gorm:"type:text" json:"source,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"not null" json:"updatedAt"`
}

func (b *CodingBitDefinition) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// DiscoveredModule is one immutable crowdsourced fact: a module on one
// vehicle, at one point in time, reported present or absent. Rows are never
// updated after insert.
type DiscoveredModule struct {
	ID           uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	VIN          string             `gorm:"column:vin;type:varchar(32);not null" json:"vin"`
	VINPrefix    string             `gorm:"column:vin_prefix;type:varchar(16);not null;index" json:"vinPrefix"`
	Manufacturer manufacturer.Group `gorm:"type:varchar(32);not null;index" json:"manufacturer"`

	ModuleAddress   string `gorm:"type:varchar(16);not null;index:idx_discovered_module_address" json:"moduleAddress"`
	IsPresent       bool   `gorm:"not null" json:"isPresent"`
	PartNumber      string `gorm:"type:text" json:"partNumber,omitempty"`
	SoftwareVersion string `gorm:"type:text" json:"softwareVersion,omitempty"`
	HardwareVersion string `gorm:"type:text" json:"hardwareVersion,omitempty"`
	CodingValue     string `gorm:"type:text" json:"codingValue,omitempty"` // raw coding bytes as hex, when read

	DeviceType string     `gorm:"type:text" json:"deviceType,omitempty"` // BLE adapter model
	ReportedBy *uuid.UUID `gorm:"type:uuid" json:"reportedBy,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"createdAt"`
}

func (d *DiscoveredModule) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// PIDDefinition is one row of the curated live-data parameter catalog.
// Identity is the pid_id string.
type PIDDefinition struct {
	ID           uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	PIDID        string             `gorm:"column:pid_id;type:varchar(64);not null;uniqueIndex" json:"pidId"`
	Name         string             `gorm:"type:text;not null" json:"name"`
	Manufacturer manufacturer.Group `gorm:"type:varchar(32);not null;index" json:"manufacturer"`
	Platform     string             `gorm:"type:varchar(32)" json:"platform,omitempty"` // empty means all platforms

	Mode    string `gorm:"type:varchar(8);not null" json:"mode"` // OBD service, e.g. "01" or "22"
	PID     string `gorm:"column:pid;type:varchar(8);not null" json:"pid"`
	Header  string `gorm:"type:varchar(8)" json:"header,omitempty"`
	Formula string `gorm:"type:text;not null" json:"formula"`
	Unit    string `gorm:"type:varchar(16);not null" json:"unit"`

	MinValue  *float64 `json:"min,omitempty"`
	MaxValue  *float64 `json:"max,omitempty"`
	ByteCount int      `gorm:"not null;default:2" json:"bytes"`

	Category  PIDCategory `gorm:"type:varchar(16);not null;default:engine" json:"category"`
	Priority  int         `gorm:"not null;default:10" json:"priority"`
	IsActive  bool        `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time   `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time   `gorm:"not null" json:"updatedAt"`
}

func (p *PIDDefinition) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// DiscoveredPID is one immutable fact about a PID working or failing on a
// specific vehicle.
type DiscoveredPID struct {
	ID           uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	VIN          string             `gorm:"column:vin;type:varchar(32);not null" json:"vin"`
	VINPrefix    string             `gorm:"column:vin_prefix;type:varchar(16);not null;index:idx_discovered_pid_prefix" json:"vinPrefix"`
	Manufacturer manufacturer.Group `gorm:"type:varchar(32);not null;index" json:"manufacturer"`

	PIDID          string `gorm:"column:pid_id;type:varchar(64);not null;index:idx_discovered_pid_success" json:"pidId"`
	Success        bool   `gorm:"not null;index:idx_discovered_pid_success" json:"success"`
	ResponseTimeMS *int   `gorm:"column:response_time_ms" json:"responseTimeMs,omitempty"`
	RawResponse    string `gorm:"type:text" json:"rawResponse,omitempty"`

	DeviceType string     `gorm:"type:text" json:"deviceType,omitempty"`
	ReportedBy *uuid.UUID `gorm:"type:uuid" json:"reportedBy,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"createdAt"`
}

func (d *DiscoveredPID) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// PIDProfile is the aggregate built from many DiscoveredPID facts for one
// VIN prefix. It is the only row in the system that is mutated in place;
// updates run under a row lock (see the discovery package).
type PIDProfile struct {
	ID           uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	VINPrefix    string             `gorm:"column:vin_prefix;type:varchar(16);not null;uniqueIndex" json:"vinPrefix"`
	Manufacturer manufacturer.Group `gorm:"type:varchar(32);not null;index" json:"manufacturer"`
	Platform     string             `gorm:"type:varchar(32)" json:"platform,omitempty"`

	// Convenience fields set opportunistically the first time a matching
	// PID id is reported working.
	BoostPID         string `gorm:"column:boost_pid;type:varchar(64)" json:"boostPid,omitempty"`
	OilTempPID       string `gorm:"column:oil_temp_pid;type:varchar(64)" json:"oilTempPid,omitempty"`
	ChargeAirTempPID string `gorm:"column:charge_air_temp_pid;type:varchar(64)" json:"chargeAirTempPid,omitempty"`
	TransTempPID     string `gorm:"column:trans_temp_pid;type:varchar(64)" json:"transTempPid,omitempty"`

	WorkingPIDs []string `gorm:"column:working_pids;serializer:json" json:"workingPids"`
	FailedPIDs  []string `gorm:"column:failed_pids;serializer:json" json:"failedPids"`

	SampleCount int       `gorm:"not null" json:"sampleCount"`
	Confidence  float64   `gorm:"not null" json:"confidence"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`
}

func (p *PIDProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BitChange is one entry of a coding diff, denormalized for display.
type BitChange struct {
	BitName string `json:"bitName"`
	From    bool   `json:"from"`
	To      bool   `json:"to"`
}

// CodingHistoryEntry is one append-only record of a coding write. Reverting
// an entry appends a compensating entry (bytes swapped, changes inverted)
// and flips Reverted/RevertedAt on the original; nothing is ever deleted.
type CodingHistoryEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_coding_history_user_vehicle" json:"userId"`
	VehicleID uuid.UUID `gorm:"type:uuid;not null;index:idx_coding_history_user_vehicle" json:"vehicleId"`

	Manufacturer  manufacturer.Group `gorm:"type:varchar(32);not null" json:"manufacturer"`
	ModuleAddress string             `gorm:"type:varchar(16);not null" json:"moduleAddress"`
	CodingBefore  string             `gorm:"type:text;not null" json:"codingBefore"` // hex
	CodingAfter   string             `gorm:"type:text;not null" json:"codingAfter"`  // hex

	Changes []BitChange `gorm:"serializer:json" json:"changes"`

	AppliedAt  time.Time  `gorm:"not null;autoCreateTime" json:"appliedAt"`
	Reverted   bool       `gorm:"not null" json:"reverted"`
	RevertedAt *time.Time `json:"revertedAt,omitempty"`
	RevertOf   *uuid.UUID `gorm:"type:uuid" json:"revertOf,omitempty"` // set on compensating entries
}

func (h *CodingHistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// CatalogRevision records one applied catalog seed or import: which
// manufacturer, which semver version, the sha256 of the canonical catalog
// JSON, where the snapshot was archived, and the upsert counts. Re-applying
// the same (manufacturer, version) updates the row in place.
type CatalogRevision struct {
	ID           uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Manufacturer manufacturer.Group `gorm:"type:varchar(32);not null;uniqueIndex:idx_catalog_revision" json:"manufacturer"`
	Version      string             `gorm:"type:varchar(64);not null;uniqueIndex:idx_catalog_revision" json:"version"`

	Checksum   string `gorm:"type:varchar(64);not null" json:"checksum"` // sha256 hex
	StorageKey string `gorm:"type:text;not null" json:"storageKey"`

	ModulesCreated int `gorm:"not null" json:"modulesCreated"`
	ModulesUpdated int `gorm:"not null" json:"modulesUpdated"`
	BitsCreated    int `gorm:"not null" json:"bitsCreated"`
	BitsUpdated    int `gorm:"not null" json:"bitsUpdated"`
	PIDsCreated    int `gorm:"column:pids_created;not null" json:"pidsCreated"`
	PIDsUpdated    int `gorm:"column:pids_updated;not null" json:"pidsUpdated"`

	AppliedAt time.Time `gorm:"not null;autoCreateTime" json:"appliedAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (c *CatalogRevision) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
