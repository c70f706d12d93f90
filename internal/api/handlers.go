package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/obdlabs/codingreg/internal/api/response"
	"github.com/obdlabs/codingreg/internal/coding"
	"github.com/obdlabs/codingreg/internal/db"
	"github.com/obdlabs/codingreg/internal/discovery"
	"github.com/obdlabs/codingreg/internal/history"
	"github.com/obdlabs/codingreg/internal/manufacturer"
	"github.com/obdlabs/codingreg/internal/models"
	"github.com/obdlabs/codingreg/internal/registry"
	"github.com/obdlabs/codingreg/internal/storage"
)

// maxBodySize caps request bodies; catalog imports are the largest payload
// and stay well under this.
const maxBodySize = 8 << 20 // 8 MB

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON body: %v", err))
		return false
	}
	return true
}

// --- Module registry ---

// ListManufacturerModulesResponse is the body for the module list endpoint.
type ListManufacturerModulesResponse struct {
	Manufacturer manufacturer.Group        `json:"manufacturer"`
	Modules      []models.ModuleDefinition `json:"modules"`
	Count        int                       `json:"count"`
}

// ListManufacturerModulesHandler lists the module definitions for a vehicle
// make. The path segment is free text ("Audi", "vw", "VAG") and is classified
// into a manufacturer group first.
// GET /api/v1/modules/{manufacturer}?platform=MQB
func ListManufacturerModulesHandler(w http.ResponseWriter, r *http.Request) {
	group := manufacturer.Classify(mux.Vars(r)["manufacturer"])
	platform := r.URL.Query().Get("platform")

	modules, err := registry.ListModules(db.GetDB(), group, platform)
	if err != nil {
		log.Printf("Error listing modules for %s: %v", group, err)
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve modules")
		return
	}
	if modules == nil {
		modules = []models.ModuleDefinition{}
	}

	response.JSON(w, http.StatusOK, ListManufacturerModulesResponse{
		Manufacturer: group,
		Modules:      modules,
		Count:        len(modules),
	})
}

// ModuleCapabilitiesResponse summarizes what the registry knows about a make.
type ModuleCapabilitiesResponse struct {
	Make            string             `json:"make"`
	Manufacturer    manufacturer.Group `json:"manufacturer"`
	Supported       bool               `json:"supported"`
	ModuleCount     int                `json:"moduleCount"`
	CodingSupported bool               `json:"codingSupported"`
}

// ModuleCapabilitiesHandler reports whether module scanning and coding are
// available for a vehicle make.
// GET /api/v1/modules/{manufacturer}/capabilities
func ModuleCapabilitiesHandler(w http.ResponseWriter, r *http.Request) {
	makeStr := mux.Vars(r)["manufacturer"]
	group := manufacturer.Classify(makeStr)

	modules, err := registry.ListModules(db.GetDB(), group, "")
	if err != nil {
		log.Printf("Error listing modules for %s capabilities: %v", group, err)
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve modules")
		return
	}

	resp := ModuleCapabilitiesResponse{
		Make:         makeStr,
		Manufacturer: group,
		Supported:    len(modules) > 0,
		ModuleCount:  len(modules),
	}
	for _, m := range modules {
		if m.CodingSupported {
			resp.CodingSupported = true
			break
		}
	}
	response.JSON(w, http.StatusOK, resp)
}

// ListModuleCodingBitsResponse is the body for the coding-bit list endpoint.
type ListModuleCodingBitsResponse struct {
	Manufacturer  manufacturer.Group           `json:"manufacturer"`
	ModuleAddress string                       `json:"moduleAddress"`
	ModuleName    string                       `json:"moduleName,omitempty"`
	Bits          []models.CodingBitDefinition `json:"bits"`
	Count         int                          `json:"count"`
}

// ListModuleCodingBitsHandler lists the known coding bits for one module.
// An empty list is a valid answer: nothing is cataloged for that module yet.
// GET /api/v1/modules/{manufacturer}/{address}/coding?platform=MQB
func ListModuleCodingBitsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	group := manufacturer.Classify(vars["manufacturer"])
	address := vars["address"]
	platform := r.URL.Query().Get("platform")

	gormDB := db.GetDB()
	bits, err := registry.ListCodingBits(gormDB, group, address, platform)
	if err != nil {
		log.Printf("Error listing coding bits for %s/%s: %v", group, address, err)
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve coding bits")
		return
	}
	if bits == nil {
		bits = []models.CodingBitDefinition{}
	}

	resp := ListModuleCodingBitsResponse{
		Manufacturer:  group,
		ModuleAddress: address,
		Bits:          bits,
		Count:         len(bits),
	}
	module, err := registry.GetModule(gormDB, group, address)
	if err != nil {
		log.Printf("Error looking up module %s/%s: %v", group, address, err)
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve module")
		return
	}
	if module != nil {
		resp.ModuleName = module.Name
	}
	response.JSON(w, http.StatusOK, resp)
}

// --- Coding parse / encode ---

// ParseCodingRequest is the body for the coding decode endpoint.
type ParseCodingRequest struct {
	Make          string `json:"make"`
	ModuleAddress string `json:"moduleAddress"`
	Coding        string `json:"coding"`
	Platform      string `json:"platform,omitempty"`
}

// ParseCodingHandler decodes raw coding bytes against the bit registry.
// Parse failures (bad hex) are reported in-band in the result body, not as
// an HTTP error: one unreadable module must not break a whole-vehicle scan.
// POST /api/v1/modules/parse-coding
func ParseCodingHandler(w http.ResponseWriter, r *http.Request) {
	var req ParseCodingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ModuleAddress == "" {
		response.Error(w, http.StatusBadRequest, "moduleAddress is required")
		return
	}

	group := manufacturer.Classify(req.Make)
	gormDB := db.GetDB()

	defs, err := registry.ListCodingBits(gormDB, group, req.ModuleAddress, req.Platform)
	if err != nil {
		log.Printf("Error listing coding bits for parse %s/%s: %v", group, req.ModuleAddress, err)
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve coding bits")
		return
	}

	moduleName := ""
	module, err := registry.GetModule(gormDB, group, req.ModuleAddress)
	if err != nil {
		log.Printf("Error looking up module for parse %s/%s: %v", group, req.ModuleAddress, err)
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve module")
		return
	}
	if module != nil {
		moduleName = module.Name
	}

	report := coding.Decode(req.ModuleAddress, moduleName, req.Coding, defs)
	response.JSON(w, http.StatusOK, report)
}

// EncodeCodingRequest is the body for the coding encode endpoint.
type EncodeCodingRequest struct {
	Make          string          `json:"make"`
	ModuleAddress string          `json:"moduleAddress"`
	CurrentCoding string          `json:"currentCoding"`
	Changes       []coding.Change `json:"changes"`
	Platform      string          `json:"platform,omitempty"`
}

// EncodeCodingHandler applies named bit changes to current coding bytes and
// returns the new byte string. Unknown bit names and out-of-range targets
// are reported in-band, mirroring the decode side.
// POST /api/v1/modules/encode-coding
func EncodeCodingHandler(w http.ResponseWriter, r *http.Request) {
	var req EncodeCodingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ModuleAddress == "" {
		response.Error(w, http.StatusBadRequest, "moduleAddress is required")
		return
	}
	if len(req.Changes) == 0 {
		response.Error(w, http.StatusBadRequest, "at least one change is required")
		return
	}

	group := manufacturer.Classify(req.Make)
	defs, err := registry.ListCodingBits(db.GetDB(), group, req.ModuleAddress, req.Platform)
	if err != nil {
		log.Printf("Error listing coding bits for encode %s/%s: %v", group, req.ModuleAddress, err)
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve coding bits")
		return
	}

	result := coding.Encode(req.ModuleAddress, req.CurrentCoding, defs, req.Changes)
	response.JSON(w, http.StatusOK, result)
}

// --- Discovery ingestion ---

// ReportDiscoveredModuleRequest is the body for module discovery reports.
type ReportDiscoveredModuleRequest struct {
	VIN             string     `json:"vin"`
	Make            string     `json:"make"`
	ModuleAddress   string     `json:"moduleAddress"`
	IsPresent       bool       `json:"isPresent"`
	PartNumber      string     `json:"partNumber,omitempty"`
	SoftwareVersion string     `json:"softwareVersion,omitempty"`
	HardwareVersion string     `json:"hardwareVersion,omitempty"`
	CodingValue     string     `json:"codingValue,omitempty"`
	DeviceType      string     `json:"deviceType,omitempty"`
	ReportedBy      *uuid.UUID `json:"reportedBy,omitempty"`
}

// ReportDiscoveredModuleHandler ingests one crowdsourced module observation.
// POST /api/v1/modules/discovered
func ReportDiscoveredModuleHandler(w http.ResponseWriter, r *http.Request) {
	var req ReportDiscoveredModuleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.VIN == "" || req.ModuleAddress == "" {
		response.Error(w, http.StatusBadRequest, "vin and moduleAddress are required")
		return
	}

	ack, err := discovery.ReportModule(db.GetDB(), discovery.ModuleReport{
		VIN:             req.VIN,
		Manufacturer:    manufacturer.Classify(req.Make),
		ModuleAddress:   req.ModuleAddress,
		IsPresent:       req.IsPresent,
		PartNumber:      req.PartNumber,
		SoftwareVersion: req.SoftwareVersion,
		HardwareVersion: req.HardwareVersion,
		CodingValue:     req.CodingValue,
		DeviceType:      req.DeviceType,
		ReportedBy:      req.ReportedBy,
	})
	if err != nil {
		log.Printf("Error storing module report: %v", err)
		response.Error(w, http.StatusInternalServerError, "Failed to store module report")
		return
	}
	response.JSON(w, http.StatusCreated, ack)
}

// ReportDiscoveredPIDsRequest is the body for PID discovery reports.
type ReportDiscoveredPIDsRequest struct {
	VIN           string            `json:"vin"`
	Make          string            `json:"make"`
	WorkingPIDs   []string          `json:"workingPids"`
	FailedPIDs    []string          `json:"failedPids"`
	DeviceType    string            `json:"deviceType,omitempty"`
	ReportedBy    *uuid.UUID        `json:"reportedBy,omitempty"`
	ResponseTimes map[string]int    `json:"responseTimes,omitempty"`
	RawResponses  map[string]string `json:"rawResponses,omitempty"`
}

// ReportDiscoveredPIDsHandler ingests one scan session's PID outcomes and
// folds them into the vehicle line's profile.
// POST /api/v1/pids/discovered
func ReportDiscoveredPIDsHandler(w http.ResponseWriter, r *http.Request) {
	var req ReportDiscoveredPIDsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.VIN == "" {
		response.Error(w, http.StatusBadRequest, "vin is required")
		return
	}
	if len(req.WorkingPIDs) == 0 && len(req.FailedPIDs) == 0 {
		response.Error(w, http.StatusBadRequest, "at least one working or failed PID is required")
		return
	}

	ack, err := discovery.ReportPIDs(db.GetDB(), discovery.PIDReport{
		VIN:           req.VIN,
		Manufacturer:  manufacturer.Classify(req.Make),
		WorkingPIDs:   req.WorkingPIDs,
		FailedPIDs:    req.FailedPIDs,
		DeviceType:    req.DeviceType,
		ReportedBy:    req.ReportedBy,
		ResponseTimes: req.ResponseTimes,
		RawResponses:  req.RawResponses,
	})
	if err != nil {
		if errors.Is(err, discovery.ErrProfileConflict) {
			response.Error(w, http.StatusConflict, "Profile changed concurrently, retry the report")
			return
		}
		log.Printf("Error storing PID report: %v", err)
		response.Error(w, http.StatusInternalServerError, "Failed to store PID report")
		return
	}
	response.JSON(w, http.StatusCreated, ack)
}

// --- PID registry and profiles ---

// PIDProfileHandler returns PID recommendations for a vehicle, ranked by
// what the fleet has learned about its VIN prefix.
// GET /api/v1/pids/profile?vin=...&make=...
func PIDProfileHandler(w http.ResponseWriter, r *http.Request) {
	vin := r.URL.Query().Get("vin")
	makeStr := r.URL.Query().Get("make")
	if vin == "" && makeStr == "" {
		response.Error(w, http.StatusBadRequest, "vin or make query parameter is required")
		return
	}

	rec, err := discovery.RecommendPIDs(db.GetDB(), vin, manufacturer.Classify(makeStr))
	if err != nil {
		log.Printf("Error building PID recommendation: %v", err)
		response.Error(w, http.StatusInternalServerError, "Failed to build PID recommendation")
		return
	}
	response.JSON(w, http.StatusOK, rec)
}

// PIDStatsHandler reports crowdsourcing volume statistics.
// GET /api/v1/pids/stats?manufacturer=VAG
func PIDStatsHandler(w http.ResponseWriter, r *http.Request) {
	var group manufacturer.Group
	if s := r.URL.Query().Get("manufacturer"); s != "" {
		parsed, err := manufacturer.Parse(s)
		if err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		group = parsed
	}

	stats, err := discovery.GetStats(db.GetDB(), group)
	if err != nil {
		log.Printf("Error computing PID stats: %v", err)
		response.Error(w, http.StatusInternalServerError, "Failed to compute PID stats")
		return
	}
	response.JSON(w, http.StatusOK, stats)
}

// ListManufacturerPIDsResponse is the body for the PID list endpoint.
type ListManufacturerPIDsResponse struct {
	Manufacturer manufacturer.Group     `json:"manufacturer"`
	PIDs         []models.PIDDefinition `json:"pids"`
	Count        int                    `json:"count"`
}

// ListManufacturerPIDsHandler lists the curated PIDs visible to a make: its
// manufacturer-specific ones plus the generic set.
// GET /api/v1/pids/{manufacturer}?category=engine&platform=MQB
func ListManufacturerPIDsHandler(w http.ResponseWriter, r *http.Request) {
	group := manufacturer.Classify(mux.Vars(r)["manufacturer"])
	category := models.PIDCategory(r.URL.Query().Get("category"))
	platform := r.URL.Query().Get("platform")

	pids, err := registry.ListPIDs(db.GetDB(), group, category, platform)
	if err != nil {
		log.Printf("Error listing PIDs for %s: %v", group, err)
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve PIDs")
		return
	}
	if pids == nil {
		pids = []models.PIDDefinition{}
	}

	response.JSON(w, http.StatusOK, ListManufacturerPIDsResponse{
		Manufacturer: group,
		PIDs:         pids,
		Count:        len(pids),
	})
}

// --- Coding history ---

// ListHistoryHandler returns a user's coding ledger, newest first.
// GET /api/v1/history?userId=...&vehicleId=...&limit=50
func ListHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("userId"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "userId query parameter must be a valid UUID")
		return
	}

	var vehicleID *uuid.UUID
	if s := r.URL.Query().Get("vehicleId"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "vehicleId must be a valid UUID")
			return
		}
		vehicleID = &id
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if _, err := fmt.Sscanf(s, "%d", &limit); err != nil {
			response.Error(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
	}

	entries, err := history.List(db.GetDB(), userID, vehicleID, limit)
	if err != nil {
		log.Printf("Error listing coding history: %v", err)
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve coding history")
		return
	}
	if entries == nil {
		entries = []models.CodingHistoryEntry{}
	}
	response.JSON(w, http.StatusOK, entries)
}

// RecordHistoryRequest is the body for appending a ledger entry. Changes may
// be omitted; the server then diffs before/after against the bit registry.
type RecordHistoryRequest struct {
	UserID        uuid.UUID          `json:"userId"`
	VehicleID     uuid.UUID          `json:"vehicleId"`
	Make          string             `json:"make"`
	ModuleAddress string             `json:"moduleAddress"`
	CodingBefore  string             `json:"codingBefore"`
	CodingAfter   string             `json:"codingAfter"`
	Changes       []models.BitChange `json:"changes,omitempty"`
}

// RecordHistoryHandler appends one coding write to the ledger.
// POST /api/v1/history
func RecordHistoryHandler(w http.ResponseWriter, r *http.Request) {
	var req RecordHistoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == uuid.Nil || req.VehicleID == uuid.Nil {
		response.Error(w, http.StatusBadRequest, "userId and vehicleId are required")
		return
	}
	if req.ModuleAddress == "" {
		response.Error(w, http.StatusBadRequest, "moduleAddress is required")
		return
	}

	group := manufacturer.Classify(req.Make)
	gormDB := db.GetDB()

	changes := req.Changes
	if changes == nil && req.CodingBefore != "" && req.CodingAfter != "" {
		defs, err := registry.ListCodingBits(gormDB, group, req.ModuleAddress, "")
		if err != nil {
			log.Printf("Error listing coding bits for history diff: %v", err)
			response.Error(w, http.StatusInternalServerError, "Failed to compute coding diff")
			return
		}
		changes, err = coding.Diff(req.CodingBefore, req.CodingAfter, defs)
		if err != nil {
			response.Error(w, http.StatusBadRequest, fmt.Sprintf("Cannot diff coding values: %v", err))
			return
		}
	}

	entry, err := history.Record(gormDB, history.Entry{
		UserID:        req.UserID,
		VehicleID:     req.VehicleID,
		Manufacturer:  group,
		ModuleAddress: req.ModuleAddress,
		CodingBefore:  req.CodingBefore,
		CodingAfter:   req.CodingAfter,
		Changes:       changes,
	})
	if err != nil {
		log.Printf("Error recording coding history: %v", err)
		response.Error(w, http.StatusInternalServerError, "Failed to record coding history")
		return
	}
	response.JSON(w, http.StatusCreated, entry)
}

// RevertHistoryHandler appends a compensating entry for a prior coding write.
// POST /api/v1/history/{id}/revert
func RevertHistoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "history id must be a valid UUID")
		return
	}

	entry, err := history.Revert(db.GetDB(), id)
	if err != nil {
		switch {
		case errors.Is(err, history.ErrNotFound):
			response.Error(w, http.StatusNotFound, "History entry not found")
		case errors.Is(err, history.ErrAlreadyReverted):
			response.Error(w, http.StatusConflict, "History entry already reverted")
		default:
			log.Printf("Error reverting history entry %s: %v", id, err)
			response.Error(w, http.StatusInternalServerError, "Failed to revert history entry")
		}
		return
	}
	response.JSON(w, http.StatusCreated, entry)
}

// --- Admin: seeding and catalog imports ---

// SeedHandler applies the built-in catalogs. Re-running it is safe: every
// definition upserts on its identity key.
// POST /api/v1/admin/seed
func SeedHandler(w http.ResponseWriter, r *http.Request) {
	gormDB := db.GetDB()
	results := make([]registry.ApplyResult, 0, 2)

	for _, cat := range registry.BuiltinCatalogs() {
		storageKey, err := archiveCatalog(r, cat)
		if err != nil {
			log.Printf("Error archiving catalog %s@%s: %v", cat.Manufacturer, cat.Version, err)
			response.Error(w, http.StatusInternalServerError, "Failed to archive catalog snapshot")
			return
		}
		result, err := registry.Apply(gormDB, cat, storageKey)
		if err != nil {
			log.Printf("Error applying catalog %s@%s: %v", cat.Manufacturer, cat.Version, err)
			response.Error(w, http.StatusInternalServerError, "Failed to apply catalog")
			return
		}
		results = append(results, *result)
	}
	response.JSON(w, http.StatusOK, results)
}

// ImportCatalogHandler applies an externally curated catalog.
// POST /api/v1/admin/catalogs/import
func ImportCatalogHandler(w http.ResponseWriter, r *http.Request) {
	var cat registry.Catalog
	if !decodeBody(w, r, &cat) {
		return
	}
	if cat.Manufacturer == "" {
		response.Error(w, http.StatusBadRequest, "catalog manufacturer is required")
		return
	}
	if _, err := semver.NewVersion(cat.Version); err != nil {
		response.Error(w, http.StatusBadRequest, fmt.Sprintf("Invalid catalog version: %v", err))
		return
	}

	storageKey, err := archiveCatalog(r, cat)
	if err != nil {
		log.Printf("Error archiving imported catalog %s@%s: %v", cat.Manufacturer, cat.Version, err)
		response.Error(w, http.StatusInternalServerError, "Failed to archive catalog snapshot")
		return
	}

	result, err := registry.Apply(db.GetDB(), cat, storageKey)
	if err != nil {
		log.Printf("Error applying imported catalog %s@%s: %v", cat.Manufacturer, cat.Version, err)
		response.Error(w, http.StatusInternalServerError, "Failed to apply catalog")
		return
	}
	response.JSON(w, http.StatusCreated, result)
}

// ListCatalogRevisionsHandler lists every applied catalog revision,
// newest version first within each manufacturer.
// GET /api/v1/admin/catalogs
func ListCatalogRevisionsHandler(w http.ResponseWriter, r *http.Request) {
	revisions, err := registry.ListRevisions(db.GetDB())
	if err != nil {
		log.Printf("Error listing catalog revisions: %v", err)
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve catalog revisions")
		return
	}
	if revisions == nil {
		revisions = []models.CatalogRevision{}
	}
	response.JSON(w, http.StatusOK, revisions)
}

// FetchCatalogSnapshotHandler streams an archived catalog snapshot.
// GET /api/v1/admin/catalogs/{manufacturer}/{version}
func FetchCatalogSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	group, err := manufacturer.Parse(vars["manufacturer"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	version := vars["version"]

	revision, err := registry.GetRevision(db.GetDB(), group, version)
	if err != nil {
		log.Printf("Error looking up catalog revision %s@%s: %v", group, version, err)
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve catalog revision")
		return
	}
	if revision == nil || revision.StorageKey == "" {
		response.Error(w, http.StatusNotFound, "Catalog revision not found")
		return
	}

	object, err := storage.GetStorageProvider().DownloadFile(r.Context(), revision.StorageKey)
	if err != nil {
		log.Printf("Error downloading catalog snapshot %s: %v", revision.StorageKey, err)
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve catalog snapshot")
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", fmt.Sprintf(`"%s"`, revision.Checksum))
	if _, err := io.Copy(w, object); err != nil {
		// Client likely disconnected mid-stream; headers are already sent.
		log.Printf("Error streaming catalog snapshot %s: %v", revision.StorageKey, err)
	}
}

// archiveCatalog writes the canonical catalog JSON to the storage backend
// and returns the object key recorded on the revision.
func archiveCatalog(r *http.Request, cat registry.Catalog) (string, error) {
	data, _, err := registry.CanonicalJSON(cat)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("catalogs/%s/%s.json", cat.Manufacturer, cat.Version)
	err = storage.GetStorageProvider().UploadFile(r.Context(), key, bytes.NewReader(data), int64(len(data)), "application/json")
	if err != nil {
		return "", err
	}
	return key, nil
}
