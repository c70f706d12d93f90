package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up the API routes for the coding registry server.
func RegisterRoutes(router *mux.Router, authToken string) {
	apiV1 := router.PathPrefix("/api/v1").Subrouter()

	// --- Public Routes (No Auth Required) ---

	// Parse and encode coding bytes. Registered before the {manufacturer}
	// wildcards so the literal segments win.
	apiV1.HandleFunc("/modules/parse-coding", ParseCodingHandler).Methods("POST")
	apiV1.HandleFunc("/modules/encode-coding", EncodeCodingHandler).Methods("POST")

	// Crowdsourced discovery ingestion.
	apiV1.HandleFunc("/modules/discovered", ReportDiscoveredModuleHandler).Methods("POST")
	apiV1.HandleFunc("/pids/discovered", ReportDiscoveredPIDsHandler).Methods("POST")

	// Module registry reads.
	apiV1.HandleFunc("/modules/{manufacturer}", ListManufacturerModulesHandler).Methods("GET")
	apiV1.HandleFunc("/modules/{manufacturer}/capabilities", ModuleCapabilitiesHandler).Methods("GET")
	apiV1.HandleFunc("/modules/{manufacturer}/{address}/coding", ListModuleCodingBitsHandler).Methods("GET")

	// PID registry and profiles.
	apiV1.HandleFunc("/pids/profile", PIDProfileHandler).Methods("GET")
	apiV1.HandleFunc("/pids/stats", PIDStatsHandler).Methods("GET")
	apiV1.HandleFunc("/pids/{manufacturer}", ListManufacturerPIDsHandler).Methods("GET")

	// Coding history ledger.
	apiV1.HandleFunc("/history", ListHistoryHandler).Methods("GET")
	apiV1.HandleFunc("/history", RecordHistoryHandler).Methods("POST")
	apiV1.HandleFunc("/history/{id}/revert", RevertHistoryHandler).Methods("POST")

	// --- Protected Routes (Auth Required) ---

	admin := apiV1.PathPrefix("/admin").Subrouter()
	admin.Handle("/seed", ApplyAuth(http.HandlerFunc(SeedHandler), authToken)).Methods("POST")
	admin.Handle("/catalogs/import", ApplyAuth(http.HandlerFunc(ImportCatalogHandler), authToken)).Methods("POST")
	admin.Handle("/catalogs", ApplyAuth(http.HandlerFunc(ListCatalogRevisionsHandler), authToken)).Methods("GET")
	admin.Handle("/catalogs/{manufacturer}/{version}", ApplyAuth(http.HandlerFunc(FetchCatalogSnapshotHandler), authToken)).Methods("GET")

	// --- Health Check (Outside API versioning for simplicity) ---
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
}
