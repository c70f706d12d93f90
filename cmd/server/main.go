package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/obdlabs/codingreg/internal/api"
	"github.com/obdlabs/codingreg/internal/config"
	"github.com/obdlabs/codingreg/internal/db"
	"github.com/obdlabs/codingreg/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database (Postgres or SQLite)
	_, err = db.Init(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Storage (Minio or Local)
	_, err = storage.InitStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize Router
	router := mux.NewRouter()
	api.RegisterRoutes(router, cfg.AuthToken)

	// Start Server
	listenAddr := ":" + cfg.ServerPort
	log.Printf("Starting server on %s", listenAddr)
	err = http.ListenAndServe(listenAddr, router)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
