package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/obdlabs/codingreg/internal/config"
)

// StorageProvider is the backend that holds archived catalog snapshots.
// Implementations exist for MinIO and the local filesystem.
type StorageProvider interface {
	// UploadFile writes an object. size is the total length of the data,
	// required by MinIO.
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error

	// DownloadFile retrieves an object. The returned reader must be closed
	// by the caller.
	DownloadFile(ctx context.Context, objectName string) (io.ReadCloser, error)

	// DeleteFile removes an object.
	DeleteFile(ctx context.Context, objectName string) error

	// FileExists reports whether an object exists.
	FileExists(ctx context.Context, objectName string) (bool, error)
}

// Global storage provider instance
var provider StorageProvider

// InitStorage initializes the appropriate storage provider based on config.
func InitStorage(cfg config.Config) (StorageProvider, error) {
	var err error
	storageType := strings.ToLower(cfg.StorageType)
	log.Printf("Initializing storage provider: %s", storageType)

	switch storageType {
	case "minio":
		provider, err = NewMinioStorage(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Minio storage: %w", err)
		}
	case "local":
		provider, err = NewLocalStorage(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_TYPE: %s. Must be 'minio' or 'local'", cfg.StorageType)
	}

	log.Printf("Storage provider '%s' initialized successfully.", storageType)
	return provider, nil
}

// GetStorageProvider returns the initialized storage provider instance.
// Panics if InitStorage has not been called successfully.
func GetStorageProvider() StorageProvider {
	if provider == nil {
		panic("Storage provider has not been initialized. Call storage.InitStorage first.")
	}
	return provider
}

// SetStorageProvider is a test helper function.
// !! Use only in tests !!
func SetStorageProvider(p StorageProvider) {
	provider = p
}
