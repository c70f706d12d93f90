package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/obdlabs/codingreg/internal/config"
)

// LocalStorage implements the StorageProvider interface using the local filesystem.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates and initializes a new LocalStorage provider.
// It ensures the base storage directory exists.
func NewLocalStorage(cfg config.Config) (*LocalStorage, error) {
	basePath := cfg.LocalStoragePath
	if basePath == "" {
		return nil, fmt.Errorf("local storage path cannot be empty")
	}

	err := os.MkdirAll(basePath, 0755)
	if err != nil {
		log.Printf("Failed to create local storage directory '%s': %v", basePath, err)
		return nil, fmt.Errorf("failed to create local storage directory: %w", err)
	}

	log.Printf("Local storage initialized at path: %s", basePath)

	return &LocalStorage{basePath: basePath}, nil
}

// getFullPath resolves the absolute path for a given object name within the
// storage base path and creates the necessary subdirectories. Object names
// must be relative and are cleaned to block path traversal.
func (l *LocalStorage) getFullPath(objectName string) (string, error) {
	cleanObjectName := filepath.Clean(objectName)
	if cleanObjectName == "." || cleanObjectName == "/" || cleanObjectName == "" {
		return "", fmt.Errorf("invalid object name: %s", objectName)
	}
	if filepath.IsAbs(cleanObjectName) {
		return "", fmt.Errorf("object name cannot be an absolute path: %s", objectName)
	}

	fullPath := filepath.Join(l.basePath, cleanObjectName)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory structure for %s: %w", fullPath, err)
	}

	return fullPath, nil
}

// UploadFile saves data to the local filesystem. size and contentType are
// ignored here; they exist for interface compatibility.
func (l *LocalStorage) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	fullPath, err := l.getFullPath(objectName)
	if err != nil {
		return err
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", fullPath, err)
	}
	defer file.Close()

	_, err = io.Copy(file, reader)
	if err != nil {
		// Remove the partially written file on error.
		_ = os.Remove(fullPath)
		return fmt.Errorf("failed to write data to local file %s: %w", fullPath, err)
	}

	return nil
}

// DownloadFile retrieves a file from the local filesystem.
func (l *LocalStorage) DownloadFile(ctx context.Context, objectName string) (io.ReadCloser, error) {
	fullPath, err := l.getFullPath(objectName)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("object %s not found locally: %w", objectName, os.ErrNotExist)
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat local file %s: %w", fullPath, err)
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object %s not found locally: %w", objectName, err)
		}
		return nil, fmt.Errorf("failed to open local file %s: %w", fullPath, err)
	}

	// Caller is responsible for closing the file.
	return file, nil
}

// DeleteFile removes a file from the local filesystem. Deleting a missing
// file is treated as success.
func (l *LocalStorage) DeleteFile(ctx context.Context, objectName string) error {
	fullPath, err := l.getFullPath(objectName)
	if err != nil {
		return err
	}

	err = os.Remove(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to remove local file %s: %w", fullPath, err)
	}

	return nil
}

// FileExists checks if a file exists on the local filesystem.
func (l *LocalStorage) FileExists(ctx context.Context, objectName string) (bool, error) {
	fullPath, err := l.getFullPath(objectName)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(fullPath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat local file %s: %w", fullPath, err)
}
