package backend

import (
	"context"

	"previaje/internal/dataset"
	"previaje/internal/dataset/csvfiles"
	"previaje/internal/dataset/google"
)

// CleanupFunc releases resources held by a backend
type CleanupFunc func() error

// Result contains the dataset source and an optional cleanup function
type Result struct {
	Source  dataset.Source
	Cleanup CleanupFunc
}

// Close runs Cleanup when there is one
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates dataset sources based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Files backend, and geometry for the sheets backend
	DataDir string
	Paths   csvfiles.Paths

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	Google google.Config
}

// BackendType represents the type of backend
type BackendType string

const (
	FilesBackend  BackendType = "files"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	SampleBackend BackendType = "sample"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case FilesBackend, SQLiteBackend, SheetsBackend, SampleBackend:
		return true
	default:
		return false
	}
}
