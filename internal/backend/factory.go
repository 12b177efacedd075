package backend

import (
	"context"
	"fmt"

	"previaje/assets"
	"previaje/internal/dataset"
	"previaje/internal/dataset/csvfiles"
	"previaje/internal/dataset/google"
	"previaje/internal/dataset/sqlite"
	plog "previaje/internal/log"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *plog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *plog.Logger) Factory {
	if logger == nil {
		logger = plog.Default(plog.ComponentDataset)
	}
	return &DefaultFactory{
		logger: logger.WithComponent(plog.ComponentDataset),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case FilesBackend:
		return f.createFilesBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case SampleBackend:
		return f.createSampleBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createFilesBackend(config Config) (*Result, error) {
	src := csvfiles.NewFromDir(config.DataDir, config.Paths)

	f.logger.Info("Initialized files backend", "data_directory", config.DataDir)

	return &Result{Source: src}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := sqlite.Open(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite dataset: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Source:  repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*Result, error) {
	cli, err := google.New(ctx, config.Google)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	// the spreadsheet holds the tables only; boundaries come from disk
	geometry := csvfiles.NewFromDir(config.DataDir, config.Paths)

	f.logger.Info("Initialized Google Sheets backend",
		"spreadsheet_id", config.Google.SpreadsheetID,
		"geometry", config.Paths.Geometry)

	return &Result{Source: dataset.WithGeometry(cli, geometry)}, nil
}

func (f *DefaultFactory) createSampleBackend() (*Result, error) {
	fsys, err := assets.Sample()
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded sample: %w", err)
	}

	f.logger.Info("Initialized embedded sample backend")

	return &Result{Source: csvfiles.New(fsys, csvfiles.DefaultPaths())}, nil
}
