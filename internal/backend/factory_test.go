package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"previaje/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.DataBackend = "sqlite"
	cfg.SQLiteDBPath = "/tmp/x.db"

	bc, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if bc.Type != SQLiteBackend || bc.SQLiteDBPath != "/tmp/x.db" {
		t.Fatalf("FromAppConfig() = %+v", bc)
	}
	if bc.Paths.Travel != cfg.TravelPath {
		t.Fatalf("Paths.Travel = %q, want %q", bc.Paths.Travel, cfg.TravelPath)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	cfg.DataBackend = "memory"
	if _, err := FromAppConfig(cfg); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{name: "sample", config: Config{Type: SampleBackend}},
		{name: "files without dir", config: Config{Type: FilesBackend}, wantErr: "data directory is required"},
		{name: "sqlite without path", config: Config{Type: SQLiteBackend}, wantErr: "SQLite database path is required"},
		{name: "sheets without id", config: Config{Type: SheetsBackend, DataDir: "Data"}, wantErr: "sheets backend"},
		{name: "unknown", config: Config{Type: "csv"}, wantErr: "invalid backend type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend_Sample(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SampleBackend})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Close()

	pops, err := res.Source.Populations(context.Background())
	if err != nil {
		t.Fatalf("Populations() error = %v", err)
	}
	if len(pops) != 6 {
		t.Fatalf("got %d populations, want 6", len(pops))
	}
}

func TestCreateBackend_SQLiteMissingFile(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "missing.db"),
	})
	if err == nil || !strings.Contains(err.Error(), "failed to open SQLite dataset") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestBackendTypes(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Fatalf("%s should be valid", bt)
		}
	}
	if BackendType("memory").IsValid() {
		t.Fatalf("memory is not a configurable backend")
	}
}
