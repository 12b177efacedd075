package main

import (
	"context"
	"path/filepath"
	"testing"

	"previaje/internal/dataset/sqlite"
)

func TestImportCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "previaje.db")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--data-dir", "../../assets/sample", "--db", db, "--log-level", "error"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	repo, err := sqlite.Open(db)
	if err != nil {
		t.Fatalf("open imported db: %v", err)
	}
	defer repo.Close()

	pops, err := repo.Populations(context.Background())
	if err != nil {
		t.Fatalf("Populations() error = %v", err)
	}
	if len(pops) != 6 {
		t.Fatalf("imported %d populations, want 6", len(pops))
	}
	travel, err := repo.Travel(context.Background())
	if err != nil {
		t.Fatalf("Travel() error = %v", err)
	}
	if len(travel) != 14 {
		t.Fatalf("imported %d travel rows, want 14", len(travel))
	}
}

func TestImportCommand_MissingInput(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--data-dir", t.TempDir(), "--db", filepath.Join(t.TempDir(), "x.db"), "--log-level", "error"})
	cmd.SetErr(&discard{})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for empty data directory")
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
