// Package sqlite stores the dashboard tables in a single SQLite file so a
// deployment can ship one artifact instead of four.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"previaje/internal/core"
	"previaje/internal/dataset"
)

type Repository struct {
	db *sql.DB
}

var _ dataset.Source = (*Repository)(nil)

// Open opens an existing database for reading. It never creates the file.
func Open(dbPath string) (*Repository, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("stat sqlite database: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Repository{db: db}, nil
}

// Create opens dbPath, creating the file and its directory when needed, and
// applies the schema migrations.
func Create(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Populations implements dataset.PopulationReader
func (r *Repository) Populations(ctx context.Context) ([]core.Population, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT province, people FROM populations ORDER BY province`)
	if err != nil {
		return nil, fmt.Errorf("query populations: %w", err)
	}
	defer rows.Close()

	var out []core.Population
	for rows.Next() {
		var p core.Population
		if err := rows.Scan(&p.Province, &p.People); err != nil {
			return nil, fmt.Errorf("scan population: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Travel implements dataset.TravelReader. Rows come back in import order.
func (r *Repository) Travel(ctx context.Context) ([]core.Travel, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT month, origin, destination, travelers FROM travel ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query travel: %w", err)
	}
	defer rows.Close()

	var out []core.Travel
	for rows.Next() {
		var t core.Travel
		if err := rows.Scan(&t.Month, &t.Origin, &t.Destination, &t.Travelers); err != nil {
			return nil, fmt.Errorf("scan travel: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Beneficiaries implements dataset.BeneficiaryReader
func (r *Repository) Beneficiaries(ctx context.Context) ([]core.BeneficiaryRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT province, age_bracket, gender, beneficiaries, edition FROM beneficiaries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query beneficiaries: %w", err)
	}
	defer rows.Close()

	var out []core.BeneficiaryRow
	for rows.Next() {
		var b core.BeneficiaryRow
		if err := rows.Scan(&b.Province, &b.AgeBracket, &b.Gender, &b.Beneficiaries, &b.Edition); err != nil {
			return nil, fmt.Errorf("scan beneficiary: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Geometry implements dataset.GeometryReader
func (r *Repository) Geometry(ctx context.Context) (io.ReadCloser, error) {
	var blob []byte
	err := r.db.QueryRowContext(ctx, `SELECT geojson FROM geometry WHERE id = 1`).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.New("database has no geometry; run previaje-import")
	}
	if err != nil {
		return nil, fmt.Errorf("query geometry: %w", err)
	}
	return io.NopCloser(bytes.NewReader(blob)), nil
}

// ImportStats counts the rows written by Import.
type ImportStats struct {
	Populations   int
	Travel        int
	Beneficiaries int
	GeometryBytes int
}

// Import replaces every table with the contents of src in one transaction.
func (r *Repository) Import(ctx context.Context, src dataset.Source) (ImportStats, error) {
	var st ImportStats

	pops, err := src.Populations(ctx)
	if err != nil {
		return st, fmt.Errorf("read populations: %w", err)
	}
	travel, err := src.Travel(ctx)
	if err != nil {
		return st, fmt.Errorf("read travel: %w", err)
	}
	bens, err := src.Beneficiaries(ctx)
	if err != nil {
		return st, fmt.Errorf("read beneficiaries: %w", err)
	}
	rc, err := src.Geometry(ctx)
	if err != nil {
		return st, fmt.Errorf("open geometry: %w", err)
	}
	geometry, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return st, fmt.Errorf("read geometry: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return st, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"populations", "travel", "beneficiaries", "geometry"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return st, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, p := range pops {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO populations (province, people) VALUES (?, ?)`, p.Province, p.People); err != nil {
			return st, fmt.Errorf("insert population %q: %w", p.Province, err)
		}
	}
	for _, t := range travel {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO travel (month, origin, destination, travelers) VALUES (?, ?, ?, ?)`,
			t.Month, t.Origin, t.Destination, t.Travelers); err != nil {
			return st, fmt.Errorf("insert travel: %w", err)
		}
	}
	for _, b := range bens {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO beneficiaries (province, age_bracket, gender, beneficiaries, edition) VALUES (?, ?, ?, ?, ?)`,
			b.Province, b.AgeBracket, b.Gender, b.Beneficiaries, b.Edition); err != nil {
			return st, fmt.Errorf("insert beneficiary: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO geometry (id, geojson) VALUES (1, ?)`, geometry); err != nil {
		return st, fmt.Errorf("insert geometry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return st, fmt.Errorf("commit import: %w", err)
	}

	st = ImportStats{
		Populations:   len(pops),
		Travel:        len(travel),
		Beneficiaries: len(bens),
		GeometryBytes: len(geometry),
	}
	slog.InfoContext(ctx, "Dataset imported into SQLite",
		"populations", st.Populations,
		"travel", st.Travel,
		"beneficiaries", st.Beneficiaries,
		"geometry_bytes", st.GeometryBytes)
	return st, nil
}
