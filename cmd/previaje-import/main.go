package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"previaje/internal/cli"
	"previaje/internal/config"
	"previaje/internal/dataset/csvfiles"
	"previaje/internal/dataset/sqlite"
	plog "previaje/internal/log"
)

type importOptions struct {
	dataDir  string
	dbPath   string
	paths    csvfiles.Paths
	logLevel string
}

func main() {
	cli.LoadEnvFile()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := config.Defaults()
	opts := importOptions{
		dataDir:  envOr("DATA_DIR", defaults.DataDir),
		dbPath:   envOr("SQLITE_DB_PATH", defaults.SQLiteDBPath),
		paths:    csvfiles.DefaultPaths(),
		logLevel: envOr("LOG_LEVEL", defaults.LogLevel),
	}

	cmd := &cobra.Command{
		Use:   "previaje-import",
		Short: "Import the dashboard CSV inputs and geometry into an SQLite file",
		Long: "previaje-import reads the population, travel and beneficiaries tables and the\n" +
			"province geometry from a data directory and replaces the contents of the\n" +
			"SQLite database served by DATA_BACKEND=sqlite.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dataDir, "data-dir", opts.dataDir, "directory holding the input files")
	f.StringVar(&opts.dbPath, "db", opts.dbPath, "SQLite database to create or replace")
	f.StringVar(&opts.paths.Populations, "populations", opts.paths.Populations, "populations CSV, relative to --data-dir")
	f.StringVar(&opts.paths.Geometry, "geometry", opts.paths.Geometry, "provinces GeoJSON, relative to --data-dir")
	f.StringVar(&opts.paths.Travel, "travel", opts.paths.Travel, "travel CSV, relative to --data-dir")
	f.StringVar(&opts.paths.Beneficiaries, "beneficiaries", opts.paths.Beneficiaries, "beneficiaries CSV, relative to --data-dir")
	f.StringVar(&opts.logLevel, "log-level", opts.logLevel, "debug, info, warn or error")

	return cmd
}

func runImport(parent context.Context, opts importOptions) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := cli.SetupLogger(opts.logLevel).WithComponent(plog.ComponentImport)
	if opts.dataDir == "" || opts.dbPath == "" {
		return fmt.Errorf("both --data-dir and --db are required")
	}

	repo, err := sqlite.Create(opts.dbPath)
	if err != nil {
		logger.Error("Failed to open database", plog.FieldError, err, plog.FieldErrorType, plog.ErrorTypeDatabase)
		return err
	}
	defer repo.Close()

	src := csvfiles.NewFromDir(opts.dataDir, opts.paths)
	st, err := repo.Import(ctx, src)
	if err != nil {
		logger.Error("Import failed",
			plog.FieldOperation, plog.OpImport,
			plog.FieldError, err,
			plog.FieldErrorType, plog.ErrorTypeDataset)
		return err
	}

	logger.Info("Import complete",
		plog.FieldOperation, plog.OpImport,
		"database", opts.dbPath,
		"populations", st.Populations,
		"travel", st.Travel,
		"beneficiaries", st.Beneficiaries,
		"geometry_bytes", st.GeometryBytes)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
