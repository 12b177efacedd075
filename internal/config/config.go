package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"previaje/internal/core"
	plog "previaje/internal/log"
)

// DefaultFile is read when PREVIAJE_CONFIG is unset.
const DefaultFile = "previaje.toml"

var validBackends = []string{"files", "sqlite", "sheets", "sample"}

type Config struct {
	// HTTP Server
	Port               string `toml:"port"`
	RateLimitPerMinute int    `toml:"rate_limit_per_minute"`

	// Backend selection
	DataBackend string `toml:"data_backend"`

	// Files backend; the geometry path is also used by the sheets backend
	DataDir           string `toml:"data_dir"`
	PopulationsPath   string `toml:"populations_path"`
	GeometryPath      string `toml:"geometry_path"`
	TravelPath        string `toml:"travel_path"`
	BeneficiariesPath string `toml:"beneficiaries_path"`

	// Database
	SQLiteDBPath string `toml:"sqlite_db_path"`

	// Google Sheets
	GoogleSpreadsheetID      string `toml:"google_spreadsheet_id"`
	GooglePopulationsSheet   string `toml:"google_populations_sheet"`
	GoogleTravelSheet        string `toml:"google_travel_sheet"`
	GoogleBeneficiariesSheet string `toml:"google_beneficiaries_sheet"`
	GoogleServiceAccountJSON string `toml:"google_service_account_json"`
	GoogleServiceAccountFile string `toml:"google_service_account_file"`

	// Loading
	StrictJoins   bool    `toml:"strict_joins"`
	DateOrder     string  `toml:"date_order"`
	SimplifyRatio float64 `toml:"simplify_ratio"`

	LogLevel string `toml:"log_level"`
}

// Defaults returns the configuration used when neither file nor env set a key.
func Defaults() *Config {
	return &Config{
		Port:               "8050",
		RateLimitPerMinute: 120,

		DataBackend: "files",

		DataDir:           "Data",
		PopulationsPath:   "Auxiliary/poblaciones.csv",
		GeometryPath:      "Auxiliary/arg_provincias.geojson",
		TravelPath:        "viajes_origen_destino_mes.csv",
		BeneficiariesPath: "personas_beneficiarias.csv",

		SQLiteDBPath: "./Data/previaje.db",

		GooglePopulationsSheet:   "poblaciones",
		GoogleTravelSheet:        "viajes",
		GoogleBeneficiariesSheet: "beneficiarios",

		StrictJoins:   true,
		DateOrder:     string(core.OrderChronological),
		SimplifyRatio: 0.1,

		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, the optional TOML file named
// by PREVIAJE_CONFIG and the environment, in that order of precedence.
func Load() (*Config, error) {
	cfg := Defaults()

	path := os.Getenv("PREVIAJE_CONFIG")
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	// the default file is optional, an explicit one is not
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)

	c.DataBackend = getEnv("DATA_BACKEND", c.DataBackend)

	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.PopulationsPath = getEnv("POPULATIONS_PATH", c.PopulationsPath)
	c.GeometryPath = getEnv("GEOMETRY_PATH", c.GeometryPath)
	c.TravelPath = getEnv("TRAVEL_PATH", c.TravelPath)
	c.BeneficiariesPath = getEnv("BENEFICIARIES_PATH", c.BeneficiariesPath)

	c.SQLiteDBPath = getEnv("SQLITE_DB_PATH", c.SQLiteDBPath)

	c.GoogleSpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", c.GoogleSpreadsheetID)
	c.GooglePopulationsSheet = getEnv("GOOGLE_POPULATIONS_SHEET", c.GooglePopulationsSheet)
	c.GoogleTravelSheet = getEnv("GOOGLE_TRAVEL_SHEET", c.GoogleTravelSheet)
	c.GoogleBeneficiariesSheet = getEnv("GOOGLE_BENEFICIARIES_SHEET", c.GoogleBeneficiariesSheet)
	c.GoogleServiceAccountJSON = getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", c.GoogleServiceAccountJSON)
	c.GoogleServiceAccountFile = getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", c.GoogleServiceAccountFile)
	if c.GoogleServiceAccountFile == "" {
		c.GoogleServiceAccountFile = getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")
	}

	c.StrictJoins = getEnvBool("STRICT_JOINS", c.StrictJoins)
	c.DateOrder = getEnv("DATE_ORDER", c.DateOrder)
	c.SimplifyRatio = getEnvFloat("SIMPLIFY_RATIO", c.SimplifyRatio)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 0 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be zero (disabled) or positive", c.RateLimitPerMinute))
	}

	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "files":
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using files backend")
		}
		for name, p := range map[string]string{
			"populations":   c.PopulationsPath,
			"geometry":      c.GeometryPath,
			"travel":        c.TravelPath,
			"beneficiaries": c.BeneficiariesPath,
		} {
			if p == "" {
				errors = append(errors, fmt.Sprintf("%s path cannot be empty when using files backend", name))
			}
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GooglePopulationsSheet == "" || c.GoogleTravelSheet == "" || c.GoogleBeneficiariesSheet == "" {
			errors = append(errors, "Google sheet names cannot be empty when using sheets backend")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets backend")
		}
		if c.DataDir == "" || c.GeometryPath == "" {
			errors = append(errors, "geometry is read from DATA_DIR when using sheets backend")
		}
	}

	if !core.DateOrder(c.DateOrder).IsValid() {
		errors = append(errors, fmt.Sprintf("invalid date order '%s': must be 'chronological' or 'file'", c.DateOrder))
	}

	if c.SimplifyRatio <= 0 || c.SimplifyRatio > 1 {
		errors = append(errors, fmt.Sprintf("invalid simplify ratio %g: must be in (0, 1]", c.SimplifyRatio))
	}

	if _, err := plog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Addr is the listen address for the configured port.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
