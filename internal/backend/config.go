package backend

import (
	"fmt"

	"previaje/internal/config"
	"previaje/internal/dataset/csvfiles"
	"previaje/internal/dataset/google"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		DataDir: appConfig.DataDir,
		Paths: csvfiles.Paths{
			Populations:   appConfig.PopulationsPath,
			Geometry:      appConfig.GeometryPath,
			Travel:        appConfig.TravelPath,
			Beneficiaries: appConfig.BeneficiariesPath,
		},

		SQLiteDBPath: appConfig.SQLiteDBPath,

		Google: google.Config{
			SpreadsheetID:      appConfig.GoogleSpreadsheetID,
			PopulationsSheet:   appConfig.GooglePopulationsSheet,
			TravelSheet:        appConfig.GoogleTravelSheet,
			BeneficiariesSheet: appConfig.GoogleBeneficiariesSheet,
			CredentialsJSON:    appConfig.GoogleServiceAccountJSON,
			CredentialsFile:    appConfig.GoogleServiceAccountFile,
		},
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case FilesBackend:
		if c.DataDir == "" {
			return fmt.Errorf("data directory is required for files backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case SheetsBackend:
		if err := c.Google.Validate(); err != nil {
			return fmt.Errorf("sheets backend: %w", err)
		}
		if c.DataDir == "" || c.Paths.Geometry == "" {
			return fmt.Errorf("sheets backend reads geometry from the data directory")
		}
	case SampleBackend:
		// embedded, nothing to check
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{FilesBackend, SQLiteBackend, SheetsBackend, SampleBackend}
}
