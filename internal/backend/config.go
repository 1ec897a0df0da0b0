package backend

import (
	"fmt"
	"strconv"

	"tally/internal/config"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s (want one of %v)", appConfig.DataBackend, GetBackendTypes())
	}

	cfg := Config{
		Type:                     backendType,
		DemoTransactionsPath:     appConfig.DemoTransactionsPath,
		DBHost:                   appConfig.DBHost,
		DBUser:                   appConfig.DBUser,
		DBPassword:               appConfig.DBPassword,
		DBName:                   appConfig.DBName,
		DatabaseURL:              appConfig.DatabaseURL,
		SQLiteDBPath:             appConfig.SQLiteDBPath,
		AbsoluteValues:           appConfig.SQLAbsoluteValues,
		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		CacheTTL:                 appConfig.CacheTTL,
	}

	if backendType == MySQLBackend {
		port, err := strconv.Atoi(appConfig.DBPort)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DB_PORT %q: %w", appConfig.DBPort, err)
		}
		cfg.DBPort = port
	}

	return cfg, nil
}

// Validate checks the settings the chosen backend needs.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s (want one of %v)", c.Type, GetBackendTypes())
	}

	switch c.Type {
	case DemoBackend:
		if c.DemoTransactionsPath == "" {
			return fmt.Errorf("demo transactions path is required for demo backend")
		}
	case MySQLBackend:
		if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
			return fmt.Errorf("DB_HOST, DB_USER and DB_NAME are required for mysql backend")
		}
	case PostgresBackend:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			return fmt.Errorf("service account credentials are required for sheets backend")
		}
	}

	return nil
}

// GetBackendTypes returns all valid backend types.
func GetBackendTypes() []BackendType {
	return []BackendType{DemoBackend, MySQLBackend, SQLiteBackend, PostgresBackend, SheetsBackend}
}
