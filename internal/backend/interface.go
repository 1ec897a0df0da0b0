// Package backend builds the transaction source selected by DATA_BACKEND.
package backend

import (
	"context"
	"slices"
	"time"

	"tally/internal/source"
)

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// BackendResult is a ready-to-use transaction source. Writer is nil for
// read-only sources (demo, sheets).
type BackendResult struct {
	Type    BackendType
	Lister  source.TransactionLister
	Writer  source.TransactionWriter
	Pinger  source.Pinger
	Cleanup CleanupFunc
}

// Close runs Cleanup when set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds the settings needed to build any backend.
type Config struct {
	Type BackendType

	// demo
	DemoTransactionsPath string

	// mysql
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	// postgres
	DatabaseURL string

	// sqlite
	SQLiteDBPath string

	// sql sources
	AbsoluteValues bool

	// sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// result cache in front of the lister; zero disables it
	CacheTTL time.Duration
}

// BackendType represents the type of backend.
type BackendType string

const (
	DemoBackend     BackendType = "demo"
	MySQLBackend    BackendType = "mysql"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	SheetsBackend   BackendType = "sheets"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid.
func (bt BackendType) IsValid() bool {
	return slices.Contains(GetBackendTypes(), bt)
}

// IsSQL reports whether the backend reads a relational transactions table.
func (bt BackendType) IsSQL() bool {
	switch bt {
	case MySQLBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
