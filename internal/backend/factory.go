package backend

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/cache"
	"tally/internal/source/demo"
	"tally/internal/source/sheets"
	"tally/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend. When CacheTTL is positive
// the lister is wrapped in a TTL cache.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case DemoBackend:
		result = f.createDemoBackend(config)
	case MySQLBackend:
		result, err = f.createMySQLBackend(ctx, config)
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case PostgresBackend:
		result, err = f.createPostgresBackend(ctx, config)
	case SheetsBackend:
		result, err = f.createSheetsBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}
	result.Type = config.Type

	f.logSignConvention(config)

	if config.CacheTTL > 0 {
		lister, closeCache, err := cache.NewCachedLister(result.Lister, config.CacheTTL)
		if err != nil {
			result.Close()
			return nil, fmt.Errorf("failed to initialize result cache: %w", err)
		}
		result.Lister = lister
		result.Cleanup = chainCleanup(result.Cleanup, closeCache)
		f.logger.Info("Transaction result cache enabled", "ttl", config.CacheTTL)
	}

	return result, nil
}

// logSignConvention warns when SQL values are being reported as absolute
// amounts while the demo file keeps its signs.
func (f *DefaultFactory) logSignConvention(config Config) {
	if !config.Type.IsSQL() {
		f.logger.Info("Transaction values are returned with their stored sign", "backend", config.Type)
		return
	}
	if config.AbsoluteValues {
		f.logger.Warn("Transaction values are returned as ABS(value); debits and credits are indistinguishable and differ from the demo source",
			"backend", config.Type,
			"setting", "SQL_ABSOLUTE_VALUES=true")
		return
	}
	f.logger.Info("Transaction values are returned with their stored sign", "backend", config.Type)
}

func (f *DefaultFactory) createDemoBackend(config Config) *BackendResult {
	store := demo.New(config.DemoTransactionsPath)

	f.logger.Info("Initialized demo backend", "path", config.DemoTransactionsPath)

	return &BackendResult{Lister: store, Pinger: store}
}

func (f *DefaultFactory) createMySQLBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewMySQLRepository(ctx, storage.MySQLOptions{
		Host:     config.DBHost,
		Port:     config.DBPort,
		User:     config.DBUser,
		Password: config.DBPassword,
		Database: config.DBName,
	}, config.AbsoluteValues)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MySQL repository: %w", err)
	}

	f.logger.Info("Initialized MySQL backend", "host", config.DBHost, "database", config.DBName)

	return &BackendResult{Lister: repo, Writer: repo, Pinger: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, config.AbsoluteValues)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{Lister: repo, Writer: repo, Pinger: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createPostgresBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewPostgresRepository(ctx, config.DatabaseURL, config.AbsoluteValues)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
	}

	f.logger.Info("Initialized Postgres backend")

	return &BackendResult{Lister: repo, Writer: repo, Pinger: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := sheets.New(ctx, sheets.Options{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		SheetName:          config.GoogleSheetName,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend")

	return &BackendResult{Lister: cli, Pinger: cli}, nil
}

func chainCleanup(first CleanupFunc, then func()) CleanupFunc {
	return func() error {
		then()
		if first != nil {
			return first()
		}
		return nil
	}
}
