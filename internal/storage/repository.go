// Package storage holds the relational transaction sources: sqlite and mysql
// over database/sql, postgres over pgxpool.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"tally/internal/core"
	"tally/internal/source"
)

var (
	_ source.TransactionLister = (*SQLRepository)(nil)
	_ source.TransactionWriter = (*SQLRepository)(nil)
	_ source.Pinger            = (*SQLRepository)(nil)
)

// selectColumns lists the columns in Transaction field order. With absolute
// set, value is read as ABS(value) and the sign of debits is lost.
func selectColumns(absolute bool, quote func(string) string) string {
	value := "value"
	if absolute {
		value = "ABS(value) AS value"
	}
	return fmt.Sprintf("SELECT id, date, type, description, category, %s, %s, balance, %s FROM transactions",
		quote("subCategory"), quote("accountName"), value)
}

func noQuote(s string) string { return s }

// SQLRepository reads and writes the transactions table through database/sql.
type SQLRepository struct {
	db       *sql.DB
	driver   string
	absolute bool
}

// NewSQLiteRepository opens (creating if needed) the sqlite file at dbPath and migrates it.
func NewSQLiteRepository(dbPath string, absolute bool) (*SQLRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
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

	if err := RunSQLiteMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLRepository{db: db, driver: "sqlite", absolute: absolute}, nil
}

// MySQLOptions are the connection settings for the mysql source.
type MySQLOptions struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// DSN renders the options as a go-sql-driver DSN. DATE columns are parsed into time.Time.
func (o MySQLOptions) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", o.Host, o.Port)
	cfg.DBName = o.Database
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// NewMySQLRepository connects to an existing mysql database. The schema is
// owned by whoever populates the table; no migrations are run.
func NewMySQLRepository(ctx context.Context, opts MySQLOptions, absolute bool) (*SQLRepository, error) {
	db, err := sql.Open("mysql", opts.DSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.InfoContext(ctx, "Connected to MySQL", "host", opts.Host, "database", opts.Database)
	return &SQLRepository{db: db, driver: "mysql", absolute: absolute}, nil
}

func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListTransactions runs a single SELECT over the table. Rows come back in
// whatever order the database yields them.
func (r *SQLRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns(r.absolute, noQuote))
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txns := []core.Transaction{}
	for rows.Next() {
		var t core.Transaction
		if err := rows.Scan(&t.ID, &t.Date, &t.Type, &t.Description, &t.Category,
			&t.SubCategory, &t.AccountName, &t.Balance, &t.Value); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}

// InsertTransaction stores one transaction. A zero ID lets the database assign one.
func (r *SQLRepository) InsertTransaction(ctx context.Context, t core.Transaction) error {
	cols := "date, type, description, category, subCategory, accountName, balance, value"
	args := []any{t.Date, t.Type, t.Description, t.Category, t.SubCategory, t.AccountName, t.Balance, t.Value}
	placeholders := "?, ?, ?, ?, ?, ?, ?, ?"
	if t.ID != 0 {
		cols = "id, " + cols
		args = append([]any{t.ID}, args...)
		placeholders = "?, " + placeholders
	}

	if _, err := r.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO transactions (%s) VALUES (%s)", cols, placeholders), args...); err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("insert transaction %d: %w: %w", t.ID, source.ErrDuplicate, err)
		}
		return fmt.Errorf("insert transaction %d: %w", t.ID, err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"driver", r.driver,
		"id", t.ID,
		"date", t.Date.String(),
		"value", t.Value)
	return nil
}

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a primary key or unique violation from
// the sqlite or mysql driver.
func isDuplicateKey(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	return false
}
