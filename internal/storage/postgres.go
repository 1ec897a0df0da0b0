package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tally/internal/core"
	"tally/internal/source"
)

// pgUniqueViolation is SQLSTATE unique_violation.
const pgUniqueViolation = "23505"

var (
	_ source.TransactionLister = (*PostgresRepository)(nil)
	_ source.TransactionWriter = (*PostgresRepository)(nil)
	_ source.Pinger            = (*PostgresRepository)(nil)
)

// PostgresRepository is the transactions table behind a pgx connection pool.
type PostgresRepository struct {
	pool     *pgxpool.Pool
	absolute bool
}

// NewPostgresRepository migrates the schema then opens a pool on databaseURL.
func NewPostgresRepository(ctx context.Context, databaseURL string, absolute bool) (*PostgresRepository, error) {
	if err := RunPostgresMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.InfoContext(ctx, "Connected to Postgres")
	return &PostgresRepository{pool: pool, absolute: absolute}, nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx, selectColumns(r.absolute, strconv.Quote))
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txns := []core.Transaction{}
	for rows.Next() {
		var (
			t    core.Transaction
			date time.Time
		)
		if err := rows.Scan(&t.ID, &date, &t.Type, &t.Description, &t.Category,
			&t.SubCategory, &t.AccountName, &t.Balance, &t.Value); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date = core.DateOf(date)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}

func (r *PostgresRepository) InsertTransaction(ctx context.Context, t core.Transaction) error {
	const cols = `date, type, description, category, "subCategory", "accountName", balance, value`
	args := []any{t.Date.Time, t.Type, t.Description, t.Category, t.SubCategory, t.AccountName, t.Balance, t.Value}

	var err error
	if t.ID == 0 {
		_, err = r.pool.Exec(ctx,
			`INSERT INTO transactions (`+cols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, args...)
	} else {
		_, err = r.pool.Exec(ctx,
			`INSERT INTO transactions (id, `+cols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			append([]any{t.ID}, args...)...)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("insert transaction %d: %w: %w", t.ID, source.ErrDuplicate, err)
		}
		return fmt.Errorf("insert transaction %d: %w", t.ID, err)
	}

	slog.InfoContext(ctx, "Transaction saved", "driver", "postgres", "id", t.ID, "date", t.Date.String())
	return nil
}
