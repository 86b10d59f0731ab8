package circuitbreaker

import (
	"context"
	"database/sql"
	"time"
)

// DBConfig trips only when every call in a window of at least five fails.
func DBConfig() Config {
	return Config{
		Name:             "database",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
	}
}

// DB routes statements on a pool through a breaker. Statements inside a
// transaction run on the *sql.Tx and are not guarded.
type DB struct {
	*CircuitBreaker
	pool *sql.DB
}

func NewDB(pool *sql.DB) *DB { return NewDBWithConfig(pool, DBConfig()) }

func NewDBWithConfig(pool *sql.DB, cfg Config) *DB {
	return &DB{CircuitBreaker: New(cfg), pool: pool}
}

func (d *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return Call(d.CircuitBreaker, func() (*sql.Rows, error) {
		return d.pool.QueryContext(ctx, query, args...)
	})
}

func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return Call(d.CircuitBreaker, func() (sql.Result, error) {
		return d.pool.ExecContext(ctx, query, args...)
	})
}

// QueryRowContext is not guarded: *sql.Row defers its error to Scan.
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.pool.QueryRowContext(ctx, query, args...)
}

func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return Call(d.CircuitBreaker, func() (*sql.Tx, error) {
		return d.pool.BeginTx(ctx, opts)
	})
}

// Pool returns the unguarded pool.
func (d *DB) Pool() *sql.DB { return d.pool }
