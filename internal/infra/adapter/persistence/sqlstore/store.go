// Package sqlstore implements the repository interfaces on database/sql for
// PostgreSQL (pgx) and SQLite (go-sqlite3). Queries are written once with '?'
// placeholders and rebound per dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/infra/db"
	"dispatch/internal/repository"
	"dispatch/internal/resilience/circuitbreaker"
)

// Querier is satisfied by *sql.DB, *sql.Tx and the circuit-breaking wrapper.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type conn struct {
	q Querier
	d db.Dialect
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.q.ExecContext(ctx, c.d.Rebind(query), args...)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.q.QueryContext(ctx, c.d.Rebind(query), args...)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, c.d.Rebind(query), args...)
}

type scanner interface {
	Scan(dest ...any) error
}

// Store hands out repositories bound to a pool or to one transaction.
type Store struct {
	cb      *circuitbreaker.DB // nil inside a transaction
	q       Querier
	dialect db.Dialect
}

var _ repository.Store = (*Store)(nil)

// New returns a Store over the pool. Statements outside transactions go
// through the database circuit breaker.
func New(sqlDB *sql.DB, dialect db.Dialect) *Store {
	cb := circuitbreaker.NewDB(sqlDB)
	return &Store{cb: cb, q: cb, dialect: dialect}
}

func (s *Store) conn() conn { return conn{q: s.q, d: s.dialect} }

func (s *Store) Users() repository.UserRepository { return &UserRepo{s.conn()} }

func (s *Store) Articles() repository.ArticleRepository { return &ArticleRepo{s.conn()} }

func (s *Store) Publishers() repository.PublisherRepository { return &PublisherRepo{s.conn()} }

func (s *Store) Newsletters() repository.NewsletterRepository { return &NewsletterRepo{s.conn()} }

func (s *Store) Subscriptions() repository.SubscriptionRepository {
	return &SubscriptionRepo{s.conn()}
}

// WithinTx runs fn inside a transaction. Nested calls reuse the outer one.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.cb == nil {
		return fn(s)
	}

	tx, err := s.cb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("WithinTx: begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Store{q: tx, dialect: s.dialect}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("WithinTx: rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("WithinTx: commit: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// collectIDs scans single-column id rows.
func collectIDs(rows *sql.Rows) ([]int64, error) {
	defer func() { _ = rows.Close() }()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// collectPairs scans (owner_id, member_id) rows into a map keyed by owner.
func collectPairs(rows *sql.Rows) (map[int64][]int64, error) {
	defer func() { _ = rows.Close() }()
	out := make(map[int64][]int64)
	for rows.Next() {
		var owner, member int64
		if err := rows.Scan(&owner, &member); err != nil {
			return nil, err
		}
		out[owner] = append(out[owner], member)
	}
	return out, rows.Err()
}
