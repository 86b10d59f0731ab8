package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T, cfg Config) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	pool, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	return NewDBWithConfig(pool, cfg), mock
}

func TestDB_QueryAndExec(t *testing.T) {
	d, mock := newMockDB(t, DBConfig())
	ctx := context.Background()

	mock.ExpectQuery("SELECT id, title FROM articles").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(1, "Budget"))
	rows, err := d.QueryContext(ctx, "SELECT id, title FROM articles WHERE approved = ?", true)
	require.NoError(t, err)
	require.True(t, rows.Next())
	require.NoError(t, rows.Close())

	mock.ExpectExec("UPDATE articles SET approved").WillReturnResult(sqlmock.NewResult(0, 1))
	res, err := d.ExecContext(ctx, "UPDATE articles SET approved = ? WHERE id = ?", true, 1)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	mock.ExpectBegin()
	mock.ExpectRollback()
	tx, err := d.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_OpensAfterConsecutiveFailures(t *testing.T) {
	cfg := DBConfig()
	cfg.Name = "database-test-open"
	cfg.Timeout = 50 * time.Millisecond
	d, mock := newMockDB(t, cfg)
	ctx := context.Background()
	down := errors.New("connection refused")

	for i := 0; i < 5; i++ {
		mock.ExpectExec("DELETE FROM sessions").WillReturnError(down)
		_, err := d.ExecContext(ctx, "DELETE FROM sessions")
		assert.ErrorIs(t, err, down)
	}
	require.True(t, d.IsOpen())

	_, err := d.QueryContext(ctx, "SELECT 1")
	assert.True(t, IsRejected(err))

	time.Sleep(60 * time.Millisecond)
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	rows, err := d.QueryContext(ctx, "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, rows.Close())
	assert.False(t, d.IsOpen())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_MixedFailuresStayClosed(t *testing.T) {
	cfg := DBConfig()
	cfg.Name = "database-test-mixed"
	d, mock := newMockDB(t, cfg)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		if i%3 == 0 {
			mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 1))
		} else {
			mock.ExpectExec("UPDATE").WillReturnError(errors.New("deadlock"))
		}
		_, _ = d.ExecContext(ctx, "UPDATE users SET is_active = ?", false)
	}
	assert.False(t, d.IsOpen())
}

func TestDB_QueryRowBypassesBreaker(t *testing.T) {
	d, mock := newMockDB(t, DBConfig())
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(4))

	var n int
	require.NoError(t, d.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM users").Scan(&n))
	assert.Equal(t, 4, n)
	assert.NotNil(t, d.Pool())
}
