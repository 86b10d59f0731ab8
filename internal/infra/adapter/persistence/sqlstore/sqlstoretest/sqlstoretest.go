// Package sqlstoretest provides a migrated in-memory SQLite store and
// fixture helpers for tests in other packages.
package sqlstoretest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"dispatch/internal/domain/entity"
	"dispatch/internal/infra/adapter/persistence/sqlstore"
	"dispatch/internal/infra/db"
	"dispatch/internal/repository"
)

// New returns a migrated in-memory store. A single connection keeps the
// in-memory database alive for the whole test.
func New(t testing.TB) *sqlstore.Store {
	t.Helper()
	sqlDB, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.MigrateUp(context.Background(), sqlDB, db.SQLite))
	return sqlstore.New(sqlDB, db.SQLite)
}

// User inserts an active user with an email derived from the username.
func User(t testing.TB, s repository.Store, username string, role entity.Role) *entity.User {
	t.Helper()
	u := &entity.User{
		Username: username, Email: username + "@example.com", Role: role,
		PasswordHash: "x", IsActive: true, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

// Publisher inserts a publisher with the given members.
func Publisher(t testing.TB, s repository.Store, name string, editors, journalists []int64) *entity.Publisher {
	t.Helper()
	now := time.Now().UTC()
	p := &entity.Publisher{Name: name, EditorIDs: editors, JournalistIDs: journalists, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Publishers().Create(context.Background(), p))
	return p
}

// Article inserts an article by a journalist, optionally approved by approver.
func Article(t testing.TB, s repository.Store, title string, authorID int64, approver *entity.User) *entity.Article {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	a := &entity.Article{Title: title, Content: "Body of " + title, AuthorID: &authorID, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Articles().Create(ctx, a))
	if approver != nil {
		ok, err := s.Articles().Approve(ctx, a.ID, approver.ID, now)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, a.MarkApproved(approver.ID, now))
	}
	return a
}
