package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// schema is written once with placeholders for the column types that differ
// between PostgreSQL and SQLite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id            {{pk}},
    username      TEXT NOT NULL UNIQUE,
    email         TEXT NOT NULL DEFAULT '',
    first_name    TEXT NOT NULL DEFAULT '',
    last_name     TEXT NOT NULL DEFAULT '',
    role          TEXT NOT NULL CHECK (role IN ('reader', 'journalist', 'editor')),
    password_hash TEXT NOT NULL,
    is_active     BOOLEAN NOT NULL DEFAULT TRUE,
    is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
    created_at    {{ts}} NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS publishers (
    id          {{pk}},
    name        TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    website     TEXT NOT NULL DEFAULT '',
    created_at  {{ts}} NOT NULL,
    updated_at  {{ts}} NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS publisher_editors (
    publisher_id {{fk}} NOT NULL REFERENCES publishers(id) ON DELETE CASCADE,
    user_id      {{fk}} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    PRIMARY KEY (publisher_id, user_id)
)`,
	`CREATE TABLE IF NOT EXISTS publisher_journalists (
    publisher_id {{fk}} NOT NULL REFERENCES publishers(id) ON DELETE CASCADE,
    user_id      {{fk}} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    PRIMARY KEY (publisher_id, user_id)
)`,
	`CREATE TABLE IF NOT EXISTS articles (
    id           {{pk}},
    title        TEXT NOT NULL,
    content      TEXT NOT NULL,
    author_id    {{fk}} REFERENCES users(id) ON DELETE CASCADE,
    publisher_id {{fk}} REFERENCES publishers(id) ON DELETE CASCADE,
    approved     BOOLEAN NOT NULL DEFAULT FALSE,
    approved_by  {{fk}} REFERENCES users(id) ON DELETE SET NULL,
    approved_at  {{ts}},
    created_at   {{ts}} NOT NULL,
    updated_at   {{ts}} NOT NULL,
    CONSTRAINT article_single_source CHECK ((author_id IS NULL) <> (publisher_id IS NULL))
)`,
	`CREATE TABLE IF NOT EXISTS newsletters (
    id          {{pk}},
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    author_id   {{fk}} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at  {{ts}} NOT NULL,
    updated_at  {{ts}} NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS newsletter_articles (
    newsletter_id {{fk}} NOT NULL REFERENCES newsletters(id) ON DELETE CASCADE,
    article_id    {{fk}} NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    PRIMARY KEY (newsletter_id, article_id)
)`,
	`CREATE TABLE IF NOT EXISTS reader_publisher_subscriptions (
    reader_id    {{fk}} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    publisher_id {{fk}} NOT NULL REFERENCES publishers(id) ON DELETE CASCADE,
    PRIMARY KEY (reader_id, publisher_id)
)`,
	`CREATE TABLE IF NOT EXISTS reader_journalist_subscriptions (
    reader_id     {{fk}} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    journalist_id {{fk}} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    PRIMARY KEY (reader_id, journalist_id)
)`,
	// layout required by the scs session stores
	`CREATE TABLE IF NOT EXISTS sessions (
    token  TEXT PRIMARY KEY,
    data   {{blob}} NOT NULL,
    expiry {{expiry}} NOT NULL
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email) WHERE email <> ''`,
	`CREATE INDEX IF NOT EXISTS idx_articles_approved_created ON articles(approved, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_author_id ON articles(author_id)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_publisher_id ON articles(publisher_id)`,
	`CREATE INDEX IF NOT EXISTS idx_newsletters_author_id ON newsletters(author_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_expiry ON sessions(expiry)`,
}

func columnTypes(d Dialect) *strings.Replacer {
	if d == Postgres {
		return strings.NewReplacer(
			"{{pk}}", "BIGSERIAL PRIMARY KEY",
			"{{fk}}", "BIGINT",
			"{{ts}}", "TIMESTAMPTZ",
			"{{blob}}", "BYTEA",
			"{{expiry}}", "TIMESTAMPTZ",
		)
	}
	return strings.NewReplacer(
		"{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{fk}}", "INTEGER",
		"{{ts}}", "TIMESTAMP",
		"{{blob}}", "BLOB",
		"{{expiry}}", "REAL",
	)
}

// Statements returns the schema DDL for the dialect in execution order.
func Statements(d Dialect) []string {
	r := columnTypes(d)
	out := make([]string, len(schema))
	for i, s := range schema {
		out[i] = r.Replace(s)
	}
	return out
}

// MigrateUp creates every table and index that does not exist yet.
func MigrateUp(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, stmt := range Statements(d) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %s: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSuffix(s[:i], " (")
	}
	return s
}
