package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/domain/entity"
	"dispatch/internal/repository"
)

// ArticleRepo implements repository.ArticleRepository.
type ArticleRepo struct{ conn }

const articleColumns = `a.id, a.title, a.content, a.author_id, a.publisher_id,
       a.approved, a.approved_by, a.approved_at, a.created_at, a.updated_at`

const articleSourceColumns = `COALESCE(p.name, ''), COALESCE(u.username, ''),
       COALESCE(u.first_name, ''), COALESCE(u.last_name, '')`

const articleSourceJoins = `
LEFT JOIN users u ON u.id = a.author_id
LEFT JOIN publishers p ON p.id = a.publisher_id`

func scanArticle(s scanner, extra ...any) (*entity.Article, error) {
	var (
		a                         entity.Article
		authorID, pubID, approver sql.NullInt64
		approvedAt                sql.NullTime
	)
	dest := []any{&a.ID, &a.Title, &a.Content, &authorID, &pubID,
		&a.Approved, &approver, &approvedAt, &a.CreatedAt, &a.UpdatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	a.AuthorID = int64Ptr(authorID)
	a.PublisherID = int64Ptr(pubID)
	a.ApprovedBy = int64Ptr(approver)
	if approvedAt.Valid {
		t := approvedAt.Time
		a.ApprovedAt = &t
	}
	return &a, nil
}

func scanArticleWithSource(s scanner) (*repository.ArticleWithSource, error) {
	var pubName, username, first, last string
	a, err := scanArticle(s, &pubName, &username, &first, &last)
	if err != nil {
		return nil, err
	}
	name := pubName
	if a.AuthorID != nil {
		name = (&entity.User{Username: username, FirstName: first, LastName: last}).DisplayName()
	}
	return &repository.ArticleWithSource{Article: a, SourceName: name}, nil
}

// List retrieves a page of articles matching the filter with their source names.
func (repo *ArticleRepo) List(ctx context.Context, f repository.ArticleFilter, offset, limit int) ([]repository.ArticleWithSource, error) {
	qb := NewArticleQueryBuilder()
	where, args := qb.BuildWhereClause(f)

	query := `
SELECT ` + articleColumns + `,
       ` + articleSourceColumns + `
FROM articles a` + articleSourceJoins + `
` + where + `
` + qb.BuildOrderBy(f.Order) + `
LIMIT ? OFFSET ?`

	rows, err := repo.query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("List: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]repository.ArticleWithSource, 0, limit)
	for rows.Next() {
		aws, err := scanArticleWithSource(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		result = append(result, *aws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows.Err: %w", err)
	}
	return result, nil
}

// Count returns the number of articles matching the filter.
func (repo *ArticleRepo) Count(ctx context.Context, f repository.ArticleFilter) (int64, error) {
	where, args := NewArticleQueryBuilder().BuildWhereClause(f)
	query := `SELECT COUNT(*) FROM articles a ` + where

	var count int64
	if err := repo.queryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

// Get returns (nil, nil) if the article is not found.
func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	query := `
SELECT ` + articleColumns + `
FROM articles a
WHERE a.id = ?`
	a, err := scanArticle(repo.queryRow(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return a, nil
}

// GetWithSource returns (nil, nil) if the article is not found.
func (repo *ArticleRepo) GetWithSource(ctx context.Context, id int64) (*repository.ArticleWithSource, error) {
	query := `
SELECT ` + articleColumns + `,
       ` + articleSourceColumns + `
FROM articles a` + articleSourceJoins + `
WHERE a.id = ?`
	aws, err := scanArticleWithSource(repo.queryRow(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetWithSource: %w", err)
	}
	return aws, nil
}

// Create inserts the article and sets its ID.
func (repo *ArticleRepo) Create(ctx context.Context, a *entity.Article) error {
	const query = `
INSERT INTO articles
       (title, content, author_id, publisher_id, approved, approved_by, approved_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`
	var approvedAt sql.NullTime
	if a.ApprovedAt != nil {
		approvedAt = sql.NullTime{Time: *a.ApprovedAt, Valid: true}
	}
	err := repo.queryRow(ctx, query,
		a.Title, a.Content, nullInt64(a.AuthorID), nullInt64(a.PublisherID),
		a.Approved, nullInt64(a.ApprovedBy), approvedAt, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// Update changes the editable fields. Source and approval state are not touched.
func (repo *ArticleRepo) Update(ctx context.Context, a *entity.Article) error {
	const query = `
UPDATE articles
SET title = ?, content = ?, updated_at = ?
WHERE id = ?`
	res, err := repo.exec(ctx, query, a.Title, a.Content, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *ArticleRepo) Delete(ctx context.Context, id int64) error {
	res, err := repo.exec(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

// Approve only matches pending rows, so exactly one of several concurrent
// approvals sees an affected row.
func (repo *ArticleRepo) Approve(ctx context.Context, id, editorID int64, at time.Time) (bool, error) {
	const query = `
UPDATE articles
SET approved = TRUE, approved_by = ?, approved_at = ?, updated_at = ?
WHERE id = ? AND approved = FALSE`
	res, err := repo.exec(ctx, query, editorID, at, at, id)
	if err != nil {
		return false, fmt.Errorf("Approve: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Approve: RowsAffected: %w", err)
	}
	return n == 1, nil
}

// ExistingIDs returns the subset of ids that refer to stored articles.
func (repo *ArticleRepo) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id FROM articles WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY id`
	rows, err := repo.query(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("ExistingIDs: %w", err)
	}
	found, err := collectIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("ExistingIDs: %w", err)
	}
	return found, nil
}
