package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dispatch/internal/domain/entity"
	"dispatch/internal/repository"
)

// NewsletterRepo implements repository.NewsletterRepository.
type NewsletterRepo struct{ conn }

const newsletterColumns = `n.id, n.title, n.description, n.author_id, n.created_at, n.updated_at`

func scanNewsletter(s scanner) (*entity.Newsletter, error) {
	var n entity.Newsletter
	if err := s.Scan(&n.ID, &n.Title, &n.Description, &n.AuthorID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func (repo *NewsletterRepo) loadArticles(ctx context.Context, list []*entity.Newsletter) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]int64, len(list))
	for i, n := range list {
		ids[i] = n.ID
	}
	query := `SELECT newsletter_id, article_id FROM newsletter_articles
WHERE newsletter_id IN (` + placeholders(len(ids)) + `) ORDER BY newsletter_id, article_id`
	rows, err := repo.query(ctx, query, int64Args(ids)...)
	if err != nil {
		return err
	}
	links, err := collectPairs(rows)
	if err != nil {
		return err
	}
	for _, n := range list {
		n.ArticleIDs = links[n.ID]
	}
	return nil
}

func (repo *NewsletterRepo) List(ctx context.Context, f repository.NewsletterFilter) ([]*entity.Newsletter, error) {
	query := `SELECT ` + newsletterColumns + ` FROM newsletters n`
	var args []any
	if f.AuthorID != nil {
		query += ` WHERE n.author_id = ?`
		args = append(args, *f.AuthorID)
	}
	query += ` ORDER BY n.created_at DESC, n.id DESC`

	rows, err := repo.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list []*entity.Newsletter
	for rows.Next() {
		n, err := scanNewsletter(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows.Err: %w", err)
	}
	_ = rows.Close()

	if err := repo.loadArticles(ctx, list); err != nil {
		return nil, fmt.Errorf("List: articles: %w", err)
	}
	return list, nil
}

// Get returns (nil, nil) if the newsletter is not found.
func (repo *NewsletterRepo) Get(ctx context.Context, id int64) (*entity.Newsletter, error) {
	query := `SELECT ` + newsletterColumns + ` FROM newsletters n WHERE n.id = ?`
	n, err := scanNewsletter(repo.queryRow(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	if err := repo.loadArticles(ctx, []*entity.Newsletter{n}); err != nil {
		return nil, fmt.Errorf("Get: articles: %w", err)
	}
	return n, nil
}

func (repo *NewsletterRepo) Create(ctx context.Context, n *entity.Newsletter) error {
	const query = `
INSERT INTO newsletters (title, description, author_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id`
	err := repo.queryRow(ctx, query, n.Title, n.Description, n.AuthorID, n.CreatedAt, n.UpdatedAt).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	if err := repo.insertLinks(ctx, n); err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *NewsletterRepo) Update(ctx context.Context, n *entity.Newsletter) error {
	const query = `
UPDATE newsletters
SET title = ?, description = ?, updated_at = ?
WHERE id = ?`
	res, err := repo.exec(ctx, query, n.Title, n.Description, n.UpdatedAt, n.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if c, _ := res.RowsAffected(); c == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	if _, err := repo.exec(ctx, `DELETE FROM newsletter_articles WHERE newsletter_id = ?`, n.ID); err != nil {
		return fmt.Errorf("Update: clear articles: %w", err)
	}
	if err := repo.insertLinks(ctx, n); err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return nil
}

func (repo *NewsletterRepo) insertLinks(ctx context.Context, n *entity.Newsletter) error {
	const query = `INSERT INTO newsletter_articles (newsletter_id, article_id) VALUES (?, ?) ON CONFLICT DO NOTHING`
	for _, aid := range n.ArticleIDs {
		if _, err := repo.exec(ctx, query, n.ID, aid); err != nil {
			return fmt.Errorf("link article %d: %w", aid, err)
		}
	}
	return nil
}

func (repo *NewsletterRepo) Delete(ctx context.Context, id int64) error {
	res, err := repo.exec(ctx, `DELETE FROM newsletters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}
