package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dispatch/internal/domain/entity"
	"dispatch/internal/repository"
)

// PublisherRepo implements repository.PublisherRepository.
type PublisherRepo struct{ conn }

const publisherColumns = `p.id, p.name, p.description, p.website, p.created_at, p.updated_at`

func scanPublisher(s scanner, extra ...any) (*entity.Publisher, error) {
	var p entity.Publisher
	dest := []any{&p.ID, &p.Name, &p.Description, &p.Website, &p.CreatedAt, &p.UpdatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &p, nil
}

func memberTable(kind repository.MemberKind) (string, error) {
	switch kind {
	case repository.MemberEditor:
		return "publisher_editors", nil
	case repository.MemberJournalist:
		return "publisher_journalists", nil
	}
	return "", &entity.ValidationError{Field: "kind", Message: "member kind must be editor or journalist"}
}

// loadMembers fills EditorIDs and JournalistIDs for the given publishers.
func (repo *PublisherRepo) loadMembers(ctx context.Context, pubs []*entity.Publisher) error {
	if len(pubs) == 0 {
		return nil
	}
	ids := make([]int64, len(pubs))
	for i, p := range pubs {
		ids[i] = p.ID
	}

	for _, kind := range []repository.MemberKind{repository.MemberEditor, repository.MemberJournalist} {
		table, _ := memberTable(kind)
		query := `SELECT publisher_id, user_id FROM ` + table +
			` WHERE publisher_id IN (` + placeholders(len(ids)) + `) ORDER BY publisher_id, user_id`
		rows, err := repo.query(ctx, query, int64Args(ids)...)
		if err != nil {
			return err
		}
		members, err := collectPairs(rows)
		if err != nil {
			return err
		}
		for _, p := range pubs {
			if kind == repository.MemberEditor {
				p.EditorIDs = members[p.ID]
			} else {
				p.JournalistIDs = members[p.ID]
			}
		}
	}
	return nil
}

// List returns every publisher ordered by name with its approved article count.
func (repo *PublisherRepo) List(ctx context.Context) ([]repository.PublisherWithCount, error) {
	query := `
SELECT ` + publisherColumns + `,
       (SELECT COUNT(*) FROM articles a WHERE a.publisher_id = p.id AND a.approved = TRUE)
FROM publishers p
ORDER BY p.name`

	rows, err := repo.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		result []repository.PublisherWithCount
		pubs   []*entity.Publisher
	)
	for rows.Next() {
		var count int64
		p, err := scanPublisher(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		result = append(result, repository.PublisherWithCount{Publisher: p, ArticleCount: count})
		pubs = append(pubs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows.Err: %w", err)
	}
	_ = rows.Close()

	if err := repo.loadMembers(ctx, pubs); err != nil {
		return nil, fmt.Errorf("List: members: %w", err)
	}
	return result, nil
}

// ListForMember returns the publishers the user edits or writes for.
func (repo *PublisherRepo) ListForMember(ctx context.Context, userID int64) ([]*entity.Publisher, error) {
	query := `
SELECT ` + publisherColumns + `
FROM publishers p
WHERE p.id IN (SELECT publisher_id FROM publisher_editors WHERE user_id = ?)
   OR p.id IN (SELECT publisher_id FROM publisher_journalists WHERE user_id = ?)
ORDER BY p.name`

	rows, err := repo.query(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("ListForMember: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pubs []*entity.Publisher
	for rows.Next() {
		p, err := scanPublisher(rows)
		if err != nil {
			return nil, fmt.Errorf("ListForMember: Scan: %w", err)
		}
		pubs = append(pubs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListForMember: rows.Err: %w", err)
	}
	_ = rows.Close()

	if err := repo.loadMembers(ctx, pubs); err != nil {
		return nil, fmt.Errorf("ListForMember: members: %w", err)
	}
	return pubs, nil
}

// Get returns (nil, nil) if the publisher is not found.
func (repo *PublisherRepo) Get(ctx context.Context, id int64) (*entity.Publisher, error) {
	query := `SELECT ` + publisherColumns + ` FROM publishers p WHERE p.id = ?`
	p, err := scanPublisher(repo.queryRow(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	if err := repo.loadMembers(ctx, []*entity.Publisher{p}); err != nil {
		return nil, fmt.Errorf("Get: members: %w", err)
	}
	return p, nil
}

// ExistsByName matches case-insensitively, ignoring the publisher excludeID.
func (repo *PublisherRepo) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	const query = `SELECT COUNT(*) FROM publishers WHERE LOWER(name) = LOWER(?) AND id <> ?`
	var n int64
	if err := repo.queryRow(ctx, query, name, excludeID).Scan(&n); err != nil {
		return false, fmt.Errorf("ExistsByName: %w", err)
	}
	return n > 0, nil
}

// Create inserts the publisher together with its member lists.
func (repo *PublisherRepo) Create(ctx context.Context, p *entity.Publisher) error {
	const query = `
INSERT INTO publishers (name, description, website, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id`
	err := repo.queryRow(ctx, query, p.Name, p.Description, p.Website, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	for _, uid := range p.EditorIDs {
		if err := repo.SetMember(ctx, p.ID, uid, repository.MemberEditor, true); err != nil {
			return fmt.Errorf("Create: %w", err)
		}
	}
	for _, uid := range p.JournalistIDs {
		if err := repo.SetMember(ctx, p.ID, uid, repository.MemberJournalist, true); err != nil {
			return fmt.Errorf("Create: %w", err)
		}
	}
	return nil
}

// Update changes name, description and website. Members are changed with SetMember.
func (repo *PublisherRepo) Update(ctx context.Context, p *entity.Publisher) error {
	const query = `
UPDATE publishers
SET name = ?, description = ?, website = ?, updated_at = ?
WHERE id = ?`
	res, err := repo.exec(ctx, query, p.Name, p.Description, p.Website, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *PublisherRepo) Delete(ctx context.Context, id int64) error {
	res, err := repo.exec(ctx, `DELETE FROM publishers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

// SetMember adds or removes a membership. Both directions are idempotent.
func (repo *PublisherRepo) SetMember(ctx context.Context, publisherID, userID int64, kind repository.MemberKind, member bool) error {
	table, err := memberTable(kind)
	if err != nil {
		return err
	}
	var query string
	if member {
		query = `INSERT INTO ` + table + ` (publisher_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING`
	} else {
		query = `DELETE FROM ` + table + ` WHERE publisher_id = ? AND user_id = ?`
	}
	if _, err := repo.exec(ctx, query, publisherID, userID); err != nil {
		return fmt.Errorf("SetMember: %w", err)
	}
	return nil
}
