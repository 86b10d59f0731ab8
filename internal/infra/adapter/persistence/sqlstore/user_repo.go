package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dispatch/internal/domain/entity"
	"dispatch/internal/repository"
)

// UserRepo implements repository.UserRepository.
type UserRepo struct{ conn }

const userColumns = `u.id, u.username, u.email, u.first_name, u.last_name, u.role,
       u.password_hash, u.is_active, u.is_admin, u.created_at`

func scanUser(s scanner) (*entity.User, error) {
	var u entity.User
	var role string
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &role,
		&u.PasswordHash, &u.IsActive, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	return &u, nil
}

func collectUsers(rows *sql.Rows) ([]*entity.User, error) {
	defer func() { _ = rows.Close() }()
	var users []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (repo *UserRepo) List(ctx context.Context, f repository.UserFilter) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u`
	var args []any
	if f.Role != nil {
		query += ` WHERE u.role = ?`
		args = append(args, string(*f.Role))
	}
	query += ` ORDER BY u.username`

	rows, err := repo.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: QueryContext: %w", err)
	}
	users, err := collectUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return users, nil
}

func (repo *UserRepo) Get(ctx context.Context, id int64) (*entity.User, error) {
	return repo.getBy(ctx, "Get", `u.id = ?`, id)
}

func (repo *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return repo.getBy(ctx, "GetByUsername", `u.username = ?`, username)
}

func (repo *UserRepo) getBy(ctx context.Context, op, cond string, arg any) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE ` + cond
	u, err := scanUser(repo.queryRow(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Exists matches the username case-insensitively and the email when non-empty.
func (repo *UserRepo) Exists(ctx context.Context, username, email string) (bool, error) {
	query := `SELECT COUNT(*) FROM users WHERE LOWER(username) = LOWER(?)`
	args := []any{username}
	if email != "" {
		query += ` OR LOWER(email) = LOWER(?)`
		args = append(args, email)
	}
	var n int64
	if err := repo.queryRow(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("Exists: %w", err)
	}
	return n > 0, nil
}

func (repo *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const query = `
INSERT INTO users
       (username, email, first_name, last_name, role, password_hash, is_active, is_admin, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`
	err := repo.queryRow(ctx, query,
		u.Username, u.Email, u.FirstName, u.LastName, string(u.Role),
		u.PasswordHash, u.IsActive, u.IsAdmin, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *UserRepo) Update(ctx context.Context, u *entity.User) error {
	const query = `
UPDATE users
SET email = ?, first_name = ?, last_name = ?, role = ?, password_hash = ?, is_active = ?, is_admin = ?
WHERE id = ?`
	res, err := repo.exec(ctx, query,
		u.Email, u.FirstName, u.LastName, string(u.Role), u.PasswordHash, u.IsActive, u.IsAdmin, u.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}
