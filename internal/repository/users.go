package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayo6706/bankcards/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (q *Queries) CreateUser(ctx context.Context, user *models.User) error {
	err := q.db.QueryRow(ctx, `
		INSERT INTO users (id, username, email, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		user.ID, user.Username, user.Email, user.Role, user.PasswordHash).Scan(&user.CreatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", mapStoreError(err))
	}
	return nil
}

func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, username, email, role, password_hash, created_at
		FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, username, email, role, password_hash, created_at
		FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Role, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", mapStoreError(err))
	}
	return user, nil
}
