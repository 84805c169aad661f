package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"catalog-service/internal/domain"
)

const userColumns = "id, email, hashed_password, role, is_active, created_at, updated_at"

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO catalog.users (id, email, hashed_password, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns + `;
	`
	u, err := scanUser(s.q.QueryRowContext(ctx, query, user.ID, user.Email, user.HashedPassword, string(user.Role), user.IsActive))
	if err != nil {
		if derr := translateWriteError(err, map[string]string{"email": user.Email}); derr != nil {
			return nil, derr
		}
		return nil, fmt.Errorf("store: CreateUser failed: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getUser(ctx, "id = $1", id)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, "email = $1", email)
}

func (s *PostgresStore) getUser(ctx context.Context, predicate string, key interface{}) (*domain.User, error) {
	query := "SELECT " + userColumns + " FROM catalog.users WHERE " + predicate + ";"
	u, err := scanUser(s.q.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "user"}
		}
		return nil, fmt.Errorf("store: get user failed: %w", err)
	}
	return u, nil
}
