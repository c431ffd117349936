package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propleads/intake/internal/domain"
)

// userRepository implements UserRepository on PostgreSQL.
type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

// GetByID retrieves a user by id.
func (r *userRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	var user domain.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, created_at FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Ensure upserts the user and returns the stored row. Existing rows keep
// their email and name.
func (r *userRepository) Ensure(ctx context.Context, user domain.User) (domain.User, error) {
	var stored domain.User
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, name, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING id, email, name, created_at`,
		user.ID, user.Email, user.Name,
	).Scan(&stored.ID, &stored.Email, &stored.Name, &stored.CreatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to ensure user: %w", err)
	}
	return stored, nil
}
