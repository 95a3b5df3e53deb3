package storage

import (
	"context"

	"github.com/gobarber/gobarber/internal/model"
	"github.com/gobarber/gobarber/libs/db"
)

type UserRepository struct {
	pool *db.Pool
}

func NewUserRepository(pool *db.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, provider)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, user.Name, user.Email, user.PasswordHash, user.Provider).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (model.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, `WHERE email = $1`, email)
}

// GetProvider resolves id only when the account carries the provider flag.
func (r *UserRepository) GetProvider(ctx context.Context, id int64) (model.User, error) {
	return r.getOne(ctx, `WHERE id = $1 AND provider`, id)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, provider, avatar_id, created_at, updated_at
		FROM users
	`+where, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Provider, &u.AvatarID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	return r.pool.QueryRow(ctx, `
		UPDATE users
		SET name = $2,
			email = $3,
			password_hash = $4,
			avatar_id = $5,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.AvatarID).
		Scan(&user.UpdatedAt)
}

// ListProviders returns every provider account with its avatar joined, for
// the provider directory listing.
func (r *UserRepository) ListProviders(ctx context.Context) ([]model.Provider, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.name, f.id, f.path
		FROM users u
		LEFT JOIN files f ON f.id = u.avatar_id
		WHERE u.provider
		ORDER BY u.name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var providers []model.Provider
	for rows.Next() {
		var p model.Provider
		var avatarID *int64
		var avatarPath *string
		if err := rows.Scan(&p.ID, &p.Name, &avatarID, &avatarPath); err != nil {
			return nil, err
		}
		if avatarID != nil && avatarPath != nil {
			p.Avatar = &model.Avatar{ID: *avatarID, Path: *avatarPath}
		}
		providers = append(providers, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return providers, nil
}
