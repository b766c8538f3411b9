package mysql

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/bryanwahyu/finsight/internal/domain/users"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	const q = `
INSERT INTO users (id, username, email, password_hash, created_at)
VALUES (?,?,?,?,?);`
	u.CreatedAt = nowIfZero(u.CreatedAt)
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	if isDuplicate(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `
SELECT id, username, email, password_hash, created_at
FROM users WHERE email=? LIMIT 1;`
	return r.one(r.db.QueryRowContext(ctx, q, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `
SELECT id, username, email, password_hash, created_at
FROM users WHERE id=? LIMIT 1;`
	return r.one(r.db.QueryRowContext(ctx, q, id))
}

func (r *UserRepository) one(row *sql.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
