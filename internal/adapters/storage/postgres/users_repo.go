package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"slot-swapper/internal/domain/users"
)

type UsersRepo struct {
	q queryer
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, email, name, created_at)
		VALUES ($1,$2,$3,$4)
	`, u.ID, u.Email, u.Name, u.CreatedAt)
	if isUniqueViolation(err) {
		return users.ErrConflict
	}
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, strings.TrimSpace(id))
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	return r.getOne(ctx, `WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
}

func (r *UsersRepo) getOne(ctx context.Context, where string, arg string) (users.User, error) {
	if arg == "" {
		return users.User{}, users.ErrNotFound
	}

	var u users.User
	err := r.q.QueryRowContext(ctx, `
		SELECT id, email, name, created_at
		FROM users
		`+where, arg).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]users.User, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, email, name, created_at
		FROM users
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		var u users.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
