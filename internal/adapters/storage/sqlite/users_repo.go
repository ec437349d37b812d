package sqlite

import (
	"context"
	"sort"
	"strings"
	"time"

	"slot-swapper/internal/domain/users"
)

type userRecord struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// lookup = lower(email), con índice único.
type userRepo struct {
	rec records
}

func (r *userRepo) Create(ctx context.Context, u users.User) error {
	err := r.rec.insert(ctx, u.ID, emailKey(u.Email), "", userRecord(u))
	if isConstraint(err) {
		return users.ErrConflict
	}
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return users.User{}, users.ErrNotFound
	}
	var rec userRecord
	if err := r.rec.get(ctx, id, &rec, users.ErrNotFound); err != nil {
		return users.User{}, err
	}
	return users.User(rec), nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	key := emailKey(email)
	if key == "" {
		return users.User{}, users.ErrNotFound
	}
	var rec userRecord
	if err := r.rec.getBy(ctx, "lookup", key, &rec, users.ErrNotFound); err != nil {
		return users.User{}, err
	}
	return users.User(rec), nil
}

func (r *userRepo) List(ctx context.Context) ([]users.User, error) {
	out := make([]users.User, 0)
	err := r.rec.each(ctx, "", "", func(body string) error {
		var rec userRecord
		if err := r.rec.decode(body, &rec); err != nil {
			return err
		}
		out = append(out, users.User(rec))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
