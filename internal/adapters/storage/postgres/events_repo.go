package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"slot-swapper/internal/domain/events"
)

const eventColumns = `id, owner_id, title, start_time, end_time, status, created_at, updated_at`

type EventsRepo struct {
	q         queryer
	forUpdate bool
}

func (r *EventsRepo) Create(ctx context.Context, e events.Event) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		e.ID,
		e.OwnerID,
		e.Title,
		e.StartTime,
		e.EndTime,
		string(e.Status),
		e.CreatedAt,
		e.UpdatedAt,
	)
	return err
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return events.Event{}, events.ErrNotFound
	}

	row := r.q.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE id = $1
	`+lockClause(r.forUpdate), id)

	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, err
	}
	return e, nil
}

func (r *EventsRepo) ListByOwner(ctx context.Context, ownerID string) ([]events.Event, error) {
	return r.list(ctx, `WHERE owner_id = $1`, ownerID)
}

func (r *EventsRepo) ListByStatus(ctx context.Context, status events.Status) ([]events.Event, error) {
	return r.list(ctx, `WHERE status = $1`, string(status))
}

func (r *EventsRepo) list(ctx context.Context, where string, arg any) ([]events.Event, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		`+where+`
		ORDER BY start_time, id
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]events.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventsRepo) Update(ctx context.Context, e events.Event) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE events
		SET owner_id = $2, title = $3, start_time = $4, end_time = $5, status = $6, updated_at = $7
		WHERE id = $1
	`,
		e.ID,
		e.OwnerID,
		e.Title,
		e.StartTime,
		e.EndTime,
		string(e.Status),
		e.UpdatedAt,
	)
	return affectedOne(res, err, events.ErrNotFound)
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	return affectedOne(res, err, events.ErrNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (events.Event, error) {
	var e events.Event
	var status string
	if err := s.Scan(
		&e.ID,
		&e.OwnerID,
		&e.Title,
		&e.StartTime,
		&e.EndTime,
		&status,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return events.Event{}, err
	}

	e.Status = events.Status(status)
	if !e.Status.Valid() {
		return events.Event{}, fmt.Errorf("event %s: unknown status %q", e.ID, status)
	}
	return e, nil
}

func affectedOne(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notFound
	}
	return nil
}
