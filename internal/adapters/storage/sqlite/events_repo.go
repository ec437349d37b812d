package sqlite

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"slot-swapper/internal/domain/events"
)

type eventRecord struct {
	ID        string        `json:"id"`
	OwnerID   string        `json:"owner_id"`
	Title     string        `json:"title"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Status    events.Status `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (rec eventRecord) toDomain() (events.Event, error) {
	if !rec.Status.Valid() {
		return events.Event{}, fmt.Errorf("event %s: unknown status %q", rec.ID, rec.Status)
	}
	return events.Event(rec), nil
}

// lookup = owner_id
type eventRepo struct {
	rec records
}

func (r *eventRepo) Create(ctx context.Context, e events.Event) error {
	return r.rec.insert(ctx, e.ID, e.OwnerID, string(e.Status), eventRecord(e))
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return events.Event{}, events.ErrNotFound
	}
	var rec eventRecord
	if err := r.rec.get(ctx, id, &rec, events.ErrNotFound); err != nil {
		return events.Event{}, err
	}
	return rec.toDomain()
}

func (r *eventRepo) ListByOwner(ctx context.Context, ownerID string) ([]events.Event, error) {
	return r.list(ctx, "lookup", ownerID)
}

func (r *eventRepo) ListByStatus(ctx context.Context, status events.Status) ([]events.Event, error) {
	return r.list(ctx, "status", string(status))
}

func (r *eventRepo) list(ctx context.Context, column, value string) ([]events.Event, error) {
	out := make([]events.Event, 0)
	err := r.rec.each(ctx, column, value, func(body string) error {
		var rec eventRecord
		if err := r.rec.decode(body, &rec); err != nil {
			return err
		}
		e, err := rec.toDomain()
		if err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *eventRepo) Update(ctx context.Context, e events.Event) error {
	return r.rec.update(ctx, e.ID, e.OwnerID, string(e.Status), eventRecord(e), events.ErrNotFound)
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	return r.rec.delete(ctx, id, events.ErrNotFound)
}
