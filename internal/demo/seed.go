package demo

import (
	"context"
	"errors"
	"time"

	"slot-swapper/internal/domain/events"
	"slot-swapper/internal/domain/users"
)

type Repos struct {
	Users  users.Repository
	Events events.Repository
}

type Result struct {
	Users  int
	Events int
}

var demoUsers = []users.User{
	{ID: "user1", Email: "alice@example.com", Name: "Alice Johnson"},
	{ID: "user2", Email: "bob@example.com", Name: "Bob Smith"},
	{ID: "user3", Email: "charlie@example.com", Name: "Charlie Brown"},
}

type demoEvent struct {
	id     string
	owner  string
	title  string
	days   int
	status events.Status
}

var demoEvents = []demoEvent{
	{id: "evt1", owner: "user1", title: "Team Meeting", days: 1, status: events.StatusBusy},
	{id: "evt2", owner: "user1", title: "Doctor Appointment", days: 2, status: events.StatusSwappable},
	{id: "evt3", owner: "user2", title: "Gym Session", days: 3, status: events.StatusSwappable},
	{id: "evt4", owner: "user3", title: "Dentist Visit", days: 4, status: events.StatusSwappable},
}

// Seed carga los usuarios y slots de demo (1h cada uno, a N días de now).
// Lo que ya existe no se toca, así que se puede correr en cada arranque.
func Seed(ctx context.Context, r Repos, now time.Time) (Result, error) {
	var res Result

	for _, u := range demoUsers {
		_, err := r.Users.GetByID(ctx, u.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, users.ErrNotFound) {
			return res, err
		}

		u.CreatedAt = now
		if err := r.Users.Create(ctx, u); err != nil {
			if errors.Is(err, users.ErrConflict) {
				continue
			}
			return res, err
		}
		res.Users++
	}

	for _, d := range demoEvents {
		_, err := r.Events.GetByID(ctx, d.id)
		if err == nil {
			continue
		}
		if !errors.Is(err, events.ErrNotFound) {
			return res, err
		}

		start := now.Add(time.Duration(d.days) * 24 * time.Hour).Truncate(time.Minute)
		if err := r.Events.Create(ctx, events.Event{
			ID:        d.id,
			OwnerID:   d.owner,
			Title:     d.title,
			StartTime: start,
			EndTime:   start.Add(time.Hour),
			Status:    d.status,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return res, err
		}
		res.Events++
	}

	return res, nil
}
