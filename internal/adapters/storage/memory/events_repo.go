package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"slot-swapper/internal/domain/events"
)

// eventRepo con st == nil opera directo sobre el Store (con lock propio);
// con st != nil corre dentro de RunInTx (lock ya tomado) sobre el overlay.
type eventRepo struct {
	s  *Store
	st *staged
}

func (r *eventRepo) rlock() func() {
	if r.st != nil {
		return noop
	}
	r.s.mu.RLock()
	return r.s.mu.RUnlock
}

func (r *eventRepo) wlock() func() {
	if r.st != nil {
		return noop
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *eventRepo) get(id string) (events.Event, bool) {
	if r.st != nil {
		if e, ok := r.st.events[id]; ok {
			if e == nil {
				return events.Event{}, false
			}
			return *e, true
		}
	}
	e, ok := r.s.events[id]
	return e, ok
}

func (r *eventRepo) put(e events.Event) {
	if r.st != nil {
		r.st.events[e.ID] = &e
		return
	}
	r.s.events[e.ID] = e
}

func (r *eventRepo) remove(id string) {
	if r.st != nil {
		r.st.events[id] = nil
		return
	}
	delete(r.s.events, id)
}

func (r *eventRepo) filter(keep func(events.Event) bool) []events.Event {
	out := make([]events.Event, 0)
	for id, e := range r.s.events {
		if r.st != nil {
			if _, overridden := r.st.events[id]; overridden {
				continue
			}
		}
		if keep(e) {
			out = append(out, e)
		}
	}
	if r.st != nil {
		for _, e := range r.st.events {
			if e != nil && keep(*e) {
				out = append(out, *e)
			}
		}
	}

	// Orden por start_time asc (estable para UI y tests)
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

func (r *eventRepo) Create(ctx context.Context, e events.Event) error {
	unlock := r.wlock()
	defer unlock()

	if strings.TrimSpace(e.ID) == "" {
		return errors.New("event id required")
	}
	if _, exists := r.get(e.ID); exists {
		return errors.New("event already exists")
	}
	r.put(e)
	return nil
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	unlock := r.rlock()
	defer unlock()

	e, ok := r.get(id)
	if !ok {
		return events.Event{}, events.ErrNotFound
	}
	return e, nil
}

func (r *eventRepo) ListByOwner(ctx context.Context, ownerID string) ([]events.Event, error) {
	unlock := r.rlock()
	defer unlock()

	return r.filter(func(e events.Event) bool { return e.OwnerID == ownerID }), nil
}

func (r *eventRepo) ListByStatus(ctx context.Context, status events.Status) ([]events.Event, error) {
	unlock := r.rlock()
	defer unlock()

	return r.filter(func(e events.Event) bool { return e.Status == status }), nil
}

func (r *eventRepo) Update(ctx context.Context, e events.Event) error {
	unlock := r.wlock()
	defer unlock()

	if _, exists := r.get(e.ID); !exists {
		return events.ErrNotFound
	}
	r.put(e)
	return nil
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	unlock := r.wlock()
	defer unlock()

	if _, exists := r.get(id); !exists {
		return events.ErrNotFound
	}
	r.remove(id)
	return nil
}
