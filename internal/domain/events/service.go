package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("event not found")
	ErrBadState     = errors.New("invalid state")
)

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

type CreateInput struct {
	Title     string
	StartTime time.Time
	EndTime   time.Time
}

// Patch: nil = no tocar.
type Patch struct {
	Title     *string
	StartTime *time.Time
	EndTime   *time.Time
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (Event, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Event{}, fmt.Errorf("%w: owner required", ErrInvalidInput)
	}
	e, err := s.newEvent(ownerID, in)
	if err != nil {
		return Event{}, err
	}

	if err := s.store.Events().Create(ctx, e); err != nil {
		return Event{}, err
	}
	return e, nil
}

func (s *Service) newEvent(ownerID string, in CreateInput) (Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Event{}, fmt.Errorf("%w: title required", ErrInvalidInput)
	}
	if err := validateRange(in.StartTime, in.EndTime); err != nil {
		return Event{}, err
	}

	now := s.now()
	return Event{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Status:    StatusBusy,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrInvalidInput
	}
	return s.store.Events().GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Event, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.store.Events().ListByOwner(ctx, ownerID)
}

// Update edita título/horario. Rechaza eventos con un swap pendiente.
func (s *Service) Update(ctx context.Context, eventID, ownerID string, p Patch) (Event, error) {
	var out Event
	err := s.mutateOwned(ctx, eventID, ownerID, func(e *Event) error {
		if p.Title != nil {
			t := strings.TrimSpace(*p.Title)
			if t == "" {
				return fmt.Errorf("%w: title required", ErrInvalidInput)
			}
			e.Title = t
		}
		if p.StartTime != nil {
			e.StartTime = *p.StartTime
		}
		if p.EndTime != nil {
			e.EndTime = *p.EndTime
		}
		if err := validateRange(e.StartTime, e.EndTime); err != nil {
			return err
		}
		out = *e
		return nil
	})
	if err != nil {
		return Event{}, err
	}
	return out, nil
}

// SetSwappable alterna BUSY <-> SWAPPABLE. SWAP_PENDING solo lo maneja el motor de swaps.
func (s *Service) SetSwappable(ctx context.Context, eventID, ownerID string, swappable bool) (Event, error) {
	var out Event
	err := s.mutateOwned(ctx, eventID, ownerID, func(e *Event) error {
		if swappable {
			e.Status = StatusSwappable
		} else {
			e.Status = StatusBusy
		}
		out = *e
		return nil
	})
	if err != nil {
		return Event{}, err
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, eventID, ownerID string) error {
	eventID = strings.TrimSpace(eventID)
	ownerID = strings.TrimSpace(ownerID)
	if eventID == "" || ownerID == "" {
		return ErrInvalidInput
	}

	return s.store.RunInEventTx(ctx, func(ctx context.Context, repo Repository) error {
		e, err := loadOwned(ctx, repo, eventID, ownerID)
		if err != nil {
			return err
		}
		if e.Status == StatusSwapPending {
			return fmt.Errorf("%w: event has a pending swap", ErrBadState)
		}
		return repo.Delete(ctx, eventID)
	})
}

// mutateOwned carga el evento del dueño dentro de una tx, aplica fn y persiste.
func (s *Service) mutateOwned(ctx context.Context, eventID, ownerID string, fn func(e *Event) error) error {
	eventID = strings.TrimSpace(eventID)
	ownerID = strings.TrimSpace(ownerID)
	if eventID == "" || ownerID == "" {
		return ErrInvalidInput
	}

	return s.store.RunInEventTx(ctx, func(ctx context.Context, repo Repository) error {
		e, err := loadOwned(ctx, repo, eventID, ownerID)
		if err != nil {
			return err
		}
		if e.Status == StatusSwapPending {
			return fmt.Errorf("%w: event has a pending swap", ErrBadState)
		}

		if err := fn(&e); err != nil {
			return err
		}
		e.UpdatedAt = s.now()
		return repo.Update(ctx, e)
	})
}

// loadOwned trata "no existe" y "no es tuyo" igual, para no filtrar ids ajenos.
func loadOwned(ctx context.Context, repo Repository, eventID, ownerID string) (Event, error) {
	e, err := repo.GetByID(ctx, eventID)
	if err != nil {
		return Event{}, err
	}
	if e.OwnerID != ownerID {
		return Event{}, ErrNotFound
	}
	return e, nil
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start_time and end_time required", ErrInvalidInput)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: end_time must be after start_time", ErrInvalidInput)
	}
	return nil
}
