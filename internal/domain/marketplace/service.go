package marketplace

import (
	"context"
	"errors"
	"strings"

	"slot-swapper/internal/domain/events"
)

var ErrInvalidInput = errors.New("invalid input")

// EventLister es la única parte del Event Store que necesita la proyección.
type EventLister interface {
	ListByStatus(ctx context.Context, status events.Status) ([]events.Event, error)
}

type NameResolver interface {
	ResolveName(ctx context.Context, userID string) string
}

// Listing es un slot SWAPPABLE ajeno, decorado con el nombre del dueño.
type Listing struct {
	Event     events.Event
	OwnerName string
}

// Service es de solo lectura: no muta eventos.
type Service struct {
	events EventLister
	names  NameResolver
}

func NewService(events EventLister, names NameResolver) *Service {
	return &Service{events: events, names: names}
}

// ListSwappable devuelve los slots SWAPPABLE cuyo dueño no es viewerID.
// El orden no está garantizado; lo impone quien presenta.
func (s *Service) ListSwappable(ctx context.Context, viewerID string) ([]Listing, error) {
	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return nil, ErrInvalidInput
	}

	items, err := s.events.ListByStatus(ctx, events.StatusSwappable)
	if err != nil {
		return nil, err
	}

	// cache por request: el mismo dueño suele tener varios slots
	names := map[string]string{}
	out := make([]Listing, 0, len(items))
	for _, e := range items {
		if e.Status != events.StatusSwappable || e.OwnerID == viewerID {
			continue
		}
		name, ok := names[e.OwnerID]
		if !ok {
			name = s.resolve(ctx, e.OwnerID)
			names[e.OwnerID] = name
		}
		out = append(out, Listing{Event: e, OwnerName: name})
	}
	return out, nil
}

func (s *Service) resolve(ctx context.Context, userID string) string {
	if s.names == nil {
		return ""
	}
	return s.names.ResolveName(ctx, userID)
}
