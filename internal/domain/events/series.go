package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

const (
	DefaultSeriesMax = 10
	MaxSeriesMax     = 52

	// Ventana de expansión: reglas sin COUNT/UNTIL no se expanden más allá de un año.
	seriesHorizon = 366 * 24 * time.Hour
)

type SeriesInput struct {
	Title     string
	StartTime time.Time
	EndTime   time.Time

	// RRule en formato RFC 5545 sin DTSTART (ej: "FREQ=WEEKLY;COUNT=4").
	RRule string
	Max   int
}

// CreateSeries expande RRule a partir de StartTime y crea un evento independiente
// por ocurrencia, conservando la duración del primero.
func (s *Service) CreateSeries(ctx context.Context, ownerID string, in SeriesInput) ([]Event, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner required", ErrInvalidInput)
	}
	if err := validateRange(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	limit := in.Max
	if limit <= 0 {
		limit = DefaultSeriesMax
	}
	if limit > MaxSeriesMax {
		limit = MaxSeriesMax
	}

	raw := strings.TrimPrefix(strings.TrimSpace(in.RRule), "RRULE:")
	if raw == "" {
		return nil, fmt.Errorf("%w: rrule required", ErrInvalidInput)
	}
	rule, err := rrule.StrToRRule(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: rrule: %v", ErrInvalidInput, err)
	}
	rule.DTStart(in.StartTime)

	starts := rule.Between(in.StartTime, in.StartTime.Add(seriesHorizon), true)
	if len(starts) > limit {
		starts = starts[:limit]
	}
	if len(starts) == 0 {
		return nil, fmt.Errorf("%w: rrule yields no occurrences", ErrInvalidInput)
	}

	dur := in.EndTime.Sub(in.StartTime)
	out := make([]Event, 0, len(starts))
	for _, st := range starts {
		e, err := s.newEvent(ownerID, CreateInput{
			Title:     in.Title,
			StartTime: st,
			EndTime:   st.Add(dur),
		})
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	err = s.store.RunInEventTx(ctx, func(ctx context.Context, repo Repository) error {
		for _, e := range out {
			if err := repo.Create(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
