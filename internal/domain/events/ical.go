package events

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	ical "github.com/arran4/golang-ical"
)

const (
	icalProductID = "-//slot-swapper//events//EN"
	icalUIDDomain = "slot-swapper"

	// Propiedad no estándar para conservar el status del slot en el export.
	icalPropStatus ical.ComponentProperty = "X-SLOTSWAPPER-STATUS"
)

// ImportResult resume un import de .ics: eventos creados y VEVENTs descartados.
type ImportResult struct {
	Created []Event
	Skipped int
}

// ExportICS serializa los eventos del dueño como iCalendar (METHOD:PUBLISH).
func (s *Service) ExportICS(ctx context.Context, ownerID string) ([]byte, error) {
	items, err := s.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icalProductID)

	stamp := s.now()
	for _, e := range items {
		ve := cal.AddEvent(e.ID + "@" + icalUIDDomain)
		ve.SetDtStampTime(stamp)
		ve.SetCreatedTime(e.CreatedAt)
		ve.SetStartAt(e.StartTime)
		ve.SetEndAt(e.EndTime)
		ve.SetSummary(e.Title)
		ve.SetProperty(icalPropStatus, string(e.Status))
	}

	return []byte(cal.Serialize()), nil
}

// ImportICS crea un evento BUSY por cada VEVENT válido del documento.
// VEVENTs sin título o con rango inválido se cuentan como Skipped.
func (s *Service) ImportICS(ctx context.Context, ownerID string, body []byte) (ImportResult, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return ImportResult{}, fmt.Errorf("%w: owner required", ErrInvalidInput)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return ImportResult{}, fmt.Errorf("%w: empty calendar", ErrInvalidInput)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	pending := make([]Event, 0)
	res := ImportResult{}
	for _, ve := range cal.Events() {
		in := CreateInput{}
		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
			in.Title = p.Value
		}
		start, serr := ve.GetStartAt()
		end, eerr := ve.GetEndAt()
		if serr != nil || eerr != nil {
			res.Skipped++
			continue
		}
		in.StartTime = start
		in.EndTime = end

		e, err := s.newEvent(ownerID, in)
		if err != nil {
			res.Skipped++
			continue
		}
		pending = append(pending, e)
	}

	// Todo o nada: un fallo de storage no deja un import a medias.
	err = s.store.RunInEventTx(ctx, func(ctx context.Context, repo Repository) error {
		for _, e := range pending {
			if err := repo.Create(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	res.Created = pending
	return res, nil
}
