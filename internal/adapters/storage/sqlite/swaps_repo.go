package sqlite

import (
	"context"
	"sort"
	"strings"
	"time"

	"slot-swapper/internal/domain/swaps"
)

type swapRecord struct {
	ID               string       `json:"id"`
	RequesterID      string       `json:"requester_id"`
	OfferedEventID   string       `json:"offered_event_id"`
	RequestedEventID string       `json:"requested_event_id"`
	RequestedOwnerID string       `json:"requested_owner_id"`
	Status           swaps.Status `json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
	RespondedAt      *time.Time   `json:"responded_at,omitempty"`
}

// lookup = requester_id
type swapRepo struct {
	rec records
}

func (r *swapRepo) Create(ctx context.Context, sr swaps.SwapRequest) error {
	return r.rec.insert(ctx, sr.ID, sr.RequesterID, string(sr.Status), swapRecord(sr))
}

func (r *swapRepo) GetByID(ctx context.Context, id string) (swaps.SwapRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return swaps.SwapRequest{}, swaps.ErrNotFound
	}
	var rec swapRecord
	if err := r.rec.get(ctx, id, &rec, swaps.ErrNotFound); err != nil {
		return swaps.SwapRequest{}, err
	}
	return swaps.SwapRequest(rec), nil
}

func (r *swapRepo) Update(ctx context.Context, sr swaps.SwapRequest) error {
	return r.rec.update(ctx, sr.ID, sr.RequesterID, string(sr.Status), swapRecord(sr), swaps.ErrNotFound)
}

func (r *swapRepo) List(ctx context.Context) ([]swaps.SwapRequest, error) {
	out := make([]swaps.SwapRequest, 0)
	err := r.rec.each(ctx, "", "", func(body string) error {
		var rec swapRecord
		if err := r.rec.decode(body, &rec); err != nil {
			return err
		}
		out = append(out, swaps.SwapRequest(rec))
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
