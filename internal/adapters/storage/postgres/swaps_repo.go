package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"slot-swapper/internal/domain/swaps"
)

const swapColumns = `id, requester_id, offered_event_id, requested_event_id, requested_owner_id, status, created_at, updated_at, responded_at`

type SwapsRepo struct {
	q         queryer
	forUpdate bool
}

func (r *SwapsRepo) Create(ctx context.Context, sr swaps.SwapRequest) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO swap_requests (`+swapColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		sr.ID,
		sr.RequesterID,
		sr.OfferedEventID,
		sr.RequestedEventID,
		sr.RequestedOwnerID,
		string(sr.Status),
		sr.CreatedAt,
		sr.UpdatedAt,
		sr.RespondedAt,
	)
	return err
}

func (r *SwapsRepo) GetByID(ctx context.Context, id string) (swaps.SwapRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return swaps.SwapRequest{}, swaps.ErrNotFound
	}

	row := r.q.QueryRowContext(ctx, `
		SELECT `+swapColumns+`
		FROM swap_requests
		WHERE id = $1
	`+lockClause(r.forUpdate), id)

	sr, err := scanSwap(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return swaps.SwapRequest{}, swaps.ErrNotFound
		}
		return swaps.SwapRequest{}, err
	}
	return sr, nil
}

// Update solo persiste lo que cambia al responder.
func (r *SwapsRepo) Update(ctx context.Context, sr swaps.SwapRequest) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE swap_requests
		SET status = $2, updated_at = $3, responded_at = $4
		WHERE id = $1
	`,
		sr.ID,
		string(sr.Status),
		sr.UpdatedAt,
		sr.RespondedAt,
	)
	return affectedOne(res, err, swaps.ErrNotFound)
}

func (r *SwapsRepo) List(ctx context.Context) ([]swaps.SwapRequest, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+swapColumns+`
		FROM swap_requests
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]swaps.SwapRequest, 0)
	for rows.Next() {
		sr, err := scanSwap(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

func scanSwap(s rowScanner) (swaps.SwapRequest, error) {
	var sr swaps.SwapRequest
	var status string
	var responded sql.NullTime
	if err := s.Scan(
		&sr.ID,
		&sr.RequesterID,
		&sr.OfferedEventID,
		&sr.RequestedEventID,
		&sr.RequestedOwnerID,
		&status,
		&sr.CreatedAt,
		&sr.UpdatedAt,
		&responded,
	); err != nil {
		return swaps.SwapRequest{}, err
	}

	sr.Status = swaps.Status(status)
	if responded.Valid {
		t := responded.Time
		sr.RespondedAt = &t
	}
	return sr, nil
}
