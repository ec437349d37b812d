package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"slot-swapper/internal/domain/events"
	"slot-swapper/internal/domain/swaps"
	"slot-swapper/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEvent(t *testing.T, s *Store, id, owner string, status events.Status, start time.Time) events.Event {
	t.Helper()
	e := events.Event{
		ID:        id,
		OwnerID:   owner,
		Title:     "slot " + id,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    status,
	}
	require.NoError(t, s.Events().Create(context.Background(), e))
	return e
}

func TestRunInTx_CommitsStagedWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	e := seedEvent(t, s, "e1", "u1", events.StatusSwappable, base)

	err := s.RunInTx(ctx, func(ctx context.Context, tx swaps.Tx) error {
		e.Status = events.StatusSwapPending
		require.NoError(t, tx.Events().Update(ctx, e))

		// lectura dentro de la tx ve el overlay
		got, err := tx.Events().GetByID(ctx, "e1")
		require.NoError(t, err)
		assert.Equal(t, events.StatusSwapPending, got.Status)

		return tx.Requests().Create(ctx, swaps.SwapRequest{ID: "r1", Status: swaps.StatusPending})
	})
	require.NoError(t, err)

	got, err := s.Events().GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, events.StatusSwapPending, got.Status)

	_, err = s.Requests().GetByID(ctx, "r1")
	assert.NoError(t, err)
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	e := seedEvent(t, s, "e1", "u1", events.StatusSwappable, base)
	seedEvent(t, s, "e2", "u2", events.StatusSwappable, base.Add(2*time.Hour))

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(ctx context.Context, tx swaps.Tx) error {
		e.OwnerID = "u2"
		require.NoError(t, tx.Events().Update(ctx, e))
		require.NoError(t, tx.Events().Delete(ctx, "e2"))
		require.NoError(t, tx.Requests().Create(ctx, swaps.SwapRequest{ID: "r1"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Events().GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.OwnerID)

	_, err = s.Events().GetByID(ctx, "e2")
	assert.NoError(t, err)

	_, err = s.Requests().GetByID(ctx, "r1")
	assert.ErrorIs(t, err, swaps.ErrNotFound)
}

func TestEventRepo_ListsMergeOverlayAndSortByStart(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	seedEvent(t, s, "late", "u1", events.StatusSwappable, base.Add(5*time.Hour))
	seedEvent(t, s, "early", "u1", events.StatusBusy, base)

	err := s.RunInEventTx(ctx, func(ctx context.Context, repo events.Repository) error {
		require.NoError(t, repo.Delete(ctx, "late"))
		require.NoError(t, repo.Create(ctx, events.Event{
			ID: "mid", OwnerID: "u1", Title: "mid",
			StartTime: base.Add(time.Hour), EndTime: base.Add(2 * time.Hour),
			Status: events.StatusSwappable,
		}))

		items, err := repo.ListByOwner(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "early", items[0].ID)
		assert.Equal(t, "mid", items[1].ID)

		swappable, err := repo.ListByStatus(ctx, events.StatusSwappable)
		require.NoError(t, err)
		require.Len(t, swappable, 1)
		assert.Equal(t, "mid", swappable[0].ID)
		return nil
	})
	require.NoError(t, err)
}

func TestEventRepo_NotFoundErrors(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.Events().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, events.ErrNotFound)
	assert.ErrorIs(t, s.Events().Update(ctx, events.Event{ID: "missing"}), events.ErrNotFound)
	assert.ErrorIs(t, s.Events().Delete(ctx, "missing"), events.ErrNotFound)
	assert.ErrorIs(t, s.Requests().Update(ctx, swaps.SwapRequest{ID: "missing"}), swaps.ErrNotFound)
}

func TestUserRepo_EmailIsUniqueCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Users().Create(ctx, users.User{ID: "u1", Email: "alice@example.com", Name: "Alice"}))
	err := s.Users().Create(ctx, users.User{ID: "u2", Email: "ALICE@example.com", Name: "Other"})
	assert.ErrorIs(t, err, users.ErrConflict)

	u, err := s.Users().GetByEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
}
