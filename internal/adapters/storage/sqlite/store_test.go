package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"slot-swapper/internal/domain/events"
	"slot-swapper/internal/domain/swaps"
	"slot-swapper/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slots.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func seed(t *testing.T, s *Store, id, owner string, status events.Status, start time.Time) {
	t.Helper()
	require.NoError(t, s.Events().Create(context.Background(), events.Event{
		ID:        id,
		OwnerID:   owner,
		Title:     "slot " + id,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    status,
		CreatedAt: start,
		UpdatedAt: start,
	}))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestEvents_PersistAcrossReopen(t *testing.T) {
	s, path := openTemp(t)
	start := time.Date(2030, 1, 2, 9, 0, 0, 0, time.UTC)
	seed(t, s, "e2", "alice", events.StatusBusy, start.Add(time.Hour))
	seed(t, s, "e1", "alice", events.StatusSwappable, start)
	seed(t, s, "e3", "bob", events.StatusSwappable, start)
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	mine, err := s2.Events().ListByOwner(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "e1", mine[0].ID)
	assert.True(t, mine[0].StartTime.Equal(start))

	swappable, err := s2.Events().ListByStatus(context.Background(), events.StatusSwappable)
	require.NoError(t, err)
	assert.Len(t, swappable, 2)
}

func TestEvents_NotFound(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	_, err := s.Events().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, events.ErrNotFound)
	assert.ErrorIs(t, s.Events().Update(ctx, events.Event{ID: "missing", Status: events.StatusBusy}), events.ErrNotFound)
	assert.ErrorIs(t, s.Events().Delete(ctx, "missing"), events.ErrNotFound)

	_, err = s.Requests().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, swaps.ErrNotFound)
}

func TestRunInTx_RollsBack(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	seed(t, s, "e1", "alice", events.StatusSwappable, time.Now().Add(time.Hour))

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(ctx context.Context, tx swaps.Tx) error {
		e, err := tx.Events().GetByID(ctx, "e1")
		require.NoError(t, err)
		e.Status = events.StatusSwapPending
		require.NoError(t, tx.Events().Update(ctx, e))
		require.NoError(t, tx.Requests().Create(ctx, swaps.SwapRequest{ID: "r1", Status: swaps.StatusPending}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	e, err := s.Events().GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, events.StatusSwappable, e.Status)

	all, err := s.Requests().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSwapFlow_OnSQLite(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	seed(t, s, "E1", "A", events.StatusSwappable, start)
	seed(t, s, "E2", "B", events.StatusSwappable, start.Add(48*time.Hour))

	svc := swaps.NewService(s, nil, nil)
	req, err := svc.RequestSwap(ctx, "A", "E1", "E2")
	require.NoError(t, err)

	done, err := svc.RespondAs(ctx, req.ID, "B", true)
	require.NoError(t, err)
	assert.Equal(t, swaps.StatusAccepted, done.Status)

	e1, err := s.Events().GetByID(ctx, "E1")
	require.NoError(t, err)
	e2, err := s.Events().GetByID(ctx, "E2")
	require.NoError(t, err)
	assert.Equal(t, "B", e1.OwnerID)
	assert.Equal(t, "A", e2.OwnerID)
	assert.Equal(t, events.StatusBusy, e1.Status)

	stored, err := s.Requests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RespondedAt)
	assert.Equal(t, "B", stored.RequestedOwnerID)

	_, err = svc.Respond(ctx, req.ID, false)
	assert.ErrorIs(t, err, swaps.ErrBadState)
}

func TestUsers_EmailUnique(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	repo := s.Users()

	require.NoError(t, repo.Create(ctx, users.User{ID: "u1", Email: "alice@example.com", Name: "Alice", CreatedAt: time.Now()}))
	err := repo.Create(ctx, users.User{ID: "u2", Email: "ALICE@example.com", Name: "Other", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, users.ErrConflict)

	u, err := repo.GetByEmail(ctx, " Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = repo.GetByID(ctx, "u2")
	assert.ErrorIs(t, err, users.ErrNotFound)
}
