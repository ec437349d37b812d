package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"slot-swapper/internal/domain/events"
	"slot-swapper/internal/domain/swaps"
	"slot-swapper/internal/domain/users"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements(schema)
	require.NotEmpty(t, stmts)
	for _, s := range stmts {
		assert.NotContains(t, s, ";")
	}
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS users")
}

// Requiere un Postgres real: TEST_DB_DSN=postgres://... go test ./...
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	db, err := Open(dsn)
	require.NoError(t, err)
	require.NoError(t, Migrate(context.Background(), db))
	s := NewStore(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSwapFlow_OnPostgres(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)

	a, b := uuid.NewString(), uuid.NewString()
	e1 := events.Event{ID: uuid.NewString(), OwnerID: a, Title: "A slot", StartTime: start, EndTime: start.Add(time.Hour), Status: events.StatusSwappable, CreatedAt: start, UpdatedAt: start}
	e2 := events.Event{ID: uuid.NewString(), OwnerID: b, Title: "B slot", StartTime: start.Add(time.Hour), EndTime: start.Add(2 * time.Hour), Status: events.StatusSwappable, CreatedAt: start, UpdatedAt: start}
	require.NoError(t, s.Events().Create(ctx, e1))
	require.NoError(t, s.Events().Create(ctx, e2))

	svc := swaps.NewService(s, nil, nil)
	req, err := svc.RequestSwap(ctx, a, e1.ID, e2.ID)
	require.NoError(t, err)

	_, err = svc.RespondAs(ctx, req.ID, a, true)
	require.ErrorIs(t, err, swaps.ErrForbidden)

	done, err := svc.RespondAs(ctx, req.ID, b, true)
	require.NoError(t, err)
	assert.Equal(t, swaps.StatusAccepted, done.Status)

	got1, err := s.Events().GetByID(ctx, e1.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got1.OwnerID)
	assert.Equal(t, events.StatusBusy, got1.Status)
}

func TestUsers_EmailUniqueOnPostgres(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"

	require.NoError(t, s.Users().Create(ctx, users.User{ID: uuid.NewString(), Email: email, Name: "A", CreatedAt: time.Now()}))
	err := s.Users().Create(ctx, users.User{ID: uuid.NewString(), Email: email, Name: "B", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, users.ErrConflict)
}
