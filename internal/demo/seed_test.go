package demo

import (
	"context"
	"testing"
	"time"

	"slot-swapper/internal/adapters/storage/memory"
	"slot-swapper/internal/domain/events"
	"slot-swapper/internal/domain/marketplace"
	"slot-swapper/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_IsIdempotent(t *testing.T) {
	store := memory.NewStore()
	repos := Repos{Users: store.Users(), Events: store.Events()}
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)

	res, err := Seed(context.Background(), repos, now)
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 3, Events: 4}, res)

	res, err = Seed(context.Background(), repos, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	e, err := store.Events().GetByID(context.Background(), "evt1")
	require.NoError(t, err)
	assert.Equal(t, events.StatusBusy, e.Status)
	assert.True(t, e.StartTime.Equal(now.Add(24*time.Hour)))
}

func TestSeed_MarketplaceForAlice(t *testing.T) {
	store := memory.NewStore()
	_, err := Seed(context.Background(), Repos{Users: store.Users(), Events: store.Events()}, time.Now())
	require.NoError(t, err)

	names := users.NewService(store.Users(), nil)
	svc := marketplace.NewService(store.Events(), names)

	listings, err := svc.ListSwappable(context.Background(), "user1")
	require.NoError(t, err)
	require.Len(t, listings, 2)

	owners := map[string]string{}
	for _, l := range listings {
		owners[l.Event.ID] = l.OwnerName
	}
	assert.Equal(t, map[string]string{"evt3": "Bob Smith", "evt4": "Charlie Brown"}, owners)
}
