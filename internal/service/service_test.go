package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nba_decade/backend/internal/coordinator"
	"nba_decade/backend/internal/models"
	"nba_decade/backend/internal/repository"
)

func testSeasonMap() models.SeasonMap {
	return models.SeasonMap{
		"2014-15": {
			{
				Team:                   "Boston Celtics",
				Conference:             "Eastern",
				AverageOffensiveRating: 104.2,
				AverageDefensiveRating: 103.1,
				AverageNetRating:       1.1,
				AveragePlusMinus:       0.9,
			},
		},
		"2015-16": {
			{
				Team:                   "Los Angeles Lakers",
				Conference:             "Western",
				AverageOffensiveRating: 101.3,
				AverageDefensiveRating: 106.9,
				AverageNetRating:       -5.6,
				AveragePlusMinus:       -4.8,
			},
		},
	}
}

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()

	store, err := repository.NewStore(filepath.Join(t.TempDir(), "ratings.sqlite"), 1)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// blockingCoordinator builds a started coordinator whose run function blocks
// until the returned release function is called.
func blockingCoordinator(t *testing.T) (*coordinator.Coordinator, func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	release := make(chan struct{})
	c := coordinator.New(func(ctx context.Context) error {
		<-release
		return nil
	})
	c.Start(ctx)

	var once bool
	return c, func() {
		if !once {
			once = true
			close(release)
		}
	}
}

func TestGetAllReturnsStoredData(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Write(ctx, testSeasonMap()))

	svc := New(store, coordinator.New(func(context.Context) error { return nil }), nil)

	seasons, needsUpdate, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.False(t, needsUpdate)
	require.Len(t, seasons, 2)
	assert.Equal(t, "Boston Celtics", seasons["2014-15"][0].Team)
}

func TestGetAllEmptyStoreNeedsUpdate(t *testing.T) {
	ctx := context.Background()

	// A store that has never been written fails verification or the read.
	store := newTestStore(t)
	svc := New(store, coordinator.New(func(context.Context) error { return nil }), nil)

	seasons, needsUpdate, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.True(t, needsUpdate, "An unusable store signals needs-update, not an error")
	assert.Nil(t, seasons)
}

func TestGetAllDuringUpdate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Write(ctx, testSeasonMap()))

	coord, release := blockingCoordinator(t)
	defer release()
	svc := New(store, coord, nil)

	require.NoError(t, svc.TriggerUpdate())
	assert.True(t, svc.UpdateStatus().Updating)

	_, _, err := svc.GetAll(ctx)
	assert.ErrorIs(t, err, ErrUpdateInProgress, "Reads must not serve data mid-recompute")

	_, err = svc.GetTeams(ctx)
	assert.ErrorIs(t, err, ErrUpdateInProgress)

	release()
	require.Eventually(t, func() bool {
		return !svc.UpdateStatus().Updating
	}, 2*time.Second, 10*time.Millisecond)

	seasons, needsUpdate, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.False(t, needsUpdate)
	assert.Len(t, seasons, 2)
}

func TestTriggerUpdateConflict(t *testing.T) {
	store := newTestStore(t)
	coord, release := blockingCoordinator(t)
	defer release()
	svc := New(store, coord, nil)

	require.NoError(t, svc.TriggerUpdate())
	assert.ErrorIs(t, svc.TriggerUpdate(), ErrUpdateInProgress)
}

func TestGetTeams(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Write(ctx, testSeasonMap()))

	svc := New(store, coordinator.New(func(context.Context) error { return nil }), nil)

	teams, err := svc.GetTeams(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "Boston Celtics", teams[0].TeamName)
	assert.Equal(t, "Eastern", teams[0].Conference)
}

func TestGetSeasonsSorted(t *testing.T) {
	svc := New(nil, nil, nil)
	ids := svc.GetSeasons(testSeasonMap())
	assert.Equal(t, []string{"2014-15", "2015-16"}, ids)
}

func TestInvalidateCacheAfterRecompute(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newTestStore(t)
	require.NoError(t, store.Write(context.Background(), testSeasonMap()))

	// Wired the way the worker does it: the run function invalidates the
	// read cache through the facade once the rebuild lands.
	invalidated := make(chan struct{})
	var svc *Service
	coord := coordinator.New(func(runCtx context.Context) error {
		svc.InvalidateCache(runCtx)
		close(invalidated)
		return nil
	})
	svc = New(store, coord, nil)
	coord.Start(ctx)

	require.NoError(t, svc.TriggerUpdate())
	select {
	case <-invalidated:
	case <-time.After(2 * time.Second):
		t.Fatal("run function never invalidated the cache")
	}

	require.Eventually(t, func() bool {
		return !svc.UpdateStatus().Updating
	}, 2*time.Second, 10*time.Millisecond)
}

func TestInvalidateCacheNilCache(t *testing.T) {
	svc := New(nil, nil, nil)
	assert.NotPanics(t, func() {
		svc.InvalidateCache(context.Background())
	})
}

func TestGetSeason(t *testing.T) {
	svc := New(nil, nil, nil)
	seasons := testSeasonMap()

	ratings := svc.GetSeason(seasons, "2014-15")
	require.Len(t, ratings, 1)
	assert.Equal(t, "Boston Celtics", ratings[0].Team)

	assert.Nil(t, svc.GetSeason(seasons, "1995-96"), "Absent seasons return nil")
	assert.Nil(t, svc.GetSeason(nil, "2014-15"))
}
