package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySampleStore_ReplaceKeepsOneActive(t *testing.T) {
	//Arrange
	store := NewMemorySampleStore()
	ctx := context.Background()
	first := newSample(t, "s1", "D1", 28.61, 77.20, baseTime)
	second := newSample(t, "s2", "D1", 28.62, 77.21, baseTime.Add(time.Second))
	require.NoError(t, store.Insert(ctx, first))

	//Act
	err := store.Do(ctx, func(p outbound.RepositoryProvider) error {
		if _, err := p.Samples().DeactivateCurrent(ctx, "D1"); err != nil {
			return err
		}
		return p.Samples().Insert(ctx, second)
	})

	//Assert
	require.NoError(t, err)
	active, err := store.FindActive(ctx, "D1")
	require.NoError(t, err)
	assert.Equal(t, "s2", active.ID())

	history := store.History("D1")
	require.Len(t, history, 2)
	assert.False(t, history[0].IsActive())
	assert.True(t, history[1].IsActive())
}

func TestMemorySampleStore_FailedUnitLeavesNoTrace(t *testing.T) {
	store := NewMemorySampleStore()
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, newSample(t, "s1", "D1", 28.61, 77.20, baseTime)))

	err := store.Do(ctx, func(p outbound.RepositoryProvider) error {
		_, _ = p.Samples().DeactivateCurrent(ctx, "D1")
		_ = p.Samples().Insert(ctx, newSample(t, "s2", "D1", 28.62, 77.21, baseTime.Add(time.Second)))
		return errors.New("boom")
	})

	assert.Error(t, err)
	active, err := store.FindActive(ctx, "D1")
	require.NoError(t, err)
	assert.Equal(t, "s1", active.ID())
	assert.Len(t, store.History("D1"), 1)
}

func TestMemorySampleStore_FindActiveUnknownDriver(t *testing.T) {
	_, err := NewMemorySampleStore().FindActive(context.Background(), "nobody")

	assert.ErrorIs(t, err, outbound.ErrNotFound)
}

func TestMemorySampleStore_DeleteInactiveBefore(t *testing.T) {
	//Arrange
	store := NewMemorySampleStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		s := newSample(t, "old-"+string(rune('a'+i)), "D1", 28.61, 77.20, baseTime.Add(time.Duration(i)*time.Second))
		require.NoError(t, store.Insert(ctx, s))
		_, _ = store.DeactivateCurrent(ctx, "D1")
	}
	require.NoError(t, store.Insert(ctx, newSample(t, "current", "D1", 28.61, 77.20, baseTime)))
	cutoff := baseTime.Add(time.Hour)

	//Act
	firstBatch, err := store.DeleteInactiveBefore(ctx, cutoff, 3)
	require.NoError(t, err)
	secondBatch, err := store.DeleteInactiveBefore(ctx, cutoff, 3)
	require.NoError(t, err)

	//Assert
	assert.Equal(t, int64(3), firstBatch)
	assert.Equal(t, int64(2), secondBatch)
	history := store.History("D1")
	require.Len(t, history, 1)
	assert.Equal(t, "current", history[0].ID())
}

func TestMemorySampleStore_DeleteRespectsCancellation(t *testing.T) {
	store := NewMemorySampleStore()
	require.NoError(t, store.Insert(context.Background(), newSample(t, "s1", "D1", 1, 1, baseTime)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.DeleteInactiveBefore(ctx, baseTime.Add(time.Hour), 0)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemorySpatialIndex_WithinRadius(t *testing.T) {
	//Arrange
	idx := NewMemorySpatialIndex()
	ctx := context.Background()
	origin := entity.Point{Lat: 28.6139, Lng: 77.2090}
	require.NoError(t, idx.Upsert(ctx, newSample(t, "a", "near", 28.6150, 77.2100, baseTime)))
	require.NoError(t, idx.Upsert(ctx, newSample(t, "b", "mid", 28.6400, 77.2300, baseTime)))
	require.NoError(t, idx.Upsert(ctx, newSample(t, "c", "far", 28.4595, 77.0266, baseTime)))

	//Act
	small, err := idx.Within(ctx, origin, 500)
	require.NoError(t, err)
	wide, err := idx.Within(ctx, origin, 30_000)
	require.NoError(t, err)

	//Assert
	assert.ElementsMatch(t, []string{"near"}, driverIDs(small))
	assert.ElementsMatch(t, []string{"near", "mid", "far"}, driverIDs(wide))
}

func TestMemorySpatialIndex_UpsertMovesDriver(t *testing.T) {
	idx := NewMemorySpatialIndex()
	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, newSample(t, "a", "D1", 28.6139, 77.2090, baseTime)))
	require.NoError(t, idx.Upsert(ctx, newSample(t, "b", "D1", 19.0760, 72.8777, baseTime.Add(time.Second))))

	delhi, err := idx.Within(ctx, entity.Point{Lat: 28.6139, Lng: 77.2090}, 1000)
	require.NoError(t, err)
	mumbai, err := idx.Within(ctx, entity.Point{Lat: 19.0760, Lng: 72.8777}, 1000)
	require.NoError(t, err)

	assert.Empty(t, delhi)
	require.Len(t, mumbai, 1)
	assert.Equal(t, "b", mumbai[0].ID())
}

func TestMemorySpatialIndex_Remove(t *testing.T) {
	idx := NewMemorySpatialIndex()
	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, newSample(t, "a", "D1", 10, 10, baseTime)))

	require.NoError(t, idx.Remove(ctx, "D1"))
	require.NoError(t, idx.Remove(ctx, "D1"))

	got, err := idx.Within(ctx, entity.Point{Lat: 10, Lng: 10}, 100)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemorySpatialIndex_AcrossAntimeridian(t *testing.T) {
	idx := NewMemorySpatialIndex()
	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, newSample(t, "a", "east", 0, 179.999, baseTime)))
	require.NoError(t, idx.Upsert(ctx, newSample(t, "b", "west", 0, -179.999, baseTime)))

	got, err := idx.Within(ctx, entity.Point{Lat: 0, Lng: 179.9995}, 1000)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"east", "west"}, driverIDs(got))
}

func TestSearchPrecision(t *testing.T) {
	origin := entity.Point{Lat: 28.6139, Lng: 77.2090}

	assert.Equal(t, cellPrecision, searchPrecision(origin, 100))
	assert.Less(t, searchPrecision(origin, 20_000), cellPrecision)
	assert.Zero(t, searchPrecision(origin, 20_000_000))
	assert.Zero(t, searchPrecision(entity.Point{Lat: 0, Lng: 180}, 100))
}

func TestMemoryCheckpointRepository_OrderAndPaging(t *testing.T) {
	//Arrange
	repo := NewMemoryCheckpointRepository()
	ctx := context.Background()
	times := []time.Time{baseTime.Add(2 * time.Second), baseTime, baseTime, baseTime.Add(time.Second)}
	for i, at := range times {
		c, err := entity.NewRideCheckpoint(string(rune('a'+i)), "R1", entity.Point{Lat: 1, Lng: 1}, entity.RoleWaypoint, at)
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, c))
	}

	//Act
	page1, err := repo.Page(ctx, "R1", outbound.CheckpointCursor{}, 2)
	require.NoError(t, err)
	page2, err := repo.Page(ctx, "R1", outbound.CursorAfter(page1[len(page1)-1]), 2)
	require.NoError(t, err)
	last, err := repo.Last(ctx, "R1")
	require.NoError(t, err)

	//Assert
	ids := func(cs []*entity.RideCheckpoint) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.ID()
		}
		return out
	}
	assert.Equal(t, []string{"b", "c"}, ids(page1))
	assert.Equal(t, []string{"d", "a"}, ids(page2))
	assert.Equal(t, "a", last.ID())
}

func TestMemoryCheckpointRepository_UnknownRide(t *testing.T) {
	repo := NewMemoryCheckpointRepository()

	_, err := repo.Last(context.Background(), "R404")
	page, pageErr := repo.Page(context.Background(), "R404", outbound.CheckpointCursor{}, 10)

	assert.ErrorIs(t, err, outbound.ErrNotFound)
	require.NoError(t, pageErr)
	assert.Empty(t, page)
}

func TestMemoryGeofenceRepository_CandidatesAndDeactivate(t *testing.T) {
	//Arrange
	repo := NewMemoryGeofenceRepository()
	ctx := context.Background()
	square := geo.Polygon{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 1, Lng: 0}}
	airport, err := entity.NewGeofence("g1", "Airport", "airport", square, nil)
	require.NoError(t, err)
	surge, err := entity.NewGeofence("g2", "Surge", "surge", square, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, airport))
	require.NoError(t, repo.Save(ctx, surge))

	//Act
	all, err := repo.ActiveCandidates(ctx, entity.Point{Lat: 0.5, Lng: 0.5}, "")
	require.NoError(t, err)
	onlyAirport, err := repo.ActiveCandidates(ctx, entity.Point{Lat: 0.5, Lng: 0.5}, "airport")
	require.NoError(t, err)
	require.NoError(t, repo.Deactivate(ctx, "g1"))
	afterDeactivate, err := repo.ActiveCandidates(ctx, entity.Point{Lat: 0.5, Lng: 0.5}, "")
	require.NoError(t, err)

	//Assert
	assert.Len(t, all, 2)
	require.Len(t, onlyAirport, 1)
	assert.Equal(t, "g1", onlyAirport[0].ID())
	require.Len(t, afterDeactivate, 1)
	assert.Equal(t, "g2", afterDeactivate[0].ID())
	assert.True(t, airport.IsActive(), "stored copy is independent of the caller's entity")
	assert.ErrorIs(t, repo.Deactivate(ctx, "missing"), outbound.ErrNotFound)
}

func TestMemoryDriverDirectory(t *testing.T) {
	strict := NewMemoryDriverDirectory(false)
	lenient := NewMemoryDriverDirectory(true)
	strict.Set("D1", entity.DriverStatus{Available: true, Verified: true})

	known, err := strict.Status(context.Background(), "D1")
	require.NoError(t, err)
	unknownStrict, err := strict.Status(context.Background(), "D2")
	require.NoError(t, err)
	unknownLenient, err := lenient.Status(context.Background(), "D2")
	require.NoError(t, err)

	assert.True(t, known.Eligible())
	assert.False(t, unknownStrict.Eligible())
	assert.True(t, unknownLenient.Eligible())
}
