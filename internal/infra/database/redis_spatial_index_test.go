package database

import (
	"context"
	"testing"
	"time"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisIndex(t *testing.T) (*miniredis.Miniredis, *RedisSpatialIndex) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisSpatialIndex(client, logger.NewNop())
}

func TestRedisSpatialIndex_UpsertAndWithin(t *testing.T) {
	//Arrange
	_, idx := newRedisIndex(t)
	ctx := context.Background()
	moving, err := entity.NewDriverLocationSample("s1", "near", entity.Point{Lat: 28.6150, Lng: 77.2100},
		entity.Motion{Heading: ptr(90), Speed: ptr(11.5)}, baseTime)
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(ctx, moving))
	require.NoError(t, idx.Upsert(ctx, newSample(t, "s2", "far", 28.4595, 77.0266, baseTime)))

	//Act
	got, err := idx.Within(ctx, entity.Point{Lat: 28.6139, Lng: 77.2090}, 1000)

	//Assert
	require.NoError(t, err)
	require.Len(t, got, 1)
	s := got[0]
	assert.Equal(t, "s1", s.ID())
	assert.Equal(t, 28.6150, s.Point().Lat, "coordinates come from the hash, not the geohash")
	assert.Equal(t, 77.2100, s.Point().Lng)
	require.NotNil(t, s.Motion().Heading)
	assert.Equal(t, 90.0, *s.Motion().Heading)
	assert.Nil(t, s.Motion().Accuracy)
	assert.True(t, s.CapturedAt().Equal(baseTime))
	assert.True(t, s.IsActive())
}

func TestRedisSpatialIndex_RemoveDropsBothKeys(t *testing.T) {
	mr, idx := newRedisIndex(t)
	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, newSample(t, "s1", "D1", 10, 10, baseTime)))

	require.NoError(t, idx.Remove(ctx, "D1"))

	assert.False(t, mr.Exists(driverSampleKey("D1")))
	got, err := idx.Within(ctx, entity.Point{Lat: 10, Lng: 10}, 100)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisSpatialIndex_SkipsMemberWithoutHash(t *testing.T) {
	mr, idx := newRedisIndex(t)
	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, newSample(t, "s1", "D1", 10, 10, baseTime)))
	require.NoError(t, idx.Upsert(ctx, newSample(t, "s2", "D2", 10, 10.0001, baseTime)))
	mr.Del(driverSampleKey("D2"))

	got, err := idx.Within(ctx, entity.Point{Lat: 10, Lng: 10}, 100)

	require.NoError(t, err)
	assert.Equal(t, []string{"D1"}, driverIDs(got))
}

func TestRedisSpatialIndex_SkipsMalformedHash(t *testing.T) {
	mr, idx := newRedisIndex(t)
	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, newSample(t, "s1", "D1", 10, 10, baseTime)))
	mr.HSet(driverSampleKey("D1"), "captured_at", "yesterday")

	got, err := idx.Within(ctx, entity.Point{Lat: 10, Lng: 10}, 100)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisSpatialIndex_StoreDown(t *testing.T) {
	mr, idx := newRedisIndex(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := idx.Within(ctx, entity.Point{Lat: 10, Lng: 10}, 100)

	assert.Error(t, err)
}
