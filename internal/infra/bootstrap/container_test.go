package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DioGolang/GoTrack/configs"
	"github.com/DioGolang/GoTrack/internal/infra/database"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) *configs.Conf {
	t.Helper()
	cfg, err := configs.LoadConfig(t.TempDir())
	require.NoError(t, err)
	return cfg
}

func TestNew_MemoryStack(t *testing.T) {
	//Arrange
	cfg := memoryConfig(t)

	//Act
	c, err := New(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	defer c.Close()
	h, err := c.HTTPHandler()
	require.NoError(t, err)

	//Assert
	assert.IsType(t, &database.MemorySampleStore{}, c.Samples)
	assert.IsType(t, &database.MemorySpatialIndex{}, c.Index)
	assert.Nil(t, c.DB)
	assert.Nil(t, c.Redis)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/drivers/D1/locations",
		strings.NewReader(`{"latitude":28.6139,"longitude":77.2090}`)))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_RedisIndexAndLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig(t)
	cfg.SpatialIndex = "redis"
	cfg.Locker = "redis"
	host, port, _ := strings.Cut(mr.Addr(), ":")
	cfg.RedisHost, cfg.RedisPort = host, port

	c, err := New(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Submit.Execute(context.Background(), locationInput("D1"))
	require.NoError(t, err)
	assert.True(t, mr.Exists("drivers:active:geo"))
	assert.NotNil(t, c.LocationMessageHandler())
}

func TestNew_UnreachableRedisFails(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Locker = "redis"
	cfg.RedisHost, cfg.RedisPort = "127.0.0.1", "1"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := New(ctx, cfg, logger.NewNop())

	assert.ErrorContains(t, err, "redis")
}

func TestContainer_LocationConsumerNeedsBroker(t *testing.T) {
	c, err := New(context.Background(), memoryConfig(t), logger.NewNop())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.LocationConsumer()

	assert.Error(t, err)
}

func TestContainer_SchedulerEvicts(t *testing.T) {
	c, err := New(context.Background(), memoryConfig(t), logger.NewNop())
	require.NoError(t, err)
	defer c.Close()
	_, err = c.Submit.Execute(context.Background(), locationInput("D1"))
	require.NoError(t, err)

	removed := c.EvictionScheduler().RunOnce(context.Background())

	assert.Zero(t, removed)
}
