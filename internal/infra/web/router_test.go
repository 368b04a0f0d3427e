package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/usecase/checkpoint"
	"github.com/DioGolang/GoTrack/internal/application/usecase/geofence"
	"github.com/DioGolang/GoTrack/internal/application/usecase/location"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/internal/infra/database"
	"github.com/DioGolang/GoTrack/internal/infra/event"
	"github.com/DioGolang/GoTrack/internal/infra/storage"
	"github.com/DioGolang/GoTrack/internal/infra/web/handler"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/DioGolang/GoTrack/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	directory *database.MemoryDriverDirectory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewNop()
	reg := prometheus.NewRegistry()
	m := metrics.NewPrometheusMetrics(reg, "web-test")

	store := database.NewMemorySampleStore()
	index := database.NewMemorySpatialIndex()
	directory := database.NewMemoryDriverDirectory(false)
	zones := database.NewMemoryGeofenceRepository()
	ledger := database.NewMemoryCheckpointRepository()
	hub := event.NewCheckpointHub(m, 8)
	locker := storage.NewKeyedMutex()
	ingest := location.SubmitConfig{Timeout: time.Second, MaxAttempts: 3, BaseBackoff: time.Millisecond}

	loc := handler.NewLocationHandler(
		location.NewSubmitUseCase(store, index, locker, nil, log, m, ingest),
		location.NewGoOfflineUseCase(store, index, locker, log, ingest),
		location.NewNearestDriversUseCase(index, directory, log, m, location.NearestConfig{
			FreshnessWindow: 5 * time.Minute,
			QueryTimeout:    300 * time.Millisecond,
			MaxLimit:        100,
			AverageSpeedKmh: 30,
		}),
		location.NewCurrentPositionUseCase(store),
		handler.NearbyDefaults{RadiusKm: 5, Limit: 10},
		log,
	)
	geo := handler.NewGeofenceHandler(
		geofence.NewZonesContainingUseCase(zones, 300*time.Millisecond),
		geofence.NewSaveUseCase(zones),
		geofence.NewDeactivateUseCase(zones),
		log,
	)
	cp := handler.NewCheckpointHandler(
		checkpoint.NewAppendUseCase(ledger, hub, locker, log, m, time.Second),
		checkpoint.NewListUseCase(ledger, 2),
		checkpoint.NewFollowUseCase(hub),
		log,
	)
	cp.KeepAlive = time.Hour

	srv := httptest.NewServer(NewRouter(RouterDeps{
		ServiceName:    "web-test",
		Logger:         log,
		Metrics:        m,
		Gatherer:       reg,
		Location:       loc,
		Geofence:       geo,
		Checkpoint:     cp,
		RequestTimeout: 5 * time.Second,
	}))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, directory: directory}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := s.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	var buf strings.Builder
	_, err = bufio.NewReader(res.Body).WriteTo(&buf)
	require.NoError(t, err)
	return res, []byte(buf.String())
}

func TestAPI_SubmitThenNearby(t *testing.T) {
	//Arrange
	s := newTestServer(t)
	s.directory.Set("D1", entity.DriverStatus{Available: true, Verified: true})

	//Act
	res, body := s.do(t, http.MethodPost, "/api/v1/drivers/D1/locations", `{"latitude":28.6139,"longitude":77.2090,"speed":7.5}`)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))
	res, body = s.do(t, http.MethodGet, "/api/v1/drivers/nearby?lat=28.6139&lng=77.2090", "")

	//Assert
	require.Equal(t, http.StatusOK, res.StatusCode)
	var got []location.DriverCandidate
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "D1", got[0].DriverID)
	assert.Zero(t, got[0].DistanceMeters)
}

func TestAPI_MovedDriverLeavesRadius(t *testing.T) {
	s := newTestServer(t)
	s.directory.Set("D1", entity.DriverStatus{Available: true, Verified: true})
	s.do(t, http.MethodPost, "/api/v1/drivers/D1/locations", `{"latitude":28.6139,"longitude":77.2090}`)
	s.do(t, http.MethodPost, "/api/v1/drivers/D1/locations", `{"latitude":28.5355,"longitude":77.3910}`)

	res, body := s.do(t, http.MethodGet, "/api/v1/drivers/nearby?lat=28.6139&lng=77.2090&radiusKm=5", "")

	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestAPI_SubmitValidation(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name string
		body string
	}{
		{"latitude out of range", `{"latitude":91,"longitude":77.2}`},
		{"missing longitude", `{"latitude":28.6}`},
		{"negative speed", `{"latitude":28.6,"longitude":77.2,"speed":-1}`},
		{"unknown field", `{"latitude":28.6,"longitude":77.2,"color":"red"}`},
		{"not json", `lat=1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _ := s.do(t, http.MethodPost, "/api/v1/drivers/D1/locations", tt.body)
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		})
	}
}

func TestAPI_NearbyRequiresCoordinates(t *testing.T) {
	s := newTestServer(t)

	missing, _ := s.do(t, http.MethodGet, "/api/v1/drivers/nearby?lat=28.6", "")
	badLimit, _ := s.do(t, http.MethodGet, "/api/v1/drivers/nearby?lat=28.6&lng=77.2&limit=0", "")
	badRadius, _ := s.do(t, http.MethodGet, "/api/v1/drivers/nearby?lat=28.6&lng=77.2&radiusKm=-3", "")

	assert.Equal(t, http.StatusBadRequest, missing.StatusCode)
	assert.Equal(t, http.StatusBadRequest, badLimit.StatusCode)
	assert.Equal(t, http.StatusBadRequest, badRadius.StatusCode)
}

func TestAPI_CurrentPositionAndGoOffline(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/v1/drivers/D1/locations", `{"latitude":28.6139,"longitude":77.2090}`)

	res, body := s.do(t, http.MethodGet, "/api/v1/drivers/D1/location", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var current location.CurrentPositionOutput
	require.NoError(t, json.Unmarshal(body, &current))
	assert.Equal(t, "D1", current.DriverID)

	res, _ = s.do(t, http.MethodDelete, "/api/v1/drivers/D1/location", "")
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	res, _ = s.do(t, http.MethodGet, "/api/v1/drivers/D1/location", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestAPI_GeofenceContaining(t *testing.T) {
	s := newTestServer(t)
	res, body := s.do(t, http.MethodPost, "/api/v1/geofences", `{
		"name":"Airport","zoneType":"airport",
		"boundary":[{"latitude":28.55,"longitude":77.09},{"latitude":28.55,"longitude":77.11},
		            {"latitude":28.56,"longitude":77.11},{"latitude":28.56,"longitude":77.09}]}`)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))

	res, body = s.do(t, http.MethodGet, "/api/v1/geofences/containing?lat=28.5562&lng=77.1000", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var inside []geofence.ZoneMatch
	require.NoError(t, json.Unmarshal(body, &inside))
	require.Len(t, inside, 1)
	assert.Equal(t, "Airport", inside[0].Name)
	assert.True(t, inside[0].IsInside)

	_, body = s.do(t, http.MethodGet, "/api/v1/geofences/containing?lat=28.70&lng=77.50", "")
	assert.JSONEq(t, `[]`, string(body))
}

func TestAPI_GeofenceRejectsShortBoundary(t *testing.T) {
	s := newTestServer(t)

	res, _ := s.do(t, http.MethodPost, "/api/v1/geofences",
		`{"name":"Line","zoneType":"airport","boundary":[{"latitude":1,"longitude":1},{"latitude":2,"longitude":2}]}`)

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestAPI_CheckpointLedger(t *testing.T) {
	s := newTestServer(t)
	for _, role := range []string{"pickup", "current", "current", "dropoff"} {
		res, body := s.do(t, http.MethodPost, "/api/v1/rides/R1/checkpoints",
			`{"latitude":28.6,"longitude":77.2,"role":"`+role+`"}`)
		require.Equal(t, http.StatusCreated, res.StatusCode, string(body))
	}

	res, body := s.do(t, http.MethodGet, "/api/v1/rides/R1/checkpoints", "")

	require.Equal(t, http.StatusOK, res.StatusCode)
	var got []checkpoint.CheckpointOutput
	require.NoError(t, json.Unmarshal(body, &got))
	roles := make([]string, len(got))
	for i, c := range got {
		roles[i] = c.Role
	}
	assert.Equal(t, []string{"pickup", "current", "current", "dropoff"}, roles)

	_, body = s.do(t, http.MethodGet, "/api/v1/rides/R9/checkpoints", "")
	assert.JSONEq(t, `[]`, string(body))

	res, _ = s.do(t, http.MethodPost, "/api/v1/rides/R1/checkpoints", `{"latitude":28.6,"longitude":77.2,"role":"teleport"}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestAPI_CheckpointStream(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL+"/api/v1/rides/R1/checkpoints/stream", nil)
	require.NoError(t, err)
	res, err := s.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	posted, _ := s.do(t, http.MethodPost, "/api/v1/rides/R1/checkpoints", `{"latitude":28.6,"longitude":77.2,"role":"current"}`)
	require.Equal(t, http.StatusCreated, posted.StatusCode)

	reader := bufio.NewReader(res.Body)
	var data string
	for data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(strings.TrimSpace(line), "data: ")
		}
	}
	var got checkpoint.CheckpointOutput
	require.NoError(t, json.Unmarshal([]byte(data), &got))
	assert.Equal(t, "R1", got.RideID)
	assert.Equal(t, "current", got.Role)
}

func TestAPI_MetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/v1/drivers/nearby?lat=1&lng=1", "")

	res, body := s.do(t, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "app_http_duration_seconds")
}
