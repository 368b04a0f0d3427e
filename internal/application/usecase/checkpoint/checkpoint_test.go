package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/internal/infra/database"
	"github.com/DioGolang/GoTrack/internal/infra/event"
	"github.com/DioGolang/GoTrack/internal/infra/storage"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/DioGolang/GoTrack/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	now      time.Time
	repo     *database.MemoryCheckpointRepository
	hub      *event.CheckpointHub
	appender *AppendUseCaseImpl
	list     *ListUseCaseImpl
	follow   *FollowUseCaseImpl
}

func newFixture() *fixture {
	m := metrics.NewPrometheusMetrics(prometheus.NewRegistry(), "checkpoint-test")
	f := &fixture{
		now:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		repo: database.NewMemoryCheckpointRepository(),
		hub:  event.NewCheckpointHub(m, 8),
	}
	f.appender = NewAppendUseCase(f.repo, f.hub, storage.NewKeyedMutex(), logger.NewNop(), m, time.Second)
	f.appender.Now = func() time.Time { return f.now }
	f.list = NewListUseCase(f.repo, 2)
	f.follow = NewFollowUseCase(f.hub)
	return f
}

func (f *fixture) add(t *testing.T, rideID, role string) AppendOutput {
	t.Helper()
	out, err := f.appender.Execute(context.Background(), AppendInput{RideID: rideID, Latitude: 28.6, Longitude: 77.2, Role: role})
	require.NoError(t, err)
	return out
}

func roles(cs []CheckpointOutput) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Role
	}
	return out
}

func TestAppendAndList_PreservesOrder(t *testing.T) {
	//Arrange
	f := newFixture()
	for _, role := range []string{"pickup", "current", "current", "dropoff"} {
		f.add(t, "R1", role)
		f.now = f.now.Add(10 * time.Second)
	}

	//Act
	seq, err := f.list.Execute(context.Background(), "R1")
	require.NoError(t, err)
	got, err := Collect(seq)

	//Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"pickup", "current", "current", "dropoff"}, roles(got))
}

func TestAppend_SameInstantKeepsInsertionOrder(t *testing.T) {
	f := newFixture()
	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		ids = append(ids, f.add(t, "R1", "waypoint").RecordID)
	}

	seq, err := f.list.Execute(context.Background(), "R1")
	require.NoError(t, err)
	got, err := Collect(seq)
	require.NoError(t, err)

	require.Len(t, got, 5)
	for i, c := range got {
		assert.Equal(t, ids[i], c.RecordID)
	}
}

func TestAppend_ClockSteppingBackStaysMonotonic(t *testing.T) {
	f := newFixture()
	f.add(t, "R1", "pickup")
	f.now = f.now.Add(-time.Minute)

	out := f.add(t, "R1", "current")

	seq, _ := f.list.Execute(context.Background(), "R1")
	got, err := Collect(seq)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[1].RecordedAt.Before(got[0].RecordedAt))
	assert.Equal(t, got[0].RecordedAt, out.RecordedAt)
}

func TestList_IsRestartableAndLazy(t *testing.T) {
	f := newFixture()
	for i := 0; i < 7; i++ {
		f.add(t, "R1", "current")
		f.now = f.now.Add(time.Second)
	}
	seq, err := f.list.Execute(context.Background(), "R1")
	require.NoError(t, err)

	first, err := Collect(seq)
	require.NoError(t, err)
	f.add(t, "R1", "dropoff")
	second, err := Collect(seq)
	require.NoError(t, err)

	taken := 0
	for range seq {
		taken++
		if taken == 3 {
			break
		}
	}

	assert.Len(t, first, 7)
	assert.Len(t, second, 8, "a second range reads the ledger again")
	assert.Equal(t, 3, taken)
}

func TestList_OrderingProperty(t *testing.T) {
	f := newFixture()
	for ride := 0; ride < 5; ride++ {
		for i := 0; i < 13; i++ {
			f.now = f.now.Add(time.Duration((i*7+ride)%5) * time.Second)
			f.add(t, fmt.Sprintf("R%d", ride), "current")
		}
	}

	for ride := 0; ride < 5; ride++ {
		seq, err := f.list.Execute(context.Background(), fmt.Sprintf("R%d", ride))
		require.NoError(t, err)
		got, err := Collect(seq)
		require.NoError(t, err)
		require.Len(t, got, 13)
		for i := 1; i < len(got); i++ {
			assert.False(t, got[i].RecordedAt.Before(got[i-1].RecordedAt))
		}
	}
}

func TestList_UnknownRideIsEmpty(t *testing.T) {
	f := newFixture()

	seq, err := f.list.Execute(context.Background(), "nobody")
	require.NoError(t, err)
	got, err := Collect(seq)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAppend_ValidationErrors(t *testing.T) {
	f := newFixture()
	tests := []struct {
		name  string
		input AppendInput
		err   error
	}{
		{"missing ride", AppendInput{Latitude: 1, Longitude: 1, Role: "pickup"}, entity.ErrRideIDIsRequired},
		{"bad role", AppendInput{RideID: "R1", Latitude: 1, Longitude: 1, Role: "teleport"}, entity.ErrInvalidRole},
		{"bad latitude", AppendInput{RideID: "R1", Latitude: 91, Longitude: 1, Role: "pickup"}, entity.ErrInvalidLatitude},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.appender.Execute(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.err)
			assert.ErrorIs(t, err, entity.ErrValidation)
		})
	}
}

type failingRepo struct{ outbound.CheckpointRepository }

func (failingRepo) Last(context.Context, string) (*entity.RideCheckpoint, error) {
	return nil, outbound.ErrNotFound
}

func (failingRepo) Append(context.Context, *entity.RideCheckpoint) error {
	return errors.New("disk full")
}

func (failingRepo) Page(context.Context, string, outbound.CheckpointCursor, int) ([]*entity.RideCheckpoint, error) {
	return nil, errors.New("connection reset")
}

func TestCheckpoint_StoreFailuresAreUnavailable(t *testing.T) {
	f := newFixture()
	f.appender.Repository = failingRepo{}
	f.list.Repository = failingRepo{}

	_, appendErr := f.appender.Execute(context.Background(), AppendInput{RideID: "R1", Latitude: 1, Longitude: 1, Role: "pickup"})
	seq, err := f.list.Execute(context.Background(), "R1")
	require.NoError(t, err)
	_, listErr := Collect(seq)

	assert.ErrorIs(t, appendErr, outbound.ErrUnavailable)
	assert.ErrorIs(t, listErr, outbound.ErrUnavailable)
}

func TestFollow_ReceivesCurrentCheckpointsUntilCancelled(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := f.follow.Execute(ctx, "R1")
	require.NoError(t, err)

	f.add(t, "R1", "pickup")
	f.add(t, "R1", "current")

	select {
	case c := <-stream:
		assert.Equal(t, "current", c.Role)
		assert.Equal(t, "R1", c.RideID)
	case <-time.After(time.Second):
		t.Fatal("no live checkpoint received")
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-stream:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return f.hub.Subscribers("R1") == 0 }, time.Second, 5*time.Millisecond)
}

func TestFollow_RequiresRideID(t *testing.T) {
	_, err := newFixture().follow.Execute(context.Background(), " ")

	assert.ErrorIs(t, err, entity.ErrRideIDIsRequired)
}
