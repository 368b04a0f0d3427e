package location

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/geo"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/DioGolang/GoTrack/pkg/metrics"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
)

type NearestConfig struct {
	FreshnessWindow    time.Duration
	QueryTimeout       time.Duration
	MaxLimit           int
	AverageSpeedKmh    float64
	EligibilityWorkers int
}

type NearestDriversUseCaseImpl struct {
	Index     outbound.SpatialIndex
	Directory outbound.DriverDirectory
	Breaker   *gobreaker.CircuitBreaker
	Logger    logger.Logger
	Metrics   metrics.Metrics
	Config    NearestConfig
	Now       func() time.Time
}

// NewSpatialIndexBreaker trips after five consecutive index failures.
func NewSpatialIndexBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

func NewNearestDriversUseCase(
	index outbound.SpatialIndex,
	directory outbound.DriverDirectory,
	log logger.Logger,
	m metrics.Metrics,
	cfg NearestConfig,
) *NearestDriversUseCaseImpl {
	if cfg.EligibilityWorkers < 1 {
		cfg.EligibilityWorkers = 16
	}
	return &NearestDriversUseCaseImpl{
		Index:     index,
		Directory: directory,
		Breaker:   NewSpatialIndexBreaker("spatial-index"),
		Logger:    log,
		Metrics:   m,
		Config:    cfg,
		Now:       time.Now,
	}
}

func (uc *NearestDriversUseCaseImpl) Execute(ctx context.Context, input NearestInput) ([]DriverCandidate, error) {
	origin := entity.Point{Lat: input.Latitude, Lng: input.Longitude}
	if err := entity.ValidatePoint(origin); err != nil {
		return nil, err
	}
	if !(input.RadiusKm > 0) || math.IsInf(input.RadiusKm, 1) {
		return nil, entity.ErrInvalidRadius
	}
	if input.Limit <= 0 {
		return nil, entity.ErrInvalidLimit
	}
	limit := input.Limit
	if uc.Config.MaxLimit > 0 && limit > uc.Config.MaxLimit {
		limit = uc.Config.MaxLimit
	}
	radiusMeters := input.RadiusKm * 1000

	ctx, cancel := context.WithTimeout(ctx, uc.Config.QueryTimeout)
	defer cancel()

	res, err := uc.Breaker.Execute(func() (interface{}, error) {
		return uc.Index.Within(ctx, origin, radiusMeters)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: spatial index: %w", outbound.ErrUnavailable, err)
	}

	now := uc.Now()
	candidates := make([]DriverCandidate, 0)
	for _, sample := range uc.currentPerDriver(ctx, res.([]*entity.DriverLocationSample)) {
		if !sample.IsActive() || !sample.Fresh(now, uc.Config.FreshnessWindow) {
			continue
		}
		distance := geo.Haversine(origin, sample.Point())
		if distance > radiusMeters {
			continue
		}
		candidates = append(candidates, uc.toCandidate(sample, distance))
	}

	candidates, err = uc.eligibleOnly(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("%w: driver directory: %w", outbound.ErrUnavailable, err)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.DistanceMeters != b.DistanceMeters {
			return a.DistanceMeters < b.DistanceMeters
		}
		if !a.LastSeen.Equal(b.LastSeen) {
			return a.LastSeen.After(b.LastSeen)
		}
		return a.DriverID < b.DriverID
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	uc.Metrics.ObserveNearbyCandidates(len(candidates))
	return candidates, nil
}

// currentPerDriver keeps one sample per driver. Seeing two is a broken
// serialization discipline: it is reported and the newest capture wins.
func (uc *NearestDriversUseCaseImpl) currentPerDriver(ctx context.Context, samples []*entity.DriverLocationSample) []*entity.DriverLocationSample {
	byDriver := make(map[string]*entity.DriverLocationSample, len(samples))
	order := make([]string, 0, len(samples))
	for _, s := range samples {
		seen, ok := byDriver[s.DriverID()]
		if !ok {
			byDriver[s.DriverID()] = s
			order = append(order, s.DriverID())
			continue
		}
		if !s.IsActive() || !seen.IsActive() {
			if s.IsActive() {
				byDriver[s.DriverID()] = s
			}
			continue
		}
		uc.Logger.Error(ctx, "Multiple active samples returned for driver, most recent capture wins",
			logger.String("driver_id", s.DriverID()),
			logger.String("sample_a", seen.ID()),
			logger.String("sample_b", s.ID()),
		)
		uc.Metrics.RecordInvariantViolation("multiple_active_on_read")
		if s.CapturedAt().After(seen.CapturedAt()) {
			byDriver[s.DriverID()] = s
		}
	}
	out := make([]*entity.DriverLocationSample, len(order))
	for i, id := range order {
		out[i] = byDriver[id]
	}
	return out
}

func (uc *NearestDriversUseCaseImpl) eligibleOnly(ctx context.Context, candidates []DriverCandidate) ([]DriverCandidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}
	eligible := make([]bool, len(candidates))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(uc.Config.EligibilityWorkers)
	for i := range candidates {
		g.Go(func() error {
			status, err := uc.Directory.Status(gCtx, candidates[i].DriverID)
			if err != nil {
				return err
			}
			eligible[i] = status.Eligible()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := candidates[:0]
	for i, c := range candidates {
		if eligible[i] {
			kept = append(kept, c)
		}
	}
	return kept, nil
}

func (uc *NearestDriversUseCaseImpl) toCandidate(sample *entity.DriverLocationSample, distance float64) DriverCandidate {
	motion := sample.Motion()
	return DriverCandidate{
		DriverID:       sample.DriverID(),
		Latitude:       sample.Point().Lat,
		Longitude:      sample.Point().Lng,
		DistanceMeters: int64(math.Round(distance)),
		Heading:        motion.Heading,
		Speed:          motion.Speed,
		LastSeen:       sample.CapturedAt(),
		ETASeconds:     EstimateETASeconds(distance, uc.Config.AverageSpeedKmh),
	}
}

// EstimateETASeconds is a straight-line travel time at a constant average speed.
func EstimateETASeconds(distanceMeters, averageSpeedKmh float64) int64 {
	if averageSpeedKmh <= 0 {
		return 0
	}
	metersPerSecond := averageSpeedKmh * 1000 / 3600
	return int64(math.Round(distanceMeters / metersPerSecond))
}
