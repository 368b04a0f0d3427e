package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/hellofresh/health-go/v5"
	healthRabbit "github.com/hellofresh/health-go/v5/checks/rabbitmq"
	"github.com/redis/go-redis/v9"
)

// indexProbeRadiusMeters keeps the index probe to a single cell lookup.
const indexProbeRadiusMeters = 1

type HealthOption func(checks []health.Config) []health.Config

func withCheck(name string, timeout time.Duration, optional bool, check health.CheckFunc) HealthOption {
	return func(checks []health.Config) []health.Config {
		return append(checks, health.Config{
			Name:      name,
			Timeout:   timeout,
			SkipOnErr: optional,
			Check:     check,
		})
	}
}

func skip(checks []health.Config) []health.Config { return checks }

func WithPostgres(db *sql.DB) HealthOption {
	if db == nil {
		return skip
	}
	return withCheck("postgres", 5*time.Second, false, db.PingContext)
}

func WithRedis(rdb redis.UniversalClient) HealthOption {
	if rdb == nil {
		return skip
	}
	return withCheck("redis", 3*time.Second, false, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
}

// WithRabbitMQ is optional: the API keeps serving reads while the broker is down.
func WithRabbitMQ(dsn string) HealthOption {
	if dsn == "" {
		return skip
	}
	return withCheck("rabbitmq", 3*time.Second, true, healthRabbit.New(healthRabbit.Config{DSN: dsn}))
}

// WithSpatialIndex probes the proximity index with a tiny radius lookup at
// probe, whatever backs it.
func WithSpatialIndex(index outbound.SpatialIndex, probe entity.Point) HealthOption {
	if index == nil {
		return skip
	}
	return withCheck("spatial_index", 2*time.Second, false, func(ctx context.Context) error {
		if _, err := index.Within(ctx, probe, indexProbeRadiusMeters); err != nil {
			return fmt.Errorf("spatial index lookup: %w", err)
		}
		return nil
	})
}

func NewHealthHandler(serviceName, version string, opts ...HealthOption) (http.Handler, error) {
	var checks []health.Config
	for _, opt := range opts {
		checks = opt(checks)
	}

	h, err := health.New(
		health.WithComponent(health.Component{Name: serviceName, Version: version}),
		health.WithChecks(checks...),
	)
	if err != nil {
		return nil, err
	}
	return h.Handler(), nil
}
