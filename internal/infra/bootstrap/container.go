package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/DioGolang/GoTrack/configs"
	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/application/usecase/checkpoint"
	"github.com/DioGolang/GoTrack/internal/application/usecase/eviction"
	"github.com/DioGolang/GoTrack/internal/application/usecase/geofence"
	"github.com/DioGolang/GoTrack/internal/application/usecase/location"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/internal/infra/database"
	"github.com/DioGolang/GoTrack/internal/infra/event"
	"github.com/DioGolang/GoTrack/internal/infra/grpc/service"
	"github.com/DioGolang/GoTrack/internal/infra/scheduler"
	"github.com/DioGolang/GoTrack/internal/infra/storage"
	"github.com/DioGolang/GoTrack/internal/infra/web"
	"github.com/DioGolang/GoTrack/internal/infra/web/handler"
	webmw "github.com/DioGolang/GoTrack/internal/infra/web/middleware"
	"github.com/DioGolang/GoTrack/pkg/events"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/DioGolang/GoTrack/pkg/metrics"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
)

const Version = "1.0.0"

// Container owns every adapter and use case of a process and closes them in
// reverse order of creation.
type Container struct {
	Config   *configs.Conf
	Logger   logger.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Prometheus

	DB    *sql.DB
	Redis redis.UniversalClient
	AMQP  *amqp.Connection

	Samples     outbound.SampleRepository
	UnitOfWork  outbound.UnitOfWork
	Index       outbound.SpatialIndex
	Locker      outbound.KeyedLocker
	Directory   outbound.DriverDirectory
	Geofences   outbound.GeofenceRepository
	Checkpoints outbound.CheckpointRepository
	Hub         *event.CheckpointHub
	Dispatcher  events.EventDispatcher

	Submit           location.SubmitUseCase
	GoOffline        location.GoOfflineUseCase
	Nearest          location.NearestDriversUseCase
	Current          location.CurrentPositionUseCase
	Zones            geofence.ZonesContainingUseCase
	SaveZone         geofence.SaveUseCase
	DeactivateZone   geofence.DeactivateUseCase
	AppendCheckpoint checkpoint.AppendUseCase
	ListCheckpoints  checkpoint.ListUseCase
	FollowRide       checkpoint.FollowUseCase
	Evict            eviction.EvictUseCase

	closers []func() error
}

func New(ctx context.Context, cfg *configs.Conf, log logger.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: log, Registry: prometheus.NewRegistry()}
	c.Metrics = metrics.NewPrometheusMetrics(c.Registry, cfg.ServiceName)

	if err := c.openStores(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := c.openBroker(); err != nil {
		_ = c.Close()
		return nil, err
	}
	c.buildUseCases()
	return c, nil
}

func (c *Container) onClose(fn func() error) {
	c.closers = append(c.closers, fn)
}

func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Container) openStores(ctx context.Context) error {
	cfg := c.Config

	if cfg.SpatialIndex == "redis" || cfg.Locker == "redis" {
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		c.onClose(c.Redis.Close)
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}

	switch cfg.StorageDriver {
	case "postgres":
		db, err := sql.Open(cfg.DBDriver, cfg.PostgresDSN())
		if err != nil {
			return err
		}
		c.DB = db
		c.onClose(db.Close)
		db.SetMaxOpenConns(cfg.DBMaxOpen)
		db.SetConnMaxIdleTime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if cfg.DBMigrate {
			if err := database.Migrate(ctx, db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		c.Samples = database.NewSampleRepository(db)
		c.UnitOfWork = database.NewUnitOfWork(db)
		c.Directory = database.NewDriverDirectoryRepository(db)
		c.Geofences = database.NewGeofenceRepository(db)
		c.Checkpoints = database.NewCheckpointRepository(db)
	default:
		store := database.NewMemorySampleStore()
		c.Samples = store
		c.UnitOfWork = store
		c.Directory = database.NewMemoryDriverDirectory(cfg.AllowUnknownDrivers)
		c.Geofences = database.NewMemoryGeofenceRepository()
		c.Checkpoints = database.NewMemoryCheckpointRepository()
	}

	switch cfg.SpatialIndex {
	case "redis":
		c.Index = database.NewRedisSpatialIndex(c.Redis, c.Logger)
	case "postgres":
		c.Index = database.NewPostgresSpatialIndex(c.DB)
	default:
		c.Index = database.NewMemorySpatialIndex()
	}

	switch cfg.Locker {
	case "redis":
		c.Locker = storage.NewRedisLocker(c.Redis, cfg.LockLease, 10*time.Millisecond)
	default:
		c.Locker = storage.NewKeyedMutex()
	}

	c.Hub = event.NewCheckpointHub(c.Metrics, 0)
	return nil
}

func (c *Container) openBroker() error {
	if c.Config.AMQPURL == "" {
		c.Dispatcher = events.NopDispatcher{}
		return nil
	}
	conn, err := amqp.Dial(c.Config.AMQPURL)
	if err != nil {
		return fmt.Errorf("amqp: %w", err)
	}
	c.AMQP = conn
	c.onClose(conn.Close)

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	c.onClose(ch.Close)
	c.Dispatcher = event.NewDispatcher(ch, c.Config.AMQPExchange, c.Metrics)
	return nil
}

func (c *Container) buildUseCases() {
	cfg := c.Config
	ingest := location.SubmitConfig{
		Timeout:     cfg.IngestTimeout,
		MaxAttempts: cfg.IngestMaxAttempts,
		BaseBackoff: cfg.IngestBackoff,
	}

	c.Submit = &location.SubmitMetricsDecorator{
		Next:    location.NewSubmitUseCase(c.UnitOfWork, c.Index, c.Locker, c.Dispatcher, c.Logger, c.Metrics, ingest),
		Metrics: c.Metrics,
	}
	c.GoOffline = location.NewGoOfflineUseCase(c.UnitOfWork, c.Index, c.Locker, c.Logger, ingest)
	c.Nearest = location.NearestDriversMetricsDecorator{
		Next: location.NewNearestDriversUseCase(c.Index, c.Directory, c.Logger, c.Metrics, location.NearestConfig{
			FreshnessWindow:    cfg.FreshnessWindow,
			QueryTimeout:       cfg.QueryTimeout,
			MaxLimit:           cfg.MaxLimit,
			AverageSpeedKmh:    cfg.AverageSpeedKmh,
			EligibilityWorkers: cfg.EligibilityWorkers,
		}),
		Metrics: c.Metrics,
	}
	c.Current = location.NewCurrentPositionUseCase(c.Samples)

	c.Zones = geofence.NewZonesContainingUseCase(c.Geofences, cfg.QueryTimeout)
	c.SaveZone = geofence.NewSaveUseCase(c.Geofences)
	c.DeactivateZone = geofence.NewDeactivateUseCase(c.Geofences)

	c.AppendCheckpoint = checkpoint.NewAppendUseCase(c.Checkpoints, c.Hub, c.Locker, c.Logger, c.Metrics, cfg.IngestTimeout)
	c.ListCheckpoints = checkpoint.NewListUseCase(c.Checkpoints, checkpoint.DefaultPageSize)
	c.FollowRide = checkpoint.NewFollowUseCase(c.Hub)

	c.Evict = eviction.NewEvictUseCase(c.Samples, c.Logger, c.Metrics, cfg.EvictionBatchSize)
}

func (c *Container) healthHandler() (http.Handler, error) {
	return handler.NewHealthHandler(c.Config.ServiceName, Version,
		handler.WithPostgres(c.DB),
		handler.WithRedis(c.Redis),
		handler.WithRabbitMQ(c.Config.AMQPURL),
		handler.WithSpatialIndex(c.Index, entity.Point{}),
	)
}

// HTTPHandler builds the REST API. The ingestion rate limiter lives as long
// as the container.
func (c *Container) HTTPHandler() (http.Handler, error) {
	health, err := c.healthHandler()
	if err != nil {
		return nil, err
	}
	limiter := webmw.NewRateLimiter(webmw.RateLimiterConfig{
		RequestsPerSecond: c.Config.RateLimitRPS,
		Burst:             c.Config.RateLimitBurst,
	}, webmw.URLParamOrIP("driverID"))
	c.onClose(func() error {
		limiter.Close()
		return nil
	})

	return web.NewRouter(web.RouterDeps{
		ServiceName: c.Config.ServiceName,
		Logger:      c.Logger,
		Metrics:     c.Metrics,
		Gatherer:    c.Registry,
		Health:      health,
		Location: handler.NewLocationHandler(c.Submit, c.GoOffline, c.Nearest, c.Current,
			handler.NearbyDefaults{RadiusKm: c.Config.DefaultRadiusKm, Limit: c.Config.DefaultLimit}, c.Logger),
		Geofence:       handler.NewGeofenceHandler(c.Zones, c.SaveZone, c.DeactivateZone, c.Logger),
		Checkpoint:     handler.NewCheckpointHandler(c.AppendCheckpoint, c.ListCheckpoints, c.FollowRide, c.Logger),
		IngestLimiter:  limiter,
		RequestTimeout: 10 * time.Second,
	}), nil
}

func (c *Container) GRPCServer() *grpc.Server {
	svc := service.NewLocationService(c.Submit, c.Nearest, c.Zones,
		location.NearestInput{RadiusKm: c.Config.DefaultRadiusKm, Limit: c.Config.DefaultLimit}, c.Logger)
	return service.NewServer(svc, c.Metrics, c.Logger)
}

func (c *Container) EvictionScheduler() *scheduler.EvictionScheduler {
	return scheduler.NewEvictionScheduler(c.Evict, c.Logger, c.Config.EvictionInterval, c.Config.EvictionRetention)
}

// LocationMessageHandler is the ingestion chain run for every queued
// location: breaker and timeout, then deduplication when Redis is
// configured, then bounded retry around Submit.
func (c *Container) LocationMessageHandler() event.MessageHandler {
	const name = "driver_location"
	h := event.WrapExponentialBackoff(c.Logger, c.Metrics, name, 2, c.Config.IngestBackoff,
		event.NewLocationHandler(c.Submit))
	if c.Redis != nil {
		h = event.WrapIdempotency(c.Logger, c.Metrics, storage.NewRedisAdapter(c.Redis), name, c.Config.DedupTTL, h)
	}
	return event.WrapResilientConsumer(c.Metrics, name, 3*c.Config.IngestTimeout, event.NewHandlerBreaker(name), h)
}

func (c *Container) LocationConsumer() (*event.Consumer, error) {
	if c.AMQP == nil {
		return nil, errors.New("AMQP_URL is not configured")
	}
	return event.NewConsumer(c.AMQP, c.LocationMessageHandler(), c.Logger), nil
}
