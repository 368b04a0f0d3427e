package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	driversGeoKey      = "drivers:active:geo"
	driverSampleKeyFmt = "drivers:active:sample:%s"
)

func driverSampleKey(driverID string) string {
	return fmt.Sprintf(driverSampleKeyFmt, driverID)
}

// RedisSpatialIndex keeps one GEO member per driver plus a hash with the full
// sample. The hash is authoritative for coordinates because GEO members are
// stored with geohash precision loss.
type RedisSpatialIndex struct {
	client redis.UniversalClient
	logger logger.Logger
}

func NewRedisSpatialIndex(client redis.UniversalClient, log logger.Logger) *RedisSpatialIndex {
	return &RedisSpatialIndex{client: client, logger: log}
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseOptional(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *RedisSpatialIndex) Upsert(ctx context.Context, sample *entity.DriverLocationSample) error {
	p := sample.Point()
	motion := sample.Motion()
	r.logger.Debug(ctx, "Redis GeoAdd",
		logger.String("driver_id", sample.DriverID()),
		logger.Float64("lat", p.Lat),
		logger.Float64("lng", p.Lng),
	)

	pipe := r.client.TxPipeline()
	pipe.GeoAdd(ctx, driversGeoKey, &redis.GeoLocation{
		Name:      sample.DriverID(),
		Longitude: p.Lng,
		Latitude:  p.Lat,
	})
	pipe.HSet(ctx, driverSampleKey(sample.DriverID()), map[string]interface{}{
		"sample_id":   sample.ID(),
		"lat":         strconv.FormatFloat(p.Lat, 'f', -1, 64),
		"lng":         strconv.FormatFloat(p.Lng, 'f', -1, 64),
		"heading":     formatOptional(motion.Heading),
		"speed":       formatOptional(motion.Speed),
		"accuracy":    formatOptional(motion.Accuracy),
		"altitude":    formatOptional(motion.Altitude),
		"captured_at": sample.CapturedAt().Format(time.RFC3339Nano),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error(ctx, "Redis GeoAdd failed", logger.WithError(err))
		return err
	}
	return nil
}

func (r *RedisSpatialIndex) Remove(ctx context.Context, driverID string) error {
	pipe := r.client.TxPipeline()
	pipe.ZRem(ctx, driversGeoKey, driverID)
	pipe.Del(ctx, driverSampleKey(driverID))
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisSpatialIndex) Within(ctx context.Context, origin entity.Point, radiusMeters float64) ([]*entity.DriverLocationSample, error) {
	r.logger.Debug(ctx, "Redis GeoRadius query",
		logger.Float64("lat", origin.Lat),
		logger.Float64("lng", origin.Lng),
		logger.Float64("radius_m", radiusMeters),
	)
	members, err := r.client.GeoRadius(ctx, driversGeoKey, origin.Lng, origin.Lat, &redis.GeoRadiusQuery{
		Radius: radiusMeters,
		Unit:   "m",
		Sort:   "ASC",
	}).Result()
	if err != nil {
		r.logger.Error(ctx, "Redis command failed", logger.WithError(err))
		return nil, fmt.Errorf("redis geo radius error: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(members))
	for i, m := range members {
		cmds[i] = pipe.HGetAll(ctx, driverSampleKey(m.Name))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis sample lookup error: %w", err)
	}

	out := make([]*entity.DriverLocationSample, 0, len(members))
	for i, m := range members {
		fields := cmds[i].Val()
		if len(fields) == 0 {
			// member without metadata, removed concurrently
			continue
		}
		sample, err := decodeSample(m.Name, fields)
		if err != nil {
			r.logger.Warn(ctx, "Dropping malformed indexed sample",
				logger.String("driver_id", m.Name),
				logger.WithError(err),
			)
			continue
		}
		out = append(out, sample)
	}
	return out, nil
}

func decodeSample(driverID string, fields map[string]string) (*entity.DriverLocationSample, error) {
	lat, err := strconv.ParseFloat(fields["lat"], 64)
	if err != nil {
		return nil, fmt.Errorf("lat: %w", err)
	}
	lng, err := strconv.ParseFloat(fields["lng"], 64)
	if err != nil {
		return nil, fmt.Errorf("lng: %w", err)
	}
	capturedAt, err := time.Parse(time.RFC3339Nano, fields["captured_at"])
	if err != nil {
		return nil, fmt.Errorf("captured_at: %w", err)
	}
	var motion entity.Motion
	for name, dst := range map[string]**float64{
		"heading":  &motion.Heading,
		"speed":    &motion.Speed,
		"accuracy": &motion.Accuracy,
		"altitude": &motion.Altitude,
	} {
		if *dst, err = parseOptional(fields[name]); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return entity.RestoreDriverLocationSample(
		fields["sample_id"],
		driverID,
		entity.Point{Lat: lat, Lng: lng},
		motion,
		capturedAt,
		true,
	), nil
}
