package database

import (
	"context"
	"math"
	"sync"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/geo"
	"github.com/mmcloughlin/geohash"
)

// cellPrecision is the geohash length used to bucket drivers, about 1.2km x 0.6km.
const cellPrecision uint = 6

// MemorySpatialIndex buckets the active sample of each driver into geohash
// cells. A radius query reads the cell under the origin and its eight
// neighbours at the finest precision whose cells are at least as large as the
// radius, and falls back to a full scan when no precision covers it.
type MemorySpatialIndex struct {
	mu       sync.RWMutex
	cells    map[string]map[string]*entity.DriverLocationSample
	byDriver map[string]string
}

func NewMemorySpatialIndex() *MemorySpatialIndex {
	return &MemorySpatialIndex{
		cells:    make(map[string]map[string]*entity.DriverLocationSample),
		byDriver: make(map[string]string),
	}
}

func (idx *MemorySpatialIndex) Upsert(_ context.Context, sample *entity.DriverLocationSample) error {
	p := sample.Point()
	cell := geohash.EncodeWithPrecision(p.Lat, p.Lng, cellPrecision)
	cp := copySample(sample)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.removeLocked(sample.DriverID())
	bucket, ok := idx.cells[cell]
	if !ok {
		bucket = make(map[string]*entity.DriverLocationSample)
		idx.cells[cell] = bucket
	}
	bucket[sample.DriverID()] = cp
	idx.byDriver[sample.DriverID()] = cell
	return nil
}

func (idx *MemorySpatialIndex) Remove(_ context.Context, driverID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(driverID)
	return nil
}

func (idx *MemorySpatialIndex) removeLocked(driverID string) {
	cell, ok := idx.byDriver[driverID]
	if !ok {
		return
	}
	delete(idx.byDriver, driverID)
	bucket := idx.cells[cell]
	delete(bucket, driverID)
	if len(bucket) == 0 {
		delete(idx.cells, cell)
	}
}

func (idx *MemorySpatialIndex) Within(ctx context.Context, origin entity.Point, radiusMeters float64) ([]*entity.DriverLocationSample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []*entity.DriverLocationSample
	collect := func(bucket map[string]*entity.DriverLocationSample) {
		for _, sample := range bucket {
			if geo.Haversine(origin, sample.Point()) <= radiusMeters {
				out = append(out, copySample(sample))
			}
		}
	}

	precision := searchPrecision(origin, radiusMeters)
	if precision == 0 {
		for _, bucket := range idx.cells {
			collect(bucket)
		}
		return out, nil
	}

	centre := geohash.EncodeWithPrecision(origin.Lat, origin.Lng, precision)
	prefixes := make(map[string]struct{}, 9)
	prefixes[centre] = struct{}{}
	for _, n := range geohash.Neighbors(centre) {
		prefixes[n] = struct{}{}
	}

	if precision == cellPrecision {
		for prefix := range prefixes {
			collect(idx.cells[prefix])
		}
		return out, nil
	}
	for cell, bucket := range idx.cells {
		if _, ok := prefixes[cell[:precision]]; ok {
			collect(bucket)
		}
	}
	return out, nil
}

// searchPrecision picks the finest geohash length whose 3x3 block around the
// origin is guaranteed to contain the whole radius. Zero means scan everything.
func searchPrecision(origin entity.Point, radiusMeters float64) uint {
	for p := cellPrecision; p >= 1; p-- {
		box := geohash.BoundingBox(geohash.EncodeWithPrecision(origin.Lat, origin.Lng, p))
		latSpan := box.MaxLat - box.MinLat
		lngSpan := box.MaxLng - box.MinLng

		// the neighbour block must not wrap the poles or the antimeridian
		if box.MaxLat+latSpan >= 90 || box.MinLat-latSpan <= -90 {
			continue
		}
		if box.MaxLng+lngSpan > 180 || box.MinLng-lngSpan < -180 {
			continue
		}

		widestLat := math.Max(math.Abs(box.MaxLat+latSpan), math.Abs(box.MinLat-latSpan))
		height := latSpan * geo.MetersPerDegreeLat()
		width := lngSpan * geo.MetersPerDegreeLng(widestLat)
		if math.Min(height, width) >= radiusMeters {
			return p
		}
	}
	return 0
}
