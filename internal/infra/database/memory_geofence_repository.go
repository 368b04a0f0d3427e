package database

import (
	"context"
	"sort"
	"sync"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

type MemoryGeofenceRepository struct {
	mu    sync.RWMutex
	zones map[string]*entity.Geofence
}

func NewMemoryGeofenceRepository() *MemoryGeofenceRepository {
	return &MemoryGeofenceRepository{zones: make(map[string]*entity.Geofence)}
}

func (r *MemoryGeofenceRepository) Save(_ context.Context, g *entity.Geofence) error {
	cp := *g
	r.mu.Lock()
	r.zones[g.ID()] = &cp
	r.mu.Unlock()
	return nil
}

func (r *MemoryGeofenceRepository) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.zones[id]
	if !ok {
		return outbound.ErrNotFound
	}
	cp := *g
	cp.Deactivate()
	r.zones[id] = &cp
	return nil
}

func (r *MemoryGeofenceRepository) ActiveCandidates(ctx context.Context, p entity.Point, zoneType string) ([]*entity.Geofence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Geofence, 0)
	for _, g := range r.zones {
		if !g.IsActive() || (zoneType != "" && g.ZoneType() != zoneType) {
			continue
		}
		if g.Bounds().Contains(p) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}
