package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/geo"
)

type GeofenceRepositoryImpl struct {
	*Queries
}

func NewGeofenceRepository(db *sql.DB) *GeofenceRepositoryImpl {
	return &GeofenceRepositoryImpl{Queries: New(db)}
}

type geoJSONPolygon struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

func encodePolygon(poly geo.Polygon) (string, error) {
	ring := poly.Ring()
	coords := make([][2]float64, 0, len(ring)+1)
	for _, v := range ring {
		coords = append(coords, [2]float64{v.Lng, v.Lat})
	}
	if len(ring) > 0 {
		coords = append(coords, [2]float64{ring[0].Lng, ring[0].Lat})
	}
	b, err := json.Marshal(geoJSONPolygon{Type: "Polygon", Coordinates: [][][2]float64{coords}})
	return string(b), err
}

func decodePolygon(s string) (geo.Polygon, error) {
	var g geoJSONPolygon
	if err := json.Unmarshal([]byte(s), &g); err != nil {
		return nil, err
	}
	if g.Type != "Polygon" || len(g.Coordinates) == 0 {
		return nil, fmt.Errorf("unexpected geometry %q", g.Type)
	}
	outer := g.Coordinates[0]
	poly := make(geo.Polygon, len(outer))
	for i, c := range outer {
		poly[i] = geo.Point{Lat: c[1], Lng: c[0]}
	}
	return poly, nil
}

func (r *GeofenceRepositoryImpl) Save(ctx context.Context, g *entity.Geofence) error {
	boundary, err := encodePolygon(g.Boundary())
	if err != nil {
		return err
	}
	metadata := []byte("{}")
	if len(g.Metadata()) > 0 {
		if metadata, err = json.Marshal(g.Metadata()); err != nil {
			return err
		}
	}
	return r.UpsertGeofence(ctx, UpsertGeofenceParams{
		ID:       g.ID(),
		Name:     g.Name(),
		ZoneType: g.ZoneType(),
		GeoJSON:  boundary,
		IsActive: g.IsActive(),
		Metadata: metadata,
	})
}

func (r *GeofenceRepositoryImpl) Deactivate(ctx context.Context, id string) error {
	n, err := r.DeactivateGeofence(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return outbound.ErrNotFound
	}
	return nil
}

func (r *GeofenceRepositoryImpl) ActiveCandidates(ctx context.Context, p entity.Point, zoneType string) ([]*entity.Geofence, error) {
	rows, err := r.ActiveGeofencesCovering(ctx, ActiveGeofencesCoveringParams{
		Latitude:  p.Lat,
		Longitude: p.Lng,
		ZoneType:  zoneType,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Geofence, 0, len(rows))
	for _, row := range rows {
		boundary, err := decodePolygon(row.Boundary)
		if err != nil {
			return nil, fmt.Errorf("geofence %s: %w", row.ID, err)
		}
		var metadata map[string]string
		if len(row.Metadata) > 0 {
			if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
				return nil, fmt.Errorf("geofence %s metadata: %w", row.ID, err)
			}
		}
		out = append(out, entity.RestoreGeofence(row.ID, row.Name, row.ZoneType, boundary, row.IsActive, metadata))
	}
	return out, nil
}
