package entity

import (
	"strings"

	"github.com/DioGolang/GoTrack/pkg/geo"
)

// Geofence is a named polygonal zone. Containment includes the boundary.
type Geofence struct {
	id       string
	name     string
	zoneType string
	boundary geo.Polygon
	active   bool
	metadata map[string]string
}

func NewGeofence(id, name, zoneType string, boundary geo.Polygon, metadata map[string]string) (*Geofence, error) {
	g := &Geofence{
		id:       id,
		name:     strings.TrimSpace(name),
		zoneType: strings.TrimSpace(zoneType),
		boundary: boundary,
		active:   true,
		metadata: metadata,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func RestoreGeofence(id, name, zoneType string, boundary geo.Polygon, active bool, metadata map[string]string) *Geofence {
	return &Geofence{
		id:       id,
		name:     name,
		zoneType: zoneType,
		boundary: boundary,
		active:   active,
		metadata: metadata,
	}
}

func (g *Geofence) Validate() error {
	if g.id == "" {
		return ErrIDIsRequired
	}
	if g.name == "" {
		return ErrNameIsRequired
	}
	if g.zoneType == "" {
		return ErrZoneTypeIsRequired
	}
	for _, v := range g.boundary {
		if err := ValidatePoint(v); err != nil {
			return err
		}
	}
	if g.boundary.DistinctVertices() < 3 {
		return ErrPolygonTooSmall
	}
	return nil
}

func (g *Geofence) Contains(p Point) bool {
	return g.boundary.Contains(p)
}

func (g *Geofence) Deactivate() {
	g.active = false
}

func (g *Geofence) ID() string                  { return g.id }
func (g *Geofence) Name() string                { return g.name }
func (g *Geofence) ZoneType() string            { return g.zoneType }
func (g *Geofence) Boundary() geo.Polygon       { return g.boundary }
func (g *Geofence) Bounds() geo.Box             { return g.boundary.Bounds() }
func (g *Geofence) IsActive() bool              { return g.active }
func (g *Geofence) Metadata() map[string]string { return g.metadata }
