package geo

import "math"

// boundaryTolerance is expressed in degrees, roughly a tenth of a millimeter at the equator.
const boundaryTolerance = 1e-9

// Polygon is a single outer ring. The closing vertex may be repeated or omitted.
type Polygon []Point

// Box is an axis-aligned bounding box in degrees.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// Contains reports whether p lies inside or on the edge of the box.
func (b Box) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// Ring returns the vertices without a repeated closing vertex.
func (poly Polygon) Ring() []Point {
	n := len(poly)
	if n > 1 && poly[0] == poly[n-1] {
		return poly[:n-1]
	}
	return poly
}

// Bounds returns the bounding box of the ring. The zero Box is returned for an empty polygon.
func (poly Polygon) Bounds() Box {
	ring := poly.Ring()
	if len(ring) == 0 {
		return Box{}
	}
	b := Box{MinLat: ring[0].Lat, MaxLat: ring[0].Lat, MinLng: ring[0].Lng, MaxLng: ring[0].Lng}
	for _, v := range ring[1:] {
		b.MinLat = math.Min(b.MinLat, v.Lat)
		b.MaxLat = math.Max(b.MaxLat, v.Lat)
		b.MinLng = math.Min(b.MinLng, v.Lng)
		b.MaxLng = math.Max(b.MaxLng, v.Lng)
	}
	return b
}

// DistinctVertices counts unique vertices of the ring.
func (poly Polygon) DistinctVertices() int {
	seen := make(map[Point]struct{}, len(poly))
	for _, v := range poly {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// Contains reports whether p is inside the polygon. Points on an edge or a
// vertex count as inside. Coordinates are treated as planar, which holds for
// city-scale zones that do not cross the antimeridian.
func (poly Polygon) Contains(p Point) bool {
	ring := poly.Ring()
	n := len(ring)
	if n < 3 {
		return false
	}

	for i := 0; i < n; i++ {
		if onSegment(ring[i], ring[(i+1)%n], p) {
			return true
		}
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			x := (b.Lng-a.Lng)*(p.Lat-a.Lat)/(b.Lat-a.Lat) + a.Lng
			if p.Lng < x {
				inside = !inside
			}
		}
	}
	return inside
}

func onSegment(a, b, p Point) bool {
	if p.Lat < math.Min(a.Lat, b.Lat)-boundaryTolerance || p.Lat > math.Max(a.Lat, b.Lat)+boundaryTolerance {
		return false
	}
	if p.Lng < math.Min(a.Lng, b.Lng)-boundaryTolerance || p.Lng > math.Max(a.Lng, b.Lng)+boundaryTolerance {
		return false
	}

	dx, dy := b.Lng-a.Lng, b.Lat-a.Lat
	length := math.Hypot(dx, dy)
	if length == 0 {
		return math.Hypot(p.Lng-a.Lng, p.Lat-a.Lat) <= boundaryTolerance
	}
	cross := dx*(p.Lat-a.Lat) - dy*(p.Lng-a.Lng)
	return math.Abs(cross)/length <= boundaryTolerance
}
