package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used by every distance computation in the service.
const EarthRadiusMeters = 6371000.0

const metersPerDegree = EarthRadiusMeters * math.Pi / 180

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// clamp float drift for antipodal points
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// DistanceMeters is Haversine rounded to the nearest whole meter.
func DistanceMeters(a, b Point) int64 {
	return int64(math.Round(Haversine(a, b)))
}

// MetersPerDegreeLat is the north-south length of one degree of latitude.
func MetersPerDegreeLat() float64 {
	return metersPerDegree
}

// MetersPerDegreeLng is the east-west length of one degree of longitude at lat.
func MetersPerDegreeLng(lat float64) float64 {
	return metersPerDegree * math.Cos(toRadians(lat))
}
