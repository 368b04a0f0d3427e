package entity

import "github.com/DioGolang/GoTrack/pkg/geo"

// Point is the coordinate type shared by every location entity.
type Point = geo.Point

func NewPoint(lat, lng float64) (Point, error) {
	p := Point{Lat: lat, Lng: lng}
	if err := ValidatePoint(p); err != nil {
		return Point{}, err
	}
	return p, nil
}

func ValidatePoint(p Point) error {
	if !(p.Lat >= -90 && p.Lat <= 90) {
		return ErrInvalidLatitude
	}
	if !(p.Lng >= -180 && p.Lng <= 180) {
		return ErrInvalidLongitude
	}
	return nil
}
