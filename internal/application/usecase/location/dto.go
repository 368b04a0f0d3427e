package location

import "time"

// Input

type SubmitInput struct {
	DriverID   string     `json:"driverId"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Heading    *float64   `json:"heading,omitempty"`
	Speed      *float64   `json:"speed,omitempty"`
	Accuracy   *float64   `json:"accuracy,omitempty"`
	Altitude   *float64   `json:"altitude,omitempty"`
	CapturedAt *time.Time `json:"capturedAt,omitempty"`
}

type NearestInput struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Limit     int
}

// Output

type SubmitOutput struct {
	SampleID   string    `json:"sampleId"`
	DriverID   string    `json:"driverId"`
	CapturedAt time.Time `json:"capturedAt"`
}

type DriverCandidate struct {
	DriverID       string    `json:"driverId"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	DistanceMeters int64     `json:"distanceMeters"`
	Heading        *float64  `json:"heading,omitempty"`
	Speed          *float64  `json:"speed,omitempty"`
	LastSeen       time.Time `json:"lastSeen"`
	ETASeconds     int64     `json:"etaSeconds"`
}

type CurrentPositionOutput struct {
	SampleID   string    `json:"sampleId"`
	DriverID   string    `json:"driverId"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Heading    *float64  `json:"heading,omitempty"`
	Speed      *float64  `json:"speed,omitempty"`
	Accuracy   *float64  `json:"accuracy,omitempty"`
	Altitude   *float64  `json:"altitude,omitempty"`
	CapturedAt time.Time `json:"capturedAt"`
}

// LocationAccepted is the payload of the driver.location.accepted event.
type LocationAccepted struct {
	SampleID   string    `json:"sampleId"`
	DriverID   string    `json:"driverId"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	CapturedAt time.Time `json:"capturedAt"`
}
