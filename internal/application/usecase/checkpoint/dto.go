package checkpoint

import (
	"time"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

// Input

type AppendInput struct {
	RideID    string  `json:"-"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Role      string  `json:"role"`
}

// Output

type AppendOutput struct {
	RecordID   string    `json:"recordId"`
	RecordedAt time.Time `json:"recordedAt"`
}

type CheckpointOutput struct {
	RecordID   string    `json:"recordId"`
	RideID     string    `json:"rideId"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Role       string    `json:"role"`
	RecordedAt time.Time `json:"recordedAt"`
}

func toOutput(c *entity.RideCheckpoint) CheckpointOutput {
	return CheckpointOutput{
		RecordID:   c.ID(),
		RideID:     c.RideID(),
		Latitude:   c.Point().Lat,
		Longitude:  c.Point().Lng,
		Role:       string(c.Role()),
		RecordedAt: c.RecordedAt(),
	}
}
