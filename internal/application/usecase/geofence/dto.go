package geofence

// Input

type ZonesInput struct {
	Latitude  float64
	Longitude float64
	ZoneType  string
}

type Vertex struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type SaveInput struct {
	ID       string            `json:"id,omitempty"`
	Name     string            `json:"name"`
	ZoneType string            `json:"zoneType"`
	Boundary []Vertex          `json:"boundary"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Output

type ZoneMatch struct {
	GeofenceID string            `json:"geofenceId"`
	Name       string            `json:"name"`
	ZoneType   string            `json:"zoneType"`
	IsInside   bool              `json:"isInside"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type SaveOutput struct {
	ID string `json:"id"`
}
