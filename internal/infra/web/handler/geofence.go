package handler

import (
	"net/http"

	"github.com/DioGolang/GoTrack/internal/application/usecase/geofence"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type saveGeofenceRequest struct {
	ID       string            `json:"id,omitempty" validate:"omitempty,max=64"`
	Name     string            `json:"name" validate:"required,max=200"`
	ZoneType string            `json:"zoneType" validate:"required,max=64"`
	Boundary []geofence.Vertex `json:"boundary" validate:"min=3,dive"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type Geofence struct {
	Zones      geofence.ZonesContainingUseCase
	Save       geofence.SaveUseCase
	Deactivate geofence.DeactivateUseCase
	Logger     logger.Logger
}

func NewGeofenceHandler(
	zones geofence.ZonesContainingUseCase,
	save geofence.SaveUseCase,
	deactivate geofence.DeactivateUseCase,
	log logger.Logger,
) *Geofence {
	return &Geofence{Zones: zones, Save: save, Deactivate: deactivate, Logger: log}
}

// Containing handles GET /api/v1/geofences/containing?lat=&lng=&zoneType=.
func (h *Geofence) Containing(w http.ResponseWriter, r *http.Request) {
	lat, err := queryFloat(r, "lat", nil)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	lng, err := queryFloat(r, "lng", nil)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	matches, err := h.Zones.Execute(r.Context(), geofence.ZonesInput{
		Latitude:  lat,
		Longitude: lng,
		ZoneType:  r.URL.Query().Get("zoneType"),
	})
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (h *Geofence) Create(w http.ResponseWriter, r *http.Request) {
	var req saveGeofenceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	output, err := h.Save.Execute(r.Context(), geofence.SaveInput(req))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, output)
}

func (h *Geofence) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.Deactivate.Execute(r.Context(), chi.URLParam(r, "geofenceID")); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
