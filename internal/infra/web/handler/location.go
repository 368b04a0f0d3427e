package handler

import (
	"net/http"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/usecase/location"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type submitLocationRequest struct {
	Latitude   *float64   `json:"latitude" validate:"required,latitude"`
	Longitude  *float64   `json:"longitude" validate:"required,longitude"`
	Heading    *float64   `json:"heading,omitempty" validate:"omitempty,gte=0,lt=360"`
	Speed      *float64   `json:"speed,omitempty" validate:"omitempty,gte=0"`
	Accuracy   *float64   `json:"accuracy,omitempty" validate:"omitempty,gte=0"`
	Altitude   *float64   `json:"altitude,omitempty"`
	CapturedAt *time.Time `json:"capturedAt,omitempty"`
}

type NearbyDefaults struct {
	RadiusKm float64
	Limit    int
}

type Location struct {
	Submit   location.SubmitUseCase
	Offline  location.GoOfflineUseCase
	Nearest  location.NearestDriversUseCase
	Current  location.CurrentPositionUseCase
	Defaults NearbyDefaults
	Logger   logger.Logger
}

func NewLocationHandler(
	submit location.SubmitUseCase,
	offline location.GoOfflineUseCase,
	nearest location.NearestDriversUseCase,
	current location.CurrentPositionUseCase,
	defaults NearbyDefaults,
	log logger.Logger,
) *Location {
	return &Location{
		Submit:   submit,
		Offline:  offline,
		Nearest:  nearest,
		Current:  current,
		Defaults: defaults,
		Logger:   log,
	}
}

// SubmitLocation handles POST /api/v1/drivers/{driverID}/locations.
func (h *Location) SubmitLocation(w http.ResponseWriter, r *http.Request) {
	var req submitLocationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	output, err := h.Submit.Execute(r.Context(), location.SubmitInput{
		DriverID:   chi.URLParam(r, "driverID"),
		Latitude:   *req.Latitude,
		Longitude:  *req.Longitude,
		Heading:    req.Heading,
		Speed:      req.Speed,
		Accuracy:   req.Accuracy,
		Altitude:   req.Altitude,
		CapturedAt: req.CapturedAt,
	})
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, output)
}

// GoOffline handles DELETE /api/v1/drivers/{driverID}/location.
func (h *Location) GoOffline(w http.ResponseWriter, r *http.Request) {
	if err := h.Offline.Execute(r.Context(), chi.URLParam(r, "driverID")); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Location) CurrentPosition(w http.ResponseWriter, r *http.Request) {
	output, err := h.Current.Execute(r.Context(), chi.URLParam(r, "driverID"))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

// Nearby handles GET /api/v1/drivers/nearby?lat=&lng=&radiusKm=&limit=.
func (h *Location) Nearby(w http.ResponseWriter, r *http.Request) {
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
	radius, err := queryFloat(r, "radiusKm", &h.Defaults.RadiusKm)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	limit, err := queryInt(r, "limit", h.Defaults.Limit)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	candidates, err := h.Nearest.Execute(r.Context(), location.NearestInput{
		Latitude:  lat,
		Longitude: lng,
		RadiusKm:  radius,
		Limit:     limit,
	})
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}
