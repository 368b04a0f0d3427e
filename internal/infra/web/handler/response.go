package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps use case errors onto HTTP status codes.
func statusFor(err error) int {
	var invalid validator.ValidationErrors
	switch {
	case errors.Is(err, entity.ErrValidation), errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.Is(err, outbound.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, outbound.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", "1")
		log.Warn(r.Context(), "Dependency unavailable", logger.String("path", r.URL.Path), logger.WithError(err))
		msg = outbound.ErrUnavailable.Error()
	case http.StatusInternalServerError:
		log.Error(r.Context(), "Request failed", logger.String("path", r.URL.Path), logger.WithError(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest("invalid request body: " + err.Error())
	}
	return validate.Struct(dst)
}

type badRequest string

func (e badRequest) Error() string        { return string(e) }
func (e badRequest) Is(target error) bool { return target == entity.ErrValidation }

func queryFloat(r *http.Request, name string, fallback *float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if fallback == nil {
			return 0, badRequest(name + " is required")
		}
		return *fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, badRequest(name + " must be a number")
	}
	return v, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(name + " must be an integer")
	}
	return v, nil
}
