package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/usecase/checkpoint"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type appendCheckpointRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	Role      string   `json:"role" validate:"required,oneof=pickup dropoff waypoint current"`
}

type Checkpoint struct {
	Append    checkpoint.AppendUseCase
	List      checkpoint.ListUseCase
	Follow    checkpoint.FollowUseCase
	Logger    logger.Logger
	KeepAlive time.Duration
}

func NewCheckpointHandler(
	appendUC checkpoint.AppendUseCase,
	list checkpoint.ListUseCase,
	follow checkpoint.FollowUseCase,
	log logger.Logger,
) *Checkpoint {
	return &Checkpoint{Append: appendUC, List: list, Follow: follow, Logger: log, KeepAlive: 15 * time.Second}
}

// Create handles POST /api/v1/rides/{rideID}/checkpoints.
func (h *Checkpoint) Create(w http.ResponseWriter, r *http.Request) {
	var req appendCheckpointRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	output, err := h.Append.Execute(r.Context(), checkpoint.AppendInput{
		RideID:    chi.URLParam(r, "rideID"),
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Role:      req.Role,
	})
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, output)
}

// Index writes the ride's ledger as a JSON array while paging through it.
func (h *Checkpoint) Index(w http.ResponseWriter, r *http.Request) {
	seq, err := h.List.Execute(r.Context(), chi.URLParam(r, "rideID"))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	enc := json.NewEncoder(w)
	started := false
	for c, err := range seq {
		if err != nil {
			if !started {
				writeError(w, r, h.Logger, err)
				return
			}
			h.Logger.Error(r.Context(), "Checkpoint listing aborted mid-stream", logger.WithError(err))
			panic(http.ErrAbortHandler)
		}
		if !started {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("["))
			started = true
		} else {
			_, _ = w.Write([]byte(","))
		}
		if err := enc.Encode(c); err != nil {
			return
		}
	}
	if !started {
		writeJSON(w, http.StatusOK, []checkpoint.CheckpointOutput{})
		return
	}
	_, _ = w.Write([]byte("]\n"))
}

// Stream pushes live "current" checkpoints as server-sent events until the
// client disconnects.
func (h *Checkpoint) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "streaming unsupported"})
		return
	}

	ctx := r.Context()
	updates, err := h.Follow.Execute(ctx, chi.URLParam(r, "rideID"))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(h.KeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			_, _ = fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case c, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(c)
			if err != nil {
				h.Logger.Error(ctx, "Failed to encode checkpoint", logger.WithError(err))
				continue
			}
			_, _ = fmt.Fprintf(w, "id: %s\nevent: checkpoint\ndata: %s\n\n", c.RecordID, data)
			flusher.Flush()
		}
	}
}
