package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/locus-home/locus-core/internal/event"
	"github.com/locus-home/locus-core/internal/geo"
	"github.com/locus-home/locus-core/internal/prediction"
	"github.com/locus-home/locus-core/internal/telemetry"
)

// locationRequest is the POST /api/v1/locations body.
//
// Edge devices send local-frame x/y/z directly; the mobile AR app
// sends a geodetic latitude/longitude pair instead, which is projected
// and filtered before buffering.
type locationRequest struct {
	DeviceID  int64    `json:"device_id"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	Z         *float64 `json:"z,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Altitude  float64  `json:"altitude,omitempty"`
	Accuracy  float64  `json:"accuracy,omitempty"`
	Source    string   `json:"source"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// handleIngestLocation accepts a position sample and enqueues it.
func (s *Server) handleIngestLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.DeviceID <= 0 {
		writeBadRequest(w, "device_id is required")
		return
	}

	source := telemetry.Source(req.Source)
	if !source.Valid() {
		writeBadRequest(w, "source must be MOBILE or EDGE")
		return
	}

	recordedAt := time.Now().UTC()
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339Nano, req.Timestamp)
		if err != nil {
			writeBadRequest(w, "timestamp must be RFC3339")
			return
		}
		recordedAt = parsed.UTC()
	}

	pos := telemetry.Position{
		DeviceID:   req.DeviceID,
		Accuracy:   req.Accuracy,
		Source:     source,
		RecordedAt: recordedAt,
	}

	switch {
	case req.Latitude != nil && req.Longitude != nil:
		local := s.transformer.Transform(geo.Coordinate{
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
			Altitude:  req.Altitude,
			Accuracy:  req.Accuracy,
		})
		pos.X, pos.Y, pos.Z = local.X, local.Y, local.Z
	case req.X != nil && req.Y != nil && req.Z != nil:
		pos.X, pos.Y, pos.Z = *req.X, *req.Y, *req.Z
	default:
		writeBadRequest(w, "either x/y/z or latitude/longitude is required")
		return
	}

	if err := s.buffer.Enqueue(r.Context(), pos); err != nil {
		s.logger.Error("failed to enqueue position", "device_id", req.DeviceID, "error", err)
		writeInternalError(w, "failed to record position")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"device_id":   pos.DeviceID,
		"x":           pos.X,
		"y":           pos.Y,
		"z":           pos.Z,
		"source":      pos.Source,
		"recorded_at": pos.RecordedAt.Format(time.RFC3339Nano),
	})
}

// handleLatestLocation returns the most recent position, buffered or
// persisted.
func (s *Server) handleLatestLocation(w http.ResponseWriter, r *http.Request) {
	pos, err := s.buffer.Latest(r.Context(), s.positions.LatestFromStore)
	if errors.Is(err, telemetry.ErrNoPositions) {
		writeNotFound(w, "no positions recorded")
		return
	}
	if err != nil {
		s.logger.Error("failed to read latest position", "error", err)
		writeInternalError(w, "failed to read latest position")
		return
	}

	writeJSON(w, http.StatusOK, pos)
}

// handleCurrentPredictions returns the newest prediction per zone for
// a home.
func (s *Server) handleCurrentPredictions(w http.ResponseWriter, r *http.Request) {
	homeID, ok := homeIDParam(w, r)
	if !ok {
		return
	}

	preds, err := s.predictions.CurrentByHome(r.Context(), homeID)
	if err != nil {
		s.logger.Error("failed to read predictions", "home_id", homeID, "error", err)
		writeInternalError(w, "failed to read predictions")
		return
	}
	if preds == nil {
		preds = []prediction.Prediction{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"home_id":     homeID,
		"predictions": preds,
	})
}

// handleTodayEvents returns a home's sensor events since UTC midnight.
func (s *Server) handleTodayEvents(w http.ResponseWriter, r *http.Request) {
	homeID, ok := homeIDParam(w, r)
	if !ok {
		return
	}

	events, err := s.events.ListTodayByHome(r.Context(), homeID)
	if err != nil {
		s.logger.Error("failed to read events", "home_id", homeID, "error", err)
		writeInternalError(w, "failed to read events")
		return
	}
	if events == nil {
		events = []event.SensorEvent{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"home_id": homeID,
		"events":  events,
	})
}

// homeIDParam parses the home_id query parameter, writing a 400 on
// failure.
func homeIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("home_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "home_id query parameter is required")
		return 0, false
	}
	return id, true
}
