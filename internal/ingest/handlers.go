package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/locus-home/locus-core/internal/event"
	"github.com/locus-home/locus-core/internal/eventbus"
	"github.com/locus-home/locus-core/internal/home"
	"github.com/locus-home/locus-core/internal/infrastructure/logging"
	"github.com/locus-home/locus-core/internal/prediction"
	"github.com/locus-home/locus-core/internal/zone"
)

// deviceStore resolves the device predictions are attributed to.
type deviceStore interface {
	GetDevice(ctx context.Context, id int64) (*home.Device, error)
	FirstDeviceForHome(ctx context.Context, homeID int64) (*home.Device, error)
}

// zoneStore resolves zone names and lists zones for outbound publishes.
type zoneStore interface {
	ListByHome(ctx context.Context, homeID int64) ([]zone.Zone, error)
	FindByName(ctx context.Context, homeID int64, name string) (*zone.Zone, error)
}

// predictionStore persists pollution probabilities.
type predictionStore interface {
	Create(ctx context.Context, p *prediction.Prediction) error
}

// eventStore persists sensor events.
type eventStore interface {
	Create(ctx context.Context, e *event.SensorEvent) error
}

// publisher is the outbound MQTT surface the router needs.
type publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// zoneReloader consumes fresh zone geometry when a home's zones change.
type zoneReloader interface {
	SetZones(zones []zone.Zone)
}

// Router dispatches inbound MQTT telemetry to the stores and the
// event bus, and publishes outbound zone updates.
type Router struct {
	devices     deviceStore
	zones       zoneStore
	predictions predictionStore
	events      eventStore
	bus         *eventbus.Bus
	pub         publisher
	logger      *logging.Logger

	reloadHomeID int64
	reloader     zoneReloader
}

// NewRouter creates a router. The publisher may be nil in tests that
// never publish outbound.
func NewRouter(
	devices deviceStore,
	zones zoneStore,
	predictions predictionStore,
	events eventStore,
	bus *eventbus.Bus,
	pub publisher,
	logger *logging.Logger,
) *Router {
	return &Router{
		devices:     devices,
		zones:       zones,
		predictions: predictions,
		events:      events,
		bus:         bus,
		pub:         pub,
		logger:      logger.With("component", "ingest_router"),
	}
}

// SetZoneReloader registers a resolver to refresh with the given
// home's geometry whenever PublishZoneUpdate pushes new zones.
func (r *Router) SetZoneReloader(homeID int64, rel zoneReloader) {
	r.reloadHomeID = homeID
	r.reloader = rel
}

// handlePrediction processes home/{id}/prediction/pollution.
//
// Entries are zone-name to probability pairs, either nested under a
// "predictions" key or flat at the top level. An optional "device_id"
// attributes the rows; without one the home's oldest device is used.
// Unknown zone names are skipped; a home with no registered device
// drops the whole message.
func (r *Router) handlePrediction(homeID int64, topic string, payload []byte) error {
	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		r.logger.Warn("dropping malformed prediction payload", "topic", topic, "error", err)
		return nil
	}

	ctx := context.Background()

	dev, err := r.resolveDevice(ctx, homeID, body)
	if err != nil {
		r.logger.Warn("dropping prediction for home without devices",
			"home_id", homeID, "error", err)
		return nil
	}

	modelVersion := prediction.DefaultModelVersion
	if v, ok := body["model_version"].(string); ok && v != "" {
		modelVersion = v
	}

	entries := body
	if nested, ok := body["predictions"].(map[string]any); ok {
		entries = nested
	}

	now := time.Now().UTC()
	var created []prediction.Prediction
	for name, value := range entries {
		prob, ok := value.(float64)
		if !ok {
			continue
		}

		zn, err := r.zones.FindByName(ctx, homeID, name)
		if err != nil {
			r.logger.Debug("skipping prediction for unknown zone",
				"home_id", homeID, "zone", name)
			continue
		}

		p := prediction.Prediction{
			HomeID:         homeID,
			DeviceID:       dev.ID,
			ZoneID:         zn.ID,
			ZoneName:       zn.Name,
			Probability:    prob,
			ModelVersion:   modelVersion,
			PredictionTime: now,
		}
		if err := r.predictions.Create(ctx, &p); err != nil {
			r.logger.Error("failed to persist prediction",
				"home_id", homeID, "zone", name, "error", err)
			continue
		}
		created = append(created, p)
	}

	if len(created) > 0 {
		r.bus.Publish(eventbus.PredictionUpdated, prediction.Event{
			HomeID:      homeID,
			Predictions: created,
		})
	}

	return nil
}

// resolveDevice picks the device prediction rows are attributed to: a
// valid "device_id" in the payload wins, otherwise the home's oldest
// device.
func (r *Router) resolveDevice(ctx context.Context, homeID int64, body map[string]any) (*home.Device, error) {
	if raw, ok := body["device_id"].(float64); ok && raw > 0 {
		dev, err := r.devices.GetDevice(ctx, int64(raw))
		if err == nil && dev.HomeID == homeID {
			return dev, nil
		}
		r.logger.Debug("payload device not usable, falling back",
			"home_id", homeID, "device_id", int64(raw))
	}
	return r.devices.FirstDeviceForHome(ctx, homeID)
}

// cleaningResult is the payload of home/{id}/cleaning/result.
type cleaningResult struct {
	Zone            string  `json:"zone"`
	DurationSeconds float64 `json:"duration_seconds"`
	Timestamp       string  `json:"timestamp"`
}

// eventTime returns the reported completion time, or now when the
// field is absent or unparseable.
func (c cleaningResult) eventTime() time.Time {
	if c.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, c.Timestamp); err == nil {
			return ts.UTC()
		}
	}
	return time.Now().UTC()
}

// handleCleaningResult processes a finished cleaning run.
//
// A CLEANING_COMPLETED system event is always recorded. When the home
// has a device and the named zone resolves, the cleaned zone's
// probability is reset to zero with a follow-up prediction.
func (r *Router) handleCleaningResult(homeID int64, topic string, payload []byte) error {
	var body cleaningResult
	if err := json.Unmarshal(payload, &body); err != nil {
		r.logger.Warn("dropping malformed cleaning result", "topic", topic, "error", err)
		return nil
	}

	ctx := context.Background()

	var zn *zone.Zone
	if body.Zone != "" {
		var err error
		zn, err = r.zones.FindByName(ctx, homeID, body.Zone)
		if err != nil {
			r.logger.Debug("cleaning result names unknown zone",
				"home_id", homeID, "zone", body.Zone)
			zn = nil
		}
	}

	e := event.SensorEvent{
		HomeID:    homeID,
		Type:      event.TypeSystem,
		SubType:   event.SubTypeCleaningCompleted,
		EventTime: body.eventTime(),
		Payload:   mustJSON(map[string]any{"zone": body.Zone, "duration_seconds": body.DurationSeconds}),
	}
	if zn != nil {
		e.ZoneID = &zn.ID
	}
	if err := r.events.Create(ctx, &e); err != nil {
		return fmt.Errorf("persist cleaning event: %w", err)
	}

	r.bus.Publish(eventbus.SensorEventOccurred, e)

	if zn == nil {
		return nil
	}

	dev, err := r.devices.FirstDeviceForHome(ctx, homeID)
	if err != nil {
		r.logger.Debug("no device for post-cleaning reset", "home_id", homeID)
		return nil
	}

	reset := prediction.Prediction{
		HomeID:         homeID,
		DeviceID:       dev.ID,
		ZoneID:         zn.ID,
		ZoneName:       zn.Name,
		Probability:    0,
		ModelVersion:   prediction.DefaultModelVersion,
		PredictionTime: time.Now().UTC(),
	}
	if err := r.predictions.Create(ctx, &reset); err != nil {
		return fmt.Errorf("persist post-cleaning reset: %w", err)
	}

	r.bus.Publish(eventbus.PredictionUpdated, prediction.Event{
		HomeID:      homeID,
		Predictions: []prediction.Prediction{reset},
	})

	return nil
}

// handleCleaningStatus logs progress updates without persisting them.
func (r *Router) handleCleaningStatus(homeID int64, _ string, payload []byte) error {
	r.logger.Info("cleaning status", "home_id", homeID, "payload", string(payload))
	return nil
}

// handleEdgeStatus logs edge tracker heartbeats.
func (r *Router) handleEdgeStatus(deviceID int64, _ string, payload []byte) error {
	r.logger.Info("edge status", "device_id", deviceID, "payload", string(payload))
	return nil
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return b
}
