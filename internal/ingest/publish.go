package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/locus-home/locus-core/internal/infrastructure/mqtt"
)

// PublishZoneUpdate pushes a home's full zone list, with boundary
// points, to home/{homeId}/zones/update at QoS 1.
//
// Edge devices cache this to resolve zones locally; it is published
// whenever zone geometry changes, not on the ingestion path.
func (r *Router) PublishZoneUpdate(ctx context.Context, homeID int64) error {
	if r.pub == nil {
		return fmt.Errorf("no publisher configured")
	}

	zones, err := r.zones.ListByHome(ctx, homeID)
	if err != nil {
		return fmt.Errorf("list zones for update: %w", err)
	}

	// Live ingestion tags positions against the same geometry the edge
	// devices are being told about.
	if r.reloader != nil && homeID == r.reloadHomeID {
		r.reloader.SetZones(zones)
	}

	payload, err := json.Marshal(map[string]any{
		"home_id":   homeID,
		"zones":     zones,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encode zone update: %w", err)
	}

	topic := mqtt.Topics{}.ZoneUpdate(homeID)
	if err := r.pub.Publish(topic, payload, 1, false); err != nil {
		return fmt.Errorf("publish zone update: %w", err)
	}

	r.logger.Info("published zone update", "home_id", homeID, "zones", len(zones))
	return nil
}
