package event

import (
	"context"
	"fmt"
	"time"

	"github.com/locus-home/locus-core/internal/infrastructure/database"
	"github.com/locus-home/locus-core/internal/infrastructure/logging"
)

// Repository persists sensor events in SQLite.
type Repository struct {
	db     *database.DB
	logger *logging.Logger
}

// NewRepository creates a sensor event repository.
func NewRepository(db *database.DB, logger *logging.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger.With("component", "event_repository"),
	}
}

// Create inserts a sensor event and fills in its generated ID.
func (r *Repository) Create(ctx context.Context, e *SensorEvent) error {
	if !e.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, e.Type)
	}
	if e.EventTime.IsZero() {
		e.EventTime = time.Now().UTC()
	}
	payload := e.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO sensor_events
			(home_id, event_type, sub_type, event_time, zone_id, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		e.HomeID, string(e.Type), nullIfEmpty(e.SubType),
		e.EventTime.UTC().Format(time.RFC3339), e.ZoneID, string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert sensor event: %w", err)
	}

	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sensor event id: %w", err)
	}
	return nil
}

// ListTodayByHome returns a home's events since UTC midnight, newest
// first.
func (r *Repository) ListTodayByHome(ctx context.Context, homeID int64) ([]SensorEvent, error) {
	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	return r.ListSinceByHome(ctx, homeID, midnight)
}

// ListSinceByHome returns a home's events at or after the given time,
// newest first.
func (r *Repository) ListSinceByHome(ctx context.Context, homeID int64, since time.Time) ([]SensorEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, home_id, event_type, sub_type, event_time, zone_id, payload
		FROM sensor_events
		WHERE home_id = ? AND event_time >= ?
		ORDER BY event_time DESC, id DESC
	`, homeID, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("query sensor events: %w", err)
	}
	defer rows.Close()

	var events []SensorEvent
	for rows.Next() {
		var e SensorEvent
		var eventType string
		var subType *string
		var at string
		var payload string
		if err := rows.Scan(&e.ID, &e.HomeID, &eventType, &subType, &at, &e.ZoneID, &payload); err != nil {
			return nil, fmt.Errorf("scan sensor event: %w", err)
		}
		e.Type = Type(eventType)
		if subType != nil {
			e.SubType = *subType
		}
		e.EventTime, _ = time.Parse(time.RFC3339, at)
		e.Payload = []byte(payload)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sensor events: %w", err)
	}

	return events, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
