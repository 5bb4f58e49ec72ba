package prediction

import (
	"context"
	"fmt"
	"time"

	"github.com/locus-home/locus-core/internal/infrastructure/database"
	"github.com/locus-home/locus-core/internal/infrastructure/logging"
)

// Repository persists pollution predictions in SQLite.
type Repository struct {
	db     *database.DB
	logger *logging.Logger
}

// NewRepository creates a prediction repository.
func NewRepository(db *database.DB, logger *logging.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger.With("component", "prediction_repository"),
	}
}

// Create inserts a prediction and fills in its generated ID.
func (r *Repository) Create(ctx context.Context, p *Prediction) error {
	if p.Probability < 0 || p.Probability > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidProbability, p.Probability)
	}
	if p.ModelVersion == "" {
		p.ModelVersion = DefaultModelVersion
	}
	if p.PredictionTime.IsZero() {
		p.PredictionTime = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO pollution_predictions
			(home_id, device_id, zone_id, probability, model_version, prediction_time)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		p.HomeID, p.DeviceID, p.ZoneID, p.Probability, p.ModelVersion,
		p.PredictionTime.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}

	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("prediction id: %w", err)
	}
	return nil
}

// CurrentByHome returns the most recent prediction per zone for a home,
// with zone names joined in.
func (r *Repository) CurrentByHome(ctx context.Context, homeID int64) ([]Prediction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.home_id, p.device_id, p.zone_id, z.name,
		       p.probability, p.model_version, p.prediction_time
		FROM pollution_predictions p
		JOIN zones z ON z.id = p.zone_id
		WHERE p.home_id = ?
		  AND p.id = (
			SELECT id FROM pollution_predictions
			WHERE zone_id = p.zone_id
			ORDER BY prediction_time DESC, id DESC
			LIMIT 1
		  )
		ORDER BY z.id ASC
	`, homeID)
	if err != nil {
		return nil, fmt.Errorf("query current predictions: %w", err)
	}
	defer rows.Close()

	var preds []Prediction
	for rows.Next() {
		var p Prediction
		var at string
		if err := rows.Scan(&p.ID, &p.HomeID, &p.DeviceID, &p.ZoneID, &p.ZoneName,
			&p.Probability, &p.ModelVersion, &at); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		p.PredictionTime, _ = time.Parse(time.RFC3339, at)
		preds = append(preds, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}

	return preds, nil
}
