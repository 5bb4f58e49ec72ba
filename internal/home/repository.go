package home

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/locus-home/locus-core/internal/infrastructure/database"
	"github.com/locus-home/locus-core/internal/infrastructure/logging"
)

// Repository persists homes and devices in SQLite.
type Repository struct {
	db     *database.DB
	logger *logging.Logger
}

// NewRepository creates a home repository.
func NewRepository(db *database.DB, logger *logging.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger.With("component", "home_repository"),
	}
}

// CreateHome inserts a home and fills in its generated ID.
func (r *Repository) CreateHome(ctx context.Context, h *Home) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO homes (name, created_at) VALUES (?, ?)`,
		h.Name, now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert home: %w", err)
	}

	h.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("home id: %w", err)
	}
	h.CreatedAt = now
	return nil
}

// GetHome returns the home with the given ID.
func (r *Repository) GetHome(ctx context.Context, id int64) (*Home, error) {
	var h Home
	var createdAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM homes WHERE id = ?`, id,
	).Scan(&h.ID, &h.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrHomeNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query home: %w", err)
	}
	h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &h, nil
}

// CreateDevice inserts a device and fills in its generated ID.
func (r *Repository) CreateDevice(ctx context.Context, d *Device) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO devices (home_id, name, created_at) VALUES (?, ?, ?)`,
		d.HomeID, d.Name, now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert device: %w", err)
	}

	d.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("device id: %w", err)
	}
	d.CreatedAt = now
	return nil
}

// GetDevice returns the device with the given ID.
func (r *Repository) GetDevice(ctx context.Context, id int64) (*Device, error) {
	var d Device
	var createdAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, home_id, name, created_at FROM devices WHERE id = ?`, id,
	).Scan(&d.ID, &d.HomeID, &d.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrDeviceNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query device: %w", err)
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &d, nil
}

// FirstDeviceForHome returns the oldest device registered to a home.
//
// Prediction messages carry only a home ID; the probability rows they
// produce are attributed to the home's first device.
func (r *Repository) FirstDeviceForHome(ctx context.Context, homeID int64) (*Device, error) {
	var d Device
	var createdAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, home_id, name, created_at FROM devices WHERE home_id = ? ORDER BY id ASC LIMIT 1`,
		homeID,
	).Scan(&d.ID, &d.HomeID, &d.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: home %d has no devices", ErrDeviceNotFound, homeID)
	}
	if err != nil {
		return nil, fmt.Errorf("query first device: %w", err)
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &d, nil
}
