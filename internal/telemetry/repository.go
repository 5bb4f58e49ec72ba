package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/locus-home/locus-core/internal/infrastructure/database"
	"github.com/locus-home/locus-core/internal/infrastructure/logging"
)

// Repository persists position samples in SQLite.
type Repository struct {
	db     *database.DB
	logger *logging.Logger
}

// NewRepository creates a telemetry repository.
func NewRepository(db *database.DB, logger *logging.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger.With("component", "telemetry_repository"),
	}
}

// CreateMany inserts a batch of positions in one transaction.
//
// Duplicates on (device_id, recorded_at, source) are silently skipped,
// so a retried flush after a partial failure cannot double-insert.
// Returns the number of rows actually written.
func (r *Repository) CreateMany(ctx context.Context, positions []Position) (int, error) {
	if len(positions) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO robot_locations
			(device_id, x, y, z, accuracy, source, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, p := range positions {
		res, err := stmt.ExecContext(ctx,
			p.DeviceID, p.X, p.Y, p.Z, p.Accuracy, string(p.Source),
			p.RecordedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return 0, fmt.Errorf("insert position: %w", err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit positions: %w", err)
	}

	return inserted, nil
}

// LatestFromStore returns the most recently recorded position, by
// recording time then insertion order.
func (r *Repository) LatestFromStore(ctx context.Context) (*Position, error) {
	var p Position
	var source string
	var recordedAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, device_id, x, y, z, accuracy, source, recorded_at
		FROM robot_locations
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1
	`).Scan(&p.ID, &p.DeviceID, &p.X, &p.Y, &p.Z, &p.Accuracy, &source, &recordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoPositions
	}
	if err != nil {
		return nil, fmt.Errorf("query latest position: %w", err)
	}

	p.Source = Source(source)
	p.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return nil, fmt.Errorf("parse recorded_at: %w", err)
	}
	return &p, nil
}

// CountForDevice returns the number of stored samples for a device.
func (r *Repository) CountForDevice(ctx context.Context, deviceID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM robot_locations WHERE device_id = ?`, deviceID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count positions: %w", err)
	}
	return n, nil
}
