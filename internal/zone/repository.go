package zone

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/locus-home/locus-core/internal/infrastructure/database"
	"github.com/locus-home/locus-core/internal/infrastructure/logging"
)

// Repository persists zones and their polygon vertices in SQLite.
type Repository struct {
	db     *database.DB
	logger *logging.Logger
}

// NewRepository creates a zone repository.
func NewRepository(db *database.DB, logger *logging.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger.With("component", "zone_repository"),
	}
}

// Create inserts a zone with its boundary points in a single
// transaction. Vertex order is preserved via order_index. Fewer than
// three points is a point-only label zone, resolved by centre distance
// rather than containment.
func (r *Repository) Create(ctx context.Context, z *Zone) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Truncate(time.Second)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO zones (home_id, name, created_at) VALUES (?, ?, ?)`,
		z.HomeID, z.Name, now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert zone: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("zone id: %w", err)
	}

	for i, p := range z.Points {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO zone_points (zone_id, order_index, x, z) VALUES (?, ?, ?, ?)`,
			id, i, p.X, p.Z,
		); err != nil {
			return fmt.Errorf("insert zone point %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit zone: %w", err)
	}

	z.ID = id
	z.CreatedAt = now
	return nil
}

// ListByHome returns all zones of a home in creation order, with
// their polygon vertices populated.
func (r *Repository) ListByHome(ctx context.Context, homeID int64) ([]Zone, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, home_id, name, created_at FROM zones WHERE home_id = ? ORDER BY id ASC`,
		homeID,
	)
	if err != nil {
		return nil, fmt.Errorf("query zones: %w", err)
	}
	defer rows.Close()

	var zones []Zone
	for rows.Next() {
		var z Zone
		var createdAt string
		if err := rows.Scan(&z.ID, &z.HomeID, &z.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan zone: %w", err)
		}
		z.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate zones: %w", err)
	}

	for i := range zones {
		points, err := r.loadPoints(ctx, zones[i].ID)
		if err != nil {
			return nil, err
		}
		zones[i].Points = points
	}

	return zones, nil
}

// FindByName returns the zone with the given name within a home.
func (r *Repository) FindByName(ctx context.Context, homeID int64, name string) (*Zone, error) {
	var z Zone
	var createdAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, home_id, name, created_at FROM zones WHERE home_id = ? AND name = ?`,
		homeID, name,
	).Scan(&z.ID, &z.HomeID, &z.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q in home %d", ErrZoneNotFound, name, homeID)
	}
	if err != nil {
		return nil, fmt.Errorf("query zone by name: %w", err)
	}
	z.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	points, err := r.loadPoints(ctx, z.ID)
	if err != nil {
		return nil, err
	}
	z.Points = points

	return &z, nil
}

func (r *Repository) loadPoints(ctx context.Context, zoneID int64) ([]Point, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT x, z FROM zone_points WHERE zone_id = ? ORDER BY order_index ASC`,
		zoneID,
	)
	if err != nil {
		return nil, fmt.Errorf("query zone points: %w", err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.X, &p.Z); err != nil {
			return nil, fmt.Errorf("scan zone point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate zone points: %w", err)
	}

	return points, nil
}
