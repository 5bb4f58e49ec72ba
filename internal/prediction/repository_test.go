package prediction

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/locus-home/locus-core/internal/infrastructure/database"
	"github.com/locus-home/locus-core/internal/infrastructure/logging"
	_ "github.com/locus-home/locus-core/migrations"
)

// fixture creates a home with one device and two zones, returning
// (homeID, deviceID, kitchenZoneID, hallwayZoneID).
func fixture(t *testing.T) (*Repository, int64, int64, int64, int64) {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	exec := func(query string, args ...any) int64 {
		res, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			t.Fatalf("fixture exec: %v", err)
		}
		id, _ := res.LastInsertId()
		return id
	}

	homeID := exec(`INSERT INTO homes (name) VALUES ('Test Home')`)
	deviceID := exec(`INSERT INTO devices (home_id, name) VALUES (?, 'robot-1')`, homeID)
	kitchenID := exec(`INSERT INTO zones (home_id, name) VALUES (?, 'Kitchen')`, homeID)
	hallwayID := exec(`INSERT INTO zones (home_id, name) VALUES (?, 'Hallway')`, homeID)

	return NewRepository(db, logging.Default()), homeID, deviceID, kitchenID, hallwayID
}

func TestCreateFillsDefaults(t *testing.T) {
	repo, homeID, deviceID, kitchenID, _ := fixture(t)

	p := &Prediction{HomeID: homeID, DeviceID: deviceID, ZoneID: kitchenID, Probability: 0.8}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}

	if p.ID == 0 {
		t.Error("ID not assigned")
	}
	if p.ModelVersion != DefaultModelVersion {
		t.Errorf("model version = %q, want %q", p.ModelVersion, DefaultModelVersion)
	}
	if p.PredictionTime.IsZero() {
		t.Error("prediction time not defaulted")
	}
}

func TestCreateRejectsOutOfRangeProbability(t *testing.T) {
	repo, homeID, deviceID, kitchenID, _ := fixture(t)

	for _, prob := range []float64{-0.1, 1.1} {
		p := &Prediction{HomeID: homeID, DeviceID: deviceID, ZoneID: kitchenID, Probability: prob}
		if err := repo.Create(context.Background(), p); !errors.Is(err, ErrInvalidProbability) {
			t.Errorf("probability %v: got %v, want ErrInvalidProbability", prob, err)
		}
	}
}

func TestCurrentByHomeReturnsNewestPerZone(t *testing.T) {
	repo, homeID, deviceID, kitchenID, hallwayID := fixture(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	create := func(zoneID int64, prob float64, at time.Time) {
		t.Helper()
		p := &Prediction{
			HomeID: homeID, DeviceID: deviceID, ZoneID: zoneID,
			Probability: prob, PredictionTime: at,
		}
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	create(kitchenID, 0.3, base)
	create(kitchenID, 0.8, base.Add(time.Minute))
	create(hallwayID, 0.5, base)

	current, err := repo.CurrentByHome(ctx, homeID)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if len(current) != 2 {
		t.Fatalf("got %d predictions, want 2", len(current))
	}

	byZone := map[string]float64{}
	for _, p := range current {
		byZone[p.ZoneName] = p.Probability
	}
	if byZone["Kitchen"] != 0.8 {
		t.Errorf("Kitchen = %v, want 0.8 (newest)", byZone["Kitchen"])
	}
	if byZone["Hallway"] != 0.5 {
		t.Errorf("Hallway = %v, want 0.5", byZone["Hallway"])
	}
}

func TestCurrentByHomeEmpty(t *testing.T) {
	repo, homeID, _, _, _ := fixture(t)

	current, err := repo.CurrentByHome(context.Background(), homeID)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if len(current) != 0 {
		t.Errorf("got %d predictions, want 0", len(current))
	}
}
