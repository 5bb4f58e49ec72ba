package event

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

func setupRepo(t *testing.T) (*Repository, int64) {
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

	res, err := db.ExecContext(ctx, `INSERT INTO homes (name) VALUES ('Test Home')`)
	if err != nil {
		t.Fatalf("insert home: %v", err)
	}
	homeID, _ := res.LastInsertId()

	return NewRepository(db, logging.Default()), homeID
}

func TestCreateAndListToday(t *testing.T) {
	repo, homeID := setupRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	recent := &SensorEvent{
		HomeID:    homeID,
		Type:      TypeSystem,
		SubType:   SubTypeCleaningCompleted,
		EventTime: now,
		Payload:   []byte(`{"duration_seconds": 1200}`),
	}
	if err := repo.Create(ctx, recent); err != nil {
		t.Fatalf("create recent: %v", err)
	}

	old := &SensorEvent{
		HomeID:    homeID,
		Type:      TypeAudio,
		EventTime: now.Add(-48 * time.Hour),
	}
	if err := repo.Create(ctx, old); err != nil {
		t.Fatalf("create old: %v", err)
	}

	events, err := repo.ListTodayByHome(ctx, homeID)
	if err != nil {
		t.Fatalf("list today: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 (two-day-old event excluded)", len(events))
	}
	if events[0].SubType != SubTypeCleaningCompleted {
		t.Errorf("sub_type = %q", events[0].SubType)
	}
	if string(events[0].Payload) != `{"duration_seconds": 1200}` {
		t.Errorf("payload = %s", events[0].Payload)
	}
}

func TestCreateDefaultsPayloadAndTime(t *testing.T) {
	repo, homeID := setupRepo(t)

	e := &SensorEvent{HomeID: homeID, Type: TypeVision}
	if err := repo.Create(context.Background(), e); err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.EventTime.IsZero() {
		t.Error("event time not defaulted")
	}

	events, err := repo.ListTodayByHome(context.Background(), homeID)
	if err != nil || len(events) != 1 {
		t.Fatalf("list: %v (%d events)", err, len(events))
	}
	if string(events[0].Payload) != "{}" {
		t.Errorf("payload = %s, want {}", events[0].Payload)
	}
	if events[0].SubType != "" {
		t.Errorf("sub_type = %q, want empty", events[0].SubType)
	}
}

func TestCreateRejectsUnknownType(t *testing.T) {
	repo, homeID := setupRepo(t)

	e := &SensorEvent{HomeID: homeID, Type: "TELEPATHY"}
	if err := repo.Create(context.Background(), e); !errors.Is(err, ErrInvalidType) {
		t.Errorf("got %v, want ErrInvalidType", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	repo, homeID := setupRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i, sub := range []string{"first", "second", "third"} {
		e := &SensorEvent{
			HomeID:    homeID,
			Type:      TypeSystem,
			SubType:   sub,
			EventTime: now.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("create %s: %v", sub, err)
		}
	}

	events, err := repo.ListSinceByHome(ctx, homeID, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events", len(events))
	}
	if events[0].SubType != "third" || events[2].SubType != "first" {
		t.Errorf("order: %q, %q, %q", events[0].SubType, events[1].SubType, events[2].SubType)
	}
}
