package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/locus-home/locus-core/internal/eventbus"
	"github.com/locus-home/locus-core/internal/infrastructure/logging"
)

// fakeStore records batches handed to CreateMany.
type fakeStore struct {
	mu      sync.Mutex
	batches [][]Position
	err     error
}

func (s *fakeStore) CreateMany(_ context.Context, positions []Position) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	batch := make([]Position, len(positions))
	copy(batch, positions)
	s.batches = append(s.batches, batch)
	return len(positions), nil
}

func (s *fakeStore) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

type staticResolver struct{ name string }

func (r staticResolver) ResolveName(x, z float64) string { return r.name }

func newTestBuffer(t *testing.T, batchSize int, st *fakeStore) (*Buffer, *eventbus.Bus) {
	t.Helper()
	bus := eventbus.New(logging.Default())
	b := NewBuffer(batchSize, time.Hour, st, staticResolver{name: "Kitchen"}, bus, nil, logging.Default())
	return b, bus
}

func sample(deviceID int64, seq int) Position {
	return Position{
		DeviceID:   deviceID,
		X:          float64(seq),
		Z:          float64(seq),
		Source:     SourceMobile,
		RecordedAt: time.Date(2026, 1, 15, 10, 0, 0, seq, time.UTC),
	}
}

func TestEnqueueBelowBatchSizeDoesNotFlush(t *testing.T) {
	st := &fakeStore{}
	b, _ := newTestBuffer(t, 50, st)
	ctx := context.Background()

	for i := 0; i < 49; i++ {
		if err := b.Enqueue(ctx, sample(1, i)); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	if got := st.total(); got != 0 {
		t.Errorf("store received %d positions before batch was full", got)
	}
	if got := b.Len(); got != 49 {
		t.Errorf("pending = %d, want 49", got)
	}
}

func TestEnqueueAtBatchSizeFlushes(t *testing.T) {
	st := &fakeStore{}
	b, _ := newTestBuffer(t, 50, st)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		if err := b.Enqueue(ctx, sample(1, i)); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	if got := st.total(); got != 50 {
		t.Errorf("store received %d positions, want 50", got)
	}
	if got := b.Len(); got != 0 {
		t.Errorf("pending = %d after flush, want 0", got)
	}
}

func TestEnqueuePublishesImmediately(t *testing.T) {
	st := &fakeStore{}
	b, bus := newTestBuffer(t, 50, st)

	var events []PositionEvent
	bus.Subscribe(eventbus.PositionUpdated, func(payload any) {
		events = append(events, payload.(PositionEvent))
	})

	if err := b.Enqueue(context.Background(), sample(1, 0)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Zone != "Kitchen" {
		t.Errorf("zone = %q, want Kitchen", events[0].Zone)
	}
	if st.total() != 0 {
		t.Error("publish must not wait for a flush")
	}
}

func TestEnqueueRejectsInvalidSource(t *testing.T) {
	st := &fakeStore{}
	b, _ := newTestBuffer(t, 50, st)

	err := b.Enqueue(context.Background(), Position{DeviceID: 1, Source: "SATELLITE"})
	if !errors.Is(err, ErrInvalidSource) {
		t.Errorf("got %v, want ErrInvalidSource", err)
	}
}

func TestFlushFailureDropsBatchAndContinues(t *testing.T) {
	st := &fakeStore{err: errors.New("disk full")}
	b, _ := newTestBuffer(t, 2, st)
	ctx := context.Background()

	_ = b.Enqueue(ctx, sample(1, 0))
	_ = b.Enqueue(ctx, sample(1, 1))

	if got := b.Len(); got != 0 {
		t.Errorf("failed batch still pending: %d", got)
	}

	// Ingestion keeps working after the failure.
	st.mu.Lock()
	st.err = nil
	st.mu.Unlock()

	_ = b.Enqueue(ctx, sample(1, 2))
	_ = b.Enqueue(ctx, sample(1, 3))
	if got := st.total(); got != 2 {
		t.Errorf("store received %d positions after recovery, want 2", got)
	}
}

func TestLatestPrefersBuffer(t *testing.T) {
	st := &fakeStore{}
	b, _ := newTestBuffer(t, 50, st)
	ctx := context.Background()

	stored := sample(1, 100)
	fromStore := func(context.Context) (*Position, error) { return &stored, nil }

	// Empty buffer falls through to the store.
	got, err := b.Latest(ctx, fromStore)
	if err != nil || got.X != stored.X {
		t.Fatalf("Latest from store = %+v, %v", got, err)
	}

	_ = b.Enqueue(ctx, sample(1, 5))
	_ = b.Enqueue(ctx, sample(1, 7))

	got, err = b.Latest(ctx, fromStore)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.X != 7 {
		t.Errorf("Latest.X = %v, want 7 (newest buffered)", got.X)
	}
}

func TestTickerFlush(t *testing.T) {
	st := &fakeStore{}
	bus := eventbus.New(logging.Default())
	b := NewBuffer(50, 20*time.Millisecond, st, staticResolver{"Kitchen"}, bus, nil, logging.Default())
	b.Start()
	defer b.Stop(context.Background())

	_ = b.Enqueue(context.Background(), sample(1, 0))

	deadline := time.After(2 * time.Second)
	for st.total() == 0 {
		select {
		case <-deadline:
			t.Fatal("ticker flush never happened")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestStopFlushesAndRejectsFurtherEnqueues(t *testing.T) {
	st := &fakeStore{}
	bus := eventbus.New(logging.Default())
	b := NewBuffer(50, time.Hour, st, staticResolver{"Kitchen"}, bus, nil, logging.Default())
	b.Start()

	ctx := context.Background()
	_ = b.Enqueue(ctx, sample(1, 0))
	_ = b.Enqueue(ctx, sample(1, 1))

	b.Stop(ctx)

	if got := st.total(); got != 2 {
		t.Errorf("final flush wrote %d positions, want 2", got)
	}

	err := b.Enqueue(ctx, sample(1, 2))
	if !errors.Is(err, ErrBufferClosed) {
		t.Errorf("got %v, want ErrBufferClosed", err)
	}
}

// gatedStore blocks CreateMany until released, to hold a flush in
// flight.
type gatedStore struct {
	fakeStore
	entered chan struct{}
	release chan struct{}
}

func (s *gatedStore) CreateMany(ctx context.Context, positions []Position) (int, error) {
	select {
	case s.entered <- struct{}{}:
	default:
	}
	<-s.release
	return s.fakeStore.CreateMany(ctx, positions)
}

func TestStopWaitsForInFlightFlush(t *testing.T) {
	st := &gatedStore{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	bus := eventbus.New(logging.Default())
	b := NewBuffer(2, time.Hour, st, staticResolver{"Kitchen"}, bus, nil, logging.Default())
	b.Start()

	ctx := context.Background()
	_ = b.Enqueue(ctx, sample(1, 0))
	go func() { _ = b.Enqueue(ctx, sample(1, 1)) }()
	<-st.entered

	// Lands while the first batch is still being written; only the
	// final flush can pick it up.
	_ = b.Enqueue(ctx, sample(1, 2))

	stopped := make(chan struct{})
	go func() {
		b.Stop(ctx)
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a flush was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(st.release)
	<-stopped

	if got := st.total(); got != 3 {
		t.Errorf("persisted %d positions, want 3", got)
	}
}

func TestConcurrentEnqueue(t *testing.T) {
	st := &fakeStore{}
	b, _ := newTestBuffer(t, 10, st)
	ctx := context.Background()

	var wg sync.WaitGroup
	for d := int64(1); d <= 4; d++ {
		wg.Add(1)
		go func(deviceID int64) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_ = b.Enqueue(ctx, sample(deviceID, i))
			}
		}(d)
	}
	wg.Wait()

	b.Flush(ctx)

	if got := st.total() + b.Len(); got != 100 {
		t.Errorf("flushed+pending = %d, want 100", got)
	}
}
