package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/locus-home/locus-core/internal/eventbus"
	"github.com/locus-home/locus-core/internal/infrastructure/logging"
)

// store is the subset of Repository the buffer needs.
type store interface {
	CreateMany(ctx context.Context, positions []Position) (int, error)
}

// mirror receives a non-blocking copy of every accepted sample. The
// InfluxDB client satisfies this when the mirror is enabled.
type mirror interface {
	WritePosition(deviceID int64, x, y, z, accuracy float64, recordedAt time.Time)
}

// zoneResolver maps a position to a zone name for the bus payload.
type zoneResolver interface {
	ResolveName(x, z float64) string
}

// Buffer accumulates position samples and persists them in batches.
//
// A flush happens when the batch size is reached or the flush interval
// elapses, whichever comes first. The publish on enqueue is immediate:
// viewers see positions in realtime regardless of flush timing.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Buffer struct {
	batchSize     int
	flushInterval time.Duration

	store    store
	resolver zoneResolver
	bus      *eventbus.Bus
	mirror   mirror
	logger   *logging.Logger

	mu        sync.Mutex
	pending   []Position
	flushing  bool
	flushDone chan struct{}
	closed    bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBuffer creates a buffer. The mirror may be nil when the
// time-series mirror is disabled.
func NewBuffer(
	batchSize int,
	flushInterval time.Duration,
	st store,
	resolver zoneResolver,
	bus *eventbus.Bus,
	mir mirror,
	logger *logging.Logger,
) *Buffer {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Buffer{
		batchSize:     batchSize,
		flushInterval: flushInterval,
		store:         st,
		resolver:      resolver,
		bus:           bus,
		mirror:        mir,
		logger:        logger.With("component", "location_buffer"),
		pending:       make([]Position, 0, batchSize),
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start launches the periodic flush loop.
func (b *Buffer) Start() {
	go b.flushLoop()
}

// flushLoop flushes on a fixed ticker until Stop is called.
func (b *Buffer) flushLoop() {
	defer close(b.doneCh)

	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.Flush(context.Background())
		case <-b.stopCh:
			return
		}
	}
}

// Enqueue accepts a sample, publishes it on the bus, and flushes if
// the batch is full.
//
// The bus publish happens before any flush, so subscribers always see
// the sample that triggered the flush.
func (b *Buffer) Enqueue(ctx context.Context, p Position) error {
	if !p.Source.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSource, p.Source)
	}
	if p.RecordedAt.IsZero() {
		p.RecordedAt = time.Now().UTC()
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBufferClosed
	}
	b.pending = append(b.pending, p)
	size := len(b.pending)
	b.mu.Unlock()

	zone := b.resolver.ResolveName(p.X, p.Z)
	b.bus.Publish(eventbus.PositionUpdated, PositionEvent{Position: p, Zone: zone})

	if b.mirror != nil {
		b.mirror.WritePosition(p.DeviceID, p.X, p.Y, p.Z, p.Accuracy, p.RecordedAt)
	}

	if size >= b.batchSize {
		b.Flush(ctx)
	}

	return nil
}

// Flush persists all pending samples in one batch.
//
// Concurrent flushes collapse: while one flush is writing, other
// callers return immediately and the next tick picks up whatever
// accumulated in the meantime. A failed flush logs and drops the
// batch rather than blocking ingestion.
func (b *Buffer) Flush(ctx context.Context) {
	b.mu.Lock()
	if b.flushing || len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	b.flushing = true
	done := make(chan struct{})
	b.flushDone = done
	batch := b.pending
	b.pending = make([]Position, 0, b.batchSize)
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.flushing = false
		b.mu.Unlock()
		close(done)
	}()

	inserted, err := b.store.CreateMany(ctx, batch)
	if err != nil {
		b.logger.Error("flush failed, dropping batch",
			"count", len(batch),
			"error", err,
		)
		return
	}

	if skipped := len(batch) - inserted; skipped > 0 {
		b.logger.Debug("skipped duplicate positions", "count", skipped)
	}
}

// Latest returns the most recent sample, preferring the in-memory
// buffer over the store.
func (b *Buffer) Latest(ctx context.Context, fromStore func(context.Context) (*Position, error)) (*Position, error) {
	b.mu.Lock()
	if n := len(b.pending); n > 0 {
		p := b.pending[n-1]
		b.mu.Unlock()
		return &p, nil
	}
	b.mu.Unlock()

	return fromStore(ctx)
}

// Len returns the number of samples awaiting flush.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Stop halts the flush loop and performs a final flush so no buffered
// samples are lost on shutdown.
func (b *Buffer) Stop(ctx context.Context) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	close(b.stopCh)
	<-b.doneCh

	// An in-flight tick flush would make Flush a no-op; wait for its
	// completion signal so the final batch is not stranded.
	b.mu.Lock()
	wait := b.flushDone
	busy := b.flushing
	b.mu.Unlock()
	if busy {
		<-wait
	}

	b.Flush(ctx)
}
