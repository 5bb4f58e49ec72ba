package eventbus

import (
	"sync"

	"github.com/locus-home/locus-core/internal/infrastructure/logging"
)

// Kind identifies a category of domain event.
type Kind string

// Domain event kinds published on the bus.
const (
	// PositionUpdated fires for every accepted position sample.
	PositionUpdated Kind = "position.updated"

	// PredictionUpdated fires when a batch of pollution probabilities
	// has been persisted for a home.
	PredictionUpdated Kind = "prediction.updated"

	// SensorEventOccurred fires when a sensor event has been recorded.
	SensorEventOccurred Kind = "sensor_event.occurred"
)

// Handler receives a published event payload.
type Handler func(payload any)

// Bus is an in-process publish/subscribe bus.
//
// Publish is synchronous: handlers run on the publisher's goroutine in
// registration order, and Publish returns when the last handler does.
// A panicking handler is recovered and logged so it cannot take down
// the publisher or starve later handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
	logger   *logging.Logger
}

// New creates an empty bus.
func New(logger *logging.Logger) *Bus {
	return &Bus{
		handlers: make(map[Kind][]Handler),
		logger:   logger.With("component", "eventbus"),
	}
}

// Subscribe registers a handler for a kind. Handlers fire in the order
// they were registered.
func (b *Bus) Subscribe(kind Kind, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], h)
}

// Publish delivers the payload to every handler registered for kind.
func (b *Bus) Publish(kind Kind, payload any) {
	b.mu.RLock()
	handlers := b.handlers[kind]
	b.mu.RUnlock()

	for _, h := range handlers {
		b.invoke(kind, h, payload)
	}
}

func (b *Bus) invoke(kind Kind, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"kind", string(kind),
				"panic", r,
			)
		}
	}()
	h(payload)
}
