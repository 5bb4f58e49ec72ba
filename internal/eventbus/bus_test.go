package eventbus

import (
	"testing"

	"github.com/locus-home/locus-core/internal/infrastructure/logging"
)

func TestPublishDeliversInRegistrationOrder(t *testing.T) {
	bus := New(logging.Default())

	var order []int
	bus.Subscribe(PositionUpdated, func(any) { order = append(order, 1) })
	bus.Subscribe(PositionUpdated, func(any) { order = append(order, 2) })
	bus.Subscribe(PositionUpdated, func(any) { order = append(order, 3) })

	bus.Publish(PositionUpdated, nil)

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("delivery order = %v, want [1 2 3]", order)
	}
}

func TestPublishIsSynchronous(t *testing.T) {
	bus := New(logging.Default())

	done := false
	bus.Subscribe(PredictionUpdated, func(any) { done = true })

	bus.Publish(PredictionUpdated, nil)

	if !done {
		t.Error("handler had not run when Publish returned")
	}
}

func TestPanickingHandlerDoesNotStarveOthers(t *testing.T) {
	bus := New(logging.Default())

	var reached bool
	bus.Subscribe(SensorEventOccurred, func(any) { panic("boom") })
	bus.Subscribe(SensorEventOccurred, func(any) { reached = true })

	bus.Publish(SensorEventOccurred, nil)

	if !reached {
		t.Error("handler after the panicking one never ran")
	}
}

func TestPublishWithNoSubscribers(t *testing.T) {
	bus := New(logging.Default())
	bus.Publish(PositionUpdated, "payload")
}

func TestKindsAreIsolated(t *testing.T) {
	bus := New(logging.Default())

	var got Kind
	bus.Subscribe(PositionUpdated, func(any) { got = PositionUpdated })
	bus.Subscribe(PredictionUpdated, func(any) { got = PredictionUpdated })

	bus.Publish(PredictionUpdated, nil)

	if got != PredictionUpdated {
		t.Errorf("wrong handler fired: %q", got)
	}
}
