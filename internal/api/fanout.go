package api

import (
	"github.com/locus-home/locus-core/internal/event"
	"github.com/locus-home/locus-core/internal/eventbus"
	"github.com/locus-home/locus-core/internal/prediction"
	"github.com/locus-home/locus-core/internal/telemetry"
)

// Client-facing event names.
const (
	EventRobotPosition   = "robot_position"
	EventPollutionUpdate = "pollution_update"
	EventNewEvent        = "new_event"
)

// RegisterFanout wires bus events to websocket delivery.
//
// Predictions and sensor events are scoped to the owning home's room.
// Position updates go to every client: positions carry no home id on
// the wire, and a viewer tracking the robot always wants them.
func RegisterFanout(bus *eventbus.Bus, hub *Hub) {
	bus.Subscribe(eventbus.PositionUpdated, func(payload any) {
		ev, ok := payload.(telemetry.PositionEvent)
		if !ok {
			return
		}
		hub.EmitAll(EventRobotPosition, ev)
	})

	bus.Subscribe(eventbus.PredictionUpdated, func(payload any) {
		ev, ok := payload.(prediction.Event)
		if !ok {
			return
		}
		hub.EmitToRoom(ev.HomeID, EventPollutionUpdate, ev)
	})

	bus.Subscribe(eventbus.SensorEventOccurred, func(payload any) {
		ev, ok := payload.(event.SensorEvent)
		if !ok {
			return
		}
		hub.EmitToRoom(ev.HomeID, EventNewEvent, ev)
	})
}
