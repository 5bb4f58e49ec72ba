package event

import (
	"encoding/json"
	"time"
)

// Type categorises a sensor event by its origin.
type Type string

// Known event types, matching the sensor_events.event_type constraint.
const (
	TypeAudio      Type = "AUDIO"
	TypeVision     Type = "VISION"
	TypeSystem     Type = "SYSTEM"
	TypeUserAction Type = "USER_ACTION"
)

// Valid reports whether t is a known event type.
func (t Type) Valid() bool {
	switch t {
	case TypeAudio, TypeVision, TypeSystem, TypeUserAction:
		return true
	}
	return false
}

// SubTypeCleaningCompleted marks the system event recorded when a
// cleaning run finishes.
const SubTypeCleaningCompleted = "CLEANING_COMPLETED"

// SensorEvent is a discrete occurrence within a home: a sound
// detection, a vision hit, or a system milestone like a finished
// cleaning run.
type SensorEvent struct {
	ID        int64           `json:"id"`
	HomeID    int64           `json:"home_id"`
	Type      Type            `json:"event_type"`
	SubType   string          `json:"sub_type,omitempty"`
	EventTime time.Time       `json:"event_time"`
	ZoneID    *int64          `json:"zone_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}
