package telemetry

import "time"

// Source identifies where a position sample came from.
type Source string

const (
	// SourceMobile is the phone AR app, reporting geodetic coordinates.
	SourceMobile Source = "MOBILE"

	// SourceEdge is an edge tracker, reporting local-frame positions.
	SourceEdge Source = "EDGE"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	return s == SourceMobile || s == SourceEdge
}

// Position is a single position sample in the local frame, either
// pending in the buffer or persisted in robot_locations.
type Position struct {
	ID         int64     `json:"id,omitempty"`
	DeviceID   int64     `json:"device_id"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Z          float64   `json:"z"`
	Accuracy   float64   `json:"accuracy"`
	Source     Source    `json:"source"`
	RecordedAt time.Time `json:"recorded_at"`
}

// PositionEvent is the payload published on the bus for every accepted
// sample. Zone carries the resolved semantic location at enqueue time.
type PositionEvent struct {
	Position Position `json:"position"`
	Zone     string   `json:"zone"`
}
