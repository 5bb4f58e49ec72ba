package home

import "time"

// Home is a tracked property. Zones, devices, predictions, and events
// all hang off a home.
type Home struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Device is a position source belonging to a home: a robot, a phone
// running the AR app, or an edge tracker.
type Device struct {
	ID        int64     `json:"id"`
	HomeID    int64     `json:"home_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
