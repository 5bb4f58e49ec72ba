package zone

import "errors"

var (
	// ErrZoneNotFound is returned when a zone lookup matches nothing.
	ErrZoneNotFound = errors.New("zone not found")
)
