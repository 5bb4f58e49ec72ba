package home

import "errors"

var (
	// ErrHomeNotFound is returned when a home lookup matches nothing.
	ErrHomeNotFound = errors.New("home not found")

	// ErrDeviceNotFound is returned when a device lookup matches nothing.
	ErrDeviceNotFound = errors.New("device not found")
)
