package event

import "errors"

// ErrInvalidType is returned for events with an unknown type.
var ErrInvalidType = errors.New("invalid event type")
