package telemetry

import "errors"

var (
	// ErrInvalidSource is returned for samples with an unknown source.
	ErrInvalidSource = errors.New("invalid position source")

	// ErrNoPositions is returned by Latest when nothing has been
	// buffered or persisted yet.
	ErrNoPositions = errors.New("no positions recorded")

	// ErrBufferClosed is returned when enqueueing after Stop.
	ErrBufferClosed = errors.New("buffer closed")
)
