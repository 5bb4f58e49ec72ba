package prediction

import "errors"

// ErrInvalidProbability is returned for probabilities outside [0, 1].
var ErrInvalidProbability = errors.New("probability out of range")
