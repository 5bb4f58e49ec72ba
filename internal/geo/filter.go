package geo

import "math"

// cos is aliased so the projection code reads cleanly.
var cos = math.Cos

// KalmanFilter is a one-dimensional Kalman filter for a single
// coordinate axis.
//
// The measurement noise is scaled by the reported GPS accuracy: a
// sample with 10 m accuracy is trusted far less than one with 1 m.
// Not safe for concurrent use; the Transformer serialises access.
type KalmanFilter struct {
	processNoise     float64
	measurementNoise float64

	estimate    float64
	covariance  float64
	initialized bool
}

// NewKalmanFilter creates a filter with the given noise parameters.
func NewKalmanFilter(processNoise, measurementNoise float64) *KalmanFilter {
	return &KalmanFilter{
		processNoise:     processNoise,
		measurementNoise: measurementNoise,
	}
}

// Update feeds a new measurement and returns the filtered estimate.
//
// accuracy is the reported measurement accuracy in metres; values
// at or below zero fall back to the base measurement noise.
func (k *KalmanFilter) Update(measurement, accuracy float64) float64 {
	if !k.initialized {
		k.estimate = measurement
		k.covariance = 1.0
		k.initialized = true
		return k.estimate
	}

	noise := k.measurementNoise
	if accuracy > 0 {
		noise *= accuracy
	}

	// Predict.
	k.covariance += k.processNoise

	// Update.
	gain := k.covariance / (k.covariance + noise)
	k.estimate += gain * (measurement - k.estimate)
	k.covariance *= 1 - gain

	return k.estimate
}

// Reset clears the filter state.
func (k *KalmanFilter) Reset() {
	k.estimate = 0
	k.covariance = 0
	k.initialized = false
}

// MovingAverage smooths positions over a fixed window of samples.
//
// Applied after the Kalman stage to take the last edge off the track.
// Not safe for concurrent use; the Transformer serialises access.
type MovingAverage struct {
	window  int
	samples []Position
	next    int
	count   int
}

// NewMovingAverage creates a smoother with the given window size.
// A window of one or less disables smoothing.
func NewMovingAverage(window int) *MovingAverage {
	if window < 1 {
		window = 1
	}
	return &MovingAverage{
		window:  window,
		samples: make([]Position, window),
	}
}

// Add appends a sample and returns the mean of the current window.
func (m *MovingAverage) Add(p Position) Position {
	m.samples[m.next] = p
	m.next = (m.next + 1) % m.window
	if m.count < m.window {
		m.count++
	}

	var sum Position
	for i := 0; i < m.count; i++ {
		sum.X += m.samples[i].X
		sum.Y += m.samples[i].Y
		sum.Z += m.samples[i].Z
	}

	n := float64(m.count)
	return Position{X: sum.X / n, Y: sum.Y / n, Z: sum.Z / n}
}

// Reset clears the window.
func (m *MovingAverage) Reset() {
	m.next = 0
	m.count = 0
}
