package geo

import (
	"math"
	"sync"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// earthRadiusMeters is the mean Earth radius used for local projections.
const earthRadiusMeters = 6371000.0

// Coordinate is a geodetic position reported by a mobile device.
type Coordinate struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
	Accuracy  float64
}

// Position is a point in the local Cartesian frame, metres from the
// reference point. X grows eastward, Z grows northward, Y is altitude.
type Position struct {
	X float64
	Y float64
	Z float64
}

// Transformer converts geodetic coordinates into the local frame shared
// with AR and edge devices, applying noise filtering along the way.
//
// The first coordinate seen becomes the reference point unless one was
// configured. All subsequent projections are relative to that origin.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Transformer struct {
	mu        sync.RWMutex
	reference *Coordinate

	filterX *KalmanFilter
	filterY *KalmanFilter
	filterZ *KalmanFilter
	smooth  *MovingAverage

	processNoise     float64
	measurementNoise float64
}

// NewTransformer creates a Transformer with the given filter tuning.
//
// Parameters:
//   - processNoise: Kalman process noise (how much real movement to expect)
//   - measurementNoise: Kalman base measurement noise (GPS jitter)
//   - smoothingWindow: Moving-average window size in samples
func NewTransformer(processNoise, measurementNoise float64, smoothingWindow int) *Transformer {
	return &Transformer{
		filterX:          NewKalmanFilter(processNoise, measurementNoise),
		filterY:          NewKalmanFilter(processNoise, measurementNoise),
		filterZ:          NewKalmanFilter(processNoise, measurementNoise),
		smooth:           NewMovingAverage(smoothingWindow),
		processNoise:     processNoise,
		measurementNoise: measurementNoise,
	}
}

// SetReferencePoint fixes the projection origin explicitly.
//
// Calling this resets the filters: positions produced against the old
// origin are not comparable to positions against the new one.
func (t *Transformer) SetReferencePoint(ref Coordinate) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.reference = &ref
	t.resetFiltersLocked()
}

// ReferencePoint returns the current origin, or false if none is set yet.
func (t *Transformer) ReferencePoint() (Coordinate, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.reference == nil {
		return Coordinate{}, false
	}
	return *t.reference, true
}

// Transform projects a geodetic coordinate into the local frame and
// runs it through the Kalman and smoothing filters.
//
// The first coordinate ever seen becomes the reference point and maps
// to the origin.
func (t *Transformer) Transform(coord Coordinate) Position {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.reference == nil {
		ref := coord
		t.reference = &ref
	}

	raw := project(*t.reference, coord)

	filtered := Position{
		X: t.filterX.Update(raw.X, coord.Accuracy),
		Y: t.filterY.Update(raw.Y, coord.Accuracy),
		Z: t.filterZ.Update(raw.Z, coord.Accuracy),
	}

	return t.smooth.Add(filtered)
}

// TransformRaw projects without filtering. Used for edge devices that
// already report local-frame positions with their own stabilisation.
func (t *Transformer) TransformRaw(coord Coordinate) (Position, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.reference == nil {
		return Position{}, false
	}
	return project(*t.reference, coord), true
}

// Untransform maps a local-frame position back to a geodetic
// coordinate. It is the inverse of the projection, so a projected
// coordinate round-trips within float tolerance. Returns false when no
// reference point is set.
func (t *Transformer) Untransform(pos Position) (Coordinate, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.reference == nil {
		return Coordinate{}, false
	}
	return unproject(*t.reference, pos), true
}

// ResetFilters clears all filter state while keeping the reference point.
//
// Call this when tracking resumes after a long gap so stale estimates
// do not drag the first new positions toward the old location.
func (t *Transformer) ResetFilters() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetFiltersLocked()
}

func (t *Transformer) resetFiltersLocked() {
	t.filterX = NewKalmanFilter(t.processNoise, t.measurementNoise)
	t.filterY = NewKalmanFilter(t.processNoise, t.measurementNoise)
	t.filterZ = NewKalmanFilter(t.processNoise, t.measurementNoise)
	t.smooth.Reset()
}

// project maps a coordinate into the local tangent plane at ref using
// an equirectangular approximation. Error is negligible at home scale
// (well under a millimetre across a 100 m property).
func project(ref, coord Coordinate) Position {
	refLL := s2.LatLngFromDegrees(ref.Latitude, ref.Longitude)
	ll := s2.LatLngFromDegrees(coord.Latitude, coord.Longitude)

	x := (ll.Lng.Radians() - refLL.Lng.Radians()) * earthRadiusMeters * cosMid(refLL, ll)
	z := (ll.Lat.Radians() - refLL.Lat.Radians()) * earthRadiusMeters
	y := coord.Altitude - ref.Altitude

	return Position{X: x, Y: y, Z: z}
}

// unproject is the exact inverse of project. Latitude falls straight
// out of Z; the recovered latitude then gives the same midpoint cosine
// the forward projection used for X.
func unproject(ref Coordinate, pos Position) Coordinate {
	refLL := s2.LatLngFromDegrees(ref.Latitude, ref.Longitude)

	latRad := refLL.Lat.Radians() + pos.Z/earthRadiusMeters
	ll := s2.LatLng{Lat: s1.Angle(latRad), Lng: refLL.Lng}
	lngRad := refLL.Lng.Radians() + pos.X/(earthRadiusMeters*cosMid(refLL, ll))

	return Coordinate{
		Latitude:  latRad * 180 / math.Pi,
		Longitude: lngRad * 180 / math.Pi,
		Altitude:  ref.Altitude + pos.Y,
	}
}

// cosMid returns the cosine of the midpoint latitude, which scales
// longitude differences to metres.
func cosMid(a, b s2.LatLng) float64 {
	mid := (a.Lat.Radians() + b.Lat.Radians()) / 2
	return cos(mid)
}

// Distance returns the great-circle distance in metres between two
// geodetic coordinates. Used to sanity-check incoming samples against
// the reference point.
func Distance(a, b Coordinate) float64 {
	la := s2.LatLngFromDegrees(a.Latitude, a.Longitude)
	lb := s2.LatLngFromDegrees(b.Latitude, b.Longitude)
	return la.Distance(lb).Radians() * earthRadiusMeters
}
