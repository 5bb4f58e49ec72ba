package geo

import (
	"math"
	"testing"
)

func TestFirstCoordinateBecomesReference(t *testing.T) {
	tr := NewTransformer(0.01, 1.0, 1)

	if _, ok := tr.ReferencePoint(); ok {
		t.Fatal("expected no reference point before first sample")
	}

	first := Coordinate{Latitude: 51.5074, Longitude: -0.1278, Altitude: 10}
	pos := tr.Transform(first)

	if math.Abs(pos.X) > 1e-9 || math.Abs(pos.Y) > 1e-9 || math.Abs(pos.Z) > 1e-9 {
		t.Errorf("first sample should map to origin, got %+v", pos)
	}

	ref, ok := tr.ReferencePoint()
	if !ok {
		t.Fatal("expected reference point after first sample")
	}
	if ref.Latitude != first.Latitude || ref.Longitude != first.Longitude {
		t.Errorf("reference = %+v, want %+v", ref, first)
	}
}

func TestProjectionDirections(t *testing.T) {
	tr := NewTransformer(0.01, 1.0, 1)
	ref := Coordinate{Latitude: 51.5074, Longitude: -0.1278}
	tr.SetReferencePoint(ref)

	// Roughly 11 metres north of the reference.
	north := Coordinate{Latitude: 51.5074 + 0.0001, Longitude: -0.1278}
	pos, ok := tr.TransformRaw(north)
	if !ok {
		t.Fatal("TransformRaw: no reference point")
	}
	if pos.Z < 10 || pos.Z > 12 {
		t.Errorf("north offset: Z = %.2f, want ~11.1", pos.Z)
	}
	if math.Abs(pos.X) > 0.01 {
		t.Errorf("north offset: X = %.4f, want ~0", pos.X)
	}

	// East of the reference, scaled by cos(lat).
	east := Coordinate{Latitude: 51.5074, Longitude: -0.1278 + 0.0001}
	pos, ok = tr.TransformRaw(east)
	if !ok {
		t.Fatal("TransformRaw: no reference point")
	}
	want := 0.0001 * math.Pi / 180 * earthRadiusMeters * math.Cos(51.5074*math.Pi/180)
	if math.Abs(pos.X-want) > 0.05 {
		t.Errorf("east offset: X = %.2f, want %.2f", pos.X, want)
	}
}

func TestUntransformRoundTrips(t *testing.T) {
	tr := NewTransformer(0.01, 1.0, 1)

	if _, ok := tr.Untransform(Position{X: 1}); ok {
		t.Fatal("Untransform should fail without a reference point")
	}

	ref := Coordinate{Latitude: 51.5074, Longitude: -0.1278, Altitude: 10}
	tr.SetReferencePoint(ref)

	coords := []Coordinate{
		{Latitude: 51.5074, Longitude: -0.1278, Altitude: 10},
		{Latitude: 51.5078, Longitude: -0.1271, Altitude: 12.5},
		{Latitude: 51.5069, Longitude: -0.1285, Altitude: 8},
	}
	for _, c := range coords {
		pos, ok := tr.TransformRaw(c)
		if !ok {
			t.Fatal("TransformRaw: no reference point")
		}
		got, ok := tr.Untransform(pos)
		if !ok {
			t.Fatal("Untransform: no reference point")
		}
		if math.Abs(got.Latitude-c.Latitude) > 1e-9 ||
			math.Abs(got.Longitude-c.Longitude) > 1e-9 ||
			math.Abs(got.Altitude-c.Altitude) > 1e-9 {
			t.Errorf("round trip %+v = %+v", c, got)
		}
	}
}

func TestDistance(t *testing.T) {
	a := Coordinate{Latitude: 51.5074, Longitude: -0.1278}
	b := Coordinate{Latitude: 51.5074 + 0.0001, Longitude: -0.1278}

	d := Distance(a, b)
	if d < 10 || d > 12 {
		t.Errorf("Distance = %.2f, want ~11.1", d)
	}

	if got := Distance(a, a); got > 1e-9 {
		t.Errorf("Distance to self = %v, want 0", got)
	}
}

func TestKalmanConvergesTowardMeasurements(t *testing.T) {
	k := NewKalmanFilter(0.01, 1.0)

	// First measurement initialises the estimate directly.
	if got := k.Update(0, 1); got != 0 {
		t.Fatalf("first update = %v, want 0", got)
	}

	// Repeated measurements at 10 should pull the estimate steadily up.
	prev := 0.0
	for i := 0; i < 50; i++ {
		est := k.Update(10, 1)
		if est < prev {
			t.Fatalf("estimate moved away from measurement at step %d: %v < %v", i, est, prev)
		}
		prev = est
	}
	if prev < 8 {
		t.Errorf("estimate after 50 steps = %.2f, want > 8", prev)
	}
}

func TestKalmanDistrustsInaccurateSamples(t *testing.T) {
	precise := NewKalmanFilter(0.01, 1.0)
	sloppy := NewKalmanFilter(0.01, 1.0)

	precise.Update(0, 1)
	sloppy.Update(0, 1)

	// Same outlier, different reported accuracy.
	a := precise.Update(10, 1)
	b := sloppy.Update(10, 20)

	if b >= a {
		t.Errorf("low-accuracy sample moved estimate more: precise=%.3f sloppy=%.3f", a, b)
	}
}

func TestMovingAverageWindow(t *testing.T) {
	m := NewMovingAverage(3)

	p := m.Add(Position{X: 3})
	if p.X != 3 {
		t.Errorf("single sample mean = %v, want 3", p.X)
	}

	p = m.Add(Position{X: 6})
	if math.Abs(p.X-4.5) > 1e-9 {
		t.Errorf("two sample mean = %v, want 4.5", p.X)
	}

	m.Add(Position{X: 9})
	// Fourth sample evicts the first.
	p = m.Add(Position{X: 12})
	if math.Abs(p.X-9) > 1e-9 {
		t.Errorf("rolling mean = %v, want 9", p.X)
	}
}

func TestResetFiltersKeepsReference(t *testing.T) {
	tr := NewTransformer(0.01, 1.0, 5)
	ref := Coordinate{Latitude: 51.5, Longitude: -0.12}
	tr.SetReferencePoint(ref)

	tr.Transform(Coordinate{Latitude: 51.5001, Longitude: -0.12})
	tr.ResetFilters()

	got, ok := tr.ReferencePoint()
	if !ok || got.Latitude != ref.Latitude {
		t.Errorf("reference lost after reset: %+v ok=%v", got, ok)
	}

	// After reset the next sample initialises the filters fresh, so the
	// raw projection comes straight through.
	raw, _ := tr.TransformRaw(Coordinate{Latitude: 51.5002, Longitude: -0.12})
	filtered := tr.Transform(Coordinate{Latitude: 51.5002, Longitude: -0.12})
	if math.Abs(filtered.Z-raw.Z) > 1e-9 {
		t.Errorf("first post-reset sample filtered = %v, raw = %v", filtered.Z, raw.Z)
	}
}
