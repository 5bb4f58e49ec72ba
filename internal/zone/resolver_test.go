package zone

import "testing"

// square returns a unit-scaled square polygon with corner at (x, z).
func square(x, z, size float64) []Point {
	return []Point{
		{X: x, Z: z},
		{X: x + size, Z: z},
		{X: x + size, Z: z + size},
		{X: x, Z: z + size},
	}
}

func testZones() []Zone {
	return []Zone{
		{ID: 1, HomeID: 1, Name: "Kitchen", Points: square(0, 0, 4)},
		{ID: 2, HomeID: 1, Name: "Hallway", Points: square(4, 0, 2)},
		{ID: 3, HomeID: 1, Name: "Lounge", Points: square(6, 0, 5)},
	}
}

func TestResolveInsidePolygon(t *testing.T) {
	r := NewResolver(testZones(), 5.0)

	tests := []struct {
		name string
		x, z float64
		want string
	}{
		{"kitchen centre", 2, 2, "Kitchen"},
		{"hallway centre", 5, 1, "Hallway"},
		{"lounge corner interior", 6.5, 4.5, "Lounge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.ResolveName(tt.x, tt.z); got != tt.want {
				t.Errorf("ResolveName(%v, %v) = %q, want %q", tt.x, tt.z, got, tt.want)
			}
		})
	}
}

func TestResolveBoundaryIsInside(t *testing.T) {
	r := NewResolver(testZones(), 5.0)

	// Vertex and edge midpoint of the kitchen square.
	if got := r.ResolveName(0, 0); got != "Kitchen" {
		t.Errorf("vertex: got %q, want Kitchen", got)
	}
	if got := r.ResolveName(2, 0); got != "Kitchen" {
		t.Errorf("edge midpoint: got %q, want Kitchen", got)
	}
}

func TestResolveSharedEdgeFirstZoneWins(t *testing.T) {
	r := NewResolver(testZones(), 5.0)

	// x=4 is the boundary between Kitchen and Hallway. Kitchen comes
	// first in creation order, so it wins.
	if got := r.ResolveName(4, 1); got != "Kitchen" {
		t.Errorf("shared edge: got %q, want Kitchen", got)
	}
}

func TestResolveNearestFallbackForPointOnlyZones(t *testing.T) {
	zones := append(testZones(),
		Zone{ID: 4, HomeID: 1, Name: "Dock", Points: []Point{{X: 5, Z: 8}}},
	)
	r := NewResolver(zones, 5.0)

	// Inside no polygon, 2 units from the Dock centre marker.
	if got := r.ResolveName(5, 10); got != "Dock" {
		t.Errorf("fallback: got %q, want Dock", got)
	}

	// Beyond the threshold even the nearest centre does not claim it.
	if got := r.ResolveName(5, 14); got != UnknownZone {
		t.Errorf("beyond threshold: got %q, want %q", got, UnknownZone)
	}
}

func TestResolvePolygonZonesGetNoFallback(t *testing.T) {
	zones := []Zone{
		{ID: 1, HomeID: 1, Name: "Kitchen", Points: square(0, 0, 1)},
	}
	r := NewResolver(zones, 5.0)

	// Outside the unit square and its bounding box, but the vertex
	// centroid is only 2.5 away. Polygon zones do not compete on
	// centre distance, so this is unknown.
	if got := r.ResolveName(3, 0.5); got != UnknownZone {
		t.Errorf("outside polygon: got %q, want %q", got, UnknownZone)
	}
}

func TestResolveFarPointIsUnknown(t *testing.T) {
	r := NewResolver(testZones(), 5.0)

	if got := r.ResolveName(100, 100); got != UnknownZone {
		t.Errorf("far point: got %q, want %q", got, UnknownZone)
	}

	if _, ok := r.Resolve(100, 100); ok {
		t.Error("far point: Resolve reported a zone")
	}
}

func TestResolveNoZones(t *testing.T) {
	r := NewResolver(nil, 5.0)

	if got := r.ResolveName(0, 0); got != UnknownZone {
		t.Errorf("no zones: got %q, want %q", got, UnknownZone)
	}
}

func TestResolveDegeneratePolygonIgnored(t *testing.T) {
	zones := []Zone{
		{ID: 1, Name: "Line", Points: []Point{{X: 0, Z: 0}, {X: 10, Z: 0}}},
	}
	r := NewResolver(zones, 0)

	// With the fallback disabled a two-point zone contains nothing.
	if _, ok := r.Resolve(5, 0); ok {
		t.Error("two-point polygon should contain nothing")
	}

	// With a threshold it behaves as a point-only zone at its centre.
	r = NewResolver(zones, 5.0)
	if got := r.ResolveName(5, 2); got != "Line" {
		t.Errorf("centre fallback: got %q, want Line", got)
	}
}

func TestSetZonesReplacesGeometry(t *testing.T) {
	r := NewResolver(testZones(), 5.0)

	if got := r.ResolveName(2, 2); got != "Kitchen" {
		t.Fatalf("before: got %q, want Kitchen", got)
	}

	r.SetZones([]Zone{
		{ID: 9, HomeID: 1, Name: "Studio", Points: square(0, 0, 4)},
	})

	if got := r.ResolveName(2, 2); got != "Studio" {
		t.Errorf("after: got %q, want Studio", got)
	}
	if _, ok := r.ByName("Kitchen"); ok {
		t.Error("old zones still resolvable after SetZones")
	}
}

func TestByName(t *testing.T) {
	r := NewResolver(testZones(), 5.0)

	z, ok := r.ByName("Hallway")
	if !ok || z.ID != 2 {
		t.Errorf("ByName(Hallway) = %+v, %v", z, ok)
	}

	if _, ok := r.ByName("Garage"); ok {
		t.Error("ByName(Garage) should miss")
	}
}
