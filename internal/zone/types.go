package zone

import "time"

// Point is a vertex of a zone polygon in the local frame. Zones are
// floor regions, so only the horizontal plane matters.
type Point struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Zone is a named semantic region of a home, such as "Kitchen" or
// "Hallway", bounded by a polygon on the floor plane.
type Zone struct {
	ID        int64     `json:"id"`
	HomeID    int64     `json:"home_id"`
	Name      string    `json:"name"`
	Points    []Point   `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

// Centroid returns the arithmetic mean of the polygon vertices.
//
// Used by the nearest-zone fallback; for the convex-ish rooms zones
// describe, the vertex mean is close enough to the true centroid.
func (z *Zone) Centroid() Point {
	if len(z.Points) == 0 {
		return Point{}
	}

	var c Point
	for _, p := range z.Points {
		c.X += p.X
		c.Z += p.Z
	}
	n := float64(len(z.Points))
	return Point{X: c.X / n, Z: c.Z / n}
}
