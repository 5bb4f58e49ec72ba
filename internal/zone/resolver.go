package zone

import (
	"math"
	"sync"
)

// UnknownZone is the name reported when a position falls outside every
// polygon and no point-only zone centre is within the resolver's
// distance threshold.
const UnknownZone = "unknown"

// Resolver maps local-frame positions to zone names.
//
// Polygon zones (three or more boundary points) are decided by
// even-odd ray casting with boundary points counted as inside. Zones
// without a usable polygon (fewer than three points, a label with a
// centre marker) fall back to nearest-centre distance within
// maxDistance metres. A position inside no polygon and near no centre
// resolves to UnknownZone.
//
// Zones are evaluated in the order given, so overlapping polygons
// resolve deterministically to the earliest zone in the slice. The
// repository returns zones in creation order.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Resolver struct {
	mu          sync.RWMutex
	zones       []Zone
	maxDistance float64
}

// NewResolver creates a resolver over the given zones.
//
// maxDistance bounds the nearest-centre fallback for point-only zones;
// values at or below zero disable the fallback entirely.
func NewResolver(zones []Zone, maxDistance float64) *Resolver {
	return &Resolver{zones: zones, maxDistance: maxDistance}
}

// SetZones replaces the resolver's geometry. Called when a home's
// zones change so live ingestion tags against current zones without a
// restart.
func (r *Resolver) SetZones(zones []Zone) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zones = zones
}

// Resolve returns the polygon zone containing the position, or the
// nearest point-only zone within the distance threshold, or nil when
// the position is unknown. The boolean reports whether a zone was
// found.
func (r *Resolver) Resolve(x, z float64) (*Zone, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p := Point{X: x, Z: z}

	for i := range r.zones {
		if contains(r.zones[i].Points, p) {
			return &r.zones[i], true
		}
	}

	if r.maxDistance <= 0 {
		return nil, false
	}

	// Only zones without a polygon compete on centre distance; a
	// position outside a polygon is outside that zone, full stop.
	var nearest *Zone
	best := r.maxDistance
	for i := range r.zones {
		n := len(r.zones[i].Points)
		if n == 0 || n >= 3 {
			continue
		}
		c := r.zones[i].Centroid()
		d := math.Hypot(c.X-p.X, c.Z-p.Z)
		if d <= best {
			best = d
			nearest = &r.zones[i]
		}
	}

	return nearest, nearest != nil
}

// ResolveName is Resolve returning the zone name, with UnknownZone for
// positions that match nothing.
func (r *Resolver) ResolveName(x, z float64) string {
	if zn, ok := r.Resolve(x, z); ok {
		return zn.Name
	}
	return UnknownZone
}

// ByName returns the zone with the given name, if present.
func (r *Resolver) ByName(name string) (*Zone, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.zones {
		if r.zones[i].Name == name {
			return &r.zones[i], true
		}
	}
	return nil, false
}

// contains reports whether p is inside or on the boundary of the
// polygon. Degenerate polygons with fewer than three vertices contain
// nothing.
func contains(poly []Point, p Point) bool {
	if len(poly) < 3 {
		return false
	}
	if !inBounds(poly, p) {
		return false
	}

	inside := false
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		a, b := poly[i], poly[j]

		if onSegment(a, b, p) {
			return true
		}

		if (a.Z > p.Z) != (b.Z > p.Z) {
			xCross := (b.X-a.X)*(p.Z-a.Z)/(b.Z-a.Z) + a.X
			if p.X < xCross {
				inside = !inside
			}
		}
		j = i
	}

	return inside
}

// inBounds is a cheap bounding-box rejection ahead of the ray cast.
// The epsilon keeps boundary points from being rejected before
// onSegment gets to see them.
func inBounds(poly []Point, p Point) bool {
	const eps = 1e-9

	minX, maxX := poly[0].X, poly[0].X
	minZ, maxZ := poly[0].Z, poly[0].Z
	for _, v := range poly[1:] {
		minX = math.Min(minX, v.X)
		maxX = math.Max(maxX, v.X)
		minZ = math.Min(minZ, v.Z)
		maxZ = math.Max(maxZ, v.Z)
	}

	return p.X >= minX-eps && p.X <= maxX+eps &&
		p.Z >= minZ-eps && p.Z <= maxZ+eps
}

// onSegment reports whether p lies on the segment ab, within a small
// tolerance for float comparison.
func onSegment(a, b, p Point) bool {
	const eps = 1e-9

	cross := (b.X-a.X)*(p.Z-a.Z) - (b.Z-a.Z)*(p.X-a.X)
	if math.Abs(cross) > eps {
		return false
	}

	dot := (p.X-a.X)*(b.X-a.X) + (p.Z-a.Z)*(b.Z-a.Z)
	if dot < -eps {
		return false
	}

	lenSq := (b.X-a.X)*(b.X-a.X) + (b.Z-a.Z)*(b.Z-a.Z)
	return dot <= lenSq+eps
}
