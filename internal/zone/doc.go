// Package zone maps local-frame positions to named home regions.
//
// Zones are floor polygons stored in SQLite. The Resolver decides
// containment by even-odd ray casting, counting boundary points as
// inside. Zones with fewer than three points are point-only labels,
// matched by nearest-centre distance within a configurable threshold
// before giving up with "unknown".
package zone
