// Package geo converts geodetic GPS coordinates into the local Cartesian
// frame shared by AR and edge devices.
//
// The pipeline is: equirectangular projection against a reference point,
// per-axis Kalman filtering scaled by reported GPS accuracy, then a short
// moving-average smoothing window. The first coordinate seen becomes the
// reference point when none is configured.
package geo
