// Package prediction stores per-zone pollution probabilities produced
// by the inference pipeline and consumed by viewers.
package prediction
