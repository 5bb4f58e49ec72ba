// Package logging provides structured logging for Locus Core.
//
// It wraps log/slog with configuration-driven level, format, and output
// selection, plus default service attributes. Components receive a child
// logger via With("component", ...) rather than constructing their own.
package logging
