// Package telemetry ingests, buffers, and persists position samples.
//
// Samples enter through HTTP or MQTT, are published to the event bus
// immediately, and are written to SQLite in batches to keep the
// single-writer database off the hot path. The batch size and flush
// interval are configurable; duplicates are dropped on the unique
// (device, recorded_at, source) key.
package telemetry
