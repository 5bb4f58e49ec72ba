// Package influxdb provides an optional time-series mirror for telemetry.
//
// Position samples and prediction probabilities are written non-blocking
// into an InfluxDB v2 bucket for dashboards and historical charts. The
// mirror is strictly additive: SQLite remains the durable store, and a
// failed or disabled mirror never affects ingestion.
package influxdb
