// Package ingest routes inbound MQTT telemetry to the domain stores.
//
// A fixed table of topic patterns classifies each message; handlers
// decode JSON payloads, persist through the repositories, and publish
// domain events on the bus. Malformed messages are logged and dropped
// so a noisy publisher cannot disturb the pipeline.
package ingest
