// Package eventbus decouples telemetry ingestion from realtime fanout.
//
// Producers (the location buffer, MQTT handlers) publish typed events;
// consumers (the websocket hub, the time-series mirror) subscribe.
// Delivery is synchronous and in registration order.
package eventbus
