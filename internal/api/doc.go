// Package api provides the HTTP REST API and WebSocket server for the
// Locus telemetry core.
//
// It exposes position ingestion, latest-location and prediction reads,
// and realtime fanout of bus events to websocket clients grouped into
// home-keyed rooms.
//
// The server follows the same lifecycle pattern as the infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
