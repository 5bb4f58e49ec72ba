// Package mqtt provides MQTT client connectivity for Locus Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// MQTT is the inbound path for edge-device telemetry (pollution
// predictions, cleaning reports, device status) and the outbound path
// for zone definition updates:
//
//	Edge Devices → MQTT Broker → Locus Core → (SQLite, WebSocket viewers)
//
// Topic classification and message handling live in internal/ingest;
// this package only provides transport.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllPollutionPredictions(), 1,
//	    func(topic string, payload []byte) error {
//	        return router.Dispatch(topic, payload)
//	    })
package mqtt
