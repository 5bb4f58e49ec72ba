package api

import (
	"encoding/json"
	"testing"

	"github.com/locus-home/locus-core/internal/event"
	"github.com/locus-home/locus-core/internal/eventbus"
	"github.com/locus-home/locus-core/internal/infrastructure/config"
	"github.com/locus-home/locus-core/internal/infrastructure/logging"
	"github.com/locus-home/locus-core/internal/prediction"
	"github.com/locus-home/locus-core/internal/telemetry"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	return NewHub(config.WebSocketConfig{MaxMessageSize: 4096, PingInterval: 30, PongTimeout: 60}, logging.Default())
}

// attachClient registers a bare client with a drainable send channel.
func attachClient(t *testing.T, hub *Hub, homeIDs ...int64) *WSClient {
	t.Helper()

	c := &WSClient{
		hub:   hub,
		send:  make(chan []byte, wsSendBufferSize),
		rooms: make(map[string]struct{}),
	}
	for _, id := range homeIDs {
		c.rooms[roomName(id)] = struct{}{}
	}
	hub.Register(c)
	return c
}

// drain reads all immediately-available messages from a client.
func drain(c *WSClient) []WSMessage {
	var msgs []WSMessage
	for {
		select {
		case data := <-c.send:
			var msg WSMessage
			if err := json.Unmarshal(data, &msg); err == nil {
				msgs = append(msgs, msg)
			}
		default:
			return msgs
		}
	}
}

func TestRoomScopedEventsOnlyReachTheirRoom(t *testing.T) {
	hub := newTestHub(t)
	bus := eventbus.New(logging.Default())
	RegisterFanout(bus, hub)

	viewer7 := attachClient(t, hub, 7)
	viewer9 := attachClient(t, hub, 9)
	lurker := attachClient(t, hub)

	bus.Publish(eventbus.PredictionUpdated, prediction.Event{
		HomeID:      7,
		Predictions: []prediction.Prediction{{ZoneName: "Kitchen", Probability: 0.8}},
	})
	bus.Publish(eventbus.SensorEventOccurred, event.SensorEvent{
		HomeID:  7,
		Type:    event.TypeSystem,
		SubType: event.SubTypeCleaningCompleted,
	})

	got7 := drain(viewer7)
	if len(got7) != 2 {
		t.Fatalf("home 7 viewer got %d messages, want 2", len(got7))
	}
	if got7[0].EventType != EventPollutionUpdate || got7[1].EventType != EventNewEvent {
		t.Errorf("events = %q, %q", got7[0].EventType, got7[1].EventType)
	}

	if got := drain(viewer9); len(got) != 0 {
		t.Errorf("home 9 viewer got %d messages for home 7", len(got))
	}
	if got := drain(lurker); len(got) != 0 {
		t.Errorf("roomless client got %d room-scoped messages", len(got))
	}
}

func TestPositionUpdatesReachEveryone(t *testing.T) {
	hub := newTestHub(t)
	bus := eventbus.New(logging.Default())
	RegisterFanout(bus, hub)

	viewer7 := attachClient(t, hub, 7)
	viewer9 := attachClient(t, hub, 9)
	lurker := attachClient(t, hub)

	bus.Publish(eventbus.PositionUpdated, telemetry.PositionEvent{
		Position: telemetry.Position{DeviceID: 1, X: 2, Z: 3, Source: telemetry.SourceEdge},
		Zone:     "Kitchen",
	})

	for name, c := range map[string]*WSClient{"viewer7": viewer7, "viewer9": viewer9, "lurker": lurker} {
		msgs := drain(c)
		if len(msgs) != 1 {
			t.Errorf("%s got %d messages, want 1", name, len(msgs))
			continue
		}
		if msgs[0].EventType != EventRobotPosition {
			t.Errorf("%s event = %q", name, msgs[0].EventType)
		}
	}
}

func TestJoinAndLeaveRoomMessages(t *testing.T) {
	hub := newTestHub(t)
	c := attachClient(t, hub)

	c.handleMessage([]byte(`{"type":"join_home","id":"1","payload":{"home_id":7}}`))

	if !c.inRoom(roomName(7)) {
		t.Fatal("client did not join home_7")
	}
	msgs := drain(c)
	if len(msgs) != 1 || msgs[0].Type != WSTypeResponse {
		t.Errorf("join response = %+v", msgs)
	}

	c.handleMessage([]byte(`{"type":"leave_home","id":"2","payload":{"home_id":7}}`))
	if c.inRoom(roomName(7)) {
		t.Error("client still in home_7 after leave")
	}

	// Bad payloads produce error responses, not room changes.
	c.handleMessage([]byte(`{"type":"join_home","payload":{"home_id":0}}`))
	c.handleMessage([]byte(`{"type":"teleport"}`))
	drain(c)
	if len(c.rooms) != 0 {
		t.Errorf("rooms = %v, want none", c.rooms)
	}
}

func TestSlowClientDoesNotBlockFanout(t *testing.T) {
	hub := newTestHub(t)

	// A client whose buffer is already full.
	slow := &WSClient{
		hub:   hub,
		send:  make(chan []byte),
		rooms: map[string]struct{}{roomName(7): {}},
	}
	hub.Register(slow)
	fast := attachClient(t, hub, 7)

	hub.EmitToRoom(7, EventPollutionUpdate, map[string]any{"zone": "Kitchen"})

	if got := drain(fast); len(got) != 1 {
		t.Errorf("fast client got %d messages, want 1", len(got))
	}
}
