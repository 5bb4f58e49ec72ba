package prediction

import "time"

// DefaultModelVersion labels rows produced when the publisher does not
// name its model.
const DefaultModelVersion = "gru-v1"

// Prediction is a pollution probability for one zone of a home at a
// point in time.
type Prediction struct {
	ID             int64     `json:"id"`
	HomeID         int64     `json:"home_id"`
	DeviceID       int64     `json:"device_id"`
	ZoneID         int64     `json:"zone_id"`
	ZoneName       string    `json:"zone_name,omitempty"`
	Probability    float64   `json:"probability"`
	ModelVersion   string    `json:"model_version"`
	PredictionTime time.Time `json:"prediction_time"`
}

// Event is the bus payload published after a batch of predictions is
// persisted for a home.
type Event struct {
	HomeID      int64        `json:"home_id"`
	Predictions []Prediction `json:"predictions"`
}
