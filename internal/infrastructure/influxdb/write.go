package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePosition writes a single position sample to the time-series bucket.
//
// The write is non-blocking; data is batched and sent asynchronously.
// The timestamp is the device's recording time, not the ingestion time.
//
// Parameters:
//   - deviceID: Device that produced the sample
//   - x, y, z: Local-frame coordinates in metres
//   - accuracy: Reported GPS/AR accuracy in metres (0 if unknown)
//   - recordedAt: When the device recorded the sample
func (c *Client) WritePosition(deviceID int64, x, y, z, accuracy float64, recordedAt time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"robot_position",
		map[string]string{
			"device_id": strconv.FormatInt(deviceID, 10),
		},
		map[string]interface{}{
			"x":        x,
			"y":        y,
			"z":        z,
			"accuracy": accuracy,
		},
		recordedAt,
	)

	c.writeAPI.WritePoint(point)
}

// WritePredictionMetric writes a zone pollution probability sample.
//
// Used for charting prediction history per zone without querying SQLite.
//
// Parameters:
//   - homeID: Home the prediction belongs to
//   - zoneID: Zone the probability applies to
//   - probability: Pollution probability in [0, 1]
func (c *Client) WritePredictionMetric(homeID, zoneID int64, probability float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"pollution_prediction",
		map[string]string{
			"home_id": strconv.FormatInt(homeID, 10),
			"zone_id": strconv.FormatInt(zoneID, 10),
		},
		map[string]interface{}{
			"probability": probability,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
