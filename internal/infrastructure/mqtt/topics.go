package mqtt

import "fmt"

// Topic prefixes for the Locus MQTT namespace.
//
// Edge devices publish under home/{homeId}/... and edge/{deviceId}/...;
// the core publishes zone definitions back to edge devices and its own
// liveness under locus/system.
const (
	// TopicPrefixHome is the base for per-home device traffic.
	TopicPrefixHome = "home"

	// TopicPrefixEdge is the base for per-device status traffic.
	TopicPrefixEdge = "edge"

	// TopicPrefixSystem is the base for core system topics.
	TopicPrefixSystem = "locus/system"
)

// Topics provides builders for Locus MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	topic := topics.ZoneUpdate(7)
//	// Returns: "home/7/zones/update"
type Topics struct{}

// PollutionPrediction returns the topic an edge device publishes
// inference results on.
//
// Example: home/7/prediction/pollution
func (Topics) PollutionPrediction(homeID int64) string {
	return fmt.Sprintf("%s/%d/prediction/pollution", TopicPrefixHome, homeID)
}

// CleaningResult returns the topic for cleaning completion reports.
//
// Example: home/7/cleaning/result
func (Topics) CleaningResult(homeID int64) string {
	return fmt.Sprintf("%s/%d/cleaning/result", TopicPrefixHome, homeID)
}

// CleaningStatus returns the topic for transient cleaning progress.
//
// Example: home/7/cleaning/status
func (Topics) CleaningStatus(homeID int64) string {
	return fmt.Sprintf("%s/%d/cleaning/status", TopicPrefixHome, homeID)
}

// ZoneUpdate returns the topic the core publishes zone definitions on
// when a home's zones change.
//
// Example: home/7/zones/update
func (Topics) ZoneUpdate(homeID int64) string {
	return fmt.Sprintf("%s/%d/zones/update", TopicPrefixHome, homeID)
}

// EdgeStatus returns the topic an edge device reports liveness on.
//
// Example: edge/42/status
func (Topics) EdgeStatus(deviceID int64) string {
	return fmt.Sprintf("%s/%d/status", TopicPrefixEdge, deviceID)
}

// SystemStatus returns the core's own status topic (online/offline/LWT).
//
// Example: locus/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllPollutionPredictions returns a pattern matching prediction results
// from every home.
//
// Pattern: home/+/prediction/pollution
func (Topics) AllPollutionPredictions() string {
	return fmt.Sprintf("%s/+/prediction/pollution", TopicPrefixHome)
}

// AllCleaning returns a pattern matching all cleaning traffic
// (results and status) from every home.
//
// Pattern: home/+/cleaning/#
func (Topics) AllCleaning() string {
	return fmt.Sprintf("%s/+/cleaning/#", TopicPrefixHome)
}

// AllEdgeStatus returns a pattern matching status from every edge device.
//
// Pattern: edge/+/status
func (Topics) AllEdgeStatus() string {
	return fmt.Sprintf("%s/+/status", TopicPrefixEdge)
}
