package ingest

import (
	"strconv"
	"strings"
)

// route binds a topic pattern to its handler.
type route struct {
	pattern string
	handler func(homeID int64, topic string, payload []byte) error
}

// routes returns the fixed routing table, checked in order.
func (r *Router) routes() []route {
	return []route{
		{"home/+/prediction/pollution", r.handlePrediction},
		{"home/+/cleaning/result", r.handleCleaningResult},
		{"home/+/cleaning/status", r.handleCleaningStatus},
		{"edge/+/status", r.handleEdgeStatus},
	}
}

// HandleMessage classifies an incoming MQTT message and dispatches it.
//
// Unroutable topics and malformed home ids are logged and dropped; a
// bad message never propagates an error back to the MQTT client.
func (r *Router) HandleMessage(topic string, payload []byte) error {
	for _, rt := range r.routes() {
		if !matchTopic(rt.pattern, topic) {
			continue
		}

		id, ok := extractID(topic)
		if !ok {
			r.logger.Warn("dropping message with malformed id segment", "topic", topic)
			return nil
		}

		if err := rt.handler(id, topic, payload); err != nil {
			r.logger.Error("handler failed", "topic", topic, "error", err)
		}
		return nil
	}

	r.logger.Debug("no route for topic", "topic", topic)
	return nil
}

// matchTopic reports whether an MQTT topic matches a pattern using the
// broker's wildcard rules: + matches exactly one segment, # matches
// all remaining segments and must be last.
func matchTopic(pattern, topic string) bool {
	pp := strings.Split(pattern, "/")
	tp := strings.Split(topic, "/")

	for i, seg := range pp {
		if seg == "#" {
			return i == len(pp)-1 && len(tp) >= i
		}
		if i >= len(tp) {
			return false
		}
		if seg != "+" && seg != tp[i] {
			return false
		}
	}

	return len(tp) == len(pp)
}

// extractID parses the id from the second path segment, shared by the
// home/{id}/... and edge/{id}/... layouts.
func extractID(topic string) (int64, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 {
		return 0, false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
