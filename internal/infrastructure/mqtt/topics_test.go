package mqtt

import "testing"

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"pollution prediction", topics.PollutionPrediction(7), "home/7/prediction/pollution"},
		{"cleaning result", topics.CleaningResult(7), "home/7/cleaning/result"},
		{"cleaning status", topics.CleaningStatus(7), "home/7/cleaning/status"},
		{"zone update", topics.ZoneUpdate(12), "home/12/zones/update"},
		{"edge status", topics.EdgeStatus(42), "edge/42/status"},
		{"system status", topics.SystemStatus(), "locus/system/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestWildcardPatterns(t *testing.T) {
	topics := Topics{}

	if got := topics.AllPollutionPredictions(); got != "home/+/prediction/pollution" {
		t.Errorf("AllPollutionPredictions: got %q", got)
	}
	if got := topics.AllCleaning(); got != "home/+/cleaning/#" {
		t.Errorf("AllCleaning: got %q", got)
	}
	if got := topics.AllEdgeStatus(); got != "edge/+/status" {
		t.Errorf("AllEdgeStatus: got %q", got)
	}
}
