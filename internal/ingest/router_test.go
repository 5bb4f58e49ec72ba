package ingest

import "testing"

func TestMatchTopic(t *testing.T) {
	tests := []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"home/+/prediction/pollution", "home/7/prediction/pollution", true},
		{"home/+/prediction/pollution", "home/7/prediction/dust", false},
		{"home/+/prediction/pollution", "home/7/prediction", false},
		{"home/+/cleaning/#", "home/7/cleaning/result", true},
		{"home/+/cleaning/#", "home/7/cleaning/status", true},
		{"home/+/cleaning/#", "home/7/cleaning", true},
		{"home/+/cleaning/#", "home/7/cleaning/result/partial", true},
		{"home/+/cleaning/#", "home/7/prediction/pollution", false},
		{"edge/+/status", "edge/42/status", true},
		{"edge/+/status", "edge/42/status/extra", false},
		{"edge/+/status", "home/42/status", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" vs "+tt.topic, func(t *testing.T) {
			if got := matchTopic(tt.pattern, tt.topic); got != tt.want {
				t.Errorf("matchTopic(%q, %q) = %v, want %v", tt.pattern, tt.topic, got, tt.want)
			}
		})
	}
}

func TestExtractID(t *testing.T) {
	tests := []struct {
		topic  string
		wantID int64
		wantOK bool
	}{
		{"home/7/prediction/pollution", 7, true},
		{"edge/42/status", 42, true},
		{"home/abc/prediction/pollution", 0, false},
		{"home/-3/prediction/pollution", 0, false},
		{"home/0/prediction/pollution", 0, false},
		{"home", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			id, ok := extractID(tt.topic)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("extractID(%q) = %d, %v; want %d, %v",
					tt.topic, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}
