// Package event records discrete sensor events per home: audio and
// vision detections, user actions, and system milestones such as a
// completed cleaning run.
package event
