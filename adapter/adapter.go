// Package adapter defines the event-bus boundary for session completion.
//
// Adapters publish session completion notifications to downstream systems
// (artifact indexers, notification fanout). The CLI owns adapter lifecycle;
// users provide configuration only.
package adapter

import "context"

// SessionCompletedEvent is the payload published when a session finishes.
type SessionCompletedEvent struct {
	EventType       string `json:"event_type"` // always "session_completed"
	SessionID       string `json:"session_id"`
	Mode            string `json:"mode"`
	Outcome         string `json:"outcome"` // completed, eof, failed
	ArtifactCount   int    `json:"artifact_count"`
	TranscriptBytes int64  `json:"transcript_bytes"`
	DurationMs      int64  `json:"duration_ms"`
	Timestamp       string `json:"timestamp"` // ISO 8601
}

// EventTypeSessionCompleted is the only event type published today.
const EventTypeSessionCompleted = "session_completed"

// Adapter publishes session completion events to a downstream system.
// Implementations must be safe for single-use per session.
type Adapter interface {
	// Publish sends a session completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *SessionCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}
