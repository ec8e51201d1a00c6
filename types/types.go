// Package types defines the shared data model for sift sessions.
package types

import "time"

// Mode selects how decoded deltas are consumed.
type Mode string

const (
	// ModeArtifact routes deltas through the extraction engine: markers are
	// recognized, artifacts are collected, and the transcript stays clean.
	ModeArtifact Mode = "artifact"
	// ModePlain accumulates deltas verbatim into the transcript.
	ModePlain Mode = "plain"
)

// Outcome classifies how a session ended.
type Outcome string

const (
	// OutcomeCompleted means the stream ended on the [DONE] sentinel.
	OutcomeCompleted Outcome = "completed"
	// OutcomeEOF means the transport closed without a sentinel. Any partial
	// artifact is retained as-is.
	OutcomeEOF Outcome = "eof"
	// OutcomeFailed means the transport failed or the session was canceled.
	OutcomeFailed Outcome = "failed"
)

// SessionMeta identifies one streaming session. A new SessionMeta is minted
// per request; session state is never shared across turns.
type SessionMeta struct {
	SessionID string
	Mode      Mode
	StartedAt time.Time
}
