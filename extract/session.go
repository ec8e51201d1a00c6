package extract

import "strings"

// state is the extraction state machine state.
type state int

const (
	stateIdle state = iota
	stateCollecting
)

// Session holds the cross-delta mutable state for one streaming turn: the
// unclassified buffer and the collector for the in-flight artifact. It is
// created at stream start, passed by reference through every call, and
// discarded (or Reset) at stream end. Never shared across concurrent or
// sequential sessions: residual partial-match state from a prior turn would
// corrupt marker detection.
type Session struct {
	buffer     string
	state      state
	language   string
	artifactID string
	content    strings.Builder
}

// NewSession creates a fresh session in the Idle state.
func NewSession() *Session {
	return &Session{}
}

// Reset returns the session to its initial state. Used at the start of a
// new streaming turn so nothing leaks from the previous one.
func (s *Session) Reset() {
	s.buffer = ""
	s.state = stateIdle
	s.language = ""
	s.artifactID = ""
	s.content.Reset()
}

// Collecting reports whether an artifact is actively receiving content.
func (s *Session) Collecting() bool {
	return s.state == stateCollecting
}

// Buffer returns the text not yet classified as display or artifact content.
func (s *Session) Buffer() string {
	return s.buffer
}
