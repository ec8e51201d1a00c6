// Package extract implements the incremental artifact-extraction state
// machine.
//
// The engine consumes ordered text deltas, recognizes the delimiter grammar
// even when markers are split arbitrarily across deltas, and produces a
// marker-free display stream plus artifact mutations against the store. Two
// states exist: Idle (text flows to display) and Collecting (text flows to
// the in-flight artifact). Marker absence is normal control flow, never an
// error.
package extract

import (
	"strings"

	"github.com/calder-io/sift/artifact"
	"github.com/calder-io/sift/log"
	"github.com/calder-io/sift/marker"
	"github.com/calder-io/sift/metrics"
	"github.com/calder-io/sift/types"
)

// Result is the outcome of processing one delta.
type Result struct {
	// RemainingBuffer is text held back because it may still complete a
	// marker in a future delta.
	RemainingBuffer string
	// DisplayUpdate is new marker-free display text, empty when none.
	DisplayUpdate string
	// ArtifactMutation reports whether the collection changed this cycle.
	ArtifactMutation bool
	// CollectionStarted reports whether a start marker completed this cycle.
	CollectionStarted bool
}

// Engine drives the extraction state machine for one session. It is owned
// by a single stream-processing task; only the artifact store behind it is
// safe for concurrent readers.
type Engine struct {
	store     *artifact.Store
	session   *Session
	logger    *log.Logger
	collector *metrics.Collector

	onCollectionStarted func(types.Artifact)
}

// NewEngine creates an engine with a fresh session. logger and collector
// may be nil-equivalent (log.Nop(), nil).
func NewEngine(store *artifact.Store, logger *log.Logger, collector *metrics.Collector) *Engine {
	if logger == nil {
		logger = log.Nop()
	}
	return &Engine{
		store:     store,
		session:   NewSession(),
		logger:    logger,
		collector: collector,
	}
}

// OnCollectionStarted registers a hook fired exactly once per artifact, on
// the Idle -> Collecting transition, with the freshly created artifact.
func (e *Engine) OnCollectionStarted(fn func(types.Artifact)) {
	e.onCollectionStarted = fn
}

// Store exposes the artifact store for read access.
func (e *Engine) Store() *artifact.Store {
	return e.store
}

// Session exposes the session for state inspection.
func (e *Engine) Session() *Session {
	return e.session
}

// Placeholder is the display substitution for an elided start marker.
func Placeholder(language string) string {
	return "[Code: " + language + "]"
}

// ProcessDelta feeds one delta through the state machine. Remainders after
// a completed marker are reprocessed within the same call, so a single
// delta may cross several state transitions.
func (e *Engine) ProcessDelta(delta string) Result {
	s := e.session
	s.buffer += delta

	var res Result
	var display strings.Builder

	for {
		if s.state == stateIdle {
			if !e.stepIdle(&res, &display) {
				break
			}
		} else {
			if !e.stepCollecting(&res) {
				break
			}
		}
	}

	res.RemainingBuffer = s.buffer
	res.DisplayUpdate = display.String()
	e.collector.AddDisplayBytes(len(res.DisplayUpdate))
	return res
}

// stepIdle handles one Idle-state pass over the buffer. Returns true when
// the remainder must be reprocessed in the same cycle.
func (e *Engine) stepIdle(res *Result, display *strings.Builder) bool {
	s := e.session

	if m, ok := marker.FindStartMarker(s.buffer); ok {
		// Complete start marker: flush the text before it, substitute the
		// placeholder, open a fresh artifact, and reprocess the remainder
		// in Collecting state.
		display.WriteString(s.buffer[:m.Start])
		display.WriteString(Placeholder(m.Language))

		a := types.NewArtifact(m.Language)
		e.store.Add(a)
		e.store.Select(a.ID)

		s.state = stateCollecting
		s.language = m.Language
		s.artifactID = a.ID
		s.content.Reset()
		s.buffer = s.buffer[m.CloseBracket+1:]

		res.ArtifactMutation = true
		res.CollectionStarted = true
		e.collector.IncArtifactsStarted()
		e.logger.Debug("collection started", map[string]any{
			"artifact_id": a.ID,
			"language":    m.Language,
		})
		if e.onCollectionStarted != nil {
			e.onCollectionStarted(a)
		}
		return true
	}

	if marker.HasStartTrace(s.buffer) {
		// The buffer's suffix could still complete a start marker: hold the
		// whole buffer, flush nothing.
		return false
	}

	// No marker trace: the buffer is plain display text.
	display.WriteString(s.buffer)
	s.buffer = ""
	return false
}

// stepCollecting handles one Collecting-state pass over the buffer. Returns
// true when a trailing remainder must be reprocessed as Idle in the same
// cycle.
func (e *Engine) stepCollecting(res *Result) bool {
	s := e.session

	if idx := strings.Index(s.buffer, marker.End); idx >= 0 {
		// Complete end marker: the artifact is done. The marker itself is
		// discarded and the trailing remainder goes back through Idle.
		s.content.WriteString(s.buffer[:idx])
		e.store.UpdateContent(s.artifactID, s.content.String())
		res.ArtifactMutation = true
		e.collector.IncArtifactsCompleted()
		e.logger.Debug("collection completed", map[string]any{
			"artifact_id":   s.artifactID,
			"content_bytes": s.content.Len(),
		})

		s.buffer = s.buffer[idx+len(marker.End):]
		s.state = stateIdle
		s.language = ""
		s.artifactID = ""
		s.content.Reset()
		return true
	}

	if n := marker.PartialMatchLength(s.buffer, marker.End); n > 0 {
		// The buffer's suffix could still complete the end marker. Append
		// only the unambiguous prefix; retain the partial match.
		safe := s.buffer[:len(s.buffer)-n]
		if safe != "" {
			s.content.WriteString(safe)
			e.store.UpdateContent(s.artifactID, s.content.String())
			res.ArtifactMutation = true
		}
		s.buffer = s.buffer[len(s.buffer)-n:]
		return false
	}

	// No end-marker trace: everything is artifact content. A second start
	// marker in here is appended literally; nested artifacts are not
	// supported.
	if s.buffer != "" {
		s.content.WriteString(s.buffer)
		e.store.UpdateContent(s.artifactID, s.content.String())
		res.ArtifactMutation = true
		s.buffer = ""
	}
	return false
}

// Finish flushes text still held for a possible marker completion. Called
// once at transport end, after which no marker can complete: an Idle hold
// becomes display text, a Collecting hold becomes artifact content, and a
// partially-collected artifact stays in the collection as-is.
func (e *Engine) Finish() Result {
	s := e.session
	var res Result

	if s.buffer != "" {
		if s.state == stateCollecting {
			s.content.WriteString(s.buffer)
			e.store.UpdateContent(s.artifactID, s.content.String())
			res.ArtifactMutation = true
		} else {
			res.DisplayUpdate = s.buffer
			e.collector.AddDisplayBytes(len(s.buffer))
		}
		s.buffer = ""
	}

	if s.state == stateCollecting {
		e.logger.Debug("stream ended while collecting; keeping partial artifact", map[string]any{
			"artifact_id": s.artifactID,
		})
	}
	return res
}

// ResetSession returns the session to its initial state for a new turn.
func (e *Engine) ResetSession() {
	e.session.Reset()
}

// ClearAll empties the collection, clears the selection, and resets the
// session state.
func (e *Engine) ClearAll() {
	e.store.ClearAll()
	e.session.Reset()
}
