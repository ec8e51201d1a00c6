// Package runtime drives one streaming session end-to-end: transport chunks
// through the decoder, deltas through the active consumer, results into the
// transcript and artifact store.
//
// Execution is single-threaded and cooperative. The processor is the sole
// writer of buffer, collector, and collection state; it suspends only while
// awaiting the next transport chunk. Exactly one processor runs per request,
// and construction resets all session state so nothing leaks between turns.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/calder-io/sift/artifact"
	"github.com/calder-io/sift/extract"
	"github.com/calder-io/sift/log"
	"github.com/calder-io/sift/metrics"
	"github.com/calder-io/sift/sse"
	"github.com/calder-io/sift/types"
)

// ProcessorErrorKind classifies terminal processor failures.
type ProcessorErrorKind int

const (
	// ProcessorErrorTransport indicates the underlying transport failed.
	ProcessorErrorTransport ProcessorErrorKind = iota
	// ProcessorErrorCanceled indicates context cancellation aborted the read.
	ProcessorErrorCanceled
)

// ProcessorError is a terminal failure of the driving loop. Whatever state
// existed at the instant of failure is left as final; there is no rollback.
type ProcessorError struct {
	Kind ProcessorErrorKind
	Err  error
}

func (e *ProcessorError) Error() string {
	return e.Err.Error()
}

func (e *ProcessorError) Unwrap() error {
	return e.Err
}

// IsTransportError returns true if the error is a transport failure.
func IsTransportError(err error) bool {
	var pErr *ProcessorError
	if errors.As(err, &pErr) {
		return pErr.Kind == ProcessorErrorTransport
	}
	return false
}

// IsCanceledError returns true if the error is due to context cancellation.
func IsCanceledError(err error) bool {
	var pErr *ProcessorError
	if errors.As(err, &pErr) {
		return pErr.Kind == ProcessorErrorCanceled
	}
	return false
}

// SessionResult is the final state of a completed session.
type SessionResult struct {
	Meta       types.SessionMeta
	Transcript string
	Artifacts  []types.Artifact
	Outcome    types.Outcome
}

// Processor consumes one transport stream end-to-end.
type Processor struct {
	meta      types.SessionMeta
	decoder   *sse.Decoder
	engine    *extract.Engine // nil in plain mode
	store     *artifact.Store
	logger    *log.Logger
	collector *metrics.Collector

	transcript strings.Builder
}

// NewProcessor creates a processor for one session. In artifact mode the
// extraction engine sits between deltas and the transcript; in plain mode
// deltas accumulate verbatim. The engine's session state is reset here so a
// prior turn can never corrupt marker detection.
func NewProcessor(meta types.SessionMeta, r io.Reader, store *artifact.Store, logger *log.Logger, collector *metrics.Collector) *Processor {
	if logger == nil {
		logger = log.Nop()
	}
	p := &Processor{
		meta:      meta,
		decoder:   sse.NewDecoder(r, collector),
		store:     store,
		logger:    logger,
		collector: collector,
	}
	if meta.Mode == types.ModeArtifact {
		p.engine = extract.NewEngine(store, logger, collector)
		p.engine.ResetSession()
	}
	return p
}

// Engine returns the extraction engine, nil in plain mode.
func (p *Processor) Engine() *extract.Engine {
	return p.engine
}

// Run drives the stream to completion. Deltas are processed strictly in
// arrival order; upstream error events are reported inline in the
// transcript and never abort processing.
//
// Returns the session result and:
//   - nil: normal completion (transport EOF or the [DONE] sentinel)
//   - *ProcessorError with Kind=ProcessorErrorTransport: transport failure
//   - *ProcessorError with Kind=ProcessorErrorCanceled: context canceled
//
// On error the result reflects whatever state existed at that instant.
func (p *Processor) Run(ctx context.Context) (*SessionResult, error) {
	p.logger.Info("session started", map[string]any{
		"mode": string(p.meta.Mode),
	})

	for {
		select {
		case <-ctx.Done():
			p.logger.Warn("session canceled", nil)
			return p.result(types.OutcomeFailed), &ProcessorError{
				Kind: ProcessorErrorCanceled,
				Err:  ctx.Err(),
			}
		default:
		}

		ev, err := p.decoder.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return p.finish(types.OutcomeEOF), nil
			}
			p.logger.Error("transport failure", map[string]any{
				"error": err.Error(),
			})
			return p.result(types.OutcomeFailed), &ProcessorError{
				Kind: ProcessorErrorTransport,
				Err:  fmt.Errorf("transport failure: %w", err),
			}
		}

		switch ev := ev.(type) {
		case types.TextDelta:
			p.processDelta(ev.Text)
		case types.ErrorEvent:
			// Surfaced inline, processing continues.
			p.logger.Warn("upstream error event", map[string]any{
				"message": ev.Message,
			})
			p.transcript.WriteString("[error: " + ev.Message + "]")
		case types.Completed:
			return p.finish(types.OutcomeCompleted), nil
		}
	}
}

// processDelta routes one delta to the active consumer.
func (p *Processor) processDelta(text string) {
	if p.engine == nil {
		p.transcript.WriteString(text)
		return
	}
	res := p.engine.ProcessDelta(text)
	if res.DisplayUpdate != "" {
		p.transcript.WriteString(res.DisplayUpdate)
	}
}

// finish flushes held engine state and builds the final result. A partially
// collected artifact is retained, not discarded: partial code remains
// useful to the consumer.
func (p *Processor) finish(outcome types.Outcome) *SessionResult {
	if p.engine != nil {
		res := p.engine.Finish()
		if res.DisplayUpdate != "" {
			p.transcript.WriteString(res.DisplayUpdate)
		}
	}
	p.logger.Info("session finished", map[string]any{
		"outcome":   string(outcome),
		"artifacts": p.store.Len(),
	})
	return p.result(outcome)
}

func (p *Processor) result(outcome types.Outcome) *SessionResult {
	return &SessionResult{
		Meta:       p.meta,
		Transcript: p.transcript.String(),
		Artifacts:  p.store.List(),
		Outcome:    outcome,
	}
}
