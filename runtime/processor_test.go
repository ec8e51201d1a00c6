package runtime_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/calder-io/sift/artifact"
	"github.com/calder-io/sift/metrics"
	"github.com/calder-io/sift/runtime"
	"github.com/calder-io/sift/types"
)

func newMeta(mode types.Mode) types.SessionMeta {
	return types.SessionMeta{
		SessionID: "test-session",
		Mode:      mode,
		StartedAt: time.Now().UTC(),
	}
}

func TestProcessor_ArtifactMode(t *testing.T) {
	stream := "data: {\"content\":\"Here: [CODE_START:py]\"}\n" +
		"data: {\"content\":\"print(1)\"}\n" +
		"data: {\"content\":\"[CODE_END] bye\"}\n" +
		"data: [DONE]\n"
	store := artifact.NewStore()
	p := runtime.NewProcessor(newMeta(types.ModeArtifact), strings.NewReader(stream), store, nil, nil)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Outcome != types.OutcomeCompleted {
		t.Errorf("outcome = %q, want completed", result.Outcome)
	}
	if result.Transcript != "Here: [Code: py] bye" {
		t.Errorf("transcript = %q", result.Transcript)
	}
	if len(result.Artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(result.Artifacts))
	}
	if result.Artifacts[0].Content != "print(1)" {
		t.Errorf("artifact content = %q", result.Artifacts[0].Content)
	}
}

func TestProcessor_PlainMode(t *testing.T) {
	// Plain mode: markers pass through verbatim, no artifacts extracted.
	stream := "data: {\"content\":\"[CODE_START:py]x[CODE_END]\"}\ndata: [DONE]\n"
	store := artifact.NewStore()
	p := runtime.NewProcessor(newMeta(types.ModePlain), strings.NewReader(stream), store, nil, nil)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Transcript != "[CODE_START:py]x[CODE_END]" {
		t.Errorf("transcript = %q", result.Transcript)
	}
	if len(result.Artifacts) != 0 {
		t.Errorf("plain mode must not extract artifacts, got %d", len(result.Artifacts))
	}
	if p.Engine() != nil {
		t.Error("plain mode must not build an engine")
	}
}

func TestProcessor_EOFWithoutSentinel(t *testing.T) {
	store := artifact.NewStore()
	p := runtime.NewProcessor(newMeta(types.ModeArtifact), strings.NewReader("just text"), store, nil, nil)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != types.OutcomeEOF {
		t.Errorf("outcome = %q, want eof", result.Outcome)
	}
	if result.Transcript != "just text" {
		t.Errorf("transcript = %q", result.Transcript)
	}
}

func TestProcessor_UnterminatedArtifactSurvives(t *testing.T) {
	stream := "data: {\"content\":\"[CODE_START:go]func f() {\"}\n"
	store := artifact.NewStore()
	p := runtime.NewProcessor(newMeta(types.ModeArtifact), strings.NewReader(stream), store, nil, nil)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Artifacts) != 1 {
		t.Fatalf("expected the partial artifact, got %d", len(result.Artifacts))
	}
	if result.Artifacts[0].Content != "func f() {" {
		t.Errorf("partial content = %q", result.Artifacts[0].Content)
	}
}

func TestProcessor_ErrorEventInline(t *testing.T) {
	stream := "data: {\"content\":\"before \"}\n" +
		"data: {\"error\":\"overloaded\"}\n" +
		"data: {\"content\":\" after\"}\n" +
		"data: [DONE]\n"
	store := artifact.NewStore()
	p := runtime.NewProcessor(newMeta(types.ModeArtifact), strings.NewReader(stream), store, nil, nil)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("upstream error events must not abort the run: %v", err)
	}
	if result.Transcript != "before [error: overloaded] after" {
		t.Errorf("transcript = %q", result.Transcript)
	}
	if result.Outcome != types.OutcomeCompleted {
		t.Errorf("outcome = %q, want completed", result.Outcome)
	}
}

// failingReader yields data once, then a transport error.
type failingReader struct {
	data string
	done bool
}

var errConnReset = errors.New("connection reset by peer")

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.done {
		r.done = true
		return copy(p, r.data), nil
	}
	return 0, errConnReset
}

func TestProcessor_TransportFailure(t *testing.T) {
	store := artifact.NewStore()
	p := runtime.NewProcessor(newMeta(types.ModeArtifact), &failingReader{data: "partial "}, store, nil, nil)

	result, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("expected a transport error")
	}
	if !runtime.IsTransportError(err) {
		t.Errorf("IsTransportError = false for %v", err)
	}
	if runtime.IsCanceledError(err) {
		t.Errorf("IsCanceledError = true for %v", err)
	}
	if !errors.Is(err, errConnReset) {
		t.Errorf("cause not preserved: %v", err)
	}

	// State at the instant of failure is final.
	if result.Outcome != types.OutcomeFailed {
		t.Errorf("outcome = %q, want failed", result.Outcome)
	}
	if result.Transcript != "partial " {
		t.Errorf("transcript = %q, want the already-processed deltas", result.Transcript)
	}
}

func TestProcessor_Cancellation(t *testing.T) {
	store := artifact.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := runtime.NewProcessor(newMeta(types.ModeArtifact), strings.NewReader("x"), store, nil, nil)
	result, err := p.Run(ctx)
	if err == nil {
		t.Fatal("expected a cancellation error")
	}
	if !runtime.IsCanceledError(err) {
		t.Errorf("IsCanceledError = false for %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cause not preserved: %v", err)
	}
	if result.Outcome != types.OutcomeFailed {
		t.Errorf("outcome = %q, want failed", result.Outcome)
	}
}

func TestProcessor_MetricsFlow(t *testing.T) {
	stream := "data: {\"content\":\"hi [CODE_START:py]x[CODE_END]\"}\ndata: [DONE]\n"
	store := artifact.NewStore()
	collector := metrics.NewCollector("s1", string(types.ModeArtifact))
	p := runtime.NewProcessor(newMeta(types.ModeArtifact), strings.NewReader(stream), store, nil, collector)

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := collector.Snapshot()
	if snap.DeltasReceived != 1 {
		t.Errorf("DeltasReceived = %d, want 1", snap.DeltasReceived)
	}
	if snap.ArtifactsStarted != 1 || snap.ArtifactsCompleted != 1 {
		t.Errorf("artifact counters = %d/%d, want 1/1", snap.ArtifactsStarted, snap.ArtifactsCompleted)
	}
	if snap.SentinelReceived != 1 {
		t.Errorf("SentinelReceived = %d, want 1", snap.SentinelReceived)
	}
}
