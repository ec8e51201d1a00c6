package extract_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/calder-io/sift/artifact"
	"github.com/calder-io/sift/extract"
	"github.com/calder-io/sift/log"
	"github.com/calder-io/sift/metrics"
	"github.com/calder-io/sift/types"
)

func newTestEngine() (*extract.Engine, *artifact.Store) {
	store := artifact.NewStore()
	return extract.NewEngine(store, log.Nop(), nil), store
}

// feed processes deltas in order and returns the accumulated display text
// including the final flush.
func feed(e *extract.Engine, deltas ...string) string {
	var display strings.Builder
	for _, d := range deltas {
		display.WriteString(e.ProcessDelta(d).DisplayUpdate)
	}
	display.WriteString(e.Finish().DisplayUpdate)
	return display.String()
}

func TestEngine_SingleArtifact(t *testing.T) {
	e, store := newTestEngine()

	display := feed(e, "Here is code: [CODE_START:js]console.log(1)[CODE_END] done")

	if display != "Here is code: [Code: js] done" {
		t.Errorf("display = %q, want %q", display, "Here is code: [Code: js] done")
	}

	artifacts := store.List()
	if len(artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(artifacts))
	}
	if artifacts[0].Content != "console.log(1)" {
		t.Errorf("content = %q, want %q", artifacts[0].Content, "console.log(1)")
	}
	if artifacts[0].Language != "js" {
		t.Errorf("language = %q, want %q", artifacts[0].Language, "js")
	}
}

func TestEngine_MarkerSplitAcrossDeltas(t *testing.T) {
	e, store := newTestEngine()

	display := feed(e, "[COD", "E_START:py]", "print(1)", "[CODE_END]")

	if display != "[Code: py]" {
		t.Errorf("display = %q, want %q", display, "[Code: py]")
	}
	artifacts := store.List()
	if len(artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(artifacts))
	}
	if artifacts[0].Content != "print(1)" {
		t.Errorf("content = %q, want %q", artifacts[0].Content, "print(1)")
	}
}

// Every split point of the same stream must produce identical display text
// and identical artifact content. Delta boundaries carry no meaning.
func TestEngine_FragmentationInvariance(t *testing.T) {
	const stream = "intro [CODE_START:go]func main() {}\n[CODE_END] middle " +
		"[CODE_START:sql]SELECT 1;[CODE_END] outro"

	ref, refStore := newTestEngine()
	wantDisplay := feed(ref, stream)
	wantArtifacts := refStore.List()

	for split := 1; split < len(stream); split++ {
		e, store := newTestEngine()
		display := feed(e, stream[:split], stream[split:])

		if display != wantDisplay {
			t.Fatalf("split %d: display = %q, want %q", split, display, wantDisplay)
		}

		artifacts := store.List()
		if len(artifacts) != len(wantArtifacts) {
			t.Fatalf("split %d: %d artifacts, want %d", split, len(artifacts), len(wantArtifacts))
		}
		for i := range artifacts {
			if artifacts[i].Content != wantArtifacts[i].Content {
				t.Fatalf("split %d: artifact %d content = %q, want %q",
					split, i, artifacts[i].Content, wantArtifacts[i].Content)
			}
			if artifacts[i].Language != wantArtifacts[i].Language {
				t.Fatalf("split %d: artifact %d language = %q, want %q",
					split, i, artifacts[i].Language, wantArtifacts[i].Language)
			}
		}
	}
}

// Same property at per-byte granularity: the stream arrives one byte at a
// time and nothing may change.
func TestEngine_BytewiseDelivery(t *testing.T) {
	const stream = "a[CODE_START:c]int x;[CODE_END]b"

	e, store := newTestEngine()
	deltas := make([]string, 0, len(stream))
	for _, b := range []byte(stream) {
		deltas = append(deltas, string(b))
	}
	display := feed(e, deltas...)

	if display != "a[Code: c]b" {
		t.Errorf("display = %q, want %q", display, "a[Code: c]b")
	}
	artifacts := store.List()
	if len(artifacts) != 1 || artifacts[0].Content != "int x;" {
		t.Fatalf("artifacts = %#v", artifacts)
	}
}

func TestEngine_NoFalsePositives(t *testing.T) {
	tests := []struct {
		name   string
		stream string
	}{
		{"plain brackets", "an [aside] with brackets"},
		{"bracket words", "array[0] and map[key]"},
		{"lookalike marker", "[CODE_STOP:py] is not a marker"},
		{"lowercase", "[code_start:py]nope[code_end]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, store := newTestEngine()
			display := feed(e, tt.stream)

			if display != tt.stream {
				t.Errorf("display = %q, want unmodified %q", display, tt.stream)
			}
			if store.Len() != 0 {
				t.Errorf("expected no artifacts, got %d", store.Len())
			}
		})
	}
}

// A suffix that looks like the beginning of a marker is held, then released
// once the next delta proves it was ordinary text.
func TestEngine_FalseAlarmSuffixReleased(t *testing.T) {
	e, store := newTestEngine()

	res := e.ProcessDelta("look at [CODE")
	if res.DisplayUpdate != "" {
		t.Errorf("first display = %q, want nothing flushed", res.DisplayUpdate)
	}
	if res.RemainingBuffer != "look at [CODE" {
		t.Errorf("held buffer = %q, want the whole buffer", res.RemainingBuffer)
	}

	res = e.ProcessDelta(" reviews")
	if res.DisplayUpdate != "look at [CODE reviews" {
		t.Errorf("second display = %q, want %q", res.DisplayUpdate, "look at [CODE reviews")
	}
	if store.Len() != 0 {
		t.Errorf("expected no artifacts, got %d", store.Len())
	}
}

// While collecting, a suffix matching a prefix of [CODE_END] stays out of
// the stored content until it resolves.
func TestEngine_PartialEndMarkerHeld(t *testing.T) {
	e, store := newTestEngine()

	e.ProcessDelta("[CODE_START:py]x = 1\n")
	res := e.ProcessDelta("[CODE_E")

	if res.RemainingBuffer != "[CODE_E" {
		t.Errorf("held buffer = %q, want %q", res.RemainingBuffer, "[CODE_E")
	}
	a, ok := store.Current()
	if !ok {
		t.Fatal("expected a current artifact")
	}
	if a.Content != "x = 1\n" {
		t.Errorf("content = %q, the partial end marker must not leak in", a.Content)
	}

	// The hold resolves into a real end marker.
	e.ProcessDelta("ND]")
	a, _ = store.Current()
	if a.Content != "x = 1\n" {
		t.Errorf("final content = %q, want %q", a.Content, "x = 1\n")
	}
	if e.Session().Collecting() {
		t.Error("expected Idle state after end marker")
	}
}

// The hold can also resolve into literal content.
func TestEngine_PartialEndMarkerResolvesToContent(t *testing.T) {
	e, store := newTestEngine()

	e.ProcessDelta("[CODE_START:py]data")
	e.ProcessDelta("[CODE_X more")
	e.ProcessDelta("[CODE_END]")

	artifacts := store.List()
	if len(artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(artifacts))
	}
	if artifacts[0].Content != "data[CODE_X more" {
		t.Errorf("content = %q, want %q", artifacts[0].Content, "data[CODE_X more")
	}
}

func TestEngine_MultipleArtifacts(t *testing.T) {
	e, store := newTestEngine()

	display := feed(e,
		"first: [CODE_START:a]AAA[CODE_END] second: [CODE_START:b]BBB[CODE_END].")

	if display != "first: [Code: a] second: [Code: b]." {
		t.Errorf("display = %q", display)
	}

	artifacts := store.List()
	if len(artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(artifacts))
	}
	if artifacts[0].Content != "AAA" || artifacts[1].Content != "BBB" {
		t.Errorf("contents = %q, %q", artifacts[0].Content, artifacts[1].Content)
	}

	// Most recent artifact is selected.
	current, ok := store.Current()
	if !ok || current.ID != artifacts[1].ID {
		t.Errorf("current = %#v, want second artifact", current)
	}
}

// A second start marker inside a collection is literal content; nesting is
// not part of the grammar.
func TestEngine_NestedStartMarkerIsLiteral(t *testing.T) {
	e, store := newTestEngine()

	feed(e, "[CODE_START:py]outer [CODE_START:js]inner[CODE_END]")

	artifacts := store.List()
	if len(artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(artifacts))
	}
	if artifacts[0].Content != "outer [CODE_START:js]inner" {
		t.Errorf("content = %q", artifacts[0].Content)
	}
	if artifacts[0].Language != "py" {
		t.Errorf("language = %q, want py", artifacts[0].Language)
	}
}

// Transport end while collecting keeps the partial artifact and flushes the
// held buffer into it.
func TestEngine_UnterminatedCollection(t *testing.T) {
	e, store := newTestEngine()

	e.ProcessDelta("[CODE_START:go]func partial() {")
	e.ProcessDelta("\n\t// trailing [CODE_E")
	res := e.Finish()

	if res.DisplayUpdate != "" {
		t.Errorf("Finish display = %q, want empty while collecting", res.DisplayUpdate)
	}
	if !res.ArtifactMutation {
		t.Error("expected the held buffer to mutate the artifact")
	}

	artifacts := store.List()
	if len(artifacts) != 1 {
		t.Fatalf("expected the partial artifact to survive, got %d", len(artifacts))
	}
	want := "func partial() {\n\t// trailing [CODE_E"
	if artifacts[0].Content != want {
		t.Errorf("content = %q, want %q", artifacts[0].Content, want)
	}
}

// Transport end while Idle flushes a held false-alarm suffix to display.
func TestEngine_FinishFlushesIdleHold(t *testing.T) {
	e, _ := newTestEngine()

	e.ProcessDelta("trailing [CO")
	res := e.Finish()

	if res.DisplayUpdate != "trailing [CO" {
		t.Errorf("Finish display = %q, want %q", res.DisplayUpdate, "trailing [CO")
	}
}

func TestEngine_OnCollectionStartedHook(t *testing.T) {
	e, _ := newTestEngine()

	var started []types.Artifact
	e.OnCollectionStarted(func(a types.Artifact) {
		started = append(started, a)
	})

	feed(e, "[CODE_START:py]x[CODE_END][CODE_START:js]y[CODE_END]")

	if len(started) != 2 {
		t.Fatalf("hook fired %d times, want 2", len(started))
	}
	if started[0].Language != "py" || started[1].Language != "js" {
		t.Errorf("hook languages = %q, %q", started[0].Language, started[1].Language)
	}
}

func TestEngine_ResetSession(t *testing.T) {
	e, store := newTestEngine()

	e.ProcessDelta("[CODE_START:py]held")
	e.ResetSession()

	if e.Session().Collecting() {
		t.Error("expected Idle after reset")
	}
	if e.Session().Buffer() != "" {
		t.Errorf("buffer = %q, want empty", e.Session().Buffer())
	}

	// The collection survives a session reset; only turn state clears.
	if store.Len() != 1 {
		t.Errorf("expected collection to survive reset, got %d artifacts", store.Len())
	}

	display := feed(e, "fresh turn")
	if display != "fresh turn" {
		t.Errorf("display = %q", display)
	}
}

func TestEngine_ClearAll(t *testing.T) {
	e, store := newTestEngine()

	feed(e, "[CODE_START:py]x[CODE_END]")
	e.ClearAll()

	if store.Len() != 0 {
		t.Errorf("expected empty collection, got %d", store.Len())
	}
	if _, ok := store.Current(); ok {
		t.Error("expected no current artifact after ClearAll")
	}
}

func TestEngine_MetricsCounts(t *testing.T) {
	store := artifact.NewStore()
	collector := metrics.NewCollector("s1", "artifact")
	e := extract.NewEngine(store, log.Nop(), collector)

	feed(e, "say [CODE_START:py]x[CODE_END] done [CODE_START:js]held")

	snap := collector.Snapshot()
	if snap.ArtifactsStarted != 2 {
		t.Errorf("ArtifactsStarted = %d, want 2", snap.ArtifactsStarted)
	}
	if snap.ArtifactsCompleted != 1 {
		t.Errorf("ArtifactsCompleted = %d, want 1", snap.ArtifactsCompleted)
	}
	if snap.DisplayBytes == 0 {
		t.Error("expected DisplayBytes > 0")
	}
}

func TestPlaceholder(t *testing.T) {
	tests := []struct {
		language string
		want     string
	}{
		{"python", "[Code: python]"},
		{"", "[Code: ]"},
		{"objective c", "[Code: objective c]"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("lang=%q", tt.language), func(t *testing.T) {
			if got := extract.Placeholder(tt.language); got != tt.want {
				t.Errorf("Placeholder(%q) = %q, want %q", tt.language, got, tt.want)
			}
		})
	}
}
