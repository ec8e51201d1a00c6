// Package render provides plain-text rendering for CLI output.
//
// The TUI renders the same payloads; no render-path-exclusive data exists.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/calder-io/sift/archive"
	"github.com/calder-io/sift/metrics"
	"github.com/calder-io/sift/runtime"
	"github.com/calder-io/sift/types"
)

// Result writes an extraction result: the clean transcript followed by an
// artifact summary.
func Result(w io.Writer, result *runtime.SessionResult) {
	fmt.Fprintln(w, result.Transcript)
	if len(result.Artifacts) == 0 {
		return
	}
	fmt.Fprintf(w, "\n--- %d artifact(s) ---\n", len(result.Artifacts))
	Artifacts(w, result.Artifacts)
}

// Artifacts writes the artifact collection in creation order.
func Artifacts(w io.Writer, artifacts []types.Artifact) {
	for i, a := range artifacts {
		fmt.Fprintf(w, "[%d] %s (%s, %d bytes)\n", i+1, a.Title, a.Language, len(a.Content))
		fmt.Fprintln(w, indent(a.Content, "    "))
	}
}

// Session writes an archived session: header, transcript, artifacts.
func Session(w io.Writer, s *archive.ArchivedSession) {
	fmt.Fprintf(w, "Session:   %s\n", s.SessionID)
	fmt.Fprintf(w, "Mode:      %s\n", s.Mode)
	fmt.Fprintf(w, "Outcome:   %s\n", s.Outcome)
	fmt.Fprintf(w, "Started:   %s\n", s.StartedTs)
	fmt.Fprintf(w, "Archived:  %s\n", s.ArchivedTs)
	fmt.Fprintf(w, "Artifacts: %d\n", s.ArtifactCount)
	fmt.Fprintln(w, "\n--- transcript ---")
	fmt.Fprintln(w, s.Transcript)
	if len(s.Artifacts) > 0 {
		fmt.Fprintln(w, "--- artifacts ---")
		Artifacts(w, s.Artifacts)
	}
}

// SessionList writes archived session ids, one per line.
func SessionList(w io.Writer, ids []string) {
	if len(ids) == 0 {
		fmt.Fprintln(w, "no archived sessions")
		return
	}
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
}

// Stats writes a metrics snapshot as aligned label/value rows.
func Stats(w io.Writer, snap metrics.Snapshot) {
	rows := []struct {
		label string
		value int64
	}{
		{"deltas_received", snap.DeltasReceived},
		{"bytes_received", snap.BytesReceived},
		{"decode_fallbacks", snap.DecodeFallbacks},
		{"upstream_errors", snap.UpstreamErrors},
		{"sentinel_received", snap.SentinelReceived},
		{"artifacts_started", snap.ArtifactsStarted},
		{"artifacts_completed", snap.ArtifactsCompleted},
		{"display_bytes", snap.DisplayBytes},
	}
	fmt.Fprintf(w, "session: %s (mode=%s)\n", snap.SessionID, snap.Mode)
	for _, r := range rows {
		fmt.Fprintf(w, "  %-22s %d\n", r.label, r.value)
	}
}

// indent prefixes every line of s.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = prefix + ln
	}
	return strings.Join(lines, "\n")
}
