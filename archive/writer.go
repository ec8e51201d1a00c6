package archive

import (
	"context"
	"time"

	"github.com/calder-io/sift/metrics"
	"github.com/calder-io/sift/runtime"
)

// WriteSession archives a completed session result with its metrics
// snapshot. Record order is fixed: session, transcript, artifacts (creation
// order), metrics.
func WriteSession(ctx context.Context, store Store, result *runtime.SessionResult, snap metrics.Snapshot) error {
	records := make([]any, 0, len(result.Artifacts)+3)
	records = append(records,
		toSessionRecord(result.Meta, result.Outcome, len(result.Artifacts), time.Now()),
		TranscriptRecord{Kind: RecordKindTranscript, Text: result.Transcript},
	)
	for i, a := range result.Artifacts {
		records = append(records, toArtifactRecord(a, i))
	}
	records = append(records, toMetricsRecord(snap))

	blob, err := encodeFrames(records)
	if err != nil {
		return err
	}
	return store.Put(ctx, result.Meta.SessionID, blob)
}
