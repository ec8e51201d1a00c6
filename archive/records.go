package archive

import (
	"time"

	"github.com/calder-io/sift/metrics"
	"github.com/calder-io/sift/types"
)

// Record kind discriminator values.
const (
	RecordKindSession    = "session"
	RecordKindTranscript = "transcript"
	RecordKindArtifact   = "artifact"
	RecordKindMetrics    = "metrics"
)

// SessionRecord is the archive header for one session.
type SessionRecord struct {
	Kind          string `msgpack:"kind"`
	SessionID     string `msgpack:"session_id"`
	Mode          string `msgpack:"mode"`
	Outcome       string `msgpack:"outcome"`
	StartedTs     string `msgpack:"started_ts"`
	ArchivedTs    string `msgpack:"archived_ts"`
	ArtifactCount int    `msgpack:"artifact_count"`
}

// TranscriptRecord holds the clean, marker-free transcript.
type TranscriptRecord struct {
	Kind string `msgpack:"kind"`
	Text string `msgpack:"text"`
}

// ArtifactRecord is the storage form of one extracted artifact. Position
// preserves creation order.
type ArtifactRecord struct {
	Kind         string `msgpack:"kind"`
	ArtifactID   string `msgpack:"artifact_id"`
	ArtifactKind string `msgpack:"artifact_kind"`
	Language     string `msgpack:"language"`
	Title        string `msgpack:"title"`
	Content      string `msgpack:"content"`
	Position     int    `msgpack:"position"`
	CreatedTs    string `msgpack:"created_ts"`
}

// MetricsRecord is the storage form of a metrics snapshot.
type MetricsRecord struct {
	Kind string `msgpack:"kind"`

	DeltasReceived   int64 `msgpack:"deltas_received_total"`
	BytesReceived    int64 `msgpack:"bytes_received_total"`
	DecodeFallbacks  int64 `msgpack:"decode_fallbacks_total"`
	UpstreamErrors   int64 `msgpack:"upstream_errors_total"`
	SentinelReceived int64 `msgpack:"sentinel_received_total"`

	ArtifactsStarted   int64 `msgpack:"artifacts_started_total"`
	ArtifactsCompleted int64 `msgpack:"artifacts_completed_total"`
	DisplayBytes       int64 `msgpack:"display_bytes_total"`

	SessionID string `msgpack:"session_id"`
	Mode      string `msgpack:"mode"`
}

// toSessionRecord builds the archive header from a session result.
func toSessionRecord(meta types.SessionMeta, outcome types.Outcome, artifactCount int, archivedAt time.Time) SessionRecord {
	return SessionRecord{
		Kind:          RecordKindSession,
		SessionID:     meta.SessionID,
		Mode:          string(meta.Mode),
		Outcome:       string(outcome),
		StartedTs:     meta.StartedAt.UTC().Format(time.RFC3339Nano),
		ArchivedTs:    archivedAt.UTC().Format(time.RFC3339Nano),
		ArtifactCount: artifactCount,
	}
}

// toArtifactRecord converts an artifact for storage.
func toArtifactRecord(a types.Artifact, position int) ArtifactRecord {
	return ArtifactRecord{
		Kind:         RecordKindArtifact,
		ArtifactID:   a.ID,
		ArtifactKind: a.Kind,
		Language:     a.Language,
		Title:        a.Title,
		Content:      a.Content,
		Position:     position,
		CreatedTs:    a.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// toMetricsRecord converts a metrics snapshot for storage.
func toMetricsRecord(snap metrics.Snapshot) MetricsRecord {
	return MetricsRecord{
		Kind:               RecordKindMetrics,
		DeltasReceived:     snap.DeltasReceived,
		BytesReceived:      snap.BytesReceived,
		DecodeFallbacks:    snap.DecodeFallbacks,
		UpstreamErrors:     snap.UpstreamErrors,
		SentinelReceived:   snap.SentinelReceived,
		ArtifactsStarted:   snap.ArtifactsStarted,
		ArtifactsCompleted: snap.ArtifactsCompleted,
		DisplayBytes:       snap.DisplayBytes,
		SessionID:          snap.SessionID,
		Mode:               snap.Mode,
	}
}

// toSnapshot restores a metrics snapshot from its storage form.
func toSnapshot(r *MetricsRecord) metrics.Snapshot {
	return metrics.Snapshot{
		DeltasReceived:     r.DeltasReceived,
		BytesReceived:      r.BytesReceived,
		DecodeFallbacks:    r.DecodeFallbacks,
		UpstreamErrors:     r.UpstreamErrors,
		SentinelReceived:   r.SentinelReceived,
		ArtifactsStarted:   r.ArtifactsStarted,
		ArtifactsCompleted: r.ArtifactsCompleted,
		DisplayBytes:       r.DisplayBytes,
		SessionID:          r.SessionID,
		Mode:               r.Mode,
	}
}

// toArtifact restores an artifact from its storage form.
func toArtifact(r *ArtifactRecord) types.Artifact {
	createdAt, _ := time.Parse(time.RFC3339Nano, r.CreatedTs)
	return types.Artifact{
		ID:        r.ArtifactID,
		Kind:      r.ArtifactKind,
		Language:  r.Language,
		Title:     r.Title,
		Content:   r.Content,
		CreatedAt: createdAt,
	}
}
