package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/calder-io/sift/metrics"
	"github.com/calder-io/sift/types"
)

// ArchivedSession is a session restored from storage.
type ArchivedSession struct {
	SessionID     string
	Mode          string
	Outcome       string
	StartedTs     string
	ArchivedTs    string
	ArtifactCount int

	Transcript string
	Artifacts  []types.Artifact
	Metrics    metrics.Snapshot
	HasMetrics bool
}

// ReadSession restores one archived session.
func ReadSession(ctx context.Context, store Store, sessionID string) (*ArchivedSession, error) {
	blob, err := store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return decodeSession(blob)
}

// decodeSession decodes an archive blob frame by frame. Record order is not
// trusted beyond the session header coming first; unknown kinds fail.
func decodeSession(blob []byte) (*ArchivedSession, error) {
	dec := NewFrameDecoder(bytes.NewReader(blob))
	session := &ArchivedSession{}
	seenHeader := false

	for {
		payload, err := dec.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		record, err := DecodeRecord(payload)
		if err != nil {
			return nil, err
		}

		switch r := record.(type) {
		case *SessionRecord:
			session.SessionID = r.SessionID
			session.Mode = r.Mode
			session.Outcome = r.Outcome
			session.StartedTs = r.StartedTs
			session.ArchivedTs = r.ArchivedTs
			session.ArtifactCount = r.ArtifactCount
			seenHeader = true
		case *TranscriptRecord:
			session.Transcript = r.Text
		case *ArtifactRecord:
			session.Artifacts = append(session.Artifacts, toArtifact(r))
		case *MetricsRecord:
			session.Metrics = toSnapshot(r)
			session.HasMetrics = true
		}
	}

	if !seenHeader {
		return nil, fmt.Errorf("archive has no session record")
	}
	return session, nil
}

// ListSessions returns the archived session ids.
func ListSessions(ctx context.Context, store Store) ([]string, error) {
	return store.List(ctx)
}
