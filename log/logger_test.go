package log_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/calder-io/sift/log"
	"github.com/calder-io/sift/types"
)

func testMeta() types.SessionMeta {
	return types.SessionMeta{
		SessionID: "sess-1",
		Mode:      types.ModeArtifact,
		StartedAt: time.Now().UTC(),
	}
}

func TestLogger_SessionContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogger(testMeta()).WithOutput(&buf)

	logger.Info("session started", map[string]any{"deltas": 3})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["message"] != "session started" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["session_id"] != "sess-1" {
		t.Errorf("session_id = %v", entry["session_id"])
	}
	if entry["mode"] != "artifact" {
		t.Errorf("mode = %v", entry["mode"])
	}
}

func TestLogger_Nop(t *testing.T) {
	logger := log.Nop()
	// Must not panic with no sink configured.
	logger.Debug("dropped", nil)
	logger.Error("dropped", map[string]any{"k": "v"})
}

func TestLogger_Sugar(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogger(testMeta()).WithOutput(&buf)

	logger.Sugar().Infof("processed %d deltas", 7)

	if !bytes.Contains(buf.Bytes(), []byte("processed 7 deltas")) {
		t.Errorf("missing formatted message: %s", buf.String())
	}
}
