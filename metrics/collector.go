// Package metrics provides per-session metrics collection.
//
// The Collector accumulates counters during a single streaming session. It
// is a leaf package with no internal dependencies. The snapshot is archived
// with the session and rendered by `sift stats`.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of session metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Decoder
	DeltasReceived   int64
	BytesReceived    int64
	DecodeFallbacks  int64 // malformed data: payloads degraded to literal text
	UpstreamErrors   int64 // explicit error events from the stream
	SentinelReceived int64 // [DONE] sentinels (0 or 1 per session)

	// Extraction
	ArtifactsStarted   int64
	ArtifactsCompleted int64
	DisplayBytes       int64

	// Dimensions (informational, set at construction)
	SessionID string
	Mode      string
}

// Collector accumulates metrics during a single session.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	deltasReceived   int64
	bytesReceived    int64
	decodeFallbacks  int64
	upstreamErrors   int64
	sentinelReceived int64

	artifactsStarted   int64
	artifactsCompleted int64
	displayBytes       int64

	sessionID string
	mode      string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(sessionID, mode string) *Collector {
	return &Collector{sessionID: sessionID, mode: mode}
}

// IncDeltasReceived records one decoded delta.
func (c *Collector) IncDeltasReceived() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deltasReceived++
}

// AddBytesReceived records n bytes of decoded delta text.
func (c *Collector) AddBytesReceived(n int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bytesReceived += int64(n)
}

// IncDecodeFallbacks records one malformed payload degraded to literal text.
func (c *Collector) IncDecodeFallbacks() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decodeFallbacks++
}

// IncUpstreamErrors records one explicit error event from the stream.
func (c *Collector) IncUpstreamErrors() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.upstreamErrors++
}

// IncSentinelReceived records the [DONE] sentinel.
func (c *Collector) IncSentinelReceived() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sentinelReceived++
}

// IncArtifactsStarted records one recognized start marker.
func (c *Collector) IncArtifactsStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.artifactsStarted++
}

// IncArtifactsCompleted records one recognized end marker.
func (c *Collector) IncArtifactsCompleted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.artifactsCompleted++
}

// AddDisplayBytes records n bytes of clean display output.
func (c *Collector) AddDisplayBytes(n int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.displayBytes += int64(n)
}

// Snapshot returns an immutable copy of all counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		DeltasReceived:     c.deltasReceived,
		BytesReceived:      c.bytesReceived,
		DecodeFallbacks:    c.decodeFallbacks,
		UpstreamErrors:     c.upstreamErrors,
		SentinelReceived:   c.sentinelReceived,
		ArtifactsStarted:   c.artifactsStarted,
		ArtifactsCompleted: c.artifactsCompleted,
		DisplayBytes:       c.displayBytes,
		SessionID:          c.sessionID,
		Mode:               c.mode,
	}
}
