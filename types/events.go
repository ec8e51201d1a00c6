package types

// StreamEvent is the closed set of events produced by the stream decoder.
// Consumers dispatch with a type switch over the three variants; an unknown
// variant is a programming error, not a runtime condition.
type StreamEvent interface {
	streamEvent()
}

// TextDelta carries one ordered unit of new conversational text. Deltas are
// never deduplicated, coalesced, or reordered.
type TextDelta struct {
	Text string
}

// ErrorEvent carries a non-fatal error reported by the upstream stream.
// It does not abort decoding of subsequent events.
type ErrorEvent struct {
	Message string
}

// Completed signals the [DONE] sentinel: the sequence ends gracefully and
// no further deltas are emitted.
type Completed struct{}

func (TextDelta) streamEvent()  {}
func (ErrorEvent) streamEvent() {}
func (Completed) streamEvent()  {}
