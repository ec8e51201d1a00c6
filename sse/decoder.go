// Package sse decodes a chunked transport stream into ordered text deltas.
//
// Two wire styles coexist and are tolerated within one stream position:
// line-oriented event framing ("data: <payload>" lines, JSON payloads, the
// [DONE] sentinel) and plain text, where a whole fragment is one delta. The
// decoder is lazy, finite, and non-restartable: deltas come out strictly in
// arrival order and the sequence ends on transport EOF or the sentinel.
//
// Decoding never fails on malformed payloads; a payload that does not parse
// degrades to literal delta text. Only transport errors terminate Next with
// a non-EOF error.
package sse

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/calder-io/sift/metrics"
	"github.com/calder-io/sift/types"
)

// doneSentinel ends the sequence gracefully when received as a payload.
const doneSentinel = "[DONE]"

// eventPrefix marks a framed line.
const eventPrefix = "data:"

// readBufferSize is the transport read granularity.
const readBufferSize = 4096

// eventPayload is the JSON body of a framed event.
type eventPayload struct {
	Content *string `json:"content"`
	Error   *string `json:"error"`
}

// Decoder turns raw transport chunks into a sequence of StreamEvents.
// Not safe for concurrent use; exactly one stream-processing task owns it.
type Decoder struct {
	reader    io.Reader
	collector *metrics.Collector

	buf   []byte // scratch read buffer
	carry []byte // incomplete UTF-8 sequence held across chunks
	line  string // incomplete framed line held across fragments

	framed  bool // sticky: once event framing is seen, stay line-oriented
	sealed  bool // [DONE] observed; no further deltas
	eof     bool
	readErr error

	queue []types.StreamEvent
}

// NewDecoder creates a decoder over the transport stream. collector may be
// nil.
func NewDecoder(r io.Reader, collector *metrics.Collector) *Decoder {
	return &Decoder{
		reader:    r,
		collector: collector,
		buf:       make([]byte, readBufferSize),
	}
}

// Next returns the next decoded event in arrival order.
//
// Errors:
//   - io.EOF: the sequence is exhausted (transport end or sentinel)
//   - anything else: transport failure; already-decoded events are delivered
//     before the error surfaces
func (d *Decoder) Next() (types.StreamEvent, error) {
	for {
		if len(d.queue) > 0 {
			ev := d.queue[0]
			d.queue = d.queue[1:]
			return ev, nil
		}
		if d.readErr != nil {
			return nil, d.readErr
		}
		if d.sealed || d.eof {
			return nil, io.EOF
		}

		n, err := d.reader.Read(d.buf)
		if n > 0 {
			if fragment := d.decodeBytes(d.buf[:n]); fragment != "" {
				d.decodeFragment(fragment)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				d.eof = true
				d.flushTail()
				continue
			}
			d.readErr = err
		}
	}
}

// decodeBytes appends chunk bytes to any held partial rune and returns the
// longest decodable prefix, holding back a trailing incomplete multi-byte
// sequence for the next chunk.
func (d *Decoder) decodeBytes(p []byte) string {
	data := append(d.carry, p...)
	keep := trailingIncomplete(data)
	d.carry = append([]byte(nil), data[len(data)-keep:]...)
	return string(data[:len(data)-keep])
}

// decodeFragment routes one decoded text fragment to the framed or plain
// path. Framing detection is sticky: framed upstreams never interleave raw
// text, and per-fragment re-detection would split "data:" lines straddling
// chunk boundaries.
func (d *Decoder) decodeFragment(fragment string) {
	if !d.framed && !hasEventFraming(fragment) {
		d.emitDelta(fragment)
		return
	}
	d.framed = true

	text := d.line + fragment
	lines := strings.Split(text, "\n")
	// The final element is an incomplete line unless text ended with '\n'
	// (in which case it is ""). Hold it for the next fragment.
	last := len(lines) - 1
	d.line = lines[last]

	for _, ln := range lines[:last] {
		if d.sealed {
			return
		}
		d.processLine(ln)
	}
}

// processLine decodes one complete framed line.
func (d *Decoder) processLine(ln string) {
	ln = strings.TrimSuffix(ln, "\r")
	trimmed := strings.TrimSpace(ln)
	if trimmed == "" {
		// Blank line: event terminator, carries nothing.
		return
	}

	after, ok := strings.CutPrefix(trimmed, eventPrefix)
	if !ok {
		// Non-empty line without the event prefix is a verbatim delta.
		d.emitDelta(ln)
		return
	}

	payload := strings.TrimSpace(after)
	if payload == doneSentinel {
		d.collector.IncSentinelReceived()
		d.queue = append(d.queue, types.Completed{})
		d.sealed = true
		return
	}

	var body eventPayload
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		// Malformed payloads degrade to literal text, never to an error.
		d.collector.IncDecodeFallbacks()
		d.emitDelta(payload)
		return
	}
	switch {
	case body.Error != nil:
		d.collector.IncUpstreamErrors()
		d.queue = append(d.queue, types.ErrorEvent{Message: *body.Error})
	case body.Content != nil:
		d.emitDelta(*body.Content)
	}
	// Valid JSON with neither field carries nothing to emit.
}

// flushTail drains state held for a possible continuation once the
// transport has ended: the incomplete framed line is processed as-is, and
// any held bytes that never completed a rune pass through undecoded.
func (d *Decoder) flushTail() {
	if d.framed && d.line != "" && !d.sealed {
		ln := d.line
		d.line = ""
		d.processLine(ln)
	}
	if len(d.carry) > 0 && !d.sealed {
		d.emitDelta(string(d.carry))
		d.carry = nil
	}
}

func (d *Decoder) emitDelta(text string) {
	if text == "" {
		return
	}
	d.collector.IncDeltasReceived()
	d.collector.AddBytesReceived(len(text))
	d.queue = append(d.queue, types.TextDelta{Text: text})
}

// hasEventFraming reports whether any line of the fragment matches the
// event-prefix grammar.
func hasEventFraming(fragment string) bool {
	for _, ln := range strings.Split(fragment, "\n") {
		if strings.HasPrefix(strings.TrimSpace(ln), eventPrefix) {
			return true
		}
	}
	return false
}

// trailingIncomplete returns how many bytes at the end of b form an
// incomplete UTF-8 multi-byte sequence that a later chunk could finish.
// Invalid sequences return 0 so garbage passes through instead of pinning
// the decoder.
func trailingIncomplete(b []byte) int {
	n := len(b)
	// A rune is at most 4 bytes; look back at most 3 continuation bytes.
	for i := 1; i <= 4 && i <= n; i++ {
		c := b[n-i]
		if c&0xC0 == 0x80 {
			// Continuation byte, keep scanning for the start byte.
			continue
		}
		var size int
		switch {
		case c < 0x80:
			return 0 // ASCII, complete
		case c&0xE0 == 0xC0:
			size = 2
		case c&0xF0 == 0xE0:
			size = 3
		case c&0xF8 == 0xF0:
			size = 4
		default:
			return 0 // invalid start byte
		}
		if size > i {
			return i // sequence still incomplete, hold back
		}
		return 0
	}
	return 0
}
