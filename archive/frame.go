// Package archive persists completed sessions as length-prefixed msgpack
// frames and restores them for inspection.
//
// An archive is a flat sequence of frames: one session record, one
// transcript record, one artifact record per extracted artifact (in
// creation order), and one metrics record. Storage backends sit behind the
// Store interface (local directory or S3).
package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Frame size constants.
const (
	// MaxFrameSize is the maximum frame size (16 MiB), including prefix.
	MaxFrameSize = 16 * 1024 * 1024
	// MaxPayloadSize is the maximum payload size.
	MaxPayloadSize = MaxFrameSize - LengthPrefixSize
	// LengthPrefixSize is the size of the big-endian length prefix.
	LengthPrefixSize = 4
)

// FrameErrorKind classifies frame decoding errors.
type FrameErrorKind int

const (
	// FrameErrorPartial indicates a truncated or incomplete frame.
	FrameErrorPartial FrameErrorKind = iota
	// FrameErrorTooLarge indicates a frame exceeding MaxFrameSize.
	FrameErrorTooLarge
	// FrameErrorDecode indicates a msgpack decoding error.
	FrameErrorDecode
)

// FrameError represents a frame encoding or decoding error.
type FrameError struct {
	Kind FrameErrorKind
	Msg  string
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsFrameError returns true if the error is a FrameError of the given kind.
func IsFrameError(err error, kind FrameErrorKind) bool {
	var fErr *FrameError
	if errors.As(err, &fErr) {
		return fErr.Kind == kind
	}
	return false
}

// FrameEncoder writes length-prefixed msgpack frames to a stream.
type FrameEncoder struct {
	writer io.Writer
}

// NewFrameEncoder creates a frame encoder.
func NewFrameEncoder(w io.Writer) *FrameEncoder {
	return &FrameEncoder{writer: w}
}

// WriteRecord marshals a record and writes it as one frame.
func (e *FrameEncoder) WriteRecord(record any) error {
	payload, err := msgpack.Marshal(record)
	if err != nil {
		return &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to encode record",
			Err:  err,
		}
	}
	if len(payload) > MaxPayloadSize {
		return &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", len(payload), MaxPayloadSize),
		}
	}

	var lengthBuf [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(lengthBuf[:], uint32(len(payload)))
	if _, err := e.writer.Write(lengthBuf[:]); err != nil {
		return fmt.Errorf("write length prefix: %w", err)
	}
	if _, err := e.writer.Write(payload); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}

// FrameDecoder reads length-prefixed msgpack frames from a stream.
type FrameDecoder struct {
	reader io.Reader
}

// NewFrameDecoder creates a frame decoder.
func NewFrameDecoder(r io.Reader) *FrameDecoder {
	return &FrameDecoder{reader: r}
}

// ReadFrame reads a single frame and returns the raw msgpack payload.
//
// Errors:
//   - io.EOF: stream ended cleanly (no more frames)
//   - *FrameError with Kind=FrameErrorPartial: incomplete frame
//   - *FrameError with Kind=FrameErrorTooLarge: frame exceeds limit
func (d *FrameDecoder) ReadFrame() ([]byte, error) {
	var lengthBuf [LengthPrefixSize]byte
	if _, err := io.ReadFull(d.reader, lengthBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read length prefix",
			Err:  err,
		}
	}

	payloadSize := binary.BigEndian.Uint32(lengthBuf[:])
	if payloadSize > MaxPayloadSize {
		return nil, &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", payloadSize, MaxPayloadSize),
		}
	}

	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(d.reader, payload); err != nil {
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read payload",
			Err:  err,
		}
	}
	return payload, nil
}

// recordKindProbe peeks at the kind field without a full decode.
type recordKindProbe struct {
	Kind string `msgpack:"kind"`
}

// DecodeRecord decodes a payload into its concrete record type,
// discriminated by the kind field.
func DecodeRecord(payload []byte) (any, error) {
	var probe recordKindProbe
	if err := msgpack.Unmarshal(payload, &probe); err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to decode record kind",
			Err:  err,
		}
	}

	switch probe.Kind {
	case RecordKindSession:
		return decodeAs[SessionRecord](payload)
	case RecordKindTranscript:
		return decodeAs[TranscriptRecord](payload)
	case RecordKindArtifact:
		return decodeAs[ArtifactRecord](payload)
	case RecordKindMetrics:
		return decodeAs[MetricsRecord](payload)
	default:
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  fmt.Sprintf("unknown record kind %q", probe.Kind),
		}
	}
}

func decodeAs[T any](payload []byte) (*T, error) {
	var record T
	if err := msgpack.Unmarshal(payload, &record); err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to decode record",
			Err:  err,
		}
	}
	return &record, nil
}

// encodeFrames renders a record sequence into one archive blob.
func encodeFrames(records []any) ([]byte, error) {
	var buf bytes.Buffer
	enc := NewFrameEncoder(&buf)
	for _, r := range records {
		if err := enc.WriteRecord(r); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
