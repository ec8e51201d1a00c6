// Package marker implements the artifact delimiter grammar.
//
// Exactly two literal patterns exist: the start marker
// "[CODE_START:<language>]" where <language> is any run of characters
// excluding ']', and the end marker "[CODE_END]". The helpers here are pure
// and stateless; chunk-boundary handling lives in the extraction engine.
package marker

import "strings"

const (
	// StartPrefix is the literal prefix of a start marker, up to but not
	// including the language run.
	StartPrefix = "[CODE_START:"
	// End is the complete end marker literal.
	End = "[CODE_END]"

	closeBracket = ']'
)

// StartMatch describes a complete start marker located within a buffer.
type StartMatch struct {
	// Start is the index of the opening '[' in the buffer.
	Start int
	// CloseBracket is the index of the terminating ']' in the buffer.
	CloseBracket int
	// Language is the run between the prefix and the closing bracket.
	Language string
}

// FindStartMarker locates the first complete start marker in buffer.
// Returns false when no start prefix is present or the closing bracket has
// not arrived yet; the caller must treat the latter as incomplete and hold
// the buffer.
func FindStartMarker(buffer string) (StartMatch, bool) {
	start := strings.Index(buffer, StartPrefix)
	if start < 0 {
		return StartMatch{}, false
	}
	langStart := start + len(StartPrefix)
	rel := strings.IndexByte(buffer[langStart:], closeBracket)
	if rel < 0 {
		return StartMatch{}, false
	}
	return StartMatch{
		Start:        start,
		CloseBracket: langStart + rel,
		Language:     buffer[langStart : langStart+rel],
	}, true
}

// PartialMatchLength returns the length of the longest suffix of buffer that
// equals a prefix of m, or 0 if none. Lengths are checked from the full
// marker length down to 1 so the longest possible match always wins; a
// shorter match must never preempt one that could still complete.
func PartialMatchLength(buffer, m string) int {
	longest := len(m)
	if len(buffer) < longest {
		longest = len(buffer)
	}
	for l := longest; l >= 1; l-- {
		if buffer[len(buffer)-l:] == m[:l] {
			return l
		}
	}
	return 0
}

// HasStartTrace reports whether buffer could still grow into a complete
// start marker: either the full start prefix is present (language run still
// open) or a suffix of buffer is a prefix of the start prefix.
func HasStartTrace(buffer string) bool {
	if strings.Contains(buffer, StartPrefix) {
		return true
	}
	return PartialMatchLength(buffer, StartPrefix) > 0
}
