// Package footnote turns inline footnote markup in a byte stream into numbered
// references followed by dump blocks of the footnote bodies.
//
// Text between '(' and ')' becomes a footnote. Its place in the text is taken
// by a reference token such as ^3. A '#' outside any footnote dumps every
// footnote collected so far. The input is consumed in chunks of any size, so
// memory use is bounded by the open footnote and the undrained backlog rather
// than by the document.
package footnote

import "errors"

// Sentinel errors returned by the processor and its sinks.
var (
	// ErrMalformedBracketing is returned for a ')' with no open footnote
	// when the processor uses UnmatchedCloseError.
	ErrMalformedBracketing = errors.New("unmatched closing bracket")

	// ErrFinalized is returned when a processor is used after Finalize.
	ErrFinalized = errors.New("processor already finalized")

	// ErrSinkClosed is returned when a sink is written after end of stream.
	ErrSinkClosed = errors.New("sink already closed")
)

// Entry is a footnote body paired with its sequence number.
type Entry struct {
	Seq  uint64
	Body []byte
}
