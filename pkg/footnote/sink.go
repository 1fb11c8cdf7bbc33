package footnote

import (
	"bufio"
	"bytes"
	"io"
)

// Sink receives the processor's output. Accept must not retain p after it
// returns. EndOfStream is called at most once, after the last Accept.
type Sink interface {
	Accept(p []byte) error
	EndOfStream() error
}

// WriterSink is a buffered Sink over an io.Writer. EndOfStream flushes the
// buffer but does not close the underlying writer.
type WriterSink struct {
	w     *bufio.Writer
	ended bool
}

// NewWriterSink returns a sink writing to w with a default-sized buffer.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: bufio.NewWriter(w)}
}

// NewWriterSinkSize returns a sink writing to w with a buffer of at least size bytes.
func NewWriterSinkSize(w io.Writer, size int) *WriterSink {
	return &WriterSink{w: bufio.NewWriterSize(w, size)}
}

func (s *WriterSink) Accept(p []byte) error {
	if s.ended {
		return ErrSinkClosed
	}
	_, err := s.w.Write(p)
	return err
}

func (s *WriterSink) EndOfStream() error {
	if s.ended {
		return ErrSinkClosed
	}
	s.ended = true
	return s.w.Flush()
}

// BufferSink collects output in memory.
type BufferSink struct {
	buf   bytes.Buffer
	ended bool
}

func (s *BufferSink) Accept(p []byte) error {
	if s.ended {
		return ErrSinkClosed
	}
	s.buf.Write(p)
	return nil
}

func (s *BufferSink) EndOfStream() error {
	if s.ended {
		return ErrSinkClosed
	}
	s.ended = true
	return nil
}

// Bytes returns the collected output.
func (s *BufferSink) Bytes() []byte {
	return s.buf.Bytes()
}

// String returns the collected output as a string.
func (s *BufferSink) String() string {
	return s.buf.String()
}

// Ended reports whether EndOfStream has been called.
func (s *BufferSink) Ended() bool {
	return s.ended
}
