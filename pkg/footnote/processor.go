// processor.go implements the chunked footnote scanner.
package footnote

import (
	"fmt"
	"strconv"
)

// Stats describes the work a Processor has done so far.
type Stats struct {
	Chunks    int64 `json:"chunks"`
	BytesIn   int64 `json:"bytes_in"`
	BytesOut  int64 `json:"bytes_out"`
	Footnotes int64 `json:"footnotes"`
	Drains    int64 `json:"drains"`
	Depth     int   `json:"depth"`
}

// Option configures a Processor.
type Option func(*Processor)

// WithQueue replaces the default in-memory queue.
func WithQueue(q Queue) Option {
	return func(p *Processor) {
		p.queue = q
	}
}

// WithUnmatchedClose sets the policy for ')' outside any footnote.
func WithUnmatchedClose(policy UnmatchedClosePolicy) Option {
	return func(p *Processor) {
		p.unmatched = policy
	}
}

// WithUnterminated sets the policy for footnotes still open at end of stream.
func WithUnterminated(policy UnterminatedPolicy) Option {
	return func(p *Processor) {
		p.unterminated = policy
	}
}

// Processor consumes a document chunk by chunk and writes the transformed
// document to a Sink. Chunks must arrive in stream order; a Processor is not
// safe for concurrent use.
//
// Footnotes may nest. An inner footnote closes first, takes the next sequence
// number, and its reference token becomes part of the enclosing body.
type Processor struct {
	sink         Sink
	queue        Queue
	unmatched    UnmatchedClosePolicy
	unterminated UnterminatedPolicy

	// levels[0] holds prose waiting to be emitted; levels[d] holds the body
	// of the footnote opened at depth d.
	levels  [][]byte
	scratch []byte
	offset  int64
	stats   Stats

	err       error
	finalized bool
}

// NewProcessor returns a processor writing to sink. Without options it uses a
// MemoryQueue, keeps unmatched ')' as text and closes unterminated footnotes
// at end of stream.
func NewProcessor(sink Sink, opts ...Option) *Processor {
	p := &Processor{
		sink:   sink,
		levels: make([][]byte, 1, 4),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue == nil {
		p.queue = NewMemoryQueue()
	}
	return p
}

// Process consumes the next chunk of the stream.
func (p *Processor) Process(chunk []byte) error {
	if p.err != nil {
		return p.err
	}
	if p.finalized {
		return ErrFinalized
	}

	p.stats.Chunks++
	for _, b := range chunk {
		pos := p.offset
		p.offset++
		p.stats.BytesIn++
		if err := p.step(b); err != nil {
			return p.fail(fmt.Errorf("offset %d: %w", pos, err))
		}
	}

	// Prose never waits for the next chunk.
	if p.depth() == 0 {
		if err := p.emitProse(); err != nil {
			return p.fail(err)
		}
	}
	return nil
}

// Finalize resolves any footnote left open, dumps the remaining queue and
// signals end of stream to the sink. It must be called exactly once.
func (p *Processor) Finalize() error {
	if p.err != nil {
		return p.err
	}
	if p.finalized {
		return ErrFinalized
	}
	p.finalized = true

	if err := p.resolveUnterminated(); err != nil {
		return p.fail(err)
	}
	if err := p.emitProse(); err != nil {
		return p.fail(err)
	}
	if err := p.drain(false); err != nil {
		return p.fail(err)
	}
	if err := p.sink.EndOfStream(); err != nil {
		return p.fail(err)
	}
	return nil
}

// Write implements io.Writer by processing b as the next chunk.
func (p *Processor) Write(b []byte) (int, error) {
	if err := p.Process(b); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Close implements io.Closer by finalizing the processor.
func (p *Processor) Close() error {
	return p.Finalize()
}

// Stats returns a snapshot of the processor's counters.
func (p *Processor) Stats() Stats {
	s := p.stats
	s.Depth = p.depth()
	return s
}

func (p *Processor) step(b byte) error {
	switch Classify(b) {
	case Open:
		if p.depth() == 0 {
			if err := p.emitProse(); err != nil {
				return err
			}
		}
		p.push()
	case Close:
		if p.depth() == 0 {
			return p.unmatchedClose(b)
		}
		return p.closeFootnote()
	case Flush:
		if p.depth() > 0 {
			p.appendTop(b)
			return nil
		}
		if err := p.emitProse(); err != nil {
			return err
		}
		return p.drain(true)
	default:
		p.appendTop(b)
	}
	return nil
}

func (p *Processor) unmatchedClose(b byte) error {
	switch p.unmatched {
	case UnmatchedCloseClamp:
		return nil
	case UnmatchedCloseError:
		return ErrMalformedBracketing
	default:
		p.appendTop(b)
		return nil
	}
}

// closeFootnote pops the innermost body and replaces it with a reference.
// Empty bodies vanish without a number.
func (p *Processor) closeFootnote() error {
	top := len(p.levels) - 1
	body := p.levels[top]
	p.levels = p.levels[:top]
	return p.reference(body)
}

// reference enqueues body and writes its token at the current depth.
func (p *Processor) reference(body []byte) error {
	if len(body) == 0 {
		return nil
	}
	seq, err := p.queue.Enqueue(body)
	if err != nil {
		return fmt.Errorf("enqueue footnote: %w", err)
	}
	p.stats.Footnotes++

	p.scratch = append(p.scratch[:0], '^')
	p.scratch = strconv.AppendUint(p.scratch, seq, 10)
	if p.depth() == 0 {
		return p.emit(p.scratch)
	}
	top := len(p.levels) - 1
	p.levels[top] = append(p.levels[top], p.scratch...)
	return nil
}

// drain dumps every queued footnote after a single newline. An explicit dump
// always writes the newline; the end-of-stream dump writes nothing when the
// queue is empty.
func (p *Processor) drain(explicit bool) error {
	started := false
	if explicit {
		if err := p.emit([]byte{'\n'}); err != nil {
			return err
		}
		started = true
	}

	dumped := false
	for {
		e, ok, err := p.queue.PopFront()
		if err != nil {
			return fmt.Errorf("pop footnote: %w", err)
		}
		if !ok {
			break
		}
		if !started {
			if err := p.emit([]byte{'\n'}); err != nil {
				return err
			}
			started = true
		}
		p.scratch = AppendEntry(p.scratch[:0], e)
		if err := p.emit(p.scratch); err != nil {
			return err
		}
		dumped = true
	}
	if dumped {
		p.stats.Drains++
	}
	return nil
}

func (p *Processor) resolveUnterminated() error {
	switch p.unterminated {
	case UnterminatedText:
		for d := 1; d < len(p.levels); d++ {
			p.levels[0] = append(p.levels[0], '(')
			p.levels[0] = append(p.levels[0], p.levels[d]...)
		}
		p.levels = p.levels[:1]
	case UnterminatedDrop:
		p.levels = p.levels[:1]
	default:
		for p.depth() > 0 {
			if err := p.closeFootnote(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Processor) emitProse() error {
	if len(p.levels[0]) == 0 {
		return nil
	}
	err := p.emit(p.levels[0])
	p.levels[0] = p.levels[0][:0]
	return err
}

func (p *Processor) emit(b []byte) error {
	if err := p.sink.Accept(b); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	p.stats.BytesOut += int64(len(b))
	return nil
}

func (p *Processor) depth() int {
	return len(p.levels) - 1
}

// push opens a new footnote level, reusing a previously popped buffer when
// one is available.
func (p *Processor) push() {
	n := len(p.levels)
	if n < cap(p.levels) {
		p.levels = p.levels[:n+1]
		p.levels[n] = p.levels[n][:0]
		return
	}
	p.levels = append(p.levels, nil)
}

func (p *Processor) appendTop(b byte) {
	top := len(p.levels) - 1
	p.levels[top] = append(p.levels[top], b)
}

func (p *Processor) fail(err error) error {
	p.err = err
	return err
}

// AppendEntry appends the dump form of e to dst: a newline, "FN-<seq>:", the
// body, and two newlines.
func AppendEntry(dst []byte, e Entry) []byte {
	dst = append(dst, "\nFN-"...)
	dst = strconv.AppendUint(dst, e.Seq, 10)
	dst = append(dst, ':')
	dst = append(dst, e.Body...)
	return append(dst, "\n\n"...)
}
