// Package extract runs the footnote processor over files.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/open-cli-collective/footnote-cli/internal/config"
	"github.com/open-cli-collective/footnote-cli/internal/sqlitequeue"
	"github.com/open-cli-collective/footnote-cli/pkg/footnote"
)

// StdioPath selects stdin for the input or stdout for the output.
const StdioPath = "-"

// Startup failures. Nothing has been read or written when these are returned.
var (
	ErrInputUnavailable  = errors.New("input unavailable")
	ErrOutputUnavailable = errors.New("output unavailable")
	ErrQueueUnavailable  = errors.New("footnote queue unavailable")
)

// Stages of a run in which a MidStreamError can occur.
const (
	StageRead     = "read"
	StageProcess  = "process"
	StageFinalize = "finalize"
	StageWrite    = "write"
	StageClose    = "close"
)

// MidStreamError reports a failure after processing started. The rest of the
// input is left unread.
type MidStreamError struct {
	Stage  string
	Offset int64
	Err    error
}

func (e *MidStreamError) Error() string {
	return fmt.Sprintf("%s failed after %d bytes: %v", e.Stage, e.Offset, e.Err)
}

func (e *MidStreamError) Unwrap() error {
	return e.Err
}

// Options configures a run.
type Options struct {
	InputPath      string
	OutputPath     string
	ChunkSize      int
	Queue          string
	QueuePath      string
	UnmatchedClose footnote.UnmatchedClosePolicy
	Unterminated   footnote.UnterminatedPolicy
	Append         bool

	// Stdin and Stdout replace os.Stdin and os.Stdout for StdioPath.
	Stdin  io.Reader
	Stdout io.Writer
}

// Result summarizes a completed run.
type Result struct {
	footnote.Stats
	// Unclosed is the number of footnotes still open when the input ended.
	// They were resolved by the unterminated policy.
	Unclosed int           `json:"unclosed"`
	Duration time.Duration `json:"duration"`
}

// Run extracts the footnotes of opts.InputPath into opts.OutputPath.
func Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = config.DefaultChunkSize
	}

	in, closeIn, err := openInput(opts)
	if err != nil {
		return nil, err
	}
	defer closeIn()

	queue, closeQueue, err := openQueue(opts)
	if err != nil {
		return nil, err
	}
	defer closeQueue()

	out, closeOut, err := openOutput(opts)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("input", opts.InputPath).
		Str("output", opts.OutputPath).
		Int("chunk_size", opts.ChunkSize).
		Str("queue", opts.Queue).
		Str("unmatched_close", opts.UnmatchedClose.String()).
		Str("unterminated", opts.Unterminated.String()).
		Msg("extracting footnotes")

	sink := footnote.NewWriterSinkSize(out, opts.ChunkSize)
	proc := footnote.NewProcessor(sink,
		footnote.WithQueue(queue),
		footnote.WithUnmatchedClose(opts.UnmatchedClose),
		footnote.WithUnterminated(opts.Unterminated),
	)

	unclosed, streamErr := Stream(ctx, in, proc, opts.ChunkSize)
	closeErr := closeOut()
	stats := proc.Stats()
	if streamErr != nil {
		return nil, streamErr
	}
	if closeErr != nil {
		return nil, &MidStreamError{Stage: StageClose, Offset: stats.BytesIn, Err: closeErr}
	}

	res := &Result{Stats: stats, Unclosed: unclosed, Duration: time.Since(start)}
	log.Info().
		Int64("bytes_in", res.BytesIn).
		Int64("bytes_out", res.BytesOut).
		Int64("chunks", res.Chunks).
		Int64("footnotes", res.Footnotes).
		Int64("drains", res.Drains).
		Dur("duration", res.Duration).
		Msg("extraction complete")
	return res, nil
}

// Stream feeds r to p in chunks of chunkSize bytes and finalizes p at end of
// input. It returns how many footnotes were still open when the input ended.
// The context is checked between chunks.
func Stream(ctx context.Context, r io.Reader, p *footnote.Processor, chunkSize int) (int, error) {
	buf := make([]byte, chunkSize)
	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			return 0, &MidStreamError{Stage: StageRead, Offset: offset, Err: err}
		}

		n, err := r.Read(buf)
		if n > 0 {
			drains := p.Stats().Drains
			if perr := p.Process(buf[:n]); perr != nil {
				return 0, &MidStreamError{Stage: StageProcess, Offset: offset, Err: perr}
			}
			offset += int64(n)
			if s := p.Stats(); s.Drains > drains {
				log.Debug().Int64("offset", offset).Int64("footnotes", s.Footnotes).Msg("footnotes dumped")
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, &MidStreamError{Stage: StageRead, Offset: offset, Err: err}
		}
	}

	depth := p.Stats().Depth
	if depth > 0 {
		log.Warn().Int("depth", depth).Msg("input ends inside a footnote")
	}
	if err := p.Finalize(); err != nil {
		return 0, &MidStreamError{Stage: StageFinalize, Offset: offset, Err: err}
	}
	return depth, nil
}

func openInput(opts Options) (io.Reader, func(), error) {
	if opts.InputPath == StdioPath {
		if opts.Stdin != nil {
			return opts.Stdin, func() {}, nil
		}
		return os.Stdin, func() {}, nil
	}

	f, err := os.Open(opts.InputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	if info, err := f.Stat(); err == nil && info.IsDir() {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%w: %s is a directory", ErrInputUnavailable, opts.InputPath)
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(opts Options) (io.Writer, func() error, error) {
	if opts.OutputPath == StdioPath {
		if opts.Stdout != nil {
			return opts.Stdout, func() error { return nil }, nil
		}
		return os.Stdout, func() error { return nil }, nil
	}

	// Truncating the input before reading it would lose the document.
	if opts.InputPath != StdioPath {
		inInfo, inErr := os.Stat(opts.InputPath)
		outInfo, outErr := os.Stat(opts.OutputPath)
		if inErr == nil && outErr == nil && os.SameFile(inInfo, outInfo) {
			return nil, nil, fmt.Errorf("%w: %s is also the input", ErrOutputUnavailable, opts.OutputPath)
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if opts.Append {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(opts.OutputPath, flags, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrOutputUnavailable, err)
	}
	return f, f.Close, nil
}

func openQueue(opts Options) (footnote.Queue, func(), error) {
	switch opts.Queue {
	case "", config.QueueMemory:
		return footnote.NewMemoryQueue(), func() {}, nil
	case config.QueueSQLite:
		q, err := sqlitequeue.Open(opts.QueuePath)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrQueueUnavailable, err)
		}
		log.Debug().Str("path", q.Path()).Msg("using sqlite footnote queue")
		return q, func() {
			if err := q.Close(); err != nil {
				log.Warn().Err(err).Str("path", q.Path()).Msg("failed to close footnote queue")
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown queue %q", ErrQueueUnavailable, opts.Queue)
	}
}
