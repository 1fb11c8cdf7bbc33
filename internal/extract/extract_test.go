package extract

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/footnote-cli/internal/config"
	"github.com/open-cli-collective/footnote-cli/pkg/footnote"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	oldLogger := log.Logger
	log.Logger = zerolog.New(&buf).With().Timestamp().Logger()
	t.Cleanup(func() { log.Logger = oldLogger })
	return &buf
}

func TestRun_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single footnote", "Hello(world)#", "Hello^1\n\nFN-1:world\n\n"},
		{"two footnotes", "A(x)(y)#", "A^1^2\n\nFN-1:x\n\n\nFN-2:y\n\n"},
		{"plain text", "Plain text only", "Plain text only"},
		{"dump at end of stream", "(note)", "^1\n\nFN-1:note\n\n"},
		{"dump of empty queue", "a#b", "a\nb"},
	}

	for _, tt := range tests {
		for _, queue := range []string{config.QueueMemory, config.QueueSQLite} {
			t.Run(tt.name+"/"+queue, func(t *testing.T) {
				in := writeInput(t, tt.input)
				out := filepath.Join(t.TempDir(), "output.txt")

				res, err := Run(context.Background(), Options{
					InputPath:  in,
					OutputPath: out,
					ChunkSize:  3,
					Queue:      queue,
				})
				require.NoError(t, err)
				assert.Equal(t, tt.want, readFile(t, out))
				assert.Equal(t, int64(len(tt.input)), res.BytesIn)
				assert.Equal(t, int64(len(tt.want)), res.BytesOut)
			})
		}
	}
}

func TestRun_ChunkSizesAgree(t *testing.T) {
	input := strings.Repeat("Lorem ipsum (dolor (sit) amet) consectetur #adipiscing (elit) ", 50)
	in := writeInput(t, input)

	var want string
	for _, size := range []int{1, 2, 7, 100, 4096} {
		out := filepath.Join(t.TempDir(), "output.txt")
		_, err := Run(context.Background(), Options{InputPath: in, OutputPath: out, ChunkSize: size})
		require.NoError(t, err)

		got := readFile(t, out)
		if want == "" {
			want = got
			continue
		}
		assert.Equal(t, want, got, "chunk size %d", size)
	}
}

func TestRun_TruncatesExistingOutput(t *testing.T) {
	in := writeInput(t, "new(text)")
	out := filepath.Join(t.TempDir(), "output.txt")
	require.NoError(t, os.WriteFile(out, []byte("old content that is longer"), 0644))

	_, err := Run(context.Background(), Options{InputPath: in, OutputPath: out})
	require.NoError(t, err)
	assert.Equal(t, "new^1\n\nFN-1:text\n\n", readFile(t, out))
}

func TestRun_Append(t *testing.T) {
	in := writeInput(t, "more(text)")
	out := filepath.Join(t.TempDir(), "output.txt")
	require.NoError(t, os.WriteFile(out, []byte("existing\n"), 0644))

	_, err := Run(context.Background(), Options{InputPath: in, OutputPath: out, Append: true})
	require.NoError(t, err)
	assert.Equal(t, "existing\nmore^1\n\nFN-1:text\n\n", readFile(t, out))
}

func TestRun_Policies(t *testing.T) {
	in := writeInput(t, "1) item (open")
	out := filepath.Join(t.TempDir(), "output.txt")

	_, err := Run(context.Background(), Options{
		InputPath:      in,
		OutputPath:     out,
		UnmatchedClose: footnote.UnmatchedCloseClamp,
		Unterminated:   footnote.UnterminatedText,
	})
	require.NoError(t, err)
	assert.Equal(t, "1 item (open", readFile(t, out))
}

func TestRun_Stdio(t *testing.T) {
	var stdout bytes.Buffer
	_, err := Run(context.Background(), Options{
		InputPath:  StdioPath,
		OutputPath: StdioPath,
		Stdin:      strings.NewReader("Hello(world)#"),
		Stdout:     &stdout,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello^1\n\nFN-1:world\n\n", stdout.String())
}

func TestRun_StartupFailures(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, "text")

	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{
			name:    "missing input",
			opts:    Options{InputPath: filepath.Join(dir, "missing.txt"), OutputPath: filepath.Join(dir, "out.txt")},
			wantErr: ErrInputUnavailable,
		},
		{
			name:    "input is a directory",
			opts:    Options{InputPath: dir, OutputPath: filepath.Join(dir, "out.txt")},
			wantErr: ErrInputUnavailable,
		},
		{
			name:    "output directory missing",
			opts:    Options{InputPath: in, OutputPath: filepath.Join(dir, "no", "such", "out.txt")},
			wantErr: ErrOutputUnavailable,
		},
		{
			name:    "output is the input",
			opts:    Options{InputPath: in, OutputPath: in},
			wantErr: ErrOutputUnavailable,
		},
		{
			name:    "unknown queue",
			opts:    Options{InputPath: in, OutputPath: filepath.Join(dir, "out.txt"), Queue: "redis"},
			wantErr: ErrQueueUnavailable,
		},
		{
			name: "sqlite queue path unusable",
			opts: Options{
				InputPath:  in,
				OutputPath: filepath.Join(dir, "out.txt"),
				Queue:      config.QueueSQLite,
				QueuePath:  filepath.Join(dir, "no", "such", "queue.db"),
			},
			wantErr: ErrQueueUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), tt.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var mid *MidStreamError
			assert.False(t, errors.As(err, &mid))
		})
	}

	// The input survives the same-file check.
	assert.Equal(t, "text", readFile(t, in))
}

func TestRun_MalformedInputFailsPartway(t *testing.T) {
	in := writeInput(t, "fine(x) broken) rest")
	out := filepath.Join(t.TempDir(), "output.txt")

	_, err := Run(context.Background(), Options{
		InputPath:      in,
		OutputPath:     out,
		ChunkSize:      4,
		UnmatchedClose: footnote.UnmatchedCloseError,
	})
	require.Error(t, err)

	var mid *MidStreamError
	require.True(t, errors.As(err, &mid))
	assert.Equal(t, StageProcess, mid.Stage)
	assert.Equal(t, int64(12), mid.Offset)
	assert.ErrorIs(t, err, footnote.ErrMalformedBracketing)
}

type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestStream_ReadFailure(t *testing.T) {
	readErr := errors.New("device gone")
	var sink footnote.BufferSink
	p := footnote.NewProcessor(&sink)

	_, err := Stream(context.Background(), &failingReader{data: []byte("abc(def)"), err: readErr}, p, 4)
	require.Error(t, err)

	var mid *MidStreamError
	require.True(t, errors.As(err, &mid))
	assert.Equal(t, StageRead, mid.Stage)
	assert.Equal(t, int64(8), mid.Offset)
	assert.ErrorIs(t, err, readErr)
	assert.Equal(t, "read failed after 8 bytes: device gone", err.Error())

	// No finalize happened.
	assert.False(t, sink.Ended())
}

func TestStream_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sink footnote.BufferSink
	p := footnote.NewProcessor(&sink)

	_, err := Stream(ctx, strings.NewReader("text"), p, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.String())
}

func TestStream_DataWithEOF(t *testing.T) {
	var sink footnote.BufferSink
	p := footnote.NewProcessor(&sink)

	// iotest-style reader returning data together with io.EOF.
	r := io.MultiReader(strings.NewReader("A(x)"), strings.NewReader("#"))
	unclosed, err := Stream(context.Background(), r, p, 16)
	require.NoError(t, err)
	assert.Zero(t, unclosed)
	assert.Equal(t, "A^1\n\nFN-1:x\n\n", sink.String())
	assert.True(t, sink.Ended())
}

func TestStream_ReportsUnclosedFootnotes(t *testing.T) {
	var sink footnote.BufferSink
	p := footnote.NewProcessor(&sink)

	unclosed, err := Stream(context.Background(), strings.NewReader("a(b(c"), p, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, unclosed)
	assert.Equal(t, "a^2\n\nFN-1:c\n\n\nFN-2:b^1\n\n", sink.String())
}

func TestRun_Logs(t *testing.T) {
	logs := captureLogs(t)
	oldLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(oldLevel) })

	in := writeInput(t, "a(b)#c(d")
	out := filepath.Join(t.TempDir(), "output.txt")

	_, err := Run(context.Background(), Options{InputPath: in, OutputPath: out, ChunkSize: 2})
	require.NoError(t, err)

	output := logs.String()
	assert.Contains(t, output, `"message":"extracting footnotes"`)
	assert.Contains(t, output, `"message":"footnotes dumped"`)
	assert.Contains(t, output, `"message":"input ends inside a footnote"`)
	assert.Contains(t, output, `"message":"extraction complete"`)
	assert.Contains(t, output, `"footnotes":2`)
}
