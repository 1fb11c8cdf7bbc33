package root

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/footnote-cli/internal/config"
	"github.com/open-cli-collective/footnote-cli/internal/extract"
	"github.com/open-cli-collective/footnote-cli/internal/version"
)

func TestNewCmdRoot_Subcommands(t *testing.T) {
	cmd := NewCmdRoot()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"extract", "render", "init", "config", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestNewCmdRoot_Version(t *testing.T) {
	cmd := NewCmdRoot()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, version.String()+"\n", buf.String())
}

func TestNewCmdRoot_RejectsBadOutputFormat(t *testing.T) {
	cmd := NewCmdRoot()
	cmd.SetIn(strings.NewReader("x"))
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"extract", "-", "-", "-o", "yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
	assert.Equal(t, ExitUnavailable, ExitCode(err))
}

func TestNewCmdRoot_ExtractEndToEnd(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, v := range config.EnvVars {
		t.Setenv(v, "")
	}

	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(in, []byte("A(x(y)z)#"), 0644))

	cmd := NewCmdRoot()
	stderr := new(bytes.Buffer)
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"extract", in, out, "--no-color", "--queue", "sqlite"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "A^2\n\nFN-1:y\n\n\nFN-2:x^1z\n\n", string(data))
	assert.Contains(t, stderr.String(), "extraction complete")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"input unavailable", fmt.Errorf("%w: gone", extract.ErrInputUnavailable), ExitUnavailable},
		{"bad flag", errors.New("unknown flag: --bogus"), ExitUnavailable},
		{"mid-stream", &extract.MidStreamError{Stage: extract.StageRead, Err: errors.New("eio")}, ExitFailed},
		{"wrapped mid-stream", fmt.Errorf("run: %w", &extract.MidStreamError{Stage: extract.StageClose, Err: errors.New("disk full")}), ExitFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
