// Package extractcmd provides the extract command.
package extractcmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/footnote-cli/internal/config"
	"github.com/open-cli-collective/footnote-cli/internal/extract"
	"github.com/open-cli-collective/footnote-cli/internal/view"
	"github.com/open-cli-collective/footnote-cli/pkg/footnote"
)

type extractOptions struct {
	configPath string
	output     string
	noColor    bool

	chunkSize      int
	queue          string
	queuePath      string
	unmatchedClose string
	unterminated   string
	append         bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewCmdExtract creates the extract command.
func NewCmdExtract() *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract <input> <output>",
		Short: "Extract footnotes from a document",
		Long: `Read <input> in chunks, move every (footnote) out of the text and write
the result to <output>.

Each footnote is replaced by a reference token (^1, ^2, ...). A # in the
input dumps the footnotes collected so far as "FN-N:body" entries; any
footnotes still pending at end of input are dumped then. Use - for stdin
or stdout.

Flags override the config file and FNOTE_* environment variables.`,
		Example: `  # Extract footnotes from a file
  fnote extract draft.txt final.txt

  # Stream through a pipe with the on-disk queue
  cat draft.txt | fnote extract - - --queue sqlite > final.txt

  # Fail on a ) without a matching (
  fnote extract draft.txt final.txt --unmatched-close error`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Get global flags
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.stdin = cmd.InOrStdin()
			opts.stdout = cmd.OutOrStdout()
			opts.stderr = cmd.ErrOrStderr()

			cfg, err := loadConfig(opts, cmd.Flags().Changed)
			if err != nil {
				return err
			}
			return runExtract(cmd, args[0], args[1], cfg, opts)
		},
	}

	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", config.DefaultChunkSize, "Bytes read from the input at a time")
	cmd.Flags().StringVar(&opts.queue, "queue", config.QueueMemory, "Footnote queue backend: memory, sqlite")
	cmd.Flags().StringVar(&opts.queuePath, "queue-path", "", "SQLite queue file (default: a temporary file)")
	cmd.Flags().StringVar(&opts.unmatchedClose, "unmatched-close", footnote.UnmatchedClosePlain.String(), "Handling of ) outside a footnote: plain, clamp, error")
	cmd.Flags().StringVar(&opts.unterminated, "unterminated", footnote.UnterminatedFootnote.String(), "Handling of a footnote open at end of input: footnote, text, drop")
	cmd.Flags().BoolVar(&opts.append, "append", false, "Append to <output> instead of truncating it")

	_ = cmd.RegisterFlagCompletionFunc("queue", cobra.FixedCompletions([]string{config.QueueMemory, config.QueueSQLite}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("unmatched-close", cobra.FixedCompletions([]string{"plain", "clamp", "error"}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("unterminated", cobra.FixedCompletions([]string{"footnote", "text", "drop"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// loadConfig merges the config file, the environment and the flags that were
// set on the command line.
func loadConfig(opts *extractOptions, changed func(string) bool) (*config.Config, error) {
	cfg, err := config.LoadWithEnv(config.ResolvePath(opts.configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if changed("chunk-size") {
		cfg.ChunkSize = opts.chunkSize
	}
	if changed("queue") {
		cfg.Queue = opts.queue
	}
	if changed("queue-path") {
		cfg.QueuePath = opts.queuePath
	}
	if changed("unmatched-close") {
		cfg.UnmatchedClose = opts.unmatchedClose
	}
	if changed("unterminated") {
		cfg.Unterminated = opts.unterminated
	}
	if changed("append") {
		cfg.Append = opts.append
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runExtract(cmd *cobra.Command, input, output string, cfg *config.Config, opts *extractOptions) error {
	unmatched, unterminated, err := cfg.Policies()
	if err != nil {
		return err
	}

	res, err := extract.Run(cmd.Context(), extract.Options{
		InputPath:      input,
		OutputPath:     output,
		ChunkSize:      cfg.ChunkSize,
		Queue:          cfg.Queue,
		QueuePath:      cfg.QueuePath,
		UnmatchedClose: unmatched,
		Unterminated:   unterminated,
		Append:         cfg.Append,
		Stdin:          opts.stdin,
		Stdout:         opts.stdout,
	})
	if err != nil {
		return err
	}

	// Render output
	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(opts.stderr)

	if err := renderer.RenderFields(summary(input, output, res)); err != nil {
		return err
	}
	if res.Unclosed > 0 {
		renderer.Warning(fmt.Sprintf("Input ended inside %d open footnote(s); resolved as --unterminated %s", res.Unclosed, cfg.Unterminated))
	}
	if view.Format(opts.output) == view.FormatTable {
		renderer.Success("Footnotes extracted and formatted.")
	}
	return nil
}

func summary(input, output string, res *extract.Result) []view.Field {
	return []view.Field{
		{Key: "Input", Value: input},
		{Key: "Output", Value: output},
		{Key: "Chunks", Value: strconv.FormatInt(res.Chunks, 10)},
		{Key: "Bytes in", Value: strconv.FormatInt(res.BytesIn, 10)},
		{Key: "Bytes out", Value: strconv.FormatInt(res.BytesOut, 10)},
		{Key: "Footnotes", Value: strconv.FormatInt(res.Footnotes, 10)},
		{Key: "Dumps", Value: strconv.FormatInt(res.Drains, 10)},
		{Key: "Unclosed", Value: strconv.Itoa(res.Unclosed)},
		{Key: "Duration", Value: res.Duration.String()},
	}
}
