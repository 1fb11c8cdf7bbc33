// Package render provides the render command.
package render

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/footnote-cli/internal/extract"
	"github.com/open-cli-collective/footnote-cli/pkg/md"
)

// NewCmdRender creates the render command.
func NewCmdRender() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <input> [output]",
		Short: "Render an extracted document as HTML",
		Long: `Convert the output of fnote extract to HTML.

Reference tokens become superscript links and every FN-N entry becomes a
footnote paragraph linking back to its reference. The rest of the
document is treated as Markdown. Output goes to stdout unless [output]
is given. Use - for stdin.`,
		Example: `  # Preview a document in the browser
  fnote render final.txt final.html

  # Pipe extraction straight into rendering
  fnote extract draft.txt - | fnote render - > draft.html`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := extract.StdioPath
			if len(args) == 2 {
				output = args[1]
			}
			return runRender(cmd.InOrStdin(), cmd.OutOrStdout(), args[0], output)
		},
	}

	return cmd
}

func runRender(stdin io.Reader, stdout io.Writer, input, output string) error {
	doc, err := readInput(stdin, input)
	if err != nil {
		return fmt.Errorf("%w: %w", extract.ErrInputUnavailable, err)
	}

	html, err := md.RenderHTML(doc)
	if err != nil {
		return err
	}

	if output == extract.StdioPath {
		if n, err := stdout.Write(html); err != nil {
			return &extract.MidStreamError{Stage: extract.StageWrite, Offset: int64(n), Err: err}
		}
		return nil
	}

	if err := os.WriteFile(output, html, 0644); err != nil {
		return fmt.Errorf("%w: %w", extract.ErrOutputUnavailable, err)
	}
	log.Info().Str("input", input).Str("output", output).Int("bytes", len(html)).Msg("rendered document")
	return nil
}

func readInput(stdin io.Reader, input string) ([]byte, error) {
	if input == extract.StdioPath {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(input)
}
