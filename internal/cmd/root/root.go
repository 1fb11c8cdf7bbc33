// Package root provides the root command for the fnote CLI.
package root

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/footnote-cli/internal/cmd/completion"
	"github.com/open-cli-collective/footnote-cli/internal/cmd/configcmd"
	"github.com/open-cli-collective/footnote-cli/internal/cmd/extractcmd"
	initcmd "github.com/open-cli-collective/footnote-cli/internal/cmd/init"
	"github.com/open-cli-collective/footnote-cli/internal/cmd/render"
	"github.com/open-cli-collective/footnote-cli/internal/extract"
	"github.com/open-cli-collective/footnote-cli/internal/logging"
	"github.com/open-cli-collective/footnote-cli/internal/version"
	"github.com/open-cli-collective/footnote-cli/internal/view"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitFailed      = 1
	ExitUnavailable = 2
)

// NewCmdRoot creates the root command for fnote.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fnote",
		Short: "Extract inline footnotes from text streams",
		Long: `fnote is a streaming footnote extractor.

Text inside ( and ) is moved out of the document and replaced with a
numbered reference token such as ^1. Every # in the input dumps the
footnotes collected so far as "FN-1:..." entries. Documents of any size
are processed in fixed-size chunks.

Get started by running: fnote extract input.txt output.txt`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			noColor, _ := cmd.Flags().GetBool("no-color")
			logging.Setup(cmd.ErrOrStderr(), verbose, noColor)

			output, _ := cmd.Flags().GetString("output")
			return view.ValidateFormat(output)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/fnote/config.yml)")
	cmd.PersistentFlags().StringP("output", "o", "table", "summary format: table, json, plain")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	_ = cmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(view.ValidFormats(), cobra.ShellCompDirectiveNoFileComp))

	// Set version template
	cmd.SetVersionTemplate(version.String() + "\n")

	// Subcommands
	cmd.AddCommand(extractcmd.NewCmdExtract())
	cmd.AddCommand(render.NewCmdRender())
	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}

// ExitCode maps an error returned by the root command to a process exit code.
// Failures after processing started exit 1; everything else means fnote
// could not start and exits 2.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var mid *extract.MidStreamError
	if errors.As(err, &mid) {
		return ExitFailed
	}
	return ExitUnavailable
}
