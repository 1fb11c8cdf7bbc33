// Package init provides the init command for fnote.
package init

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/footnote-cli/internal/config"
	"github.com/open-cli-collective/footnote-cli/pkg/footnote"
)

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	var (
		defaults bool
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize fnote configuration",
		Long: `Initialize fnote with your preferred extraction settings.

This command will guide you through choosing the chunk size, the
footnote queue backend and how malformed input is handled. The
configuration will be saved to ~/.config/fnote/config.yml.`,
		Example: `  # Interactive setup
  fnote init

  # Write the default configuration without prompting
  fnote init --defaults`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			prompt := promptConfig
			if defaults {
				prompt = nil
			}
			return runInit(cmd.OutOrStdout(), config.ResolvePath(configPath), force, prompt)
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "Write the default configuration without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration without asking")

	return cmd
}

// promptFunc fills in cfg interactively.
type promptFunc func(cfg *config.Config) error

func runInit(w io.Writer, configPath string, force bool, prompt promptFunc) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil && !force {
		if prompt == nil {
			return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", configPath)
		}
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", configPath)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Fprintln(w, "Initialization cancelled.")
			return nil
		}
	}

	cfg := config.Default()
	if prompt != nil {
		if err := prompt(cfg); err != nil {
			return err
		}
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Save configuration
	if err := cfg.Save(configPath); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nConfiguration saved to %s\n", configPath)
	fmt.Fprintln(w, "\nYou're all set! Try running:")
	fmt.Fprintln(w, "  fnote extract input.txt output.txt")
	fmt.Fprintln(w, "  fnote config show")

	return nil
}

func promptConfig(cfg *config.Config) error {
	chunkSize := strconv.Itoa(cfg.ChunkSize)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Chunk size").
				Description("Bytes read from the input at a time").
				Value(&chunkSize).
				Validate(validateChunkSize),

			huh.NewSelect[string]().
				Title("Footnote queue").
				Description("Where pending footnotes are kept until the next dump").
				Options(
					huh.NewOption("memory", config.QueueMemory),
					huh.NewOption("sqlite (on disk, for very large documents)", config.QueueSQLite),
				).
				Value(&cfg.Queue),

			huh.NewInput().
				Title("Queue file (optional)").
				Description("SQLite file for the on-disk queue; empty uses a temporary file").
				Value(&cfg.QueuePath),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Unmatched )").
				Description("A ) outside any footnote").
				Options(
					huh.NewOption("keep it as text", footnote.UnmatchedClosePlain.String()),
					huh.NewOption("discard it", footnote.UnmatchedCloseClamp.String()),
					huh.NewOption("stop with an error", footnote.UnmatchedCloseError.String()),
				).
				Value(&cfg.UnmatchedClose),

			huh.NewSelect[string]().
				Title("Unterminated footnote").
				Description("A footnote still open at end of input").
				Options(
					huh.NewOption("close it as a footnote", footnote.UnterminatedFootnote.String()),
					huh.NewOption("keep it as text", footnote.UnterminatedText.String()),
					huh.NewOption("drop it", footnote.UnterminatedDrop.String()),
				).
				Value(&cfg.Unterminated),

			huh.NewConfirm().
				Title("Append to output files?").
				Value(&cfg.Append),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	n, err := strconv.Atoi(chunkSize)
	if err != nil {
		return fmt.Errorf("invalid chunk size: %w", err)
	}
	cfg.ChunkSize = n
	return nil
}

func validateChunkSize(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return errors.New("chunk size must be a number")
	}
	if n <= 0 {
		return errors.New("chunk size must be positive")
	}
	return nil
}
