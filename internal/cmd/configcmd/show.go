package configcmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/footnote-cli/internal/config"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the effective fnote configuration and where each value comes from.`,
		Example: `  # Show current config
  fnote config show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, noColor := globalFlags(cmd)
			return runShow(cmd.OutOrStdout(), config.ResolvePath(configPath), noColor)
		},
	}

	return cmd
}

func runShow(w io.Writer, configPath string, noColor bool) error {
	if noColor {
		color.NoColor = true
	}

	// Load file config (may not exist)
	fileCfg, fileErr := config.Load(configPath)
	if fileErr != nil {
		fileCfg = &config.Config{}
	}

	// Load full config with env overrides
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	printField := func(label, value, fileValue, envVar string) {
		_, _ = bold.Fprintf(w, "%-17s", label+":")
		if value == "" {
			_, _ = dim.Fprintln(w, "-")
			return
		}

		fmt.Fprint(w, value)

		source := "default"
		switch {
		case os.Getenv(envVar) != "":
			source = envVar
		case fileValue != "" && fileValue == value:
			source = "config"
		}

		_, _ = dim.Fprintf(w, "  (source: %s)\n", source)
	}

	printField("Chunk size", strconv.Itoa(cfg.ChunkSize), intValue(fileCfg.ChunkSize), "FNOTE_CHUNK_SIZE")
	printField("Queue", cfg.Queue, fileCfg.Queue, "FNOTE_QUEUE")
	printField("Queue path", cfg.QueuePath, fileCfg.QueuePath, "FNOTE_QUEUE_PATH")
	printField("Unmatched close", cfg.UnmatchedClose, fileCfg.UnmatchedClose, "FNOTE_UNMATCHED_CLOSE")
	printField("Unterminated", cfg.Unterminated, fileCfg.Unterminated, "FNOTE_UNTERMINATED")
	printField("Append", strconv.FormatBool(cfg.Append), boolValue(fileCfg.Append), "FNOTE_APPEND")

	fmt.Fprintln(w)
	_, _ = dim.Fprintf(w, "Config file: %s\n", configPath)
	if fileErr != nil {
		_, _ = dim.Fprintln(w, "(file not found)")
	}

	return nil
}

func intValue(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func boolValue(b bool) string {
	if !b {
		return ""
	}
	return "true"
}
