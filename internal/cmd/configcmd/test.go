package configcmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/footnote-cli/internal/config"
	"github.com/open-cli-collective/footnote-cli/internal/sqlitequeue"
)

// NewCmdTest creates the config test command.
func NewCmdTest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Validate configuration and the queue backend",
		Long: `Check that the fnote configuration is valid and that the configured
footnote queue can be opened, written and read.`,
		Example: `  # Test configuration
  fnote config test`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, noColor := globalFlags(cmd)
			cfg, err := config.LoadWithEnv(config.ResolvePath(configPath))
			if err != nil {
				return fmt.Errorf("failed to load config: %w (run 'fnote init' to configure)", err)
			}
			return runTest(cmd.OutOrStdout(), noColor, cfg)
		},
	}

	return cmd
}

func runTest(w io.Writer, noColor bool, cfg *config.Config) error {
	if noColor {
		color.NoColor = true
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	if err := cfg.Validate(); err != nil {
		_, _ = red.Fprintln(w, "✗ Invalid configuration:", err)
		fmt.Fprintln(w, "\nCheck your settings with: fnote config show")
		fmt.Fprintln(w, "Reconfigure with: fnote init")
		return fmt.Errorf("invalid config: %w", err)
	}
	_, _ = green.Fprintln(w, "✓ Configuration is valid")

	fmt.Fprintf(w, "Testing %s queue...\n", cfg.Queue)
	if err := checkQueue(cfg); err != nil {
		_, _ = red.Fprintln(w, "✗ Queue check failed:", err)
		return fmt.Errorf("queue check failed: %w", err)
	}
	_, _ = green.Fprintln(w, "✓ Queue backend ready")

	return nil
}

// checkQueue opens the configured queue and round-trips one entry through it.
func checkQueue(cfg *config.Config) error {
	if cfg.Queue != config.QueueSQLite {
		return nil
	}

	q, err := sqlitequeue.Open(cfg.QueuePath)
	if err != nil {
		return err
	}

	_, err = q.Enqueue([]byte("check"))
	if err == nil {
		_, _, err = q.PopFront()
	}
	if cerr := q.Close(); err == nil {
		err = cerr
	}
	return err
}
