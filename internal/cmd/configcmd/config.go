// Package configcmd provides config management commands.
package configcmd

import (
	"github.com/spf13/cobra"
)

// NewCmdConfig creates the config command.
func NewCmdConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage fnote configuration",
		Long:  `Commands for viewing, testing, and clearing fnote configuration.`,
	}

	cmd.AddCommand(NewCmdShow())
	cmd.AddCommand(NewCmdTest())
	cmd.AddCommand(NewCmdClear())

	return cmd
}

// globalFlags reads the root flags shared by the config commands.
func globalFlags(cmd *cobra.Command) (configPath string, noColor bool) {
	configPath, _ = cmd.Flags().GetString("config")
	noColor, _ = cmd.Flags().GetBool("no-color")
	return configPath, noColor
}
