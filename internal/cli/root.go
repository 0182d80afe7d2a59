// Package cli implements the palefire CLI commands.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "palefire",
	Short: "Desktop shell for the Palefire chat app",
	Long: `Palefire wraps the Palefire web application in native windows and
integrates it with the OS: system tray, global hotkeys, notifications,
and a quick-chat capture window. Running palefire with no subcommand
launches the shell.`,
	RunE: runShell,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add subcommands (alphabetical)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}
