package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootCmd is the base command for the CLI application. Subcommands
// (run-server, migrate, create-user, stats) register themselves via their
// own init() functions; this keeps the command packages independent and
// avoids import cycles.
var RootCmd = &cobra.Command{
	Use:   "pvlink",
	Short: "A private URL shortener with session-based authentication",
	Long: `pvlink shortens URLs behind a session-authenticated management API.
It tracks per-link click counts and per-country click breakdowns, and
purges expired links in the background.`,
}

// Execute is the entry point called from main.go.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
