package main

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
)

// rootCmd starts the dashboard when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "notes",
	Short: "Manage notes in plain language",
	Long: `notes turns instructions like "create a note called Groceries with milk, eggs"
into note operations. It extracts the intent with an LLM and runs exactly one
of create, retrieve or list against the note store.

Run without arguments to open the interactive dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to notes.yaml (default: search . and ~/.config/notes-agent)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}
