package main

import (
	"github.com/spf13/cobra"

	"notes-agent/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive note dashboard",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, _ []string) error {
	rt, err := newDeps(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer rt.Close()
	return tui.Run(cmd.Context(), rt.service)
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
