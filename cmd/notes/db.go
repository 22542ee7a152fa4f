package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"notes-agent/internal/repository"
)

const notesTable = "notes"

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the notes table",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the notes table if it does not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.EnsureSchema(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created or verified the %q table (%s).\n", notesTable, store.Dialect())
		return nil
	},
}

var dbCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether the notes table exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		exists, err := store.TableExists(cmd.Context(), notesTable)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("table %q does not exist; run `notes db init`", notesTable)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Table %q exists.\n", notesTable)
		return nil
	},
}

// openStore needs only the DSN, so it skips LLM wiring.
func openStore() (*repository.SQLStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return repository.Open(cfg.DBDSN)
}

func init() {
	dbCmd.AddCommand(dbInitCmd, dbCheckCmd)
	rootCmd.AddCommand(dbCmd)
}
