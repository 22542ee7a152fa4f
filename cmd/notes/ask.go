package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"notes-agent/internal/domain"
	"notes-agent/internal/presentation"
	"notes-agent/internal/usecase"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var askOutput string

var askCmd = &cobra.Command{
	Use:   "ask [instruction]",
	Short: "Run one instruction and print the result",
	Long: `Runs a single instruction through intent extraction and execution.

Examples:
  notes ask "Create a note named Groceries with text milk, eggs"
  notes ask -o json "show me my groceries note"
  notes ask "list all my notes"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := validateOutput(askOutput); err != nil {
		return err
	}
	rt, err := newDeps(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer rt.Close()

	out, err := rt.service.Ask(cmd.Context(), usecase.AskInput{Text: strings.Join(args, " ")})
	if err != nil {
		view := presentation.RenderError(err)
		var ue *usecase.Error
		if errors.As(err, &ue) && ue.Reason == usecase.ReasonEmptyText {
			view = presentation.RenderInputError()
		}
		fmt.Fprint(cmd.ErrOrStderr(), view.Text())
		return err
	}
	return writeResult(cmd.OutOrStdout(), askOutput, out.Response)
}

func validateOutput(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (must be text, json or yaml)", format)
}

// writeResult prints resp as a rendered view or as structured data.
func writeResult(w io.Writer, format string, resp domain.Response) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resp); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := io.WriteString(w, presentation.Render(resp).Text())
		return err
	}
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askOutput, "output", "o", outputText, "output format: text, json or yaml")
}
