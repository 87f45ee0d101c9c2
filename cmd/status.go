package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the observed repository state",
	Long: `Observe the repository and print the derived state: branch and
tracking info, divergence, conflicts, and the computed risk level.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusRun()
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the state as JSON")
	rootCmd.AddCommand(statusCmd)
}

func statusRun() error {
	state, err := newObserver().Observe()
	if err != nil {
		return fmt.Errorf("observe repository: %w", err)
	}

	if statusJSON {
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("encode state: %w", err)
		}
		fmt.Fprintln(ui.Out, string(data))
		return nil
	}
	return ui.RenderState(state)
}
