package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/daisuke19891023/goapgit/internal/llm"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Ask the LLM for per-file conflict resolution advice",
	Long: `Send the current conflict list (paths, types, and hunk counts; never
file contents) to the Anthropic API and print per-path resolution
suggestions. Suggestions are advisory only and never applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return suggestRun(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}

func suggestRun(ctx context.Context) error {
	state, err := newObserver().Observe()
	if err != nil {
		return fmt.Errorf("observe repository: %w", err)
	}
	if len(state.Conflicts) == 0 {
		ui.Success("no conflicts to suggest resolutions for")
		return nil
	}

	client := llm.NewClient(viper.GetString("anthropic.api_key"), viper.GetString("anthropic.model"))
	suggestions, err := client.SuggestResolutions(ctx, state.Conflicts, state.Ref.Branch, string(cfg.Goal.Mode))
	if err != nil {
		return fmt.Errorf("request suggestions: %w", err)
	}

	table := ui.Table([]string{"Path", "Strategy", "Confidence", "Rationale"})
	for _, s := range suggestions {
		table.Append([]string{s.Path, s.Strategy, fmt.Sprintf("%.2f", s.Confidence), s.Rationale})
	}
	return table.Render()
}
