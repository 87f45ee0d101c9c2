package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daisuke19891023/goapgit/internal/actions"
	"github.com/daisuke19891023/goapgit/internal/explain"
	"github.com/daisuke19891023/goapgit/internal/planner"
)

var planExplain bool

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute a remediation plan without executing it",
	Long: `Observe the repository, build the applicable action catalog, and
print the bounded cheapest-first plan the executor would run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return planRun()
	},
}

func init() {
	planCmd.Flags().BoolVar(&planExplain, "explain", false, "Include reasons and alternatives per action")
	rootCmd.AddCommand(planCmd)
}

func planRun() error {
	state, err := newObserver().Observe()
	if err != nil {
		return fmt.Errorf("observe repository: %w", err)
	}

	catalog := actions.BuildSpecs(state, cfg)
	plan, err := planner.NewDefault().Plan(state, cfg.Goal, catalog)
	if err != nil {
		if errors.Is(err, planner.ErrTooFewActions) {
			return fmt.Errorf("not enough applicable actions to plan: %w", err)
		}
		return err
	}

	if err := ui.RenderPlan(plan); err != nil {
		return err
	}
	if planExplain {
		contexts := actions.BuildExplainContexts(cfg)
		return ui.RenderExplanations(explain.Plan(plan, contexts))
	}
	return nil
}
