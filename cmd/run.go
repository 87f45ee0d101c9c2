package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/daisuke19891023/goapgit/internal/actions"
	"github.com/daisuke19891023/goapgit/internal/executor"
	"github.com/daisuke19891023/goapgit/internal/planner"
	"github.com/daisuke19891023/goapgit/internal/store"
)

var runNoHistory bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Plan and execute remediation actions",
	Long: `Observe the repository, compute a plan, and execute it action by
action. After every action the repository is re-observed; when the
state shifts unexpectedly a fresh plan is printed instead of executed,
leaving the decision to continue with the operator.

Each attempt is recorded in the local run history database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRun()
	},
}

func init() {
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "Skip recording the run in the history database")
	rootCmd.AddCommand(runCmd)
}

func runRun() error {
	observer := newObserver()
	state, err := observer.Observe()
	if err != nil {
		return fmt.Errorf("observe repository: %w", err)
	}

	facade := newFacade()
	if facade.IsDryRun() {
		ui.DryRunMsg("git commands will be recorded, not executed")
	}

	runner := actions.NewRunner(&actions.Context{
		Facade:   facade,
		Observer: observer,
		Log:      log,
		Config:   cfg,
	})
	catalog := actions.BuildSpecs(state, cfg)

	exec := executor.New(planner.NewDefault(), observer, runner, catalog, cfg.Goal)

	started := time.Now().UTC()
	result, err := exec.Execute(state, nil)
	if err != nil {
		return fmt.Errorf("execute plan: %w", err)
	}
	finished := time.Now().UTC()

	for _, action := range result.ExecutedActions {
		ui.Success("executed %s", action.Name)
	}
	if result.Replanned {
		ui.Warning("state changed during execution; a new plan was computed but not run:")
		if err := ui.RenderPlan(result.FinalPlan); err != nil {
			return err
		}
	} else {
		ui.Success("plan completed: %d actions", len(result.ExecutedActions))
	}

	if !runNoHistory {
		if err := recordRun(state.RepoPath, state.Ref.Branch, result, facade.IsDryRun(), started, finished); err != nil {
			// History is best effort; the remediation itself succeeded.
			ui.Warning("could not record run history: %v", err)
		}
	}
	return nil
}

func recordRun(repoPath, branch string, result executor.ExecutionResult, dryRun bool, started, finished time.Time) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	run := &store.RemediationRun{
		RepoPath:        repoPath,
		Branch:          branch,
		GoalMode:        cfg.Goal.Mode,
		EstimatedCost:   result.FinalPlan.EstimatedCost,
		ExecutedActions: result.ExecutedActions,
		Replanned:       result.Replanned,
		DryRun:          dryRun,
		StartedAt:       started,
		FinishedAt:      finished,
	}
	return s.CreateRun(context.Background(), run)
}
