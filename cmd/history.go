package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daisuke19891023/goapgit/internal/store"
)

var (
	historyLimit    int
	historyAllRepos bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded remediation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyRun()
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
	historyCmd.Flags().BoolVar(&historyAllRepos, "all", false, "Show runs for every repository, not just this one")
	rootCmd.AddCommand(historyCmd)
}

func historyRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}

	filter := store.RunListFilter{Limit: historyLimit}
	if !historyAllRepos {
		filter.RepoPath = repoPath
	}

	runs, err := s.ListRuns(context.Background(), filter)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		ui.Info("No runs recorded yet. Use 'goapgit run' to create one.")
		return nil
	}

	table := ui.Table([]string{"ID", "Started", "Branch", "Goal", "Actions", "Replanned", "Dry-run"})
	for _, run := range runs {
		table.Append([]string{
			run.ID,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Branch,
			string(run.GoalMode),
			fmt.Sprintf("%d", len(run.ExecutedActions)),
			fmt.Sprintf("%v", run.Replanned),
			fmt.Sprintf("%v", run.DryRun),
		})
	}
	return table.Render()
}
