package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daisuke19891023/goapgit/internal/diagnose"
	"github.com/daisuke19891023/goapgit/internal/output"
)

var diagnoseJSON bool

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Check git configuration and repository size",
	Long: `Compare local git configuration against recommended settings for
automated conflict handling and report repository statistics with
guidance for large repositories.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return diagnoseRun()
	},
}

func init() {
	diagnoseCmd.Flags().BoolVar(&diagnoseJSON, "json", false, "Print the report as JSON")
	rootCmd.AddCommand(diagnoseCmd)
}

func diagnoseRun() error {
	report := diagnose.Generate(newReadFacade())

	if diagnoseJSON {
		out, err := report.ToJSON(true)
		if err != nil {
			return err
		}
		fmt.Fprintln(ui.Out, out)
		return nil
	}

	table := ui.Table([]string{"Setting", "Recommended", "Detected", "OK"})
	for _, check := range report.GitConfig {
		detected := check.Detected
		if detected == "" {
			detected = "(unset)"
		}
		ok := output.Red("no")
		if check.MatchesRecommendation {
			ok = output.Green("yes")
		}
		table.Append([]string{check.Key, check.Recommended, detected, ok})
	}
	if err := table.Render(); err != nil {
		return err
	}

	if stats := report.RepoStats; stats != nil {
		if stats.TrackedFiles != nil {
			ui.Info("tracked files: %d", *stats.TrackedFiles)
		}
		if stats.CommitCount != nil {
			ui.Info("commits: %d", *stats.CommitCount)
		}
		if stats.SizePackKiB != nil {
			ui.Info("pack size: %d KiB", *stats.SizePackKiB)
		}
	}

	guidance := report.LargeRepoGuidance
	if !guidance.Triggered {
		ui.Success("repository size is within comfortable limits")
		return nil
	}
	for _, reason := range guidance.Reasons {
		ui.Warning("%s", reason)
	}
	for _, suggestion := range guidance.Suggestions {
		ui.Info("%s", suggestion)
	}
	return nil
}
