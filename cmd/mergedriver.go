package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/daisuke19891023/goapgit/internal/mergedriver"
)

var mergeDriverCmd = &cobra.Command{
	Use:   "merge-driver <base> <current> <other>",
	Short: "Three-way merge driver for structured JSON/YAML files",
	Long: `Run goapgit as a git merge driver. Configure it with:

    [merge "goapgit-json"]
        name = goapgit structured merge
        driver = goapgit merge-driver %O %A %B

and a .gitattributes entry such as '*.json merge=goapgit-json'.
Exits non-zero when the documents cannot be merged cleanly, leaving
the current file unchanged so git records the conflict.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mergeDriverRun(args[0], args[1], args[2])
	},
}

func init() {
	rootCmd.AddCommand(mergeDriverCmd)
}

func mergeDriverRun(base, current, other string) error {
	merged, err := mergedriver.Merge(mergedriver.Inputs{
		Base:    base,
		Current: current,
		Other:   other,
	})
	if err != nil {
		return err
	}
	if !merged {
		return errors.New("structured merge found conflicting changes")
	}
	return nil
}
