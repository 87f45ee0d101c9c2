package actions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/daisuke19891023/goapgit/internal/gitx"
)

// ExplainRangeDiff runs git range-diff between two commit ranges and
// returns the textual summary, optionally also writing it to
// outputPath. Useful for showing an operator what a rebase changed.
func ExplainRangeDiff(f *gitx.Facade, log *zap.Logger, beforeRange, afterRange, outputPath string) (string, error) {
	res, err := f.RunUnchecked("range-diff", beforeRange, afterRange)
	if err != nil {
		return "", err
	}

	log.Info("computed range diff",
		zap.String("before", beforeRange),
		zap.String("after", afterRange),
		zap.Int("returncode", res.ExitCode),
		zap.String("summary", strings.TrimSpace(res.Stdout)),
	)

	if outputPath != "" {
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			return "", fmt.Errorf("create range-diff output dir: %w", err)
		}
		content := res.Stdout
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
			return "", fmt.Errorf("write range-diff output: %w", err)
		}
	}

	if res.ExitCode != 0 {
		return "", &gitx.CommandError{
			Args:     []string{"git", "range-diff", beforeRange, afterRange},
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		}
	}
	return res.Stdout, nil
}
