package actions

import (
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/daisuke19891023/goapgit/internal/gitx"
	"github.com/daisuke19891023/goapgit/internal/models"
)

// AutoTrivialResolve replays recorded rerere resolutions when the
// feature is enabled and stages any paths rerere resolved. Returns
// false when rerere is disabled.
func AutoTrivialResolve(f *gitx.Facade, log *zap.Logger) (bool, error) {
	enabledRes, err := f.RunUnchecked("config", "--bool", "rerere.enabled")
	if err != nil {
		return false, err
	}
	enabled := enabledRes.ExitCode == 0 &&
		strings.EqualFold(strings.TrimSpace(enabledRes.Stdout), "true")
	if !enabled {
		log.Info("rerere disabled; skipping auto resolution",
			zap.Int("returncode", enabledRes.ExitCode))
		return false, nil
	}

	if _, err := f.Run("rerere"); err != nil {
		return false, err
	}

	status, err := f.Run("status", "--porcelain")
	if err != nil {
		return false, err
	}
	var staged []string
	for _, p := range conflictedPaths(status.Stdout) {
		if _, err := f.Run("add", "--", p); err != nil {
			return false, err
		}
		staged = append(staged, p)
	}
	log.Info("applied rerere resolutions", zap.Strings("staged_paths", staged))
	return true, nil
}

// ApplyPathStrategy resolves conflicts whose path matches a configured
// rule by checking out ours or theirs, staging the result. Returns the
// resolved paths.
func ApplyPathStrategy(f *gitx.Facade, log *zap.Logger, conflicts []models.ConflictDetail, rules []models.StrategyRule) ([]string, error) {
	var resolved []string
	for _, conflict := range conflicts {
		rule := selectRule(f, conflict.Path, rules)
		if rule == nil {
			continue
		}
		switch rule.Resolution {
		case "theirs":
			if _, err := f.Run("checkout", "--theirs", "--", conflict.Path); err != nil {
				return resolved, err
			}
		case "ours":
			if _, err := f.Run("checkout", "--ours", "--", conflict.Path); err != nil {
				return resolved, err
			}
		default:
			log.Warn("unsupported resolution strategy",
				zap.String("pattern", rule.Pattern),
				zap.String("resolution", rule.Resolution))
			continue
		}
		if _, err := f.Run("add", "--", conflict.Path); err != nil {
			return resolved, err
		}
		log.Info("applied path strategy",
			zap.String("path", conflict.Path),
			zap.String("resolution", rule.Resolution),
			zap.String("when", rule.When))
		resolved = append(resolved, conflict.Path)
	}
	return resolved, nil
}

func selectRule(f *gitx.Facade, relPath string, rules []models.StrategyRule) *models.StrategyRule {
	normalized := path.Clean(strings.ReplaceAll(relPath, "\\", "/"))
	for i := range rules {
		rule := &rules[i]
		if !matchesPattern(normalized, rule.Pattern) {
			continue
		}
		if rule.When == "whitespace_only" && !isWhitespaceOnly(f, relPath) {
			continue
		}
		return rule
	}
	return nil
}

// matchesPattern matches with path.Match, additionally trying the
// pattern without a leading "**/" so deep globs also match top-level
// files.
func matchesPattern(p, pattern string) bool {
	candidates := []string{pattern}
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		candidates = append(candidates, rest)
	}
	for _, candidate := range candidates {
		if ok, err := path.Match(candidate, p); err == nil && ok {
			return true
		}
	}
	return false
}

// isWhitespaceOnly reports whether the ours/theirs stages of relPath
// differ only in whitespace.
func isWhitespaceOnly(f *gitx.Facade, relPath string) bool {
	ours, errOurs := f.RunUnchecked("show", ":2:"+relPath)
	theirs, errTheirs := f.RunUnchecked("show", ":3:"+relPath)
	if errOurs != nil || errTheirs != nil {
		return false
	}
	if ours.ExitCode != 0 || theirs.ExitCode != 0 {
		fullDiff, err := f.Run("diff", "--", relPath)
		if err != nil || strings.TrimSpace(fullDiff.Stdout) == "" {
			return false
		}
		wsDiff, err := f.Run("diff", "-w", "--", relPath)
		if err != nil {
			return false
		}
		return strings.TrimSpace(wsDiff.Stdout) == ""
	}
	return stripWhitespace(ours.Stdout) == stripWhitespace(theirs.Stdout)
}

func stripWhitespace(text string) string {
	return strings.Join(strings.Fields(text), "")
}
