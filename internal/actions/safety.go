// Package actions implements the concrete remediation steps the
// planner can schedule, plus the catalog that maps action names to
// handlers for the executor.
package actions

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/daisuke19891023/goapgit/internal/gitx"
)

const (
	backupRefPrefix = "refs/backup/goap"
	stashPrefix     = "goap"
)

func timestamp() string {
	return time.Now().UTC().Format("20060102T150405Z")
}

// CreateBackupRef creates a backup ref pointing at HEAD and returns its
// full name, so later steps can restore the original position.
func CreateBackupRef(f *gitx.Facade, log *zap.Logger) (string, error) {
	head, err := f.Run("rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	sha := strings.TrimSpace(head.Stdout)

	ref := backupRefPrefix + "/" + timestamp()
	if _, err := f.Run("update-ref", ref, sha); err != nil {
		return "", fmt.Errorf("create backup ref %s: %w", ref, err)
	}

	log.Info("created backup ref", zap.String("ref", ref), zap.String("sha", sha))
	return ref, nil
}

// EnsureCleanOrStash stashes a dirty worktree under a timestamped label
// and reports whether a stash was created.
func EnsureCleanOrStash(f *gitx.Facade, log *zap.Logger) (bool, error) {
	status, err := f.Run("status", "--porcelain")
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(status.Stdout) == "" {
		log.Info("working tree already clean; no stash required")
		return false, nil
	}

	label := stashPrefix + "/" + timestamp()
	if _, err := f.Run("stash", "push", "--include-untracked", "-m", label); err != nil {
		return false, fmt.Errorf("stash dirty worktree: %w", err)
	}
	log.Info("created stash for dirty worktree", zap.String("label", label))
	return true, nil
}
