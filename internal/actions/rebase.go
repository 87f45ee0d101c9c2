package actions

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/daisuke19891023/goapgit/internal/gitx"
)

// RebaseOptions tune RebaseOntoUpstream.
type RebaseOptions struct {
	UpdateRefs bool
	Onto       string
	ExtraArgs  []string
}

// RebaseOntoUpstream rebases the current branch onto upstream. With
// UpdateRefs set, branches that contained the pre-rebase HEAD are
// rebased onto the new base afterwards so stacked branches follow.
func RebaseOntoUpstream(f *gitx.Facade, log *zap.Logger, upstream string, opts RebaseOptions) error {
	var rebaseOpts []string
	var dependents []string
	var originalHead string

	currentBranch := currentBranch(f)

	if opts.UpdateRefs {
		rebaseOpts = append(rebaseOpts, "--update-refs")
		head, err := f.Run("rev-parse", "HEAD")
		if err != nil {
			return fmt.Errorf("resolve HEAD before rebase: %w", err)
		}
		originalHead = strings.TrimSpace(head.Stdout)
		dependents = branchesContaining(f, originalHead, currentBranch)
		if _, err := f.Run("config", "--local", "rebase.updateRefs", "true"); err != nil {
			return err
		}
	}
	rebaseOpts = append(rebaseOpts, opts.ExtraArgs...)

	log.Info("rebasing onto upstream",
		zap.String("upstream", upstream),
		zap.Bool("update_refs", opts.UpdateRefs),
		zap.String("onto", opts.Onto),
		zap.Strings("dependent_branches", dependents),
	)
	if _, err := f.Rebase(upstream, opts.Onto, rebaseOpts...); err != nil {
		return err
	}

	if !opts.UpdateRefs || len(dependents) == 0 || originalHead == "" {
		return nil
	}

	head, err := f.Run("rev-parse", "HEAD")
	if err != nil {
		return err
	}
	newHead := strings.TrimSpace(head.Stdout)

	updated := make([]string, 0, len(dependents))
	for _, branch := range dependents {
		if _, err := f.Run("rebase", "--onto", newHead, originalHead, branch); err != nil {
			return fmt.Errorf("rebase dependent branch %s: %w", branch, err)
		}
		updated = append(updated, branch)
	}
	if currentBranch != "" {
		if _, err := f.Run("checkout", currentBranch); err != nil {
			return err
		}
	}
	log.Info("updated dependent branches after rebase",
		zap.Strings("branches", updated),
		zap.String("new_base", newHead),
		zap.String("previous_base", originalHead),
	)
	return nil
}

// RebaseContinueOrAbort continues an in-progress rebase when no
// conflicts remain. If continuing fails, the rebase is aborted and
// HEAD optionally restored from backupRef. Returns true only when the
// rebase continued cleanly.
func RebaseContinueOrAbort(f *gitx.Facade, log *zap.Logger, backupRef string) (bool, error) {
	status, err := f.Run("status", "--porcelain")
	if err != nil {
		return false, err
	}
	if conflicts := conflictedPaths(status.Stdout); len(conflicts) > 0 {
		log.Error("cannot continue rebase; conflicts remain",
			zap.Strings("conflicted_paths", conflicts))
		return false, nil
	}

	if _, err := f.RebaseContinue(); err != nil {
		var cmdErr *gitx.CommandError
		if !errors.As(err, &cmdErr) {
			return false, err
		}
		log.Error("rebase --continue failed",
			zap.Int("returncode", cmdErr.ExitCode),
			zap.String("stderr", cmdErr.Stderr))
		if _, abortErr := f.RebaseAbort(); abortErr != nil {
			return false, abortErr
		}
		if backupRef != "" {
			if _, err := f.Run("reset", "--hard", backupRef); err != nil {
				return false, err
			}
			log.Warn("restored head from backup", zap.String("backup_ref", backupRef))
		}
		return false, nil
	}

	log.Info("rebase continued successfully")
	return true, nil
}

// conflictedPaths extracts unmerged paths from porcelain v1 status.
func conflictedPaths(status string) []string {
	var conflicts []string
	for _, line := range strings.Split(status, "\n") {
		if len(line) < 3 {
			continue
		}
		if strings.ContainsRune(line[:2], 'U') {
			conflicts = append(conflicts, strings.TrimSpace(line[3:]))
		}
	}
	return conflicts
}

func currentBranch(f *gitx.Facade) string {
	res, err := f.RunUnchecked("branch", "--show-current")
	if err != nil || res.ExitCode != 0 {
		return ""
	}
	return strings.TrimSpace(res.Stdout)
}

// branchesContaining lists local branches containing commit, excluding
// the named branch.
func branchesContaining(f *gitx.Facade, commit, exclude string) []string {
	res, err := f.RunUnchecked("for-each-ref", "--format=%(refname:short)",
		"--contains", commit, "refs/heads")
	if err != nil || res.ExitCode != 0 {
		return nil
	}
	var branches []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		branch := strings.TrimSpace(line)
		if branch != "" && branch != exclude {
			branches = append(branches, branch)
		}
	}
	return branches
}
