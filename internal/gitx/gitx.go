// Package gitx wraps git command execution for a single repository.
// All repository mutation in goapgit flows through a Facade, which
// centralizes dry-run handling, command history, and structured logging.
package gitx

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/daisuke19891023/goapgit/internal/logging"
)

// CommandError reports a git command that exited with a non-zero
// status, carrying the captured output for diagnostics.
type CommandError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git command failed; command=%s; returncode=%d",
		strings.Join(e.Args, " "), e.ExitCode)
}

// Result holds the outcome of one git invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// HistoryEntry records one command the facade ran (or skipped under
// dry-run).
type HistoryEntry struct {
	Args     []string
	Dir      string
	ExitCode int
	DryRun   bool
}

// Facade runs git commands bound to one repository root.
type Facade struct {
	repoPath string
	log      *zap.Logger
	dryRun   bool
	env      []string
	timeout  time.Duration
	history  []HistoryEntry
}

// Option configures a Facade.
type Option func(*Facade)

// WithDryRun makes the facade log and record commands without running
// them.
func WithDryRun(dryRun bool) Option {
	return func(f *Facade) { f.dryRun = dryRun }
}

// WithEnv adds environment variables (KEY=VALUE form) to every command.
func WithEnv(env []string) Option {
	return func(f *Facade) { f.env = env }
}

// WithTimeout sets a per-command timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Facade) { f.timeout = d }
}

// New creates a facade bound to a repository root.
func New(repoPath string, log *zap.Logger, opts ...Option) *Facade {
	f := &Facade{repoPath: repoPath, log: log}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RepoPath returns the repository root the facade operates on.
func (f *Facade) RepoPath() string { return f.repoPath }

// IsDryRun reports whether commands are skipped.
func (f *Facade) IsDryRun() bool { return f.dryRun }

// History returns a copy of the recorded command history.
func (f *Facade) History() []HistoryEntry {
	out := make([]HistoryEntry, len(f.history))
	copy(out, f.history)
	return out
}

// Run executes a git subcommand (args without the leading "git") and
// returns an error when it exits non-zero. The error is a
// *CommandError retrievable with errors.As.
func (f *Facade) Run(args ...string) (Result, error) {
	res, err := f.RunUnchecked(args...)
	if err != nil {
		return res, err
	}
	if res.ExitCode != 0 {
		return res, &CommandError{
			Args:     append([]string{"git"}, args...),
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		}
	}
	return res, nil
}

// RunUnchecked executes a git subcommand but treats a non-zero exit as
// a normal outcome; only spawn failures return an error.
func (f *Facade) RunUnchecked(args ...string) (Result, error) {
	full := append([]string{"git"}, args...)
	f.log.Info("executing git command",
		logging.Strings("command", full),
		zap.String("cwd", f.repoPath),
		zap.Bool("dry_run", f.dryRun),
	)

	if f.dryRun {
		f.history = append(f.history, HistoryEntry{Args: full, Dir: f.repoPath, DryRun: true})
		return Result{}, nil
	}

	cmdArgs := append([]string{"-C", f.repoPath}, args...)
	cmd := exec.Command("git", cmdArgs...)
	if len(f.env) > 0 {
		cmd.Env = f.env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start git %s: %w", strings.Join(args, " "), err)
	}
	err := f.wait(cmd)

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return Result{}, fmt.Errorf("run git %s: %w", strings.Join(args, " "), err)
		}
		res.ExitCode = exitErr.ExitCode()
	}

	f.history = append(f.history, HistoryEntry{Args: full, Dir: f.repoPath, ExitCode: res.ExitCode})

	if res.Stdout != "" {
		f.log.Debug("git stdout", logging.String("stdout", res.Stdout))
	}
	if res.Stderr != "" {
		f.log.Debug("git stderr", logging.String("stderr", res.Stderr))
	}
	return res, nil
}

func (f *Facade) wait(cmd *exec.Cmd) error {
	if f.timeout <= 0 {
		return cmd.Wait()
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(f.timeout):
		_ = cmd.Process.Kill()
		<-done
		return fmt.Errorf("git command timed out after %s", f.timeout)
	}
}

// Fetch fetches from the remote with safe defaults (--prune --tags).
func (f *Facade) Fetch(remote string, extraArgs ...string) (Result, error) {
	args := []string{"fetch", "--prune", "--tags"}
	args = append(args, extraArgs...)
	args = append(args, remote)
	return f.Run(args...)
}

// Rebase runs git rebase with optional --onto and extra options.
func (f *Facade) Rebase(branch, onto string, opts ...string) (Result, error) {
	args := []string{"rebase"}
	args = append(args, opts...)
	if onto != "" {
		args = append(args, "--onto", onto)
	}
	if branch != "" {
		args = append(args, branch)
	}
	return f.Run(args...)
}

// RebaseContinue continues an in-progress rebase.
func (f *Facade) RebaseContinue() (Result, error) {
	return f.Run("rebase", "--continue")
}

// RebaseAbort aborts an in-progress rebase.
func (f *Facade) RebaseAbort() (Result, error) {
	return f.Run("rebase", "--abort")
}

// PushWithLease pushes to the remote with --force-with-lease.
func (f *Facade) PushWithLease(remote string, refspecs ...string) (Result, error) {
	args := []string{"push", "--force-with-lease", remote}
	args = append(args, refspecs...)
	return f.Run(args...)
}
