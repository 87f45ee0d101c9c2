package actions

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daisuke19891023/goapgit/internal/gitx"
	"github.com/daisuke19891023/goapgit/internal/logging"
)

// initTestRepo creates a git repo in dir with a user config so commits work on CI.
func initTestRepo(t *testing.T, dir string) {
	t.Helper()
	cmds := [][]string{
		{"git", "-C", dir, "init", "-b", "main"},
		{"git", "-C", dir, "config", "user.email", "test@test.com"},
		{"git", "-C", dir, "config", "user.name", "Test"},
		{"git", "-C", dir, "config", "core.editor", "true"},
	}
	for _, args := range cmds {
		require.NoError(t, exec.Command(args[0], args[1:]...).Run())
	}
}

func commitFile(t *testing.T, dir, name, content, message string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	require.NoError(t, exec.Command("git", "-C", dir, "add", name).Run())
	require.NoError(t, exec.Command("git", "-C", dir, "commit", "-m", message).Run())
}

func gitOut(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := exec.Command("git", append([]string{"-C", dir}, args...)...).CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

// makeMergeConflict sets up a repo where merging feature into main
// leaves name in a conflicted state.
func makeMergeConflict(t *testing.T, dir, name string) {
	t.Helper()
	initTestRepo(t, dir)
	commitFile(t, dir, name, "base\n", "base")
	require.NoError(t, exec.Command("git", "-C", dir, "checkout", "-b", "feature").Run())
	commitFile(t, dir, name, "theirs\n", "feature change")
	require.NoError(t, exec.Command("git", "-C", dir, "checkout", "main").Run())
	commitFile(t, dir, name, "ours\n", "main change")
	// Merge is expected to fail with a conflict.
	_ = exec.Command("git", "-C", dir, "merge", "feature").Run()
}

func TestCreateBackupRef(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	commitFile(t, dir, "a.txt", "hello\n", "initial")

	f := gitx.New(dir, logging.Nop())
	ref, err := CreateBackupRef(f, logging.Nop())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "refs/backup/goap/"))

	head := gitOut(t, dir, "rev-parse", "HEAD")
	assert.Equal(t, head, gitOut(t, dir, "rev-parse", ref))
}

func TestCreateBackupRef_NoCommits(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)

	f := gitx.New(dir, logging.Nop())
	_, err := CreateBackupRef(f, logging.Nop())
	require.Error(t, err)
}

func TestEnsureCleanOrStash_AlreadyClean(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	commitFile(t, dir, "a.txt", "hello\n", "initial")

	f := gitx.New(dir, logging.Nop())
	stashed, err := EnsureCleanOrStash(f, logging.Nop())
	require.NoError(t, err)
	assert.False(t, stashed)
}

func TestEnsureCleanOrStash_DirtyTree(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	commitFile(t, dir, "a.txt", "hello\n", "initial")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("changed\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("untracked\n"), 0644))

	f := gitx.New(dir, logging.Nop())
	stashed, err := EnsureCleanOrStash(f, logging.Nop())
	require.NoError(t, err)
	assert.True(t, stashed)

	assert.Empty(t, gitOut(t, dir, "status", "--porcelain"))
	assert.Contains(t, gitOut(t, dir, "stash", "list"), "goap/")
}
