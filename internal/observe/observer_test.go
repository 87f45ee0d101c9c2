package observe

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daisuke19891023/goapgit/internal/gitx"
	"github.com/daisuke19891023/goapgit/internal/logging"
	"github.com/daisuke19891023/goapgit/internal/models"
)

func git(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func gitAllowFail(t *testing.T, dir string, args ...string) {
	t.Helper()
	_ = exec.Command("git", append([]string{"-C", dir}, args...)...).Run()
}

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	git(t, dir, "init", "-b", "main")
	git(t, dir, "config", "user.email", "test@test.com")
	git(t, dir, "config", "user.name", "Test")
	return dir
}

func writeAndCommit(t *testing.T, dir, name, content, message string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	git(t, dir, "add", name)
	git(t, dir, "commit", "-m", message)
}

func TestObserver_CleanRepo(t *testing.T) {
	dir := initRepo(t)
	writeAndCommit(t, dir, "a.txt", "hello\n", "initial")

	obs := NewObserver(gitx.New(dir, logging.Nop()))
	state, err := obs.Observe()
	require.NoError(t, err)

	assert.Equal(t, "main", state.Ref.Branch)
	assert.NotEmpty(t, state.Ref.SHA)
	assert.True(t, state.WorkingTreeClean)
	assert.Equal(t, models.RiskLow, state.RiskLevel)
	assert.Empty(t, state.Conflicts)
	assert.False(t, state.OngoingMerge)
}

func TestObserver_DirtyWorktree(t *testing.T) {
	dir := initRepo(t)
	writeAndCommit(t, dir, "a.txt", "hello\n", "initial")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("changed\n"), 0644))

	obs := NewObserver(gitx.New(dir, logging.Nop()))
	state, err := obs.Observe()
	require.NoError(t, err)

	assert.False(t, state.WorkingTreeClean)
	assert.Equal(t, models.RiskMed, state.RiskLevel)
}

func TestObserver_UntrackedFile(t *testing.T) {
	dir := initRepo(t)
	writeAndCommit(t, dir, "a.txt", "hello\n", "initial")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("new\n"), 0644))

	obs := NewObserver(gitx.New(dir, logging.Nop()))
	state, err := obs.Observe()
	require.NoError(t, err)

	assert.False(t, state.WorkingTreeClean)
	assert.Equal(t, models.RiskLow, state.RiskLevel)
}

func TestObserver_MergeConflict(t *testing.T) {
	dir := initRepo(t)
	writeAndCommit(t, dir, "data.json", "{\"v\": 1}\n", "initial")

	git(t, dir, "checkout", "-b", "feature")
	writeAndCommit(t, dir, "data.json", "{\"v\": 2}\n", "feature change")
	git(t, dir, "checkout", "main")
	writeAndCommit(t, dir, "data.json", "{\"v\": 3}\n", "main change")
	gitAllowFail(t, dir, "merge", "feature")

	obs := NewObserver(gitx.New(dir, logging.Nop()))
	state, err := obs.Observe()
	require.NoError(t, err)

	require.Len(t, state.Conflicts, 1)
	assert.Equal(t, "data.json", state.Conflicts[0].Path)
	assert.Equal(t, models.ConflictJSON, state.Conflicts[0].Type)
	assert.GreaterOrEqual(t, state.Conflicts[0].HunkCount, 1)
	assert.Equal(t, models.RiskHigh, state.RiskLevel)
	assert.True(t, state.OngoingMerge)
	assert.Equal(t, state.ConflictDifficulty, float64(state.Conflicts[0].HunkCount))
}

func TestPredictMergeConflicts_RealRepo(t *testing.T) {
	dir := initRepo(t)
	writeAndCommit(t, dir, "data.txt", "one\n", "initial")

	git(t, dir, "checkout", "-b", "feature")
	writeAndCommit(t, dir, "data.txt", "two\n", "feature change")
	git(t, dir, "checkout", "main")
	writeAndCommit(t, dir, "data.txt", "three\n", "main change")

	facade := gitx.New(dir, logging.Nop())
	paths, err := PredictMergeConflicts(facade, "main", "feature")
	require.NoError(t, err)
	assert.Equal(t, []string{"data.txt"}, paths)
}
