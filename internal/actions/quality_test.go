package actions

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daisuke19891023/goapgit/internal/gitx"
	"github.com/daisuke19891023/goapgit/internal/logging"
)

func TestExplainRangeDiff(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	commitFile(t, dir, "a.txt", "one\n", "first")
	before := gitOut(t, dir, "rev-parse", "HEAD")
	commitFile(t, dir, "a.txt", "two\n", "second")

	f := gitx.New(dir, logging.Nop())
	out, err := ExplainRangeDiff(f, logging.Nop(), before+"..HEAD", before+"..HEAD", "")
	require.NoError(t, err)
	assert.Contains(t, out, "second")
}

func TestExplainRangeDiff_WritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	commitFile(t, dir, "a.txt", "one\n", "first")
	before := gitOut(t, dir, "rev-parse", "HEAD")
	commitFile(t, dir, "a.txt", "two\n", "second")

	outPath := filepath.Join(dir, "reports", "range-diff.txt")
	f := gitx.New(dir, logging.Nop())
	_, err := ExplainRangeDiff(f, logging.Nop(), before+"..HEAD", before+"..HEAD", outPath)
	require.NoError(t, err)

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "second")
}

func TestExplainRangeDiff_BadRange(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	commitFile(t, dir, "a.txt", "one\n", "first")

	f := gitx.New(dir, logging.Nop())
	_, err := ExplainRangeDiff(f, logging.Nop(), "nope..nope", "nope..nope", "")
	require.Error(t, err)
}

func TestFetchAll_DryRunCommandShape(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)

	f := gitx.New(dir, logging.Nop(), gitx.WithDryRun(true))
	require.NoError(t, FetchAll(f, logging.Nop(), ""))

	history := f.History()
	require.Len(t, history, 1)
	assert.Equal(t, []string{"git", "fetch", "--prune", "--tags", "origin"}, history[0].Args)
	assert.True(t, history[0].DryRun)
}

func TestFetchAll_RealRemote(t *testing.T) {
	upstream := t.TempDir()
	initTestRepo(t, upstream)
	commitFile(t, upstream, "a.txt", "hello\n", "initial")

	clone := filepath.Join(t.TempDir(), "clone")
	require.NoError(t, exec.Command("git", "clone", upstream, clone).Run())
	commitFile(t, upstream, "b.txt", "more\n", "second")

	f := gitx.New(clone, logging.Nop())
	require.NoError(t, FetchAll(f, logging.Nop(), "origin"))
	assert.NotEqual(t,
		gitOut(t, clone, "rev-parse", "HEAD"),
		gitOut(t, clone, "rev-parse", "origin/main"))
}
