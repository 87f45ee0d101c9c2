package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestMergeDriverRun_CleanMerge(t *testing.T) {
	dir := t.TempDir()
	base := writeTempFile(t, dir, "base.json", `{"a": 1}`)
	current := writeTempFile(t, dir, "current.json", `{"a": 2}`)
	other := writeTempFile(t, dir, "other.json", `{"a": 1, "b": 3}`)

	require.NoError(t, mergeDriverRun(base, current, other))

	data, err := os.ReadFile(current)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"a": 2`)
	assert.Contains(t, string(data), `"b": 3`)
}

func TestMergeDriverRun_ConflictReturnsError(t *testing.T) {
	dir := t.TempDir()
	base := writeTempFile(t, dir, "base.json", `{"a": 1}`)
	current := writeTempFile(t, dir, "current.json", `{"a": 2}`)
	other := writeTempFile(t, dir, "other.json", `{"a": 3}`)

	err := mergeDriverRun(base, current, other)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflicting changes")
}

func TestVersionCommandOutput(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "goapgit")
}
