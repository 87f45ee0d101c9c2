package mergedriver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeJSON(t *testing.T, dir, name string, payload map[string]any) string {
	t.Helper()
	data, err := json.MarshalIndent(payload, "", "  ")
	require.NoError(t, err)
	return writeFile(t, dir, name, string(data)+"\n")
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestMerge_ComplementaryChanges(t *testing.T) {
	dir := t.TempDir()
	in := Inputs{
		Base:    writeJSON(t, dir, "base.json", map[string]any{"name": "example", "config": map[string]any{"timeout": 10}}),
		Current: writeJSON(t, dir, "current.json", map[string]any{"name": "example", "config": map[string]any{"timeout": 20}}),
		Other:   writeJSON(t, dir, "other.json", map[string]any{"name": "example", "config": map[string]any{"timeout": 10, "retries": 3}}),
	}

	merged, err := Merge(in)
	require.NoError(t, err)
	assert.True(t, merged)

	doc := readJSON(t, in.Current)
	config, ok := doc["config"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(20), config["timeout"])
	assert.Equal(t, float64(3), config["retries"])
}

func TestMerge_ScalarConflictRestoresOriginal(t *testing.T) {
	dir := t.TempDir()
	in := Inputs{
		Base:    writeJSON(t, dir, "base.json", map[string]any{"value": 1}),
		Current: writeJSON(t, dir, "current.json", map[string]any{"value": 2}),
		Other:   writeJSON(t, dir, "other.json", map[string]any{"value": 3}),
	}
	original, err := os.ReadFile(in.Current)
	require.NoError(t, err)

	merged, err := Merge(in)
	require.NoError(t, err)
	assert.False(t, merged)

	after, err := os.ReadFile(in.Current)
	require.NoError(t, err)
	assert.Equal(t, original, after)
}

func TestMerge_KeyAddedOnBothSides(t *testing.T) {
	dir := t.TempDir()
	in := Inputs{
		Base:    writeJSON(t, dir, "base.json", map[string]any{"value": 1}),
		Current: writeJSON(t, dir, "current.json", map[string]any{"value": 2}),
		Other:   writeJSON(t, dir, "other.json", map[string]any{"value": 1, "extra": true}),
	}

	merged, err := Merge(in)
	require.NoError(t, err)
	assert.True(t, merged)

	doc := readJSON(t, in.Current)
	assert.Equal(t, float64(2), doc["value"])
	assert.Equal(t, true, doc["extra"])
}

func TestMerge_ConflictingDeletion(t *testing.T) {
	dir := t.TempDir()
	in := Inputs{
		Base:    writeJSON(t, dir, "base.json", map[string]any{"keep": 1, "gone": 1}),
		Current: writeJSON(t, dir, "current.json", map[string]any{"keep": 1}),
		Other:   writeJSON(t, dir, "other.json", map[string]any{"keep": 1, "gone": 5}),
	}

	merged, err := Merge(in)
	require.NoError(t, err)
	assert.False(t, merged)
}

func TestMerge_ListChangedOneSide(t *testing.T) {
	dir := t.TempDir()
	in := Inputs{
		Base:    writeJSON(t, dir, "base.json", map[string]any{"items": []any{1, 2}}),
		Current: writeJSON(t, dir, "current.json", map[string]any{"items": []any{1, 2}}),
		Other:   writeJSON(t, dir, "other.json", map[string]any{"items": []any{1, 2, 3}}),
	}

	merged, err := Merge(in)
	require.NoError(t, err)
	assert.True(t, merged)

	doc := readJSON(t, in.Current)
	assert.Equal(t, []any{float64(1), float64(2), float64(3)}, doc["items"])
}

func TestMerge_ListChangedBothSides(t *testing.T) {
	dir := t.TempDir()
	in := Inputs{
		Base:    writeJSON(t, dir, "base.json", map[string]any{"items": []any{1}}),
		Current: writeJSON(t, dir, "current.json", map[string]any{"items": []any{1, 2}}),
		Other:   writeJSON(t, dir, "other.json", map[string]any{"items": []any{1, 3}}),
	}

	merged, err := Merge(in)
	require.NoError(t, err)
	assert.False(t, merged)
}

func TestMerge_YAMLFallback(t *testing.T) {
	dir := t.TempDir()
	in := Inputs{
		Base:    writeFile(t, dir, "base.yaml", "name: example\ntimeout: 10\n"),
		Current: writeFile(t, dir, "current.yaml", "name: example\ntimeout: 20\n"),
		Other:   writeFile(t, dir, "other.yaml", "name: example\ntimeout: 10\nretries: 3\n"),
	}

	merged, err := Merge(in)
	require.NoError(t, err)
	assert.True(t, merged)

	// The merged result is always written back as JSON.
	doc := readJSON(t, in.Current)
	assert.Equal(t, float64(20), doc["timeout"])
	assert.Equal(t, float64(3), doc["retries"])
}

func TestMerge_UnparsableDocument(t *testing.T) {
	dir := t.TempDir()
	in := Inputs{
		Base:    writeFile(t, dir, "base.json", "{\n"),
		Current: writeJSON(t, dir, "current.json", map[string]any{"value": 1}),
		Other:   writeJSON(t, dir, "other.json", map[string]any{"value": 1}),
	}

	_, err := Merge(in)
	require.Error(t, err)
}

func TestNormalise_CrossFormatEquality(t *testing.T) {
	var fromJSON any
	require.NoError(t, json.Unmarshal([]byte(`{"a": 1, "b": [2, 3]}`), &fromJSON))
	fromYAML := map[string]any{"a": 1, "b": []any{2, 3}}

	assert.True(t, equal(normalise(fromJSON), normalise(fromYAML)))
}
