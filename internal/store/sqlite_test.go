package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daisuke19891023/goapgit/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	err = s.Migrate(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func newTestRun(repoPath string) *RemediationRun {
	return &RemediationRun{
		RepoPath:      repoPath,
		Branch:        "main",
		GoalMode:      models.GoalResolveOnly,
		EstimatedCost: 1.8,
		ExecutedActions: []models.ActionSpec{
			{Name: "Safety:CreateBackupRef", Cost: 0.4, Rationale: "snapshot first"},
			{Name: "Conflict:AutoTrivialResolve", Cost: 0.8, Rationale: "reuse rerere"},
		},
	}
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Running migrate again should be a no-op
	err := s.Migrate(ctx)
	assert.NoError(t, err)
}

func TestCreateAndGetRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := newTestRun("/tmp/repo")
	require.NoError(t, s.CreateRun(ctx, run))
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.StartedAt.IsZero())

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.RepoPath, got.RepoPath)
	assert.Equal(t, models.GoalResolveOnly, got.GoalMode)
	assert.InDelta(t, 1.8, got.EstimatedCost, 0.0001)
	require.Len(t, got.ExecutedActions, 2)
	assert.Equal(t, "Safety:CreateBackupRef", got.ExecutedActions[0].Name)
}

func TestGetRun_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListRuns_FilterAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		run := newTestRun("/tmp/repo-a")
		run.StartedAt = time.Now().UTC().Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.CreateRun(ctx, run))
	}
	other := newTestRun("/tmp/repo-b")
	require.NoError(t, s.CreateRun(ctx, other))

	runs, err := s.ListRuns(ctx, RunListFilter{RepoPath: "/tmp/repo-a"})
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	limited, err := s.ListRuns(ctx, RunListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	// Newest first
	assert.False(t, limited[0].StartedAt.Before(limited[1].StartedAt))
}

func TestListRuns_Empty(t *testing.T) {
	s := newTestStore(t)

	runs, err := s.ListRuns(context.Background(), RunListFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestDeleteRunsBefore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := newTestRun("/tmp/repo")
	old.StartedAt = time.Now().UTC().Add(-48 * time.Hour)
	old.FinishedAt = old.StartedAt
	require.NoError(t, s.CreateRun(ctx, old))

	recent := newTestRun("/tmp/repo")
	require.NoError(t, s.CreateRun(ctx, recent))

	deleted, err := s.DeleteRunsBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	runs, err := s.ListRuns(ctx, RunListFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, recent.ID, runs[0].ID)
}

func TestCreateRun_ReplannedAndDryRunRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := newTestRun("/tmp/repo")
	run.Replanned = true
	run.DryRun = true
	require.NoError(t, s.CreateRun(ctx, run))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, got.Replanned)
	assert.True(t, got.DryRun)
}
