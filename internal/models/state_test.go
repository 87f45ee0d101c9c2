package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRepoState_Clean(t *testing.T) {
	s := NewRepoState(StateInput{
		RepoPath: "/tmp/repo",
		Ref:      RepoRef{Branch: "main", Tracking: "origin/main"},
	})

	assert.True(t, s.WorkingTreeClean)
	assert.False(t, s.HasUnpushedCommits)
	assert.Equal(t, RiskLow, s.RiskLevel)
	assert.Zero(t, s.ConflictDifficulty)
	assert.Zero(t, s.StalenessScore)
	assert.Nil(t, s.TestsLastResult)
}

func TestNewRepoState_DerivedFields(t *testing.T) {
	s := NewRepoState(StateInput{
		RepoPath: "/tmp/repo",
		Ref:      RepoRef{Branch: "feature"},
		Ahead:    2,
		Behind:   3,
		Conflicts: []ConflictDetail{
			{Path: "a.go", HunkCount: 2, Type: ConflictText},
			{Path: "b.json", HunkCount: 3, Type: ConflictJSON},
		},
	})

	assert.Equal(t, 2, s.DivergedLocal)
	assert.Equal(t, 3, s.DivergedRemote)
	assert.True(t, s.HasUnpushedCommits)
	assert.Equal(t, 5.0, s.ConflictDifficulty)
	assert.Equal(t, 3.0, s.StalenessScore)
	assert.Equal(t, RiskHigh, s.RiskLevel)
}

func TestNewRepoState_RiskPrecedence(t *testing.T) {
	tests := []struct {
		name string
		in   StateInput
		want RiskLevel
	}{
		{"conflicts win over staged", StateInput{
			StagedChanges: true,
			Conflicts:     []ConflictDetail{{Path: "x"}},
		}, RiskHigh},
		{"staged only", StateInput{StagedChanges: true}, RiskMed},
		{"dirty only", StateInput{WorkingTreeDirty: true}, RiskMed},
		{"untracked stays low risk", StateInput{UntrackedPresent: true}, RiskLow},
		{"pristine", StateInput{}, RiskLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewRepoState(tt.in).RiskLevel)
		})
	}
}

func TestNewRepoState_UntrackedDirtiesTree(t *testing.T) {
	s := NewRepoState(StateInput{UntrackedPresent: true})
	assert.False(t, s.WorkingTreeClean)
	assert.Equal(t, RiskLow, s.RiskLevel)
}

func TestRiskLevelBias(t *testing.T) {
	assert.Equal(t, 0.0, RiskLow.Bias())
	assert.Equal(t, 1.0, RiskMed.Bias())
	assert.Equal(t, 2.0, RiskHigh.Bias())
	assert.Equal(t, 0.0, RiskLevel("bogus").Bias())
}

func TestValidGoalMode(t *testing.T) {
	assert.True(t, ValidGoalMode("resolve_only"))
	assert.True(t, ValidGoalMode("rebase_to_upstream"))
	assert.True(t, ValidGoalMode("push_with_lease"))
	assert.False(t, ValidGoalMode("merge_everything"))
}
