package models

// RiskLevel represents the assessed risk for a repository state.
type RiskLevel string

const (
	RiskLow  RiskLevel = "low"
	RiskMed  RiskLevel = "med"
	RiskHigh RiskLevel = "high"
)

// Bias returns the numeric penalty a risk level contributes to the
// heuristic score.
func (r RiskLevel) Bias() float64 {
	switch r {
	case RiskLow:
		return 0.0
	case RiskMed:
		return 1.0
	case RiskHigh:
		return 2.0
	default:
		return 0.0
	}
}

// ConflictType categorizes a conflicted file so resolution strategies
// can be tuned per format.
type ConflictType string

const (
	ConflictText   ConflictType = "text"
	ConflictJSON   ConflictType = "json"
	ConflictYAML   ConflictType = "yaml"
	ConflictLock   ConflictType = "lock"
	ConflictBinary ConflictType = "binary"
)

// RepoRef holds reference metadata for the active repository head.
// Tracking and SHA are empty when unknown (e.g. no upstream, no commits yet).
type RepoRef struct {
	Branch   string
	Tracking string
	SHA      string
}

// ConflictDetail describes a single conflicted path detected in the
// repository. Instances are built once by the conflict classifier and
// treated as read-only afterwards.
type ConflictDetail struct {
	Path              string
	HunkCount         int
	Type              ConflictType
	TrivialRatio      float64
	PreferredStrategy string
}

// RepoState is an immutable snapshot of the observable repository
// attributes relevant for planning. Build it with NewRepoState so the
// derived fields stay consistent; never mutate one in place.
type RepoState struct {
	RepoPath           string
	Ref                RepoRef
	DivergedLocal      int
	DivergedRemote     int
	WorkingTreeClean   bool
	StagedChanges      bool
	OngoingRebase      bool
	OngoingMerge       bool
	StashEntries       int
	Conflicts          []ConflictDetail
	ConflictDifficulty float64
	TestsLastResult    *bool // nil until some external test run records a result
	HasUnpushedCommits bool
	StalenessScore     float64
	RiskLevel          RiskLevel
}

// StateInput carries the raw facts gathered by one observation.
// NewRepoState derives the remaining RepoState fields from it.
type StateInput struct {
	RepoPath         string
	Ref              RepoRef
	Ahead            int
	Behind           int
	StagedChanges    bool
	WorkingTreeDirty bool
	UntrackedPresent bool
	OngoingRebase    bool
	OngoingMerge     bool
	StashEntries     int
	Conflicts        []ConflictDetail
}

// NewRepoState builds a RepoState from observed facts, computing the
// derived fields in one place:
//
//   - WorkingTreeClean: no staged, dirty, or untracked entries
//   - HasUnpushedCommits: ahead of upstream
//   - ConflictDifficulty: sum of conflict hunk counts
//   - StalenessScore: commits behind upstream
//   - RiskLevel: conflicts > staged/dirty > clean, in strict precedence
func NewRepoState(in StateInput) RepoState {
	difficulty := 0.0
	for _, c := range in.Conflicts {
		difficulty += float64(c.HunkCount)
	}

	risk := RiskLow
	switch {
	case len(in.Conflicts) > 0:
		risk = RiskHigh
	case in.StagedChanges || in.WorkingTreeDirty:
		risk = RiskMed
	}

	return RepoState{
		RepoPath:           in.RepoPath,
		Ref:                in.Ref,
		DivergedLocal:      in.Ahead,
		DivergedRemote:     in.Behind,
		WorkingTreeClean:   !(in.StagedChanges || in.WorkingTreeDirty || in.UntrackedPresent),
		StagedChanges:      in.StagedChanges,
		OngoingRebase:      in.OngoingRebase,
		OngoingMerge:       in.OngoingMerge,
		StashEntries:       in.StashEntries,
		Conflicts:          in.Conflicts,
		ConflictDifficulty: difficulty,
		HasUnpushedCommits: in.Ahead > 0,
		StalenessScore:     float64(in.Behind),
		RiskLevel:          risk,
	}
}
