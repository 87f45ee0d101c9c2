package planner

import "github.com/daisuke19891023/goapgit/internal/models"

// HeuristicWeights control the relative weight of conflict count,
// conflict difficulty, divergence, and staleness/risk in the score.
type HeuristicWeights struct {
	Alpha float64
	Beta  float64
	Gamma float64
	Delta float64
}

// DefaultWeights returns the standard weight set.
func DefaultWeights() HeuristicWeights {
	return HeuristicWeights{Alpha: 1.0, Beta: 1.2, Gamma: 0.5, Delta: 0.3}
}

// Score computes the heuristic cost estimate for a repository state.
// It is pure and monotonically non-decreasing in each contributing
// factor: conflict count, conflict difficulty, total divergence, and
// staleness plus risk bias. Non-negative inputs and weights always
// yield a non-negative score.
func Score(state models.RepoState, weights HeuristicWeights) float64 {
	conflictCount := float64(len(state.Conflicts))
	difficulty := max(state.ConflictDifficulty, 0)
	divergence := float64(max(state.DivergedLocal, 0) + max(state.DivergedRemote, 0))
	staleness := max(state.StalenessScore, 0)

	return weights.Alpha*conflictCount +
		weights.Beta*difficulty +
		weights.Gamma*divergence +
		weights.Delta*(staleness+state.RiskLevel.Bias())
}
