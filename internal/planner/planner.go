package planner

import (
	"errors"
	"fmt"
	"sort"

	"github.com/daisuke19891023/goapgit/internal/models"
)

const (
	minActions = 3
	maxActions = 5

	// heuristicMarker identifies the scoring scheme in plan notes.
	heuristicMarker = "heuristic_alpha_beta_gamma_delta"
)

// ErrTooFewActions is returned when the candidate catalog cannot
// support a plan. It is fatal; the planner never retries.
var ErrTooFewActions = errors.New("planner requires at least three candidate actions")

// Planner assembles a bounded plan from an injected action catalog.
// It selects the cheapest 3-5 candidates rather than performing any
// state-space search; tests pin this exact selection rule.
type Planner struct {
	weights HeuristicWeights
}

// New creates a planner with the provided heuristic weights.
func New(weights HeuristicWeights) *Planner {
	return &Planner{weights: weights}
}

// NewDefault creates a planner with DefaultWeights.
func NewDefault() *Planner {
	return New(DefaultWeights())
}

// Plan selects a bounded slice of the cheapest candidate actions and
// estimates the total cost as the heuristic score of state plus the sum
// of selected action costs. Equal-cost actions retain their catalog
// order. The goal is recorded in the notes for explanation purposes
// only; it does not constrain which actions are eligible.
func (p *Planner) Plan(state models.RepoState, goal models.GoalSpec, actions []models.ActionSpec) (models.Plan, error) {
	if len(actions) < minActions {
		return models.Plan{}, fmt.Errorf("plan with %d candidates: %w", len(actions), ErrTooFewActions)
	}

	sorted := make([]models.ActionSpec, len(actions))
	copy(sorted, actions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Cost < sorted[j].Cost
	})

	size := min(maxActions, len(sorted))
	selected := sorted[:size]

	heuristic := Score(state, p.weights)
	total := heuristic
	for _, a := range selected {
		total += a.Cost
	}

	notes := []string{
		heuristicMarker,
		fmt.Sprintf("heuristic=%.2f", heuristic),
		fmt.Sprintf("goal_mode=%s", goal.Mode),
	}

	return models.Plan{
		Actions:       selected,
		EstimatedCost: total,
		Notes:         notes,
	}, nil
}
