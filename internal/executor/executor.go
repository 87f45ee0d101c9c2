// Package executor drives a plan action-by-action against the real
// repository, re-observing after every step and replanning when the
// world diverges from what the plan assumed.
package executor

import (
	"github.com/daisuke19891023/goapgit/internal/models"
	"github.com/daisuke19891023/goapgit/internal/planner"
)

// ActionRunner executes a single action against the repository.
// A returned error (including a git command failure) is treated as an
// action failure, never propagated out of the executor.
type ActionRunner interface {
	Run(action models.ActionSpec) (bool, error)
}

// RunnerFunc adapts a function to the ActionRunner interface.
type RunnerFunc func(action models.ActionSpec) (bool, error)

// Run implements ActionRunner.
func (f RunnerFunc) Run(action models.ActionSpec) (bool, error) { return f(action) }

// StateObserver returns the current, real repository state.
type StateObserver interface {
	Observe() (models.RepoState, error)
}

// ObserverFunc adapts a function to the StateObserver interface.
type ObserverFunc func() (models.RepoState, error)

// Observe implements StateObserver.
func (f ObserverFunc) Observe() (models.RepoState, error) { return f() }

// ExecutionResult reports the outcome of a single Execute call.
// When Replanned is true, FinalPlan is the freshly computed plan that
// was NOT executed; the caller decides whether to run it.
type ExecutionResult struct {
	FinalPlan       models.Plan
	ExecutedActions []models.ActionSpec
	Replanned       bool
}

// Executor runs plans while observing and replanning when required.
// It holds no state across calls; each Execute is a fresh attempt.
type Executor struct {
	planner  *planner.Planner
	observer StateObserver
	runner   ActionRunner
	catalog  []models.ActionSpec
	goal     models.GoalSpec
}

// New assembles an executor from its collaborators.
func New(p *planner.Planner, observer StateObserver, runner ActionRunner, catalog []models.ActionSpec, goal models.GoalSpec) *Executor {
	return &Executor{
		planner:  p,
		observer: observer,
		runner:   runner,
		catalog:  catalog,
		goal:     goal,
	}
}

// Execute runs plan against the repository. When plan is nil, one is
// computed first from the executor's catalog and goal.
//
// After each action the repository is re-observed; if the action failed
// or the observed conflict count, divergence, or risk level changed, a
// new plan is computed from the observed state and returned immediately
// without being executed. Only a planning failure surfaces as an error.
func (e *Executor) Execute(initial models.RepoState, plan *models.Plan) (ExecutionResult, error) {
	var current models.Plan
	if plan != nil {
		current = *plan
	} else {
		computed, err := e.planner.Plan(initial, e.goal, e.catalog)
		if err != nil {
			return ExecutionResult{}, err
		}
		current = computed
	}

	executed := []models.ActionSpec{}
	previous := initial

	for _, action := range current.Actions {
		success := e.runAction(action)

		observed, err := e.observer.Observe()
		if err != nil {
			// Observation failure means we cannot trust the old
			// baseline; treat it like a divergence and replan from
			// the last known state.
			observed = previous
			success = false
		}

		if !success || needsReplan(previous, observed) {
			newPlan, err := e.planner.Plan(observed, e.goal, e.catalog)
			if err != nil {
				return ExecutionResult{}, err
			}
			return ExecutionResult{
				FinalPlan:       newPlan,
				ExecutedActions: executed,
				Replanned:       true,
			}, nil
		}

		executed = append(executed, action)
		previous = observed
	}

	return ExecutionResult{
		FinalPlan:       current,
		ExecutedActions: executed,
		Replanned:       false,
	}, nil
}

// runAction invokes the runner, containing panics and errors so a
// misbehaving action can never crash the loop mid-remediation.
func (e *Executor) runAction(action models.ActionSpec) (success bool) {
	defer func() {
		if r := recover(); r != nil {
			success = false
		}
	}()

	ok, err := e.runner.Run(action)
	if err != nil {
		return false
	}
	return ok
}

// needsReplan reports whether the observed state diverged from the
// previous baseline in a way that invalidates the remaining plan.
func needsReplan(previous, observed models.RepoState) bool {
	return len(previous.Conflicts) != len(observed.Conflicts) ||
		previous.DivergedLocal != observed.DivergedLocal ||
		previous.DivergedRemote != observed.DivergedRemote ||
		previous.RiskLevel != observed.RiskLevel
}
