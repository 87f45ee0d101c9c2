package models

// GoalMode selects the overall outcome the remediation run aims for.
type GoalMode string

const (
	GoalResolveOnly      GoalMode = "resolve_only"
	GoalRebaseToUpstream GoalMode = "rebase_to_upstream"
	GoalPushWithLease    GoalMode = "push_with_lease"
)

// ValidGoalMode reports whether s names a known goal mode.
func ValidGoalMode(s string) bool {
	switch GoalMode(s) {
	case GoalResolveOnly, GoalRebaseToUpstream, GoalPushWithLease:
		return true
	default:
		return false
	}
}

// GoalSpec is the caller-supplied goal configuration for the planner.
// It is currently recorded in plan notes only and does not constrain
// action selection.
type GoalSpec struct {
	Mode          GoalMode
	TestsMustPass bool
	PushWithLease bool
}

// DefaultGoal returns the goal used when no configuration is provided.
func DefaultGoal() GoalSpec {
	return GoalSpec{Mode: GoalRebaseToUpstream}
}
