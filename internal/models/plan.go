package models

// ActionSpec names a single executable remediation step along with its
// planning cost. Specs compare by value; Params holds optional
// string-keyed arguments such as a backup ref name.
type ActionSpec struct {
	Name      string
	Params    map[string]string
	Cost      float64
	Rationale string
}

// Plan is the ordered action sequence produced by one planning call.
// Notes carry free-form diagnostic annotations (heuristic scheme, goal
// mode) and are never used for control flow.
type Plan struct {
	Actions       []ActionSpec
	EstimatedCost float64
	Notes         []string
}

// StrategyRule is a file matching rule that hints how conflicts on
// matching paths should be resolved ("ours" or "theirs"), optionally
// guarded by a condition such as "whitespace_only".
type StrategyRule struct {
	Pattern    string
	Resolution string
	When       string
}
