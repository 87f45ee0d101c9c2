// Package explain turns plans into human readable justifications.
package explain

import "github.com/daisuke19891023/goapgit/internal/models"

// ActionContext provides additional metadata describing why an action
// was selected and what the operator could do instead.
type ActionContext struct {
	Reason       string
	Alternatives []string
	CostOverride *float64
}

// ActionExplanation is the rendered explanation for one plan action.
type ActionExplanation struct {
	Action       models.ActionSpec
	Reason       string
	Alternatives []string
	Cost         float64
}

// Plan generates explanations for each action in plan, mirroring the
// plan's action order. The reason falls back to the action's own
// rationale when no context is registered for it.
func Plan(plan models.Plan, contexts map[string]ActionContext) []ActionExplanation {
	explanations := make([]ActionExplanation, 0, len(plan.Actions))
	for _, action := range plan.Actions {
		e := ActionExplanation{
			Action: action,
			Reason: action.Rationale,
			Cost:   action.Cost,
		}
		if e.Reason == "" {
			e.Reason = "No rationale provided."
		}
		if ctx, ok := contexts[action.Name]; ok {
			if ctx.Reason != "" {
				e.Reason = ctx.Reason
			}
			e.Alternatives = ctx.Alternatives
			if ctx.CostOverride != nil {
				e.Cost = *ctx.CostOverride
			}
		}
		explanations = append(explanations, e)
	}
	return explanations
}
