package output

import (
	"fmt"
	"strings"

	"github.com/daisuke19891023/goapgit/internal/explain"
	"github.com/daisuke19891023/goapgit/internal/models"
)

// RenderState prints a repository snapshot as a summary block plus a
// conflict table when conflicts are present.
func (u *UI) RenderState(state models.RepoState) error {
	u.Info("branch %s (tracking %s)", Cyan(state.Ref.Branch), state.Ref.Tracking)
	u.Info("risk %s  ahead %d  behind %d  stashes %d",
		RiskColor(state.RiskLevel), state.DivergedLocal, state.DivergedRemote, state.StashEntries)
	if state.WorkingTreeClean {
		u.Success("working tree clean")
	} else {
		u.Warning("working tree has local changes (staged=%v)", state.StagedChanges)
	}
	if state.OngoingRebase {
		u.Warning("rebase in progress")
	}
	if state.OngoingMerge {
		u.Warning("merge in progress")
	}

	if len(state.Conflicts) == 0 {
		return nil
	}
	table := u.Table([]string{"Path", "Hunks", "Type", "Strategy"})
	for _, c := range state.Conflicts {
		table.Append([]string{c.Path, fmt.Sprintf("%d", c.HunkCount), string(c.Type), c.PreferredStrategy})
	}
	return table.Render()
}

// RenderPlan prints the planned actions in execution order.
func (u *UI) RenderPlan(plan models.Plan) error {
	u.Info("plan: %d actions, estimated cost %.2f", len(plan.Actions), plan.EstimatedCost)
	for _, note := range plan.Notes {
		u.VerboseLog("%s", note)
	}

	table := u.Table([]string{"#", "Action", "Cost", "Rationale"})
	for i, a := range plan.Actions {
		table.Append([]string{fmt.Sprintf("%d", i+1), a.Name, fmt.Sprintf("%.2f", a.Cost), a.Rationale})
	}
	return table.Render()
}

// RenderExplanations prints the explained plan with reasons and
// considered alternatives.
func (u *UI) RenderExplanations(explanations []explain.ActionExplanation) error {
	table := u.Table([]string{"Action", "Cost", "Reason", "Alternatives"})
	for _, e := range explanations {
		table.Append([]string{
			e.Action.Name,
			fmt.Sprintf("%.2f", e.Cost),
			e.Reason,
			strings.Join(e.Alternatives, "; "),
		})
	}
	return table.Render()
}
