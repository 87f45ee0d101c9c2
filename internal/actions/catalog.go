package actions

import (
	"errors"

	"go.uber.org/zap"

	"github.com/daisuke19891023/goapgit/internal/config"
	"github.com/daisuke19891023/goapgit/internal/explain"
	"github.com/daisuke19891023/goapgit/internal/gitx"
	"github.com/daisuke19891023/goapgit/internal/models"
	"github.com/daisuke19891023/goapgit/internal/observe"
)

// Well-known action names used by the catalog and the run history.
const (
	NameCreateBackupRef   = "Safety:CreateBackupRef"
	NameEnsureCleanStash  = "Safety:EnsureCleanOrStash"
	NameAutoTrivial       = "Conflict:AutoTrivialResolve"
	NameApplyPathStrategy = "Conflict:ApplyPathStrategy"
	NameRebaseContinue    = "Rebase:ContinueOrAbort"
)

// Context bundles the collaborators every action handler needs.
type Context struct {
	Facade   *gitx.Facade
	Observer *observe.Observer
	Log      *zap.Logger
	Config   config.Config
}

// Handler describes one catalog entry: how to advertise the action to
// the planner, how to explain it, and how to run it.
type Handler struct {
	Name string
	// BuildSpec returns nil when the action is not applicable to the
	// current state/config.
	BuildSpec func(state models.RepoState, cfg config.Config) *models.ActionSpec
	Explain   func(cfg config.Config) *explain.ActionContext
	Run       func(ctx *Context, action models.ActionSpec) (bool, error)
}

func floatPtr(v float64) *float64 { return &v }

// handlerSequence fixes the catalog order; equal-cost planner ties keep
// this order.
var handlerSequence = []Handler{
	{
		Name: NameCreateBackupRef,
		BuildSpec: func(models.RepoState, config.Config) *models.ActionSpec {
			return &models.ActionSpec{
				Name:      NameCreateBackupRef,
				Cost:      0.4,
				Rationale: "Create a recoverable snapshot before making changes.",
			}
		},
		Explain: func(config.Config) *explain.ActionContext {
			return &explain.ActionContext{
				Reason: "Create a timestamped backup ref so HEAD can be restored if later steps fail.",
				Alternatives: []string{
					"Skip the backup and rely on reflog entries for recovery.",
					"Create a lightweight branch instead of an update-ref entry.",
				},
				CostOverride: floatPtr(1.0),
			}
		},
		Run: func(ctx *Context, _ models.ActionSpec) (bool, error) {
			_, err := CreateBackupRef(ctx.Facade, ctx.Log)
			return err == nil, err
		},
	},
	{
		Name: NameEnsureCleanStash,
		BuildSpec: func(models.RepoState, config.Config) *models.ActionSpec {
			return &models.ActionSpec{
				Name:      NameEnsureCleanStash,
				Cost:      0.6,
				Rationale: "Ensure the working tree is clean or safely stashed.",
			}
		},
		Explain: func(config.Config) *explain.ActionContext {
			return &explain.ActionContext{
				Reason: "Guarantee a clean working tree before automated operations continue.",
				Alternatives: []string{
					"Abort the workflow and ask the operator to clean up manually.",
					"Create a temporary worktree rather than stashing changes.",
				},
				CostOverride: floatPtr(0.6),
			}
		},
		Run: func(ctx *Context, _ models.ActionSpec) (bool, error) {
			_, err := EnsureCleanOrStash(ctx.Facade, ctx.Log)
			return err == nil, err
		},
	},
	{
		Name: NameAutoTrivial,
		BuildSpec: func(_ models.RepoState, cfg config.Config) *models.ActionSpec {
			if !cfg.EnableRerere {
				return nil
			}
			return &models.ActionSpec{
				Name:      NameAutoTrivial,
				Cost:      0.8,
				Rationale: "Reuse rerere knowledge to resolve trivial conflicts.",
			}
		},
		Explain: func(cfg config.Config) *explain.ActionContext {
			if !cfg.EnableRerere {
				return nil
			}
			return &explain.ActionContext{
				Reason: "Reuse git rerere to automatically apply previously recorded resolutions.",
				Alternatives: []string{
					"Resolve conflicts manually to confirm each change.",
					"Run a domain specific merge driver for known file types.",
				},
				CostOverride: floatPtr(0.8),
			}
		},
		Run: func(ctx *Context, _ models.ActionSpec) (bool, error) {
			_, err := AutoTrivialResolve(ctx.Facade, ctx.Log)
			return err == nil, err
		},
	},
	{
		Name: NameApplyPathStrategy,
		BuildSpec: func(_ models.RepoState, cfg config.Config) *models.ActionSpec {
			if len(cfg.StrategyRules) == 0 {
				return nil
			}
			return &models.ActionSpec{
				Name:      NameApplyPathStrategy,
				Cost:      1.2,
				Rationale: "Apply configured conflict resolution strategies to matching paths.",
			}
		},
		Explain: func(cfg config.Config) *explain.ActionContext {
			if len(cfg.StrategyRules) == 0 {
				return nil
			}
			return &explain.ActionContext{
				Reason: "Use configured strategy rules to prefer ours/theirs on matching paths.",
				Alternatives: []string{
					"Escalate to manual resolution in an editor.",
					"Invoke a custom merge driver tuned for the file type.",
				},
				CostOverride: floatPtr(1.2),
			}
		},
		Run: func(ctx *Context, _ models.ActionSpec) (bool, error) {
			state, err := ctx.Observer.Observe()
			if err != nil {
				return false, err
			}
			_, err = ApplyPathStrategy(ctx.Facade, ctx.Log, state.Conflicts, ctx.Config.StrategyRules)
			return err == nil, err
		},
	},
	{
		Name: NameRebaseContinue,
		BuildSpec: func(state models.RepoState, _ config.Config) *models.ActionSpec {
			if !state.OngoingRebase {
				return nil
			}
			return &models.ActionSpec{
				Name:      NameRebaseContinue,
				Cost:      1.5,
				Rationale: "Complete or abort the ongoing rebase safely.",
			}
		},
		Explain: func(config.Config) *explain.ActionContext {
			return &explain.ActionContext{
				Reason: "Continue the rebase if conflicts are cleared, otherwise abort to restore HEAD.",
				Alternatives: []string{
					"Abort immediately without attempting to continue.",
					"Skip rebase continuation and return control to the operator.",
				},
				CostOverride: floatPtr(1.5),
			}
		},
		Run: func(ctx *Context, action models.ActionSpec) (bool, error) {
			return RebaseContinueOrAbort(ctx.Facade, ctx.Log, action.Params["backup_ref"])
		},
	},
}

var handlersByName = func() map[string]Handler {
	m := make(map[string]Handler, len(handlerSequence))
	for _, h := range handlerSequence {
		m[h.Name] = h
	}
	return m
}()

// BuildSpecs returns the action catalog applicable to state and cfg, in
// the fixed handler order.
func BuildSpecs(state models.RepoState, cfg config.Config) []models.ActionSpec {
	var specs []models.ActionSpec
	for _, h := range handlerSequence {
		if spec := h.BuildSpec(state, cfg); spec != nil {
			specs = append(specs, *spec)
		}
	}
	return specs
}

// BuildExplainContexts returns the explanation metadata for every
// applicable action.
func BuildExplainContexts(cfg config.Config) map[string]explain.ActionContext {
	contexts := make(map[string]explain.ActionContext)
	for _, h := range handlerSequence {
		if ctx := h.Explain(cfg); ctx != nil {
			contexts[h.Name] = *ctx
		}
	}
	return contexts
}

// Runner dispatches executor actions to catalog handlers. Unknown
// actions and handler errors become failed actions; a git command
// failure is logged with its exit detail but never re-raised.
type Runner struct {
	ctx *Context
}

// NewRunner creates the executor-facing runner.
func NewRunner(ctx *Context) *Runner {
	return &Runner{ctx: ctx}
}

// Run implements executor.ActionRunner.
func (r *Runner) Run(action models.ActionSpec) (bool, error) {
	handler, ok := handlersByName[action.Name]
	if !ok {
		r.ctx.Log.Warn("unknown action", zap.String("action", action.Name))
		return false, nil
	}

	ok, err := handler.Run(r.ctx, action)
	if err != nil {
		var cmdErr *gitx.CommandError
		if errors.As(err, &cmdErr) {
			r.ctx.Log.Error("action failed",
				zap.String("action", action.Name),
				zap.Int("returncode", cmdErr.ExitCode),
				zap.String("stderr", cmdErr.Stderr))
		} else {
			r.ctx.Log.Error("unexpected action failure",
				zap.String("action", action.Name),
				zap.Error(err))
		}
		return false, nil
	}
	return ok, nil
}
