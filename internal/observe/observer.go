package observe

import (
	"fmt"
	"strings"

	"github.com/daisuke19891023/goapgit/internal/gitx"
	"github.com/daisuke19891023/goapgit/internal/models"
)

// Observer builds RepoState snapshots from live git status output.
// It satisfies the executor's StateObserver contract.
type Observer struct {
	facade   *gitx.Facade
	classify Classifier
}

// ObserverOption configures an Observer.
type ObserverOption func(*Observer)

// WithClassifier overrides the default conflict classifier.
func WithClassifier(c Classifier) ObserverOption {
	return func(o *Observer) { o.classify = c }
}

// NewObserver creates an observer bound to a git facade.
func NewObserver(facade *gitx.Facade, opts ...ObserverOption) *Observer {
	o := &Observer{facade: facade, classify: ClassifyConflict}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Observe runs git status and parses the result into a fresh RepoState.
func (o *Observer) Observe() (models.RepoState, error) {
	res, err := o.facade.Run("status", "--porcelain=v2", "--branch", "--show-stash")
	if err != nil {
		return models.RepoState{}, fmt.Errorf("observe repository state: %w", err)
	}
	summary := ParsePorcelain(strings.Split(res.Stdout, "\n"), o.facade.RepoPath(), o.classify)
	return summary.ToState(o.facade.RepoPath()), nil
}
