// Package store persists remediation run history in a local SQLite
// database so past plans and outcomes can be inspected later.
package store

import (
	"context"
	"time"

	"github.com/daisuke19891023/goapgit/internal/models"
)

// RemediationRun records one execute-observe-replan session against a
// repository. ExecutedActions holds the actions in execution order.
type RemediationRun struct {
	ID              string
	RepoPath        string
	Branch          string
	GoalMode        models.GoalMode
	EstimatedCost   float64
	ExecutedActions []models.ActionSpec
	Replanned       bool
	DryRun          bool
	StartedAt       time.Time
	FinishedAt      time.Time
}

// RunListFilter narrows ListRuns results.
type RunListFilter struct {
	RepoPath string
	Limit    int
}

// Store defines the persistence interface for run history.
type Store interface {
	CreateRun(ctx context.Context, run *RemediationRun) error
	GetRun(ctx context.Context, id string) (*RemediationRun, error)
	ListRuns(ctx context.Context, filter RunListFilter) ([]*RemediationRun, error)
	DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
