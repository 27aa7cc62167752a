// Package store persists batch runs and per-row results.
package store

import (
	"context"

	"github.com/parcelops/pickup-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for batch runs.
type Store interface {
	CreateRun(ctx context.Context, source string) (*model.BatchRun, error)
	CompleteRun(ctx context.Context, runID string, totals model.RunTotals) error
	FailRun(ctx context.Context, runID string, reason string) error
	GetRun(ctx context.Context, runID string) (*model.BatchRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.BatchRun, error)

	SaveRowResults(ctx context.Context, runID string, results []model.RowResult) error
	ListRowResults(ctx context.Context, runID string) ([]model.RowResult, error)

	Migrate(ctx context.Context) error
	Close() error
}
