// Package store persists analyses, mined leads, and CRM tracking records.
package store

import (
	"context"

	"github.com/sells-group/leadminer/internal/model"
)

// AnalysisFilter specifies criteria for listing analyses.
type AnalysisFilter struct {
	Status model.AnalysisStatus `json:"status,omitempty"`
	Limit  int                  `json:"limit,omitempty"`
	Offset int                  `json:"offset,omitempty"`
}

// Store defines the persistence interface for the mining pipeline.
type Store interface {
	// Analyses
	CreateAnalysis(ctx context.Context, input, sourceFile string, rowCount int) (*model.Analysis, error)
	UpdateAnalysisStatus(ctx context.Context, id string, status model.AnalysisStatus) error
	CompleteAnalysis(ctx context.Context, id string, leads []model.MinedLead) error
	FailAnalysis(ctx context.Context, id string, cause string) error
	GetAnalysis(ctx context.Context, id string) (*model.Analysis, error)
	ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.Analysis, error)

	// Leads
	ListLeads(ctx context.Context, analysisID string) ([]model.MinedLead, error)

	// CRM tracking
	UpsertTracking(ctx context.Context, t model.Tracking) error
	GetTracking(ctx context.Context, leadKey string) (*model.Tracking, error)
	ListTracking(ctx context.Context) ([]model.Tracking, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
