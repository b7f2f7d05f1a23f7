package repository

import (
	"context"

	"cloudsketch/internal/domain"
)

// GraphRepository persists the sketch between restarts
type GraphRepository interface {
	// Graph persistence. SaveGraph replaces the stored graph atomically.
	LoadGraph(ctx context.Context) (*domain.Graph, error)
	SaveGraph(ctx context.Context, g *domain.Graph) error

	// Editor state
	LoadWorkspace(ctx context.Context) (*domain.Workspace, error)
	SaveWorkspace(ctx context.Context, ws *domain.Workspace) error

	// Analysis history, newest first
	RecordAnalysis(ctx context.Context, rec *domain.AnalysisRecord) error
	ListAnalyses(ctx context.Context, limit int) ([]domain.AnalysisRecord, error)

	// Close releases resources
	Close() error
}
