package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloudsketch/internal/domain"
	"cloudsketch/internal/metrics"
	"cloudsketch/internal/topology"

	"github.com/rs/zerolog/log"
)

// ErrScorerFailed wraps errors returned by the scorer
var ErrScorerFailed = errors.New("scorer failed")

// Preview is the physical graph for the current sketch
type Preview struct {
	Nodes   []topology.PhysicalNode `json:"nodes"`
	Edges   []topology.PhysicalEdge `json:"edges"`
	Mapping map[string][]string     `json:"mapping"`
	Request *topology.Request       `json:"request"`
}

// ToggleResult is the outcome of killing or reviving a node
type ToggleResult struct {
	Node          domain.Node            `json:"node"`
	Analysis      *domain.AnalysisRecord `json:"analysis,omitempty"`
	AnalysisError string                 `json:"analysis_error,omitempty"`
}

// Expand returns the physical graph the next analysis would score
func (s *GraphService) Expand() *Preview {
	exp := topology.Expand(s.Graph(), s.topology)

	mapping := make(map[string][]string, len(exp.LogicalIDs()))
	for _, id := range exp.LogicalIDs() {
		phys := exp.PhysicalOf(id)
		ids := make([]string, len(phys))
		for i, p := range phys {
			ids[i] = p.ID
		}
		mapping[id] = ids
	}

	return &Preview{
		Nodes:   exp.Nodes,
		Edges:   exp.Edges,
		Mapping: mapping,
		Request: exp.Request(),
	}
}

// LastAnalysis returns the most recent analysis result, or nil
func (s *GraphService) LastAnalysis() *domain.AnalysisRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analysis
}

// AnalysisHistory lists persisted analysis runs, newest first
func (s *GraphService) AnalysisHistory(ctx context.Context, limit int) ([]domain.AnalysisRecord, error) {
	if s.repo == nil {
		return []domain.AnalysisRecord{}, nil
	}
	return s.repo.ListAnalyses(ctx, limit)
}

// RunAnalysis expands the current sketch, scores it and marks the logical
// nodes owning critical physical nodes. Only one analysis runs at a time;
// an overlapping call fails with ErrAnalysisInProgress. The lock is not
// held while the scorer runs, so results only annotate nodes that still
// exist when it returns, and a result is discarded with ErrAnalysisStale
// when the sketch was replaced or its chaos state reset in the meantime.
// On scorer failure annotations are left unchanged.
func (s *GraphService) RunAnalysis(ctx context.Context) (*domain.AnalysisRecord, error) {
	if !s.analyzing.TryAcquire(1) {
		metrics.AnalysisRuns.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, ErrAnalysisInProgress
	}
	defer s.analyzing.Release(1)

	start := time.Now()
	s.mu.Lock()
	snapshot := s.graph.Clone()
	generation := s.generation
	s.mu.Unlock()

	exp := topology.Expand(snapshot, s.topology)
	metrics.ExpansionNodes.Observe(float64(len(exp.Nodes)))

	s.publish(EventAnalysisStarted, map[string]int{
		"physical_nodes": len(exp.Nodes),
		"physical_edges": len(exp.Edges),
	})

	scoreCtx := ctx
	if s.scorerTimeout > 0 {
		var cancel context.CancelFunc
		scoreCtx, cancel = context.WithTimeout(ctx, s.scorerTimeout)
		defer cancel()
	}

	res, err := s.scorer.Score(scoreCtx, exp.Request())
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AnalysisRuns.WithLabelValues(metrics.OutcomeFailure).Inc()
		log.Warn().Err(err).Int("physical_nodes", len(exp.Nodes)).Msg("Analysis failed")
		s.publish(EventAnalysisFailed, map[string]string{"error": err.Error()})
		return nil, fmt.Errorf("%w: %w", ErrScorerFailed, err)
	}

	critical := res.CriticalNodes
	if critical == nil {
		critical = []string{}
	}
	logical := exp.MapCritical(critical)

	rec := &domain.AnalysisRecord{
		ID:              s.newID(),
		StabilityScore:  res.StabilityScore,
		CriticalNodes:   critical,
		LogicalCritical: logical,
		PhysicalNodes:   len(exp.Nodes),
		PhysicalEdges:   len(exp.Edges),
		CreatedAt:       s.now(),
	}

	isCritical := make(map[string]bool, len(logical))
	for _, id := range logical {
		isCritical[id] = true
	}

	s.mu.Lock()
	if s.generation != generation {
		s.mu.Unlock()
		metrics.AnalysisRuns.WithLabelValues(metrics.OutcomeStale).Inc()
		log.Info().Str("analysis_id", rec.ID).Msg("Sketch changed during analysis, discarding result")
		s.publish(EventAnalysisFailed, map[string]string{"error": ErrAnalysisStale.Error()})
		return nil, ErrAnalysisStale
	}
	for i := range s.graph.Nodes {
		s.graph.Nodes[i].Critical = isCritical[s.graph.Nodes[i].ID]
	}
	s.analysis = rec
	s.persistLocked(ctx)
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.RecordAnalysis(context.WithoutCancel(ctx), rec); err != nil {
			log.Error().Err(err).Str("analysis_id", rec.ID).Msg("Failed to record analysis")
		}
	}

	metrics.AnalysisRuns.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Info().
		Int("score", rec.StabilityScore).
		Int("critical", len(logical)).
		Dur("elapsed", time.Since(start)).
		Msg("Analysis complete")
	s.publish(EventAnalysisCompleted, rec)

	return rec, nil
}

// ToggleNodeLife kills or revives node id in chaos mode, then re-runs the
// analysis. The toggle is kept even when the analysis fails; the failure is
// reported in the result.
func (s *GraphService) ToggleNodeLife(ctx context.Context, id string) (*ToggleResult, error) {
	s.mu.Lock()
	if s.mode != domain.ModeChaos {
		s.mu.Unlock()
		return nil, ErrNotChaosMode
	}
	node, ok := s.graph.Node(id)
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNodeNotFound)
	}

	s.recordLocked()
	node.Dead = !node.Dead
	s.generation++
	out := node.Clone()
	s.persistLocked(ctx)
	s.publish(EventNodeUpdated, map[string]any{"node": out})
	s.mu.Unlock()

	result := &ToggleResult{Node: out}
	rec, err := s.RunAnalysis(ctx)
	if err != nil {
		result.AnalysisError = err.Error()
		return result, nil
	}
	result.Analysis = rec

	if n, ok := s.nodeCopy(id); ok {
		result.Node = n
	}
	return result, nil
}

func (s *GraphService) nodeCopy(id string) (domain.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.graph.Node(id); ok {
		return n.Clone(), true
	}
	return domain.Node{}, false
}
