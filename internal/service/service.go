package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"cloudsketch/internal/analysis"
	"cloudsketch/internal/codec"
	"cloudsketch/internal/domain"
	"cloudsketch/internal/metrics"
	"cloudsketch/internal/repository"
	"cloudsketch/internal/topology"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// Config tunes a GraphService. Zero values select defaults.
type Config struct {
	Rules         domain.Rulebook
	Topology      topology.Options
	HistoryLimit  int
	Scorer        analysis.Scorer
	ScorerTimeout time.Duration
}

// State is a consistent view of the working sketch
type State struct {
	Nodes      []domain.Node          `json:"nodes"`
	Edges      []domain.Edge          `json:"edges"`
	Mode       domain.Mode            `json:"mode"`
	SelectedID string                 `json:"selected_id,omitempty"`
	Analysis   *domain.AnalysisRecord `json:"analysis,omitempty"`
	CanUndo    bool                   `json:"can_undo"`
	CanRedo    bool                   `json:"can_redo"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Format string `json:"format"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
}

// GraphService provides business logic for sketch operations
type GraphService struct {
	mu       sync.Mutex
	graph    *domain.Graph
	selected string
	mode     domain.Mode
	analysis *domain.AnalysisRecord
	history  *History

	// generation changes whenever the sketch is replaced or its chaos state
	// reset; analysis results from an older generation are dropped
	generation uint64

	rules         domain.Rulebook
	topology      topology.Options
	scorer        analysis.Scorer
	scorerTimeout time.Duration
	analyzing     *semaphore.Weighted

	repo     repository.GraphRepository
	eventBus *EventBus
	newID    func() string
	now      func() time.Time
}

// NewGraphService creates a new graph service. repo and eventBus may be nil
// for in-memory use (the CLI does this).
func NewGraphService(repo repository.GraphRepository, eventBus *EventBus, cfg Config) *GraphService {
	if cfg.Rules == nil {
		cfg.Rules = domain.DefaultRulebook()
	}
	if len(cfg.Topology.Zones) == 0 {
		cfg.Topology = topology.DefaultOptions()
	}
	if cfg.Scorer == nil {
		cfg.Scorer = analysis.NewGraphScorer()
	}

	return &GraphService{
		graph:         domain.NewGraph(),
		mode:          domain.ModeDesign,
		history:       NewHistory(cfg.HistoryLimit),
		rules:         cfg.Rules,
		topology:      cfg.Topology,
		scorer:        cfg.Scorer,
		scorerTimeout: cfg.ScorerTimeout,
		analyzing:     semaphore.NewWeighted(1),
		repo:          repo,
		eventBus:      eventBus,
		newID:         uuid.NewString,
		now:           time.Now,
	}
}

// Restore loads the persisted sketch. History starts empty.
func (s *GraphService) Restore(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	g, err := s.repo.LoadGraph(ctx)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}
	ws, err := s.repo.LoadWorkspace(ctx)
	if err != nil {
		return fmt.Errorf("failed to load workspace: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph = g
	s.mode = ws.Mode
	s.selected = ""
	if _, ok := g.Node(ws.SelectedID); ok {
		s.selected = ws.SelectedID
	}
	s.analysis = nil
	s.generation++
	s.history.Reset()
	metrics.LogicalNodes.Set(float64(len(g.Nodes)))

	log.Info().
		Int("nodes", len(g.Nodes)).
		Int("edges", len(g.Edges)).
		Str("mode", string(s.mode)).
		Msg("Sketch restored")
	return nil
}

// State returns a deep copy of the current sketch
func (s *GraphService) State() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *GraphService) stateLocked() *State {
	g := s.graph.Clone()
	return &State{
		Nodes:      g.Nodes,
		Edges:      g.Edges,
		Mode:       s.mode,
		SelectedID: s.selected,
		Analysis:   s.analysis,
		CanUndo:    s.history.CanUndo(),
		CanRedo:    s.history.CanRedo(),
	}
}

// Graph returns a deep copy of the logical graph
func (s *GraphService) Graph() *domain.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Clone()
}

// Rules returns the rulebook in use
func (s *GraphService) Rules() domain.Rulebook {
	out := make(domain.Rulebook, len(s.rules))
	for k := range s.rules {
		out[k] = s.rules.AllowedTargets(k)
	}
	return out
}

// AddNode places a new node of kind with the editor defaults
func (s *GraphService) AddNode(ctx context.Context, kind domain.NodeKind, pos *domain.Position) (*domain.Node, error) {
	if _, err := domain.ParseKind(string(kind)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	node := domain.NewNode(s.newID(), kind)
	if pos != nil {
		node.Position = domain.NewPosition(pos.X, pos.Y)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recordLocked()
	s.graph.AddNode(node.Clone())
	s.persistLocked(ctx)

	out := node.Clone()
	s.publish(EventNodeCreated, out)
	return &out, nil
}

// UpdateNode merges patch into node id. The returned notices describe
// auto-corrections and removed connections.
func (s *GraphService) UpdateNode(ctx context.Context, id string, patch NodePatch) (*domain.Node, []string, error) {
	if err := validateInput(patch); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.graph.Node(id)
	if !ok {
		return nil, nil, fmt.Errorf("node %s: %w", id, domain.ErrNodeNotFound)
	}

	s.recordLocked()
	notices := patch.apply(node)

	var removed []domain.Edge
	if node.Kind == domain.KindEC2 && patch.PublicIP != nil && !*patch.PublicIP {
		removed = s.graph.RemoveEdgesWhere(func(e domain.Edge) bool {
			return e.Target == id && s.isKindLocked(e.Source, domain.KindIGW)
		})
		if len(removed) > 0 {
			notices = append(notices, NoticeIGWEdgesRemoved)
		}
	}

	s.persistLocked(ctx)

	out := node.Clone()
	s.publish(EventNodeUpdated, map[string]any{"node": out, "notices": notices})
	for _, e := range removed {
		s.publish(EventEdgeDeleted, e)
	}
	return &out, notices, nil
}

// DeleteNode removes node id with its incident edges and clears the
// selection when it pointed at the node
func (s *GraphService) DeleteNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.graph.IndexOfNode(id) < 0 {
		return fmt.Errorf("node %s: %w", id, domain.ErrNodeNotFound)
	}

	s.recordLocked()
	s.graph.RemoveNode(id)
	if s.selected == id {
		s.selected = ""
	}
	s.persistLocked(ctx)

	s.publish(EventNodeDeleted, map[string]string{"node_id": id})
	return nil
}

// SelectNode sets the selected node. An empty id clears the selection.
func (s *GraphService) SelectNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" && s.graph.IndexOfNode(id) < 0 {
		return fmt.Errorf("node %s: %w", id, domain.ErrNodeNotFound)
	}

	s.selected = id
	s.persistLocked(ctx)
	s.publish(EventSelectionChanged, map[string]string{"selected_id": id})
	return nil
}

// ValidateConnection checks a proposed edge without changing anything
func (s *GraphService) ValidateConnection(source, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules.Validate(source, target, s.graph.Nodes)
}

// Connect adds an edge from source to target after validating it against
// the rulebook. Connecting an already connected pair returns the existing
// edge and changes nothing.
func (s *GraphService) Connect(ctx context.Context, source, target string) (*domain.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rules.Validate(source, target, s.graph.Nodes); err != nil {
		kind := "unknown"
		if n, ok := s.graph.Node(source); ok {
			kind = string(n.Kind)
		}
		metrics.ConnectionRejections.WithLabelValues(kind).Inc()
		log.Debug().Str("source", source).Str("target", target).Err(err).Msg("Connection rejected")
		return nil, err
	}

	if existing, ok := s.graph.FindEdge(source, target); ok {
		out := *existing
		return &out, nil
	}

	edge := domain.NewEdge(source, target)
	s.recordLocked()
	s.graph.AddEdge(*edge)
	s.persistLocked(ctx)

	s.publish(EventEdgeCreated, *edge)
	return edge, nil
}

// DeleteEdge removes edge id
func (s *GraphService) DeleteEdge(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.graph.IndexOfEdge(id) < 0 {
		return fmt.Errorf("edge %s: %w", id, domain.ErrEdgeNotFound)
	}

	s.recordLocked()
	s.graph.RemoveEdge(id)
	s.persistLocked(ctx)

	s.publish(EventEdgeDeleted, map[string]string{"edge_id": id})
	return nil
}

// ApplyNodeChanges applies a batch of canvas changes. Changes naming
// unknown nodes are skipped. Only removals are recorded in history.
func (s *GraphService) ApplyNodeChanges(ctx context.Context, changes []NodeChange) error {
	for i := range changes {
		if err := validateInput(changes[i]); err != nil {
			return fmt.Errorf("change %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range changes {
		if c.Type == ChangeRemove && s.graph.IndexOfNode(c.ID) >= 0 {
			s.recordLocked()
			break
		}
	}

	applied := 0
	for _, c := range changes {
		node, ok := s.graph.Node(c.ID)
		if !ok {
			continue
		}
		switch c.Type {
		case ChangePosition:
			node.Position = domain.NewPosition(c.Position.X, c.Position.Y)
		case ChangeSelect:
			if c.Selected {
				s.selected = c.ID
			} else if s.selected == c.ID {
				s.selected = ""
			}
		case ChangeRemove:
			s.graph.RemoveNode(c.ID)
			if s.selected == c.ID {
				s.selected = ""
			}
		}
		applied++
	}

	if applied == 0 {
		return nil
	}
	s.persistLocked(ctx)
	s.publish(EventGraphUpdated, map[string]any{"node_changes": applied})
	return nil
}

// ApplyEdgeChanges applies a batch of edge changes
func (s *GraphService) ApplyEdgeChanges(ctx context.Context, changes []EdgeChange) error {
	for i := range changes {
		if err := validateInput(changes[i]); err != nil {
			return fmt.Errorf("change %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, c := range changes {
		if s.graph.IndexOfEdge(c.ID) >= 0 {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	s.recordLocked()
	for _, id := range ids {
		s.graph.RemoveEdge(id)
	}
	s.persistLocked(ctx)

	s.publish(EventGraphUpdated, map[string]any{"edge_changes": len(ids)})
	return nil
}

// Undo restores the previous snapshot and drops the analysis result
func (s *GraphService) Undo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.history.Undo(s.graph)
	if !ok {
		return ErrNothingToUndo
	}
	s.restoreLocked(ctx, prev)
	return nil
}

// Redo re-applies the next snapshot and drops the analysis result
func (s *GraphService) Redo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.history.Redo(s.graph)
	if !ok {
		return ErrNothingToRedo
	}
	s.restoreLocked(ctx, next)
	return nil
}

func (s *GraphService) restoreLocked(ctx context.Context, g *domain.Graph) {
	s.graph = g
	s.analysis = nil
	s.generation++
	if s.graph.IndexOfNode(s.selected) < 0 {
		s.selected = ""
	}
	s.persistLocked(ctx)
	s.publish(EventGraphUpdated, s.stateLocked())
	s.publishHistoryLocked()
}

// ToggleChaosMode switches between design and chaos mode. Leaving chaos
// mode revives every node and clears critical flags and the analysis.
func (s *GraphService) ToggleChaosMode(ctx context.Context) domain.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == domain.ModeChaos {
		s.mode = domain.ModeDesign
		for i := range s.graph.Nodes {
			s.graph.Nodes[i].Dead = false
			s.graph.Nodes[i].Critical = false
		}
		s.analysis = nil
	} else {
		s.mode = domain.ModeChaos
	}
	s.generation++

	s.persistLocked(ctx)
	s.publish(EventModeChanged, map[string]string{"mode": string(s.mode)})
	log.Info().Str("mode", string(s.mode)).Msg("Mode changed")
	return s.mode
}

// Mode returns the current editor mode
func (s *GraphService) Mode() domain.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// ClearCanvas empties the graph. Undoable.
func (s *GraphService) ClearCanvas(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recordLocked()
	s.graph = domain.NewGraph()
	s.selected = ""
	s.analysis = nil
	s.generation++
	s.persistLocked(ctx)

	s.publish(EventGraphUpdated, map[string]string{"action": "cleared"})
}

// LoadGraph replaces the sketch with g and forgets history, selection and
// analysis
func (s *GraphService) LoadGraph(ctx context.Context, g *domain.Graph) {
	loaded := g.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph = loaded
	s.selected = ""
	s.analysis = nil
	s.generation++
	s.history.Reset()
	s.persistLocked(ctx)

	s.publish(EventGraphLoaded, map[string]int{"nodes": len(loaded.Nodes), "edges": len(loaded.Edges)})
	s.publishHistoryLocked()
}

// Import parses r in the given format and loads it. A malformed document
// leaves the current sketch untouched.
func (s *GraphService) Import(ctx context.Context, format string, r io.Reader) (*ImportResult, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return nil, err
	}

	g, err := c.Parse(r)
	if err != nil {
		return nil, err
	}

	s.LoadGraph(ctx, g)

	log.Info().
		Str("format", c.Format()).
		Int("nodes", len(g.Nodes)).
		Int("edges", len(g.Edges)).
		Msg("Sketch imported")

	return &ImportResult{Format: c.Format(), Nodes: len(g.Nodes), Edges: len(g.Edges)}, nil
}

// Export writes the logical graph in the given format
func (s *GraphService) Export(format string, w io.Writer) error {
	c, err := codec.ForFormat(format)
	if err != nil {
		return err
	}
	return c.Export(s.Graph(), w)
}

// recordLocked snapshots the graph before a mutation
func (s *GraphService) recordLocked() {
	s.history.Record(s.graph)
	s.publishHistoryLocked()
}

func (s *GraphService) publishHistoryLocked() {
	s.publish(EventHistoryChanged, map[string]bool{
		"can_undo": s.history.CanUndo(),
		"can_redo": s.history.CanRedo(),
	})
}

func (s *GraphService) isKindLocked(id string, kind domain.NodeKind) bool {
	n, ok := s.graph.Node(id)
	return ok && n.Kind == kind
}

// persistLocked writes the sketch through to the repository. Writes ignore
// request cancellation.
func (s *GraphService) persistLocked(ctx context.Context) {
	metrics.LogicalNodes.Set(float64(len(s.graph.Nodes)))
	if s.repo == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	if err := s.repo.SaveGraph(ctx, s.graph); err != nil {
		log.Error().Err(err).Msg("Failed to persist graph")
	}
	ws := &domain.Workspace{Mode: s.mode, SelectedID: s.selected}
	if err := s.repo.SaveWorkspace(ctx, ws); err != nil {
		log.Error().Err(err).Msg("Failed to persist workspace")
	}
}

func (s *GraphService) publish(t EventType, payload any) {
	s.eventBus.Publish(Event{Type: t, Payload: payload})
}
