package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"cloudsketch/internal/codec"
	"cloudsketch/internal/domain"
	"cloudsketch/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// maxImportBytes caps uploaded documents
const maxImportBytes = 4 << 20

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GraphHandler handles sketch API requests
type GraphHandler struct {
	svc     *service.GraphService
	started time.Time
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(svc *service.GraphService) *GraphHandler {
	return &GraphHandler{svc: svc, started: time.Now()}
}

// CreateNodeRequest places a new node on the canvas
type CreateNodeRequest struct {
	Kind     domain.NodeKind  `json:"kind"`
	Position *domain.Position `json:"position,omitempty"`
}

// ConnectionRequest names a proposed edge
type ConnectionRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// ValidationResponse is the outcome of a dry-run connection check
type ValidationResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// UpdateNodeResponse carries the patched node and any auto-corrections
type UpdateNodeResponse struct {
	Node    *domain.Node `json:"node"`
	Notices []string     `json:"notices"`
}

// ModeResponse reports the editor mode
type ModeResponse struct {
	Mode domain.Mode `json:"mode"`
}

// Health reports liveness
func (h *GraphHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]any{
		"status":  "healthy",
		"service": "cloudsketch",
		"mode":    h.svc.Mode(),
		"uptime":  time.Since(h.started).String(),
	}, http.StatusOK)
}

// ListKinds returns the node palette
func (h *GraphHandler) ListKinds(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, domain.Kinds(), http.StatusOK)
}

// GetRules returns the connection rulebook
func (h *GraphHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Rules(), http.StatusOK)
}

// ValidateConnection checks a connection without creating it
func (h *GraphHandler) ValidateConnection(w http.ResponseWriter, r *http.Request) {
	var req ConnectionRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp := ValidationResponse{Valid: true}
	if err := h.svc.ValidateConnection(req.Source, req.Target); err != nil {
		resp = ValidationResponse{Reason: err.Error()}
	}
	h.writeJSON(w, resp, http.StatusOK)
}

// GetGraph returns the sketch with mode, selection and last analysis
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.State(), http.StatusOK)
}

// ClearGraph empties the canvas
func (h *GraphHandler) ClearGraph(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearCanvas(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// CreateNode adds a node of the requested kind
func (h *GraphHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if !h.decode(w, r, &req) {
		return
	}

	node, err := h.svc.AddNode(r.Context(), req.Kind, req.Position)
	if err != nil {
		h.fail(w, "Failed to create node", err)
		return
	}
	h.writeJSON(w, node, http.StatusCreated)
}

// UpdateNode applies a partial update to a node
func (h *GraphHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var patch service.NodePatch
	if !h.decode(w, r, &patch) {
		return
	}

	node, notices, err := h.svc.UpdateNode(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.fail(w, "Failed to update node", err)
		return
	}
	if notices == nil {
		notices = []string{}
	}
	h.writeJSON(w, UpdateNodeResponse{Node: node, Notices: notices}, http.StatusOK)
}

// DeleteNode removes a node and its edges
func (h *GraphHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNode(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "Failed to delete node", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectNode marks a node as selected
func (h *GraphHandler) SelectNode(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SelectNode(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "Failed to select node", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleNodeLife kills or revives a node in chaos mode
func (h *GraphHandler) ToggleNodeLife(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ToggleNodeLife(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "Failed to toggle node", err)
		return
	}
	h.writeJSON(w, res, http.StatusOK)
}

// ApplyNodeChanges applies a batch of canvas changes
func (h *GraphHandler) ApplyNodeChanges(w http.ResponseWriter, r *http.Request) {
	var changes []service.NodeChange
	if !h.decode(w, r, &changes) {
		return
	}
	if err := h.svc.ApplyNodeChanges(r.Context(), changes); err != nil {
		h.fail(w, "Failed to apply node changes", err)
		return
	}
	h.writeJSON(w, h.svc.State(), http.StatusOK)
}

// CreateEdge connects two nodes
func (h *GraphHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req ConnectionRequest
	if !h.decode(w, r, &req) {
		return
	}

	edge, err := h.svc.Connect(r.Context(), req.Source, req.Target)
	if err != nil {
		h.fail(w, "Connection rejected", err)
		return
	}
	h.writeJSON(w, edge, http.StatusCreated)
}

// DeleteEdge removes an edge
func (h *GraphHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEdge(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "Failed to delete edge", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyEdgeChanges applies a batch of edge changes
func (h *GraphHandler) ApplyEdgeChanges(w http.ResponseWriter, r *http.Request) {
	var changes []service.EdgeChange
	if !h.decode(w, r, &changes) {
		return
	}
	if err := h.svc.ApplyEdgeChanges(r.Context(), changes); err != nil {
		h.fail(w, "Failed to apply edge changes", err)
		return
	}
	h.writeJSON(w, h.svc.State(), http.StatusOK)
}

// Undo steps back one snapshot
func (h *GraphHandler) Undo(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Undo(r.Context()); err != nil {
		h.fail(w, "Undo failed", err)
		return
	}
	h.writeJSON(w, h.svc.State(), http.StatusOK)
}

// Redo steps forward one snapshot
func (h *GraphHandler) Redo(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Redo(r.Context()); err != nil {
		h.fail(w, "Redo failed", err)
		return
	}
	h.writeJSON(w, h.svc.State(), http.StatusOK)
}

// ToggleMode switches between design and chaos mode
func (h *GraphHandler) ToggleMode(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, ModeResponse{Mode: h.svc.ToggleChaosMode(r.Context())}, http.StatusOK)
}

// GetExpansion returns the physical graph preview
func (h *GraphHandler) GetExpansion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Expand(), http.StatusOK)
}

// RunAnalysis scores the current sketch
func (h *GraphHandler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.RunAnalysis(r.Context())
	if err != nil {
		h.fail(w, "Analysis failed", err)
		return
	}
	h.writeJSON(w, rec, http.StatusOK)
}

// GetAnalysis returns the last analysis result
func (h *GraphHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	rec := h.svc.LastAnalysis()
	if rec == nil {
		h.writeError(w, "Not found", "no analysis has been run", http.StatusNotFound)
		return
	}
	h.writeJSON(w, rec, http.StatusOK)
}

// ListAnalyses returns persisted analysis runs, newest first
func (h *GraphHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, "Invalid limit", fmt.Sprintf("limit must be a non-negative integer, got %q", raw), http.StatusBadRequest)
			return
		}
		limit = n
	}

	recs, err := h.svc.AnalysisHistory(r.Context(), limit)
	if err != nil {
		h.fail(w, "Failed to list analyses", err)
		return
	}
	h.writeJSON(w, recs, http.StatusOK)
}

// Import replaces the sketch with an uploaded document
func (h *GraphHandler) Import(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Import(r.Context(), chi.URLParam(r, "format"), http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		h.fail(w, "Import failed", err)
		return
	}
	h.writeJSON(w, res, http.StatusOK)
}

// Export downloads the sketch as an attachment
func (h *GraphHandler) Export(w http.ResponseWriter, r *http.Request) {
	c, err := codec.ForFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.fail(w, "Export failed", err)
		return
	}

	w.Header().Set("Content-Type", c.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename=sketch."+c.Format())
	if err := c.Export(h.svc.Graph(), w); err != nil {
		// Headers are already written
		log.Error().Err(err).Str("format", c.Format()).Msg("Failed to export sketch")
	}
}

// Helper methods

func (h *GraphHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *GraphHandler) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg(msg)
	}
	h.writeError(w, msg, err.Error(), status)
}

func (h *GraphHandler) writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON")
	}
}

func (h *GraphHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}

// statusFor maps service and domain errors to HTTP status codes
func statusFor(err error) int {
	var connErr *domain.ConnectionError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.Is(err, domain.ErrNodeNotFound), errors.Is(err, domain.ErrEdgeNotFound):
		return http.StatusNotFound
	case errors.As(err, &connErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, codec.ErrMalformed),
		errors.Is(err, codec.ErrUnsupportedFormat),
		errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAnalysisInProgress),
		errors.Is(err, service.ErrAnalysisStale),
		errors.Is(err, service.ErrNothingToUndo),
		errors.Is(err, service.ErrNothingToRedo),
		errors.Is(err, service.ErrNotChaosMode):
		return http.StatusConflict
	case errors.Is(err, service.ErrScorerFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
