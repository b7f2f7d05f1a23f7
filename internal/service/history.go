package service

import "cloudsketch/internal/domain"

// DefaultHistoryLimit bounds the undo stack when no limit is configured
const DefaultHistoryLimit = 100

// History is a two-stack undo/redo log of graph snapshots
type History struct {
	past   []*domain.Graph
	future []*domain.Graph
	limit  int
}

// NewHistory creates a history keeping at most limit undo steps
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Record pushes a snapshot of g and discards the redo stack
func (h *History) Record(g *domain.Graph) {
	h.push(g.Clone())
	h.future = nil
}

// push appends to the undo stack, dropping the oldest entries past the limit
func (h *History) push(g *domain.Graph) {
	h.past = append(h.past, g)
	if over := len(h.past) - h.limit; over > 0 {
		h.past = append([]*domain.Graph(nil), h.past[over:]...)
	}
}

// Undo returns the previous snapshot and moves current onto the redo stack
func (h *History) Undo(current *domain.Graph) (*domain.Graph, bool) {
	if len(h.past) == 0 {
		return nil, false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append([]*domain.Graph{current.Clone()}, h.future...)
	return prev, true
}

// Redo returns the next snapshot and moves current onto the undo stack
func (h *History) Redo(current *domain.Graph) (*domain.Graph, bool) {
	if len(h.future) == 0 {
		return nil, false
	}
	next := h.future[0]
	h.future = h.future[1:]
	h.push(current.Clone())
	return next, true
}

// CanUndo reports whether Undo has a snapshot to restore
func (h *History) CanUndo() bool { return len(h.past) > 0 }

// CanRedo reports whether Redo has a snapshot to restore
func (h *History) CanRedo() bool { return len(h.future) > 0 }

// Reset drops both stacks
func (h *History) Reset() {
	h.past = nil
	h.future = nil
}
