package domain

import (
	"crypto/sha256"
	"fmt"
)

// Edge represents a directed connection between two logical nodes
type Edge struct {
	ID     string `json:"id" yaml:"id,omitempty"`
	Source string `json:"source" yaml:"source" validate:"required"`
	Target string `json:"target" yaml:"target" validate:"required"`
}

// NewEdge creates a new edge
func NewEdge(source, target string) *Edge {
	edge := &Edge{
		Source: source,
		Target: target,
	}
	edge.ID = edge.GenerateID()
	return edge
}

// GenerateID creates a deterministic ID for the edge based on its endpoints.
// Direction is significant: A->B and B->A get different IDs.
func (e *Edge) GenerateID() string {
	key := fmt.Sprintf("%s->%s", e.Source, e.Target)
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("e-%x", hash[:8])
}

// Touches reports whether the edge has id as source or target
func (e *Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}
