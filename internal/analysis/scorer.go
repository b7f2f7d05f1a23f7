// Package analysis scores physical topologies.
//
// A Scorer receives the physical graph in exported form and returns a stability
// score in [0,100] together with the physical ids it considers critical. Scorers
// may be slow or remote; callers pass a context.
package analysis

import (
	"context"

	"cloudsketch/internal/topology"
)

// Result is the scorer response
type Result struct {
	StabilityScore int      `json:"stability_score"`
	CriticalNodes  []string `json:"critical_nodes"`
}

// Scorer analyzes a physical graph
type Scorer interface {
	Score(ctx context.Context, req *topology.Request) (*Result, error)
}

// ScorerFunc adapts a function to the Scorer interface
type ScorerFunc func(ctx context.Context, req *topology.Request) (*Result, error)

// Score calls f
func (f ScorerFunc) Score(ctx context.Context, req *topology.Request) (*Result, error) {
	return f(ctx, req)
}

// clampScore keeps a score inside [0,100]
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// knownIDs drops critical ids that are not nodes of req, preserving order
func knownIDs(req *topology.Request, ids []string) []string {
	present := make(map[string]bool, len(req.Nodes))
	for _, n := range req.Nodes {
		present[n.ID] = true
	}

	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if present[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
