package analysis

import (
	"context"
	"math"

	"cloudsketch/internal/topology"
)

// GraphScorer is a deterministic, in-process scorer. Dead nodes are critical.
// Among the living, a node is critical when it is an articulation point of the
// undirected physical graph: removing it splits a connected part of the
// topology. The score is the share of non-critical nodes.
type GraphScorer struct{}

// NewGraphScorer creates a graph scorer
func NewGraphScorer() *GraphScorer {
	return &GraphScorer{}
}

// Score implements Scorer
func (s *GraphScorer) Score(ctx context.Context, req *topology.Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := len(req.Nodes)
	if total == 0 {
		return &Result{StabilityScore: 100, CriticalNodes: []string{}}, nil
	}

	index := make(map[string]int, total)
	dead := make([]bool, total)
	for i, n := range req.Nodes {
		index[n.ID] = i
		if v, ok := n.Properties["is_dead"].(bool); ok && v {
			dead[i] = true
		}
	}

	adj := make([][]int, total)
	for _, e := range req.Edges {
		u, okU := index[e.Source]
		v, okV := index[e.Target]
		if !okU || !okV || u == v || dead[u] || dead[v] {
			continue
		}
		adj[u] = append(adj[u], v)
		adj[v] = append(adj[v], u)
	}

	cut := articulationPoints(adj, dead)

	critical := make([]string, 0)
	for i, n := range req.Nodes {
		if dead[i] || cut[i] {
			critical = append(critical, n.ID)
		}
	}

	ratio := float64(len(critical)) / float64(total)
	score := clampScore(100 - int(math.Round(ratio*100)))

	return &Result{StabilityScore: score, CriticalNodes: critical}, nil
}

// articulationPoints runs Tarjan's low-link search over the living nodes.
// Iterative so large sketches do not grow the goroutine stack.
func articulationPoints(adj [][]int, skip []bool) []bool {
	n := len(adj)
	disc := make([]int, n)
	low := make([]int, n)
	parent := make([]int, n)
	cut := make([]bool, n)
	for i := range disc {
		disc[i] = -1
		parent[i] = -1
	}

	type frame struct {
		node     int
		next     int
		children int
	}

	timer := 0
	for root := 0; root < n; root++ {
		if skip[root] || disc[root] != -1 {
			continue
		}

		disc[root], low[root] = timer, timer
		timer++
		stack := []frame{{node: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			u := top.node

			if top.next < len(adj[u]) {
				v := adj[u][top.next]
				top.next++

				if disc[v] == -1 {
					parent[v] = u
					top.children++
					disc[v], low[v] = timer, timer
					timer++
					stack = append(stack, frame{node: v})
				} else if v != parent[u] {
					low[u] = min(low[u], disc[v])
				}
				continue
			}

			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				if top.children > 1 {
					cut[u] = true
				}
				continue
			}

			p := stack[len(stack)-1].node
			low[p] = min(low[p], low[u])
			if parent[p] != -1 && low[u] >= disc[p] {
				cut[p] = true
			}
		}
	}

	return cut
}
