package domain

// Graph is the logical topology. Nodes and edges are kept in declaration order.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
	}
}

// AddNode appends a node to the graph
func (g *Graph) AddNode(node Node) {
	g.Nodes = append(g.Nodes, node)
}

// AddEdge appends an edge to the graph
func (g *Graph) AddEdge(edge Edge) {
	g.Edges = append(g.Edges, edge)
}

// Clone returns a deep copy. History snapshots rely on this.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = n.Clone()
	}
	copy(out.Edges, g.Edges)
	return out
}

// IndexOfNode returns the position of node id, or -1
func (g *Graph) IndexOfNode(id string) int {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Node returns a pointer into the graph for node id
func (g *Graph) Node(id string) (*Node, bool) {
	if i := g.IndexOfNode(id); i >= 0 {
		return &g.Nodes[i], true
	}
	return nil, false
}

// IndexOfEdge returns the position of edge id, or -1
func (g *Graph) IndexOfEdge(id string) int {
	for i := range g.Edges {
		if g.Edges[i].ID == id {
			return i
		}
	}
	return -1
}

// FindEdge returns the first edge from source to target
func (g *Graph) FindEdge(source, target string) (*Edge, bool) {
	for i := range g.Edges {
		if g.Edges[i].Source == source && g.Edges[i].Target == target {
			return &g.Edges[i], true
		}
	}
	return nil, false
}

// RemoveNode deletes the node and every edge where it is source or target
func (g *Graph) RemoveNode(id string) bool {
	i := g.IndexOfNode(id)
	if i < 0 {
		return false
	}
	g.Nodes = append(g.Nodes[:i], g.Nodes[i+1:]...)
	g.RemoveEdgesWhere(func(e Edge) bool { return e.Touches(id) })
	return true
}

// RemoveEdge deletes edge id
func (g *Graph) RemoveEdge(id string) bool {
	i := g.IndexOfEdge(id)
	if i < 0 {
		return false
	}
	g.Edges = append(g.Edges[:i], g.Edges[i+1:]...)
	return true
}

// RemoveEdgesWhere deletes every edge matching pred and returns the removed edges
func (g *Graph) RemoveEdgesWhere(pred func(Edge) bool) []Edge {
	var removed []Edge
	kept := g.Edges[:0]
	for _, e := range g.Edges {
		if pred(e) {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	g.Edges = kept
	return removed
}
