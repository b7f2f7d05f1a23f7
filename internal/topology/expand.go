// Package topology turns a logical sketch into the physical graph used for
// stability analysis, and maps analysis results back to logical nodes.
//
// Clusters (NAT gateways with a replica count, auto scaling groups with a
// minimum size) expand into one physical node per instance placed round-robin
// over the zone list. Multi-AZ stores expand into a primary and a standby.
// Every other node expands to itself. Logical edges fan out over the Cartesian
// product of their endpoints' expansions.
//
// Expansion is deterministic: output order follows logical declaration order.
package topology

import (
	"fmt"

	"cloudsketch/internal/domain"
)

// Options controls zone placement during expansion
type Options struct {
	Zones              []domain.Zone
	DefaultStandbyZone domain.Zone
}

// DefaultOptions returns the fixed zone set and default standby zone
func DefaultOptions() Options {
	return Options{
		Zones:              domain.DefaultZones(),
		DefaultStandbyZone: domain.DefaultStandbyZone,
	}
}

// PhysicalNode is one concrete instance of a logical node
type PhysicalNode struct {
	ID          string            `json:"id"`
	LogicalID   string            `json:"logical_id"`
	Kind        domain.NodeKind   `json:"type"`
	Label       string            `json:"label"`
	Zone        domain.Zone       `json:"az"`
	PrimaryZone domain.Zone       `json:"primary_az"`
	Attributes  domain.Attributes `json:"attributes"`
	Dead        bool              `json:"dead,omitempty"`
}

// PhysicalEdge connects two physical nodes
type PhysicalEdge struct {
	ID            string `json:"id"`
	LogicalEdgeID string `json:"logical_edge_id"`
	Source        string `json:"source"`
	Target        string `json:"target"`
}

// Expansion is the physical graph derived from one logical graph. It is built
// fresh for every analysis run and never persisted.
type Expansion struct {
	Nodes []PhysicalNode `json:"nodes"`
	Edges []PhysicalEdge `json:"edges"`

	order   []string
	byLogic map[string][]PhysicalNode
	owner   map[string]string
}

// Expand builds the physical graph for g
func Expand(g *domain.Graph, opts Options) *Expansion {
	if len(opts.Zones) == 0 {
		opts.Zones = domain.DefaultZones()
	}
	if opts.DefaultStandbyZone == "" {
		opts.DefaultStandbyZone = domain.DefaultStandbyZone
	}

	exp := &Expansion{
		Nodes:   make([]PhysicalNode, 0, len(g.Nodes)),
		Edges:   make([]PhysicalEdge, 0, len(g.Edges)),
		order:   make([]string, 0, len(g.Nodes)),
		byLogic: make(map[string][]PhysicalNode, len(g.Nodes)),
		owner:   make(map[string]string, len(g.Nodes)),
	}

	for i := range g.Nodes {
		node := &g.Nodes[i]
		if _, seen := exp.byLogic[node.ID]; seen {
			continue
		}
		physical := expandNode(node, opts)
		exp.order = append(exp.order, node.ID)
		exp.byLogic[node.ID] = physical
		for _, p := range physical {
			exp.owner[p.ID] = node.ID
		}
		exp.Nodes = append(exp.Nodes, physical...)
	}

	for _, edge := range g.Edges {
		sources := exp.byLogic[edge.Source]
		targets := exp.byLogic[edge.Target]
		for _, src := range sources {
			for _, tgt := range targets {
				exp.Edges = append(exp.Edges, PhysicalEdge{
					ID:            fmt.Sprintf("%s-%s-%s", edge.ID, src.ID, tgt.ID),
					LogicalEdgeID: edge.ID,
					Source:        src.ID,
					Target:        tgt.ID,
				})
			}
		}
	}

	return exp
}

func expandNode(node *domain.Node, opts Options) []PhysicalNode {
	attrs := node.Attributes

	switch {
	case node.Kind == domain.KindNAT && attrs.Count != nil && *attrs.Count > 1:
		return roundRobin(node, *attrs.Count, opts.Zones)

	case node.Kind == domain.KindASG && attrs.MinSize != nil && *attrs.MinSize > 1:
		return roundRobin(node, *attrs.MinSize, opts.Zones)

	case node.Kind.IsReplicatedStore() && node.IsMultiAZ():
		standby := opts.DefaultStandbyZone
		if attrs.StandbyZone != nil && *attrs.StandbyZone != "" {
			standby = *attrs.StandbyZone
		}
		primary := physicalFrom(node, node.ID+"-primary", node.Label+" (Primary)", node.Zone)
		secondary := physicalFrom(node, node.ID+"-standby", node.Label+" (Standby)", standby)
		return []PhysicalNode{primary, secondary}
	}

	return []PhysicalNode{physicalFrom(node, node.ID, node.Label, node.Zone)}
}

func roundRobin(node *domain.Node, n int, zones []domain.Zone) []PhysicalNode {
	n = min(n, domain.MaxReplicas)
	out := make([]PhysicalNode, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, physicalFrom(node,
			fmt.Sprintf("%s-instance-%d", node.ID, i+1),
			fmt.Sprintf("%s %d", node.Label, i+1),
			zones[i%len(zones)],
		))
	}
	return out
}

func physicalFrom(node *domain.Node, id, label string, zone domain.Zone) PhysicalNode {
	return PhysicalNode{
		ID:          id,
		LogicalID:   node.ID,
		Kind:        node.Kind,
		Label:       label,
		Zone:        zone,
		PrimaryZone: node.Zone,
		Attributes:  node.Attributes.Clone(),
		Dead:        node.Dead,
	}
}

// LogicalIDs returns the expanded logical ids in declaration order
func (e *Expansion) LogicalIDs() []string {
	return append([]string(nil), e.order...)
}

// PhysicalOf returns the ordered physical expansion of a logical node
func (e *Expansion) PhysicalOf(logicalID string) []PhysicalNode {
	return append([]PhysicalNode(nil), e.byLogic[logicalID]...)
}
