package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudsketch/internal/domain"
)

func node(id string, kind domain.NodeKind, mutate ...func(*domain.Node)) domain.Node {
	n := domain.NewNode(id, kind)
	for _, m := range mutate {
		m(n)
	}
	return *n
}

func withCount(c int) func(*domain.Node) {
	return func(n *domain.Node) { n.Attributes.Count = domain.Ptr(c) }
}

func withMinSize(c int) func(*domain.Node) {
	return func(n *domain.Node) { n.Attributes.MinSize = domain.Ptr(c) }
}

func withMultiAZ(standby *domain.Zone) func(*domain.Node) {
	return func(n *domain.Node) {
		n.Attributes.MultiAZ = domain.Ptr(true)
		n.Attributes.StandbyZone = standby
	}
}

func ids(nodes []PhysicalNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func zones(nodes []PhysicalNode) []domain.Zone {
	out := make([]domain.Zone, len(nodes))
	for i, n := range nodes {
		out[i] = n.Zone
	}
	return out
}

func TestExpandNATReplicas(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(node("nat", domain.KindNAT, withCount(3)))

	exp := Expand(g, DefaultOptions())

	require.Len(t, exp.Nodes, 3)
	assert.Equal(t, []string{"nat-instance-1", "nat-instance-2", "nat-instance-3"}, ids(exp.Nodes))
	assert.Equal(t, []domain.Zone{domain.ZoneA, domain.ZoneB, domain.ZoneC}, zones(exp.Nodes))
	assert.Equal(t, "NAT 2", exp.Nodes[1].Label)
	for _, p := range exp.Nodes {
		assert.Equal(t, "nat", p.LogicalID)
		assert.Equal(t, domain.ZoneA, p.PrimaryZone)
	}
}

func TestExpandCapsReplicas(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(node("nat", domain.KindNAT, withCount(1<<50)))
	g.AddNode(node("asg", domain.KindASG, withMinSize(domain.MaxReplicas+1)))
	g.AddEdge(*domain.NewEdge("asg", "nat"))

	exp := Expand(g, DefaultOptions())

	assert.Len(t, exp.PhysicalOf("nat"), domain.MaxReplicas)
	assert.Len(t, exp.PhysicalOf("asg"), domain.MaxReplicas)
	assert.Len(t, exp.Edges, domain.MaxReplicas*domain.MaxReplicas)
}

func TestExpandASGRoundRobinWraps(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(node("asg", domain.KindASG, withMinSize(5)))

	exp := Expand(g, DefaultOptions())

	require.Len(t, exp.Nodes, 5)
	assert.Equal(t,
		[]domain.Zone{domain.ZoneA, domain.ZoneB, domain.ZoneC, domain.ZoneA, domain.ZoneB},
		zones(exp.Nodes))
	assert.Equal(t, "asg-instance-5", exp.Nodes[4].ID)
}

func TestExpandSingleInstanceClusters(t *testing.T) {
	tests := []struct {
		name string
		node domain.Node
	}{
		{"NAT without count", node("nat", domain.KindNAT)},
		{"NAT with count 1", node("nat", domain.KindNAT, withCount(1))},
		{"ASG with min size 1", node("nat", domain.KindASG, withMinSize(1))},
		{"RDS single AZ", node("nat", domain.KindRDS)},
		{"ASG with count is not a NAT", node("nat", domain.KindASG, withCount(4))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := domain.NewGraph()
			g.AddNode(tt.node)

			exp := Expand(g, DefaultOptions())

			require.Len(t, exp.Nodes, 1)
			assert.Equal(t, "nat", exp.Nodes[0].ID)
			assert.Equal(t, tt.node.Label, exp.Nodes[0].Label)
		})
	}
}

func TestExpandMultiAZStore(t *testing.T) {
	t.Run("primary and standby zones", func(t *testing.T) {
		g := domain.NewGraph()
		g.AddNode(node("db", domain.KindRDS, withMultiAZ(domain.Ptr(domain.ZoneC))))

		exp := Expand(g, DefaultOptions())

		require.Len(t, exp.Nodes, 2)
		assert.Equal(t, []string{"db-primary", "db-standby"}, ids(exp.Nodes))
		assert.Equal(t, []domain.Zone{domain.ZoneA, domain.ZoneC}, zones(exp.Nodes))
		assert.Equal(t, "RDS (Primary)", exp.Nodes[0].Label)
		assert.Equal(t, "RDS (Standby)", exp.Nodes[1].Label)
	})

	t.Run("unset standby falls back to default", func(t *testing.T) {
		g := domain.NewGraph()
		g.AddNode(node("cache", domain.KindElastiCache, withMultiAZ(nil)))

		exp := Expand(g, DefaultOptions())

		require.Len(t, exp.Nodes, 2)
		assert.Equal(t, domain.DefaultStandbyZone, exp.Nodes[1].Zone)
	})
}

func TestExpandEdgeCartesianProduct(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(node("asg", domain.KindASG, withMinSize(3)))
	g.AddNode(node("db", domain.KindRDS, withMultiAZ(domain.Ptr(domain.ZoneB))))
	g.AddNode(node("q", domain.KindSQS))
	g.AddEdge(*domain.NewEdge("asg", "db"))
	g.AddEdge(*domain.NewEdge("asg", "q"))

	exp := Expand(g, DefaultOptions())

	require.Len(t, exp.Edges, 3*2+3*1)

	first := g.Edges[0]
	assert.Equal(t, first.ID+"-asg-instance-1-db-primary", exp.Edges[0].ID)
	assert.Equal(t, "asg-instance-1", exp.Edges[0].Source)
	assert.Equal(t, "db-standby", exp.Edges[1].Target)
	assert.Equal(t, "asg-instance-2", exp.Edges[2].Source)
	assert.Equal(t, g.Edges[1].ID, exp.Edges[6].LogicalEdgeID)
}

func TestExpandIsPartition(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(node("nat", domain.KindNAT, withCount(2)))
	g.AddNode(node("asg", domain.KindASG, withMinSize(4)))
	g.AddNode(node("db", domain.KindRDS, withMultiAZ(domain.Ptr(domain.ZoneB))))
	g.AddNode(node("igw", domain.KindIGW))
	g.AddNode(node("web", domain.KindEC2))

	exp := Expand(g, DefaultOptions())

	seen := make(map[string]bool)
	total := 0
	for _, logical := range g.Nodes {
		physical := exp.PhysicalOf(logical.ID)
		require.NotEmpty(t, physical, "expansion of %s is empty", logical.ID)
		for _, p := range physical {
			assert.False(t, seen[p.ID], "duplicate physical id %s", p.ID)
			seen[p.ID] = true
			total++

			owner, ok := exp.LogicalID(p.ID)
			require.True(t, ok)
			assert.Equal(t, logical.ID, owner)
		}
	}
	assert.Equal(t, len(exp.Nodes), total)
	assert.Equal(t, []string{"nat", "asg", "db", "igw", "web"}, exp.LogicalIDs())
}

func TestExpandIsDeterministic(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(node("asg", domain.KindASG, withMinSize(3)))
	g.AddNode(node("nat", domain.KindNAT, withCount(2)))
	g.AddEdge(*domain.NewEdge("asg", "nat"))

	a := Expand(g, DefaultOptions())
	b := Expand(g, DefaultOptions())

	assert.Equal(t, a.Nodes, b.Nodes)
	assert.Equal(t, a.Edges, b.Edges)
}

func TestExpandCustomZones(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(node("nat", domain.KindNAT, withCount(3)))

	exp := Expand(g, Options{Zones: []domain.Zone{"z1", "z2"}})

	assert.Equal(t, []domain.Zone{"z1", "z2", "z1"}, zones(exp.Nodes))
}

func TestExpandDoesNotAliasLogicalAttributes(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(node("nat", domain.KindNAT, withCount(2)))

	exp := Expand(g, DefaultOptions())
	*exp.Nodes[0].Attributes.Count = 9

	assert.Equal(t, 2, *g.Nodes[0].Attributes.Count)
}

func TestExpandSkipsDanglingEdges(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(node("web", domain.KindEC2))
	g.AddEdge(domain.Edge{ID: "e1", Source: "web", Target: "ghost"})

	exp := Expand(g, DefaultOptions())

	assert.Empty(t, exp.Edges)
}
