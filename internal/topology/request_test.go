package topology

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudsketch/internal/domain"
)

func TestRequestNormalizesProperties(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(node("db", domain.KindRDS, withMultiAZ(domain.Ptr(domain.ZoneC)), func(n *domain.Node) {
		n.Attributes.Engine = domain.EnginePostgres
		n.Dead = true
	}))
	g.AddNode(node("web", domain.KindEC2))
	g.AddEdge(*domain.NewEdge("web", "db"))

	req := Expand(g, DefaultOptions()).Request()

	require.Len(t, req.Nodes, 3)
	standby := req.Nodes[1]
	assert.Equal(t, "db-standby", standby.ID)
	assert.Equal(t, "RDS", standby.Type)
	assert.Equal(t, "eu-west-1c", standby.Properties["az"])
	assert.Equal(t, "eu-west-1a", standby.Properties["primary_az"])
	assert.Equal(t, true, standby.Properties["multi_az"])
	assert.Equal(t, "eu-west-1c", standby.Properties["standby_az"])
	assert.Equal(t, "pg", standby.Properties["engine"])
	assert.Equal(t, true, standby.Properties["is_dead"])
	assert.Equal(t, "RDS (Standby)", standby.Properties["label"])

	web := req.Nodes[2].Properties
	for _, key := range []string{"multi_az", "standby_az", "min_size", "max_size", "public_ip"} {
		assert.NotContains(t, web, key, "replication field %s should be absent when unset", key)
	}
	assert.Equal(t, "eu-west-1a", web["az"])

	assert.Equal(t, []RequestEdge{
		{Source: "web", Target: "db-primary"},
		{Source: "web", Target: "db-standby"},
	}, req.Edges)
}

func TestRequestPresentFalseFlagsAreKept(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(node("web", domain.KindEC2, func(n *domain.Node) { n.Attributes.PublicIP = domain.Ptr(false) }))
	g.AddNode(node("asg", domain.KindASG, func(n *domain.Node) {
		n.Attributes.MinSize = domain.Ptr(1)
		n.Attributes.MaxSize = domain.Ptr(6)
	}))

	req := Expand(g, DefaultOptions()).Request()

	assert.Equal(t, false, req.Nodes[0].Properties["public_ip"])
	assert.Equal(t, 1, req.Nodes[1].Properties["min_size"])
	assert.Equal(t, 6, req.Nodes[1].Properties["max_size"])
}

func TestRequestJSONShape(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(node("igw", domain.KindIGW))

	data, err := json.Marshal(Expand(g, DefaultOptions()).Request())
	require.NoError(t, err)

	var decoded map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded["nodes"], 1)
	assert.Equal(t, "igw", decoded["nodes"][0]["id"])
	assert.Equal(t, "IGW", decoded["nodes"][0]["type"])
	assert.Contains(t, decoded["nodes"][0], "properties")
	assert.Empty(t, decoded["edges"])
}
