package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cloudsketch/internal/domain"
)

func TestMapCritical(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(node("web", domain.KindEC2))
	g.AddNode(node("asg", domain.KindASG, withMinSize(3)))
	g.AddNode(node("db", domain.KindRDS, withMultiAZ(domain.Ptr(domain.ZoneB))))

	exp := Expand(g, DefaultOptions())

	tests := []struct {
		name     string
		critical []string
		want     []string
	}{
		{"nothing critical", nil, []string{}},
		{"identity expansion", []string{"web"}, []string{"web"}},
		{"one instance marks the group", []string{"asg-instance-2"}, []string{"asg"}},
		{"several instances fold to one", []string{"asg-instance-1", "asg-instance-3"}, []string{"asg"}},
		{"standby marks the store", []string{"db-standby"}, []string{"db"}},
		{"declaration order", []string{"db-primary", "web"}, []string{"web", "db"}},
		{"unknown ids ignored", []string{"nope", "asg"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exp.MapCritical(tt.critical))
		})
	}
}

func TestMapCriticalInvertsExpansion(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(node("nat", domain.KindNAT, withCount(3)))
	g.AddNode(node("cache", domain.KindElastiCache, withMultiAZ(nil)))
	g.AddNode(node("s3", domain.KindS3))

	exp := Expand(g, DefaultOptions())

	for _, p := range exp.Nodes {
		assert.Equal(t, []string{p.LogicalID}, exp.MapCritical([]string{p.ID}))
	}
}
