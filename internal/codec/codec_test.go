package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudsketch/internal/domain"
)

func sampleGraph() *domain.Graph {
	g := domain.NewGraph()

	igw := domain.NewNode("igw", domain.KindIGW)
	igw.Position = domain.NewPosition(10, 20)

	web := domain.NewNode("web", domain.KindEC2)
	web.Label = "Web"
	web.Attributes.PublicIP = domain.Ptr(true)
	web.Position = domain.NewPosition(120.5, 80)

	db := domain.NewNode("db", domain.KindRDS)
	db.Attributes.MultiAZ = domain.Ptr(true)
	db.Attributes.StandbyZone = domain.Ptr(domain.ZoneC)
	db.Attributes.Engine = domain.EnginePostgres
	db.Dead = true

	nat := domain.NewNode("nat", domain.KindNAT)
	nat.Attributes.Count = domain.Ptr(3)

	g.AddNode(*igw)
	g.AddNode(*web)
	g.AddNode(*db)
	g.AddNode(*nat)
	g.AddEdge(*domain.NewEdge("igw", "web"))
	g.AddEdge(*domain.NewEdge("web", "db"))
	g.AddEdge(*domain.NewEdge("web", "nat"))
	return g
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []Codec{NewJSONCodec(), NewYAMLCodec()} {
		t.Run(c.Format(), func(t *testing.T) {
			want := sampleGraph()

			var buf bytes.Buffer
			require.NoError(t, c.Export(want, &buf))

			got, err := c.Parse(&buf)
			require.NoError(t, err)

			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTripEmptyGraph(t *testing.T) {
	for _, c := range []Codec{NewJSONCodec(), NewYAMLCodec()} {
		t.Run(c.Format(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, c.Export(&domain.Graph{}, &buf))

			got, err := c.Parse(&buf)
			require.NoError(t, err)
			assert.Empty(t, got.Nodes)
			assert.Empty(t, got.Edges)
		})
	}
}

func TestJSONExportIsPrettyPrinted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONCodec().Export(sampleGraph(), &buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{\n  \"nodes\": [\n    {"), out)
	assert.Contains(t, out, `"type": "IGW"`)
	assert.Contains(t, out, `"az": "regional"`)
	assert.Contains(t, out, `"standby_az": "eu-west-1c"`)
}

func TestParseRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"not json", `{nodes: [`, "failed to parse JSON"},
		{"missing nodes", `{"edges": []}`, "missing nodes array"},
		{"missing edges", `{"nodes": []}`, "missing edges array"},
		{"null nodes", `{"nodes": null, "edges": []}`, "missing nodes array"},
		{"node without id", `{"nodes": [{"type": "EC2"}], "edges": []}`, "nodes[0].id is required"},
		{"unknown kind", `{"nodes": [{"id": "a", "type": "Mainframe"}], "edges": []}`, `unknown node type "Mainframe"`},
		{"unknown zone", `{"nodes": [{"id": "a", "type": "EC2", "az": "us-east-1a"}], "edges": []}`, "unknown availability zone"},
		{"bad engine", `{"nodes": [{"id": "a", "type": "RDS", "attributes": {"engine": "oracle"}}], "edges": []}`, "must be one of"},
		{"duplicate id", `{"nodes": [{"id": "a", "type": "EC2"}, {"id": "a", "type": "S3"}], "edges": []}`, `duplicate node id "a"`},
		{"edge without target", `{"nodes": [{"id": "a", "type": "EC2"}], "edges": [{"source": "a"}]}`, "edges[0].target is required"},
		{"nat count too large", `{"nodes": [{"id": "n", "type": "NAT", "attributes": {"count": 1000000}}], "edges": []}`, "nodes[0].attributes.count must be at most 64"},
		{"asg size too large", `{"nodes": [{"id": "a", "type": "ASG", "attributes": {"min_size": 65}}], "edges": []}`, "nodes[0].attributes.min_size must be at most 64"},
		{"dangling edge", `{"nodes": [{"id": "a", "type": "EC2"}], "edges": [{"source": "a", "target": "b"}]}`, `unknown target node "b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewJSONCodec().Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, g)
			assert.True(t, errors.Is(err, ErrMalformed), "expected ErrMalformed, got %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestParseKeepsReadError(t *testing.T) {
	readErr := errors.New("connection reset")
	for _, c := range []Codec{NewJSONCodec(), NewYAMLCodec()} {
		t.Run(c.Format(), func(t *testing.T) {
			_, err := c.Parse(failingReader{err: readErr})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
			if c.Format() == "json" {
				assert.ErrorIs(t, err, readErr)
			}
		})
	}
}

func TestParseYAMLRejectsEmptyDocument(t *testing.T) {
	_, err := NewYAMLCodec().Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseNormalizesNodes(t *testing.T) {
	input := `
nodes:
  - id: web
    type: EC2
    attributes:
      public_ip: true
      engine: pg
      count: 4
  - id: cache
    type: ElastiCache
    az: eu-west-1a
    attributes:
      multi_az: true
      standby_az: eu-west-1a
  - id: queue
    type: SQS
edges:
  - source: web
    target: cache
`
	g, err := NewYAMLCodec().Parse(strings.NewReader(input))
	require.NoError(t, err)

	web, _ := g.Node("web")
	assert.Equal(t, domain.Attributes{PublicIP: domain.Ptr(true)}, web.Attributes)
	assert.Equal(t, "EC2", web.Label)
	assert.Equal(t, domain.ZoneA, web.Zone)

	cache, _ := g.Node("cache")
	assert.Equal(t, domain.ZoneB, *cache.Attributes.StandbyZone)

	queue, _ := g.Node("queue")
	assert.Equal(t, domain.ZoneRegional, queue.Zone)

	require.Len(t, g.Edges, 1)
	assert.Equal(t, domain.NewEdge("web", "cache").ID, g.Edges[0].ID)
}

func TestParseRejectsDuplicateEdgeIDs(t *testing.T) {
	input := `{"nodes": [{"id": "a", "type": "EC2"}, {"id": "b", "type": "EC2"}],
		"edges": [{"id": "x", "source": "a", "target": "b"}, {"id": "x", "source": "b", "target": "a"}]}`

	_, err := NewJSONCodec().Parse(strings.NewReader(input))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"json", "json"},
		{"JSON", "json"},
		{"yaml", "yaml"},
		{"yml", "yaml"},
	}
	for _, tt := range tests {
		c, err := ForFormat(tt.format)
		require.NoError(t, err, tt.format)
		assert.Equal(t, tt.want, c.Format())
	}

	_, err := ForFormat("ansible-inventory")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	c, err := ForPath("/tmp/sketch.yml")
	require.NoError(t, err)
	assert.Equal(t, "yaml", c.Format())
}
