package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudsketch/internal/codec"
	"cloudsketch/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "sketch.yaml", `
nodes:
  - id: igw
    type: IGW
  - id: web
    type: EC2
edges:
  - source: igw
    target: web
`)
	g, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 2)
	assert.Len(t, g.Edges, 1)
	assert.Equal(t, domain.ZoneRegional, g.Nodes[0].Zone)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(writeFile(t, "sketch.txt", "{}"))
	assert.ErrorIs(t, err, codec.ErrUnsupportedFormat)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadFile(writeFile(t, "bad.json", `{"nodes": [}`))
	assert.ErrorIs(t, err, codec.ErrMalformed)
}

func TestSaveFileRoundTrip(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(*domain.NewNode("web", domain.KindEC2))
	g.AddNode(*domain.NewNode("db", domain.KindRDS))
	g.AddEdge(*domain.NewEdge("web", "db"))

	for _, name := range []string{"out.json", "out.yml"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, SaveFile(g, path))

		loaded, err := LoadFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, g.Edges, loaded.Edges, name)
		assert.Len(t, loaded.Nodes, 2, name)
	}
}

func TestAudit(t *testing.T) {
	g := domain.NewGraph()
	g.AddNode(*domain.NewNode("igw", domain.KindIGW))
	g.AddNode(*domain.NewNode("web", domain.KindEC2))
	g.AddNode(*domain.NewNode("db", domain.KindRDS))
	g.AddNode(*domain.NewNode("bucket", domain.KindS3))
	g.AddEdge(*domain.NewEdge("igw", "web"))
	g.AddEdge(*domain.NewEdge("web", "db"))
	g.AddEdge(*domain.NewEdge("bucket", "db"))

	rejected := Audit(g, domain.DefaultRulebook())
	require.Len(t, rejected, 2)
	assert.Equal(t, "igw", rejected[0].Source)
	assert.Contains(t, rejected[0].Reason, "public IP")
	assert.Equal(t, "bucket", rejected[1].Source)
	assert.Contains(t, rejected[1].Reason, "forbidden")
}
