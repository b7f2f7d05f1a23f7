package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudsketch/internal/loader"
	"cloudsketch/internal/topology"
)

const sketch = `
nodes:
  - id: alb
    type: ALB
  - id: web
    type: ASG
    attributes:
      min_size: 2
  - id: db
    type: RDS
edges:
  - source: alb
    target: web
  - source: web
    target: db
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := writeTemp(t, "config.yaml", "log:\n  level: error\n")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "validate", writeTemp(t, "ok.yaml", sketch))
	require.NoError(t, err)
	assert.Contains(t, out, "OK: 3 nodes, 2 connections")

	bad := writeTemp(t, "bad.json", `{"nodes": [{"id": "db", "type": "RDS"}, {"id": "web", "type": "EC2"}],
"edges": [{"source": "db", "target": "web"}]}`)
	out, err = run(t, "validate", bad)
	require.Error(t, err)
	assert.Contains(t, out, "REJECTED db -> web")
	assert.Contains(t, err.Error(), "1 of 1 connections rejected")
}

func TestExpandCommand(t *testing.T) {
	out, err := run(t, "expand", writeTemp(t, "sketch.yaml", sketch))
	require.NoError(t, err)

	var req topology.Request
	require.NoError(t, json.Unmarshal([]byte(out), &req))
	assert.Len(t, req.Nodes, 4, "alb, two web instances, db")
	assert.Len(t, req.Edges, 4, "alb fans out to both instances, both reach db")
}

func TestAnalyzeCommand(t *testing.T) {
	path := writeTemp(t, "sketch.yaml", sketch)

	out, err := run(t, "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Stability score: 100", "the two web instances form a ring with alb and db")
	assert.Contains(t, out, "Critical (logical):  none")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"stability_score": 90, "critical_nodes": ["db"]}`))
	}))
	defer srv.Close()

	out, err = run(t, "analyze", path, "--scorer-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Stability score: 90")
	assert.Contains(t, out, "Critical (logical):  db")
}

func TestRulesCommand(t *testing.T) {
	out, err := run(t, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "NAT          -> IGW")
	assert.Contains(t, out, "RDS          -> none")
}

func TestConvertCommand(t *testing.T) {
	in := writeTemp(t, "sketch.yaml", sketch)
	dst := filepath.Join(t.TempDir(), "sketch.json")

	out, err := run(t, "convert", in, dst)
	require.NoError(t, err)
	assert.Contains(t, out, "3 nodes, 2 connections")

	g, err := loader.LoadFile(dst)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 3)
}

func TestInvalidConfigFails(t *testing.T) {
	cfg := writeTemp(t, "config.yaml", "analysis:\n  scorer: nope\n")
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfg, "rules"})
	assert.Error(t, cmd.Execute())
}
