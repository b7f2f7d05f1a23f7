package domain

import (
	"testing"
)

func TestNewEdge(t *testing.T) {
	t.Run("creates edge with generated ID", func(t *testing.T) {
		edge := NewEdge("node1", "node2")

		if edge.Source != "node1" {
			t.Errorf("expected Source 'node1', got %s", edge.Source)
		}
		if edge.Target != "node2" {
			t.Errorf("expected Target 'node2', got %s", edge.Target)
		}
		if edge.ID == "" {
			t.Error("expected ID to be generated")
		}
	})
}

func TestEdgeGenerateID(t *testing.T) {
	t.Run("generates consistent ID", func(t *testing.T) {
		edge1 := NewEdge("node1", "node2")
		edge2 := NewEdge("node1", "node2")

		if edge1.ID != edge2.ID {
			t.Error("expected same endpoints to generate same ID")
		}
	})

	t.Run("direction is significant", func(t *testing.T) {
		edge1 := NewEdge("node1", "node2")
		edge2 := NewEdge("node2", "node1")

		if edge1.ID == edge2.ID {
			t.Error("expected reversed endpoints to generate different IDs")
		}
	})

	t.Run("different endpoints generate different IDs", func(t *testing.T) {
		edge1 := NewEdge("node1", "node2")
		edge2 := NewEdge("node1", "node3")

		if edge1.ID == edge2.ID {
			t.Error("expected different endpoints to generate different IDs")
		}
	})
}

func TestEdgeTouches(t *testing.T) {
	edge := NewEdge("a", "b")

	tests := []struct {
		id   string
		want bool
	}{
		{"a", true},
		{"b", true},
		{"c", false},
	}

	for _, tt := range tests {
		if got := edge.Touches(tt.id); got != tt.want {
			t.Errorf("Touches(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
