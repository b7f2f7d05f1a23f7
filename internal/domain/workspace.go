package domain

import "time"

// Mode is the editor mode
type Mode string

const (
	ModeDesign Mode = "design"
	ModeChaos  Mode = "chaos"
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeDesign || m == ModeChaos
}

// Workspace is the editor state kept next to the graph
type Workspace struct {
	Mode       Mode   `json:"mode"`
	SelectedID string `json:"selected_id,omitempty"`
}

// AnalysisRecord is one completed stability analysis
type AnalysisRecord struct {
	ID              string    `json:"id"`
	StabilityScore  int       `json:"stability_score"`
	CriticalNodes   []string  `json:"critical_nodes"`
	LogicalCritical []string  `json:"logical_critical"`
	PhysicalNodes   int       `json:"physical_nodes"`
	PhysicalEdges   int       `json:"physical_edges"`
	CreatedAt       time.Time `json:"created_at"`
}
