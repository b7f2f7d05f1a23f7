package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"cloudsketch/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// boolToInt maps a flag onto SQLite's integer booleans
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// positionToNull splits an optional position into nullable columns
func positionToNull(p *domain.Position) (sql.NullFloat64, sql.NullFloat64) {
	if p == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: p.X, Valid: true}, sql.NullFloat64{Float64: p.Y, Valid: true}
}

// formatTime stores timestamps as sortable RFC 3339 text
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target any) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals v to a nullable JSON string.
// Zero attribute bags are stored as NULL rather than "{}".
func marshalToNull(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	if a, ok := v.(domain.Attributes); ok && a == (domain.Attributes{}) {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a new column to nodes table:
// 1. Add field to nodeRow struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update nodeColumns constant - APPEND to end
// 4. Update toDomain() to map new field to domain.Node
// 5. Update nodeInsertArgs() and the INSERT in SaveGraph
// 6. Add the column to the schema in sqlite.go migrate()
//
// CRITICAL: Column order must match between:
// - nodeColumns constant
// - scanArgs() return slice
// - All SELECT queries using nodeColumns
//
// Same pattern applies to edges and analyses.

// ============================================================================
// Node Row Scanner
// ============================================================================

// nodeRow holds all columns from a node query for scanning
type nodeRow struct {
	ID             string
	Kind           string
	Label          string
	Zone           string
	PositionX      sql.NullFloat64
	PositionY      sql.NullFloat64
	AttributesJSON sql.NullString
	Dead           int
	Critical       int
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match nodeColumns order exactly:
// id, kind, label, zone, position_x, position_y, attributes, dead, critical
func (r *nodeRow) scanArgs() []any {
	return []any{
		&r.ID,             // 1
		&r.Kind,           // 2
		&r.Label,          // 3
		&r.Zone,           // 4
		&r.PositionX,      // 5
		&r.PositionY,      // 6
		&r.AttributesJSON, // 7
		&r.Dead,           // 8
		&r.Critical,       // 9
	}
}

// toDomain converts the scanned row to a domain.Node
func (r *nodeRow) toDomain() (*domain.Node, error) {
	node := &domain.Node{
		ID:       r.ID,
		Kind:     domain.NodeKind(r.Kind),
		Label:    r.Label,
		Zone:     domain.Zone(r.Zone),
		Dead:     r.Dead != 0,
		Critical: r.Critical != 0,
	}

	if r.PositionX.Valid && r.PositionY.Valid {
		node.Position = domain.NewPosition(r.PositionX.Float64, r.PositionY.Float64)
	}

	if err := unmarshalJSONField(r.AttributesJSON, &node.Attributes); err != nil {
		return nil, fmt.Errorf("unmarshal attributes: %w", err)
	}

	return node, nil
}

// nodeColumns returns the SELECT column list for node queries
const nodeColumns = `id, kind, label, zone, position_x, position_y, attributes, dead, critical`

// nodeInsertArgs prepares arguments for node INSERT
// Returns: ordinal, id, kind, label, zone, position_x, position_y, attributes, dead, critical
func nodeInsertArgs(ordinal int, node *domain.Node) ([]any, error) {
	attrsJSON, err := marshalToNull(node.Attributes)
	if err != nil {
		return nil, fmt.Errorf("marshal attributes: %w", err)
	}

	posX, posY := positionToNull(node.Position)

	return []any{
		ordinal,
		node.ID,
		string(node.Kind),
		node.Label,
		string(node.Zone),
		posX,
		posY,
		attrsJSON,
		boolToInt(node.Dead),
		boolToInt(node.Critical),
	}, nil
}

// ============================================================================
// Edge Row Scanner
// ============================================================================

// edgeRow holds all columns from an edge query for scanning
type edgeRow struct {
	ID     string
	Source string
	Target string
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match edgeColumns order exactly:
// id, source_id, target_id
func (r *edgeRow) scanArgs() []any {
	return []any{
		&r.ID,     // 1
		&r.Source, // 2
		&r.Target, // 3
	}
}

// toDomain converts the scanned row to a domain.Edge
func (r *edgeRow) toDomain() domain.Edge {
	return domain.Edge{
		ID:     r.ID,
		Source: r.Source,
		Target: r.Target,
	}
}

// edgeColumns returns the SELECT column list for edge queries
const edgeColumns = `id, source_id, target_id`

// ============================================================================
// Analysis Row Scanner
// ============================================================================

// analysisRow holds all columns from an analysis query for scanning
type analysisRow struct {
	ID                  string
	Score               int
	CriticalJSON        sql.NullString
	LogicalCriticalJSON sql.NullString
	PhysicalNodes       int
	PhysicalEdges       int
	CreatedAt           string
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match analysisColumns order exactly:
// id, score, critical, logical_critical, physical_nodes, physical_edges, created_at
func (r *analysisRow) scanArgs() []any {
	return []any{
		&r.ID,                  // 1
		&r.Score,               // 2
		&r.CriticalJSON,        // 3
		&r.LogicalCriticalJSON, // 4
		&r.PhysicalNodes,       // 5
		&r.PhysicalEdges,       // 6
		&r.CreatedAt,           // 7
	}
}

// toDomain converts the scanned row to a domain.AnalysisRecord
func (r *analysisRow) toDomain() (*domain.AnalysisRecord, error) {
	rec := &domain.AnalysisRecord{
		ID:              r.ID,
		StabilityScore:  r.Score,
		CriticalNodes:   []string{},
		LogicalCritical: []string{},
		PhysicalNodes:   r.PhysicalNodes,
		PhysicalEdges:   r.PhysicalEdges,
	}

	created, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	rec.CreatedAt = created

	if err := unmarshalJSONField(r.CriticalJSON, &rec.CriticalNodes); err != nil {
		return nil, fmt.Errorf("unmarshal critical nodes: %w", err)
	}
	if err := unmarshalJSONField(r.LogicalCriticalJSON, &rec.LogicalCritical); err != nil {
		return nil, fmt.Errorf("unmarshal logical critical: %w", err)
	}
	if rec.CriticalNodes == nil {
		rec.CriticalNodes = []string{}
	}
	if rec.LogicalCritical == nil {
		rec.LogicalCritical = []string{}
	}

	return rec, nil
}

// analysisColumns returns the SELECT column list for analysis queries
const analysisColumns = `id, score, critical, logical_critical, physical_nodes, physical_edges, created_at`
