package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"cloudsketch/internal/domain"

	_ "modernc.org/sqlite"
)

// Repository implements repository.GraphRepository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository. dbPath may be ":memory:".
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer; one connection also keeps ":memory:"
	// databases from splitting across the pool.
	db.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA busy_timeout = 5000", "PRAGMA foreign_keys = ON"}
	if dbPath != ":memory:" && !strings.Contains(dbPath, "mode=memory") {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		ordinal INTEGER NOT NULL,
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		label TEXT NOT NULL,
		zone TEXT NOT NULL,
		position_x REAL,
		position_y REAL,
		attributes JSON,
		dead INTEGER NOT NULL DEFAULT 0,
		critical INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS edges (
		ordinal INTEGER NOT NULL,
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		FOREIGN KEY (source_id) REFERENCES nodes(id) ON DELETE CASCADE,
		FOREIGN KEY (target_id) REFERENCES nodes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS workspace (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		score INTEGER NOT NULL,
		critical JSON,
		logical_critical JSON,
		physical_nodes INTEGER NOT NULL,
		physical_edges INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_ordinal ON nodes(ordinal);
	CREATE INDEX IF NOT EXISTS idx_edges_ordinal ON edges(ordinal);
	CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// LoadGraph loads the stored graph in declaration order
func (r *Repository) LoadGraph(ctx context.Context) (*domain.Graph, error) {
	g := domain.NewGraph()

	rows, err := r.db.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row nodeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		node, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", row.ID, err)
		}
		g.AddNode(*node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}

	edgeRows, err := r.db.QueryContext(ctx, `SELECT `+edgeColumns+` FROM edges ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var row edgeRow
		if err := edgeRows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		g.AddEdge(row.toDomain())
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edges: %w", err)
	}

	return g, nil
}

// SaveGraph replaces the stored graph with g in one transaction
func (r *Repository) SaveGraph(ctx context.Context, g *domain.Graph) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Edges first, they reference nodes
	if _, err := tx.ExecContext(ctx, `DELETE FROM edges`); err != nil {
		return fmt.Errorf("failed to clear edges: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		return fmt.Errorf("failed to clear nodes: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (ordinal, `+nodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare node statement: %w", err)
	}
	defer nodeStmt.Close()

	for i := range g.Nodes {
		args, err := nodeInsertArgs(i, &g.Nodes[i])
		if err != nil {
			return fmt.Errorf("node %s: %w", g.Nodes[i].ID, err)
		}
		if _, err := nodeStmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert node %s: %w", g.Nodes[i].ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (ordinal, `+edgeColumns+`)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare edge statement: %w", err)
	}
	defer edgeStmt.Close()

	for i, e := range g.Edges {
		if _, err := edgeStmt.ExecContext(ctx, i, e.ID, e.Source, e.Target); err != nil {
			return fmt.Errorf("failed to insert edge %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadWorkspace returns the stored editor state, defaulting to design mode
func (r *Repository) LoadWorkspace(ctx context.Context) (*domain.Workspace, error) {
	ws := &domain.Workspace{Mode: domain.ModeDesign}

	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM workspace`)
	if err != nil {
		return nil, fmt.Errorf("failed to query workspace: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		switch key {
		case "mode":
			if m := domain.Mode(value); m.Valid() {
				ws.Mode = m
			}
		case "selected":
			ws.SelectedID = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workspace: %w", err)
	}

	return ws, nil
}

// SaveWorkspace stores the editor state
func (r *Repository) SaveWorkspace(ctx context.Context, ws *domain.Workspace) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	values := map[string]string{
		"mode":     string(ws.Mode),
		"selected": ws.SelectedID,
	}
	for key, value := range values {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO workspace (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value); err != nil {
			return fmt.Errorf("failed to store workspace %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RecordAnalysis appends a completed analysis run
func (r *Repository) RecordAnalysis(ctx context.Context, rec *domain.AnalysisRecord) error {
	critical, err := marshalToNull(rec.CriticalNodes)
	if err != nil {
		return fmt.Errorf("marshal critical nodes: %w", err)
	}
	logical, err := marshalToNull(rec.LogicalCritical)
	if err != nil {
		return fmt.Errorf("marshal logical critical: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analyses (`+analysisColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.StabilityScore, critical, logical, rec.PhysicalNodes, rec.PhysicalEdges, formatTime(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

// ListAnalyses returns up to limit runs, newest first. limit <= 0 returns all.
func (r *Repository) ListAnalyses(ctx context.Context, limit int) ([]domain.AnalysisRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+analysisColumns+` FROM analyses
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	records := make([]domain.AnalysisRecord, 0)
	for rows.Next() {
		var row analysisRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		rec, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("analysis %s: %w", row.ID, err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}

	return records, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
