package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/CTAG07/mensagen/pkg/problem"
)

// Render statuses recorded in the ledger.
const (
	StatusGenerated = "generated"
	StatusExisting  = "existing"
	StatusFailed    = "failed"
)

// SetupSchema creates the catalog tables. It is idempotent.
func SetupSchema(db *sql.DB) error {

	const (
		schemaProblems = `
CREATE TABLE IF NOT EXISTS catalog_problems (
    problem_id    TEXT PRIMARY KEY,
    problem_type  TEXT NOT NULL,
    subtype       TEXT NOT NULL,
    difficulty    INTEGER NOT NULL,
    title         TEXT NOT NULL,
    description   TEXT NOT NULL,
    image_file    TEXT NOT NULL UNIQUE,
    answer        TEXT NOT NULL,
    options       TEXT NOT NULL,
    explanation   TEXT NOT NULL,
    visual_data   TEXT NOT NULL,
    original_id   TEXT NOT NULL,
    generation_id TEXT NOT NULL,
    search_text   TEXT NOT NULL,
    position      INTEGER NOT NULL
);
`
		schemaRenders = `
CREATE TABLE IF NOT EXISTS catalog_renders (
    render_id   INTEGER PRIMARY KEY,
    run_id      TEXT NOT NULL,
    problem_id  TEXT NOT NULL,
    image_file  TEXT NOT NULL,
    status      TEXT NOT NULL,
    error       TEXT NOT NULL DEFAULT '',
    rendered_at TEXT NOT NULL
);
`
		indexRenders = `CREATE INDEX IF NOT EXISTS idx_catalog_renders_problem ON catalog_renders (problem_id);`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	// A mirror from an older layout is dropped; the next sync refills it.
	if err = dropStaleProblems(tx); err != nil {
		return err
	}
	if _, err = tx.Exec(schemaProblems); err != nil {
		return fmt.Errorf("could not create problems schema: %w", err)
	}
	if _, err = tx.Exec(schemaRenders); err != nil {
		return fmt.Errorf("could not create renders schema: %w", err)
	}
	if _, err = tx.Exec(indexRenders); err != nil {
		return fmt.Errorf("could not create renders index: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// dropStaleProblems removes a catalog_problems table that lacks the position column.
func dropStaleProblems(tx *sql.Tx) error {
	rows, err := tx.Query(`SELECT name FROM pragma_table_info('catalog_problems');`)
	if err != nil {
		return fmt.Errorf("could not inspect problems schema: %w", err)
	}
	var columns int
	hasPosition := false
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			_ = rows.Close()
			return err
		}
		columns++
		hasPosition = hasPosition || name == "position"
	}
	if err = rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	if columns > 0 && !hasPosition {
		if _, err = tx.Exec(`DROP TABLE catalog_problems;`); err != nil {
			return fmt.Errorf("could not drop stale problems table: %w", err)
		}
	}
	return nil
}

// RenderResult is one row of the render ledger.
type RenderResult struct {
	RunID      string
	ProblemID  string
	ImageFile  string
	Status     string
	Error      string
	RenderedAt time.Time
}

// Store mirrors the catalog into SQLite so it can be queried, and keeps a
// ledger of page renders.
type Store struct {
	db                *sql.DB
	logger            *slog.Logger
	stmtInsertProblem *sql.Stmt
	stmtInsertRender  *sql.Stmt
	stmtRenderHistory *sql.Stmt
	stmtCountProblems *sql.Stmt
}

const problemColumns = `problem_id, problem_type, subtype, difficulty, title, description, image_file, answer, options, explanation, visual_data, original_id`

// NewStore prepares the statements the store needs. SetupSchema must have
// been called on db first.
func NewStore(db *sql.DB, logger *slog.Logger) (*Store, error) {
	stmtInsertProblem, err := db.Prepare(`INSERT INTO catalog_problems (` + problemColumns + `, generation_id, search_text, position) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtInsertRender, err := db.Prepare(`INSERT INTO catalog_renders (run_id, problem_id, image_file, status, error, rendered_at) VALUES (?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtRenderHistory, err := db.Prepare(`SELECT run_id, problem_id, image_file, status, error, rendered_at FROM catalog_renders WHERE problem_id = ? ORDER BY render_id;`)
	if err != nil {
		return nil, err
	}

	stmtCountProblems, err := db.Prepare(`SELECT COUNT(*) FROM catalog_problems;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:                db,
		logger:            logger,
		stmtInsertProblem: stmtInsertProblem,
		stmtInsertRender:  stmtInsertRender,
		stmtRenderHistory: stmtRenderHistory,
		stmtCountProblems: stmtCountProblems,
	}, nil
}

// Close releases the prepared statements. The database itself is left open.
func (s *Store) Close() {
	for _, stmt := range []*sql.Stmt{s.stmtInsertProblem, s.stmtInsertRender, s.stmtRenderHistory, s.stmtCountProblems} {
		_ = stmt.Close()
	}
}

// SyncCatalog replaces the stored problems with the contents of c.
func (s *Store) SyncCatalog(ctx context.Context, c *problem.Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.ExecContext(ctx, "DELETE FROM catalog_problems"); err != nil {
		return fmt.Errorf("failed to clear problems: %w", err)
	}

	insert := tx.StmtContext(ctx, s.stmtInsertProblem)
	for i, p := range c.Problems {
		options, err := json.Marshal(p.Options)
		if err != nil {
			return fmt.Errorf("problem %s: failed to encode options: %w", p.ID, err)
		}
		visual, err := json.Marshal(p.VisualData)
		if err != nil {
			return fmt.Errorf("problem %s: failed to encode visual data: %w", p.ID, err)
		}
		_, err = insert.ExecContext(ctx,
			p.ID, string(p.Type), string(p.Subtype), p.Difficulty, p.Title, p.Description,
			p.ImageFile, p.Answer, string(options), p.Explanation, string(visual), p.OriginalID,
			c.GenerationID, searchText(p), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert problem %s: %w", p.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Catalog synced to store",
		slog.String("generation_id", c.GenerationID),
		slog.Int("problems", len(c.Problems)),
	)
	return nil
}

// searchText is the folded text Filter.Search is matched against, one field
// per line.
func searchText(p problem.ProblemRecord) string {
	return strings.Join([]string{foldText(p.Description), foldText(p.Title), foldText(p.Explanation)}, "\n")
}

// Count returns the number of stored problems.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.stmtCountProblems.QueryRowContext(ctx).Scan(&n)
	return n, err
}

// Query returns the stored problems matching f in catalog order.
func (s *Store) Query(ctx context.Context, f Filter) ([]problem.ProblemRecord, error) {
	var (
		where []string
		args  []any
	)
	if f.Type != "" {
		where = append(where, "problem_type = ?")
		args = append(args, string(f.Type))
	}
	if f.Subtype != "" {
		where = append(where, "subtype = ?")
		args = append(args, string(f.Subtype))
	}
	if f.MinDifficulty > 0 {
		where = append(where, "difficulty >= ?")
		args = append(args, f.MinDifficulty)
	}
	if f.MaxDifficulty > 0 {
		where = append(where, "difficulty <= ?")
		args = append(args, f.MaxDifficulty)
	}
	if f.Search != "" {
		where = append(where, "instr(search_text, ?) > 0")
		args = append(args, foldText(f.Search))
	}

	var q strings.Builder
	q.WriteString("SELECT " + problemColumns + " FROM catalog_problems")
	if len(where) > 0 {
		q.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	q.WriteString(" ORDER BY position")
	if f.Limit > 0 {
		q.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("could not query problems: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var out []problem.ProblemRecord
	for rows.Next() {
		var (
			p               problem.ProblemRecord
			options, visual string
		)
		err = rows.Scan(&p.ID, &p.Type, &p.Subtype, &p.Difficulty, &p.Title, &p.Description,
			&p.ImageFile, &p.Answer, &options, &p.Explanation, &visual, &p.OriginalID)
		if err != nil {
			return nil, err
		}
		if err = json.Unmarshal([]byte(options), &p.Options); err != nil {
			return nil, fmt.Errorf("problem %s: bad options column: %w", p.ID, err)
		}
		if err = json.Unmarshal([]byte(visual), &p.VisualData); err != nil {
			return nil, fmt.Errorf("problem %s: bad visual_data column: %w", p.ID, err)
		}
		out = append(out, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordRender appends a row to the render ledger.
func (s *Store) RecordRender(ctx context.Context, r RenderResult) error {
	if r.RenderedAt.IsZero() {
		r.RenderedAt = time.Now()
	}
	_, err := s.stmtInsertRender.ExecContext(ctx, r.RunID, r.ProblemID, r.ImageFile, r.Status, r.Error,
		r.RenderedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to record render of %s: %w", r.ProblemID, err)
	}
	return nil
}

// LastRender returns the most recent ledger row for a problem. ok is false
// when the problem was never rendered.
func (s *Store) LastRender(ctx context.Context, problemID string) (r RenderResult, ok bool, err error) {
	history, err := s.RenderHistory(ctx, problemID)
	if err != nil || len(history) == 0 {
		return RenderResult{}, false, err
	}
	return history[len(history)-1], true, nil
}

// RenderHistory returns every ledger row for a problem, oldest first.
func (s *Store) RenderHistory(ctx context.Context, problemID string) ([]RenderResult, error) {
	rows, err := s.stmtRenderHistory.QueryContext(ctx, problemID)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var out []RenderResult
	for rows.Next() {
		var (
			r  RenderResult
			at string
		)
		if err = rows.Scan(&r.RunID, &r.ProblemID, &r.ImageFile, &r.Status, &r.Error, &at); err != nil {
			return nil, err
		}
		if r.RenderedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("bad rendered_at %q: %w", at, err)
		}
		out = append(out, r)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
