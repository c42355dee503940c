package checkpoint

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS refinement_runs (
	run_id     TEXT PRIMARY KEY,
	property   TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS checkpoints (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	iteration   INTEGER NOT NULL,
	kappa       REAL NOT NULL,
	pmin        REAL NOT NULL,
	pmax        REAL NOT NULL,
	state_count INTEGER NOT NULL,
	created_at  TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES refinement_runs(run_id)
);
CREATE INDEX IF NOT EXISTS idx_checkpoints_run ON checkpoints(run_id);
`

// Store manages refinement-run checkpoints in sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a checkpoint database at path and runs
// migrations, matching state/store.go's PRAGMA-tuned constructor.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying connection so collaborators sharing this
// database file (e.g. refine.Memory) can migrate their own tables into
// it, matching state/store.go's own DB() accessor.
func (s *Store) DB() *sql.DB { return s.db }

// NewRun starts a fresh refinement run, returning its generated run ID.
func (s *Store) NewRun(property string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO refinement_runs (run_id, property, created_at) VALUES (?, ?, ?)`,
		id, property, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("new run: %w", err)
	}
	return id, nil
}

// Save persists one completed iteration's checkpoint.
func (s *Store) Save(rec Record) error {
	_, err := s.db.Exec(
		`INSERT INTO checkpoints (run_id, iteration, kappa, pmin, pmax, state_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Iteration, rec.Kappa, rec.Pmin, rec.Pmax, rec.StateCount,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Latest returns the most recent checkpoint for a run, or ok=false if
// the run has no checkpoints yet.
func (s *Store) Latest(runID string) (rec Record, ok bool, err error) {
	row := s.db.QueryRow(
		`SELECT run_id, iteration, kappa, pmin, pmax, state_count, created_at
		 FROM checkpoints WHERE run_id = ? ORDER BY iteration DESC LIMIT 1`,
		runID,
	)
	var createdAt string
	if scanErr := row.Scan(&rec.RunID, &rec.Iteration, &rec.Kappa, &rec.Pmin, &rec.Pmax, &rec.StateCount, &createdAt); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("latest checkpoint: %w", scanErr)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return rec, true, nil
}

// History returns every checkpoint for a run in iteration order.
func (s *Store) History(runID string) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT run_id, iteration, kappa, pmin, pmax, state_count, created_at
		 FROM checkpoints WHERE run_id = ? ORDER BY iteration ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var createdAt string
		if err := rows.Scan(&rec.RunID, &rec.Iteration, &rec.Kappa, &rec.Pmin, &rec.Pmax, &rec.StateCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}
