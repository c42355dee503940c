// Package modelgraph is a reference next-state generator (genmodel.Generator)
// backed by sqlite: model states, their labels, and rate-weighted
// transitions are stored in tables and enumerated on demand as a loaded
// state is expanded. It exists to let the exploration engine run
// end-to-end against a persisted model without a real CTMC model file
// format, and as the bootstrap-model/fixture-export commands' data source.
//
// Grounded on state/store.go's schema-in-a-const, PRAGMA-tuned
// sql.Open("sqlite", ...) constructor, and graph/graph.go's edge-table
// shape (source_id, target_id, weight) reused here as (source, target,
// rate).
package modelgraph

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS model_states (
	id         TEXT PRIMARY KEY,
	initial    INTEGER NOT NULL DEFAULT 0,
	absorbing  INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS model_transitions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id   TEXT NOT NULL,
	target_id   TEXT NOT NULL,
	rate        REAL NOT NULL,
	label       TEXT NOT NULL DEFAULT '',
	FOREIGN KEY (source_id) REFERENCES model_states(id)
);
CREATE INDEX IF NOT EXISTS idx_transitions_source ON model_transitions(source_id);
CREATE TABLE IF NOT EXISTS model_labels (
	state_id TEXT NOT NULL,
	label    TEXT NOT NULL,
	PRIMARY KEY (state_id, label)
);
`

// Store manages a toy CTMC's states, transitions, and labels in sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a model database at path and runs migrations.
// Use ":memory:" for an ephemeral model, matching state/store.go's own
// sql.Open("sqlite", ...) convention.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open model db: %w", err)
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

// AddState inserts a state, marking it initial and/or absorbing.
func (s *Store) AddState(id string, initial, absorbing bool) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO model_states (id, initial, absorbing) VALUES (?, ?, ?)`,
		id, boolToInt(initial), boolToInt(absorbing),
	)
	return err
}

// AddTransition inserts a rate-weighted transition from source to target.
func (s *Store) AddTransition(source, target string, rate float64, label string) error {
	_, err := s.db.Exec(
		`INSERT INTO model_transitions (source_id, target_id, rate, label) VALUES (?, ?, ?, ?)`,
		source, target, rate, label,
	)
	return err
}

// AddLabel attaches a named label to a state, for use as a property
// target (e.g. "target", "deadlock").
func (s *Store) AddLabel(stateID, label string) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO model_labels (state_id, label) VALUES (?, ?)`, stateID, label)
	return err
}

// StateInfo describes one persisted model state, for callers (e.g.
// cmd/fixture-export) that need to enumerate the whole model rather than
// query it state-by-state the way Generator does.
type StateInfo struct {
	ID        string
	Initial   bool
	Absorbing bool
}

// AllStates returns every persisted state in ID order.
func (s *Store) AllStates() ([]StateInfo, error) {
	rows, err := s.db.Query(`SELECT id, initial, absorbing FROM model_states ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StateInfo
	for rows.Next() {
		var info StateInfo
		var initial, absorbing int
		if err := rows.Scan(&info.ID, &initial, &absorbing); err != nil {
			return nil, err
		}
		info.Initial = initial != 0
		info.Absorbing = absorbing != 0
		out = append(out, info)
	}
	return out, rows.Err()
}

// Transition is one exported (target, rate, label) outgoing edge.
type Transition struct {
	Target string
	Rate   float64
	Label  string
}

// Outgoing returns stateID's outgoing transitions.
func (s *Store) Outgoing(stateID string) ([]Transition, error) {
	rows, err := s.outgoing(stateID)
	if err != nil {
		return nil, err
	}
	out := make([]Transition, len(rows))
	for i, r := range rows {
		out[i] = Transition{Target: r.target, Rate: r.rate, Label: r.label}
	}
	return out, nil
}

// LabelsFor returns the custom labels attached to stateID.
func (s *Store) LabelsFor(stateID string) ([]string, error) {
	return s.labelsFor(stateID)
}

func (s *Store) initialStates() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM model_states WHERE initial = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) outgoing(stateID string) ([]transitionRow, error) {
	rows, err := s.db.Query(`SELECT target_id, rate, label FROM model_transitions WHERE source_id = ? ORDER BY target_id`, stateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []transitionRow
	for rows.Next() {
		var t transitionRow
		if err := rows.Scan(&t.target, &t.rate, &t.label); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) labelsFor(stateID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT label FROM model_labels WHERE state_id = ?`, stateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var labels []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

func (s *Store) statesWithLabel(label string) ([]string, error) {
	rows, err := s.db.Query(`SELECT state_id FROM model_labels WHERE label = ?`, label)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type transitionRow struct {
	target string
	rate   float64
	label  string
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
