package refine

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"
)

const refinementOutcomesSchema = `
CREATE TABLE IF NOT EXISTS refinement_outcomes (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id             TEXT NOT NULL,
    size_bucket        TEXT NOT NULL,
    discipline         TEXT NOT NULL,
    iteration          INTEGER NOT NULL,
    window_shrink_rate REAL NOT NULL,
    window_closed      INTEGER NOT NULL DEFAULT 0,
    created_at         TEXT NOT NULL
);
`

const refinementOutcomesIndex = `
CREATE INDEX IF NOT EXISTS idx_refinement_outcomes_lookup
ON refinement_outcomes(size_bucket, discipline);
`

// Memory persists per-iteration refinement outcomes in sqlite and answers
// decay-weighted "which discipline converges fastest for models this
// size" queries. Same shape as orchestrator/memory.go's StrategyMemory —
// a decay-weighted average over accepted samples, gated by a minimum
// sample count — keyed on model-size bucket and discipline instead of
// turn classification and prompting strategy.
type Memory struct {
	db *sql.DB
}

// NewMemory initializes the refinement_outcomes table.
func NewMemory(db *sql.DB) (*Memory, error) {
	if _, err := db.Exec(refinementOutcomesSchema); err != nil {
		return nil, fmt.Errorf("migrate refinement_outcomes: %w", err)
	}
	if _, err := db.Exec(refinementOutcomesIndex); err != nil {
		return nil, fmt.Errorf("migrate refinement_outcomes index: %w", err)
	}
	return &Memory{db: db}, nil
}

// MemoryRecord is one persisted iteration outcome.
type MemoryRecord struct {
	RunID            string
	SizeBucket       string
	Discipline       string
	Iteration        int
	WindowShrinkRate float64
	WindowClosed     bool
	CreatedAt        time.Time
}

// RecordOutcome persists a single iteration outcome row.
func (m *Memory) RecordOutcome(rec MemoryRecord) error {
	closed := 0
	if rec.WindowClosed {
		closed = 1
	}
	_, err := m.db.Exec(`
		INSERT INTO refinement_outcomes
		(run_id, size_bucket, discipline, iteration, window_shrink_rate, window_closed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.SizeBucket, rec.Discipline, rec.Iteration, rec.WindowShrinkRate, closed,
		rec.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// BestDiscipline returns the discipline with the highest decay-weighted
// average window-shrink-rate observed for sizeBucket, or ("", 0, nil) if
// no discipline has at least 3 samples.
func (m *Memory) BestDiscipline(sizeBucket string) (string, float64, error) {
	rows, err := m.db.Query(`
		SELECT discipline, window_shrink_rate, created_at
		FROM refinement_outcomes
		WHERE size_bucket = ?`, sizeBucket)
	if err != nil {
		return "", 0, err
	}
	defer rows.Close()

	type accum struct {
		weightedSum, totalWeight float64
		count                    int
	}
	now := time.Now()
	const halfLifeHours = 30.0 * 24.0
	byDiscipline := make(map[string]*accum)

	for rows.Next() {
		var discipline, createdAtStr string
		var rate float64
		if err := rows.Scan(&discipline, &rate, &createdAtStr); err != nil {
			return "", 0, err
		}
		createdAt, err := time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			continue
		}
		weight := math.Pow(0.5, now.Sub(createdAt).Hours()/halfLifeHours)

		a, ok := byDiscipline[discipline]
		if !ok {
			a = &accum{}
			byDiscipline[discipline] = a
		}
		a.weightedSum += rate * weight
		a.totalWeight += weight
		a.count++
	}
	if err := rows.Err(); err != nil {
		return "", 0, err
	}

	best, bestScore := "", -1.0
	for discipline, a := range byDiscipline {
		if a.count < 3 {
			continue
		}
		avg := a.weightedSum / a.totalWeight
		if avg > bestScore {
			bestScore = avg
			best = discipline
		}
	}
	if best == "" {
		return "", 0, nil
	}
	return best, bestScore, nil
}

// SizeBucket buckets a state count into a coarse label for BestDiscipline
// lookups, so runs of similar scale share history without requiring an
// exact match.
func SizeBucket(stateCount int) string {
	switch {
	case stateCount < 100:
		return "tiny"
	case stateCount < 10_000:
		return "small"
	case stateCount < 1_000_000:
		return "medium"
	default:
		return "large"
	}
}
