// Package checkpoint persists refinement-run progress to sqlite so a
// long-running refinement loop can be inspected after a restart; a
// run is not resumed from its checkpoints. Grounded on state/store.go's schema-in-a-const and
// versioned-record pattern; a checkpoint here plays the role
// state_versions plays there, one row per completed iteration.
package checkpoint

import "time"

// Record is one completed refinement iteration's persisted snapshot.
type Record struct {
	RunID      string
	Iteration  int
	Kappa      float64
	Pmin       float64
	Pmax       float64
	StateCount int
	CreatedAt  time.Time
}
