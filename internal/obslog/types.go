// Package obslog logs refinement-loop decisions as structured,
// bracket-tagged plain text lines, in place of provenance_log's sqlite
// table (logging/provenance.go): a refinement run's iteration trace is
// operational output meant to be tailed, not queried, so it goes through
// stdlib log rather than a database.
package obslog

// IterationDecision is one refinement iteration's outcome, logged after
// finalize-and-check completes (spec.md §4.7 steps 3-5).
type IterationDecision struct {
	RunID          string
	Iteration      int
	Kappa          float64
	StatesExpanded int
	StatesSeeded   int
	StateCount     int
	Pmin           float64
	Pmax           float64
	WindowClosed   bool
	Reason         string
}
