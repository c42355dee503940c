// Package refine implements the outer refinement controller (C7): it
// builds the Pmin/Pmax augmented properties, drives repeated exploration
// engine invocations, evaluates window closure, and shrinks kappa between
// iterations (spec.md §4.7).
//
// This is the deepest adaptation from the teacher: orchestrator.go's
// classify → select-strategy → generate → evaluate → retry loop becomes
// classify-window → select-discipline → explore → finalize+check →
// evaluate → shrink-kappa. See DESIGN.md for the full per-file mapping.
package refine

import "time"

// WindowState classifies why a refinement iteration did or didn't stop
// the outer loop, mirroring orchestrator's TurnClassification enums
// adapted to numeric convergence signals.
type WindowState string

const (
	WindowOpen    WindowState = "open"
	WindowClosed  WindowState = "closed"
	WindowCeiling WindowState = "ceiling"
	WindowAborted WindowState = "aborted"
)

// RefinementResult is the outer loop's final answer (spec.md §6 "Result
// format"): the Pmin/Pmax bracket, the window, and enough bookkeeping to
// render the fixed-precision result table.
type RefinementResult struct {
	Pmin         float64
	Pmax         float64
	Window       float64
	StateCount   int
	InitialCount int
	Iterations   int
	Terminated   WindowState
	Reason       string
}

// IterationRecord is one completed iteration's full outcome. The
// controller does not build one; obslog, checkpoint.Store and Memory
// each take their own record type.
type IterationRecord struct {
	RunID      string
	Iteration  int
	Kappa      float64
	Discipline string
	Pmin       float64
	Pmax       float64
	StateCount int
	Signals    ConvergenceSignals
	CreatedAt  time.Time
}
