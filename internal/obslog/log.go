package obslog

import (
	"fmt"
	"log"
)

// Logger writes bracket-tagged refinement decisions, matching the
// bracketed-subsystem-tag convention used throughout the ambient stack
// ([REFINE], [ENGINE], [GUARD]).
type Logger struct {
	out *log.Logger
}

// New wraps l (or the standard logger if l is nil).
func New(l *log.Logger) *Logger {
	if l == nil {
		l = log.Default()
	}
	return &Logger{out: l}
}

// LogIteration records one completed refinement iteration.
func (lg *Logger) LogIteration(d IterationDecision) {
	lg.out.Printf("[REFINE] run=%s iter=%d kappa=%.9f states=%d expanded=%d seeded=%d pmin=%.12f pmax=%.12f window_closed=%v reason=%s",
		d.RunID, d.Iteration, d.Kappa, d.StateCount, d.StatesExpanded, d.StatesSeeded, d.Pmin, d.Pmax, d.WindowClosed, d.Reason)
}

// LogRecoverable records a recoverable-error diagnostic (spec.md §7
// propagation policy: "log a diagnostic and continue").
func (lg *Logger) LogRecoverable(subsystem string, err error) {
	lg.out.Printf("[%s] recoverable: %v", subsystem, err)
}

// LogFatal records a fatal-error diagnostic immediately before the
// process terminates.
func (lg *Logger) LogFatal(subsystem string, err error) {
	lg.out.Printf("[%s] fatal: %v", subsystem, err)
}

// Tracef writes a free-form trace line under subsystem's tag, for
// per-choice or per-state detail below the per-iteration summary.
func (lg *Logger) Tracef(subsystem, format string, args ...any) {
	lg.out.Printf("[%s] %s", subsystem, fmt.Sprintf(format, args...))
}
