package refine

// ConvergenceSignals summarizes one iteration's numeric behavior for the
// classifier and discipline selector, the same role signals/producer.go's
// Producer.Produce plays for a conversational turn: derive a handful of
// cheap heuristics from raw iteration data rather than re-deriving them
// ad hoc at each call site.
type ConvergenceSignals struct {
	// Window is this iteration's Pmax - Pmin.
	Window float64
	// WindowShrinkRate is (prevWindow-window)/prevWindow, 0 on the first
	// iteration or when the window did not shrink.
	WindowShrinkRate float64
	// StateGrowth is (stateCount-prevStateCount)/prevStateCount, 0 on the
	// first iteration.
	StateGrowth float64
	// TruncationFraction is the share of indexed states still terminal
	// (truncated) at the end of the iteration.
	TruncationFraction float64
}

// ComputeSignals derives one iteration's ConvergenceSignals. prevWindow
// and prevStateCount should be zero on the first iteration.
func ComputeSignals(pmin, pmax, prevWindow float64, stateCount, prevStateCount, terminalCount int) ConvergenceSignals {
	window := pmax - pmin

	var shrink float64
	if prevWindow > 0 {
		shrink = (prevWindow - window) / prevWindow
		if shrink < 0 {
			shrink = 0
		}
	}

	var growth float64
	if prevStateCount > 0 {
		growth = float64(stateCount-prevStateCount) / float64(prevStateCount)
	}

	var trunc float64
	if stateCount > 0 {
		trunc = float64(terminalCount) / float64(stateCount)
	}

	return ConvergenceSignals{
		Window:             window,
		WindowShrinkRate:   shrink,
		StateGrowth:        growth,
		TruncationFraction: trunc,
	}
}
