package refine

// WindowEvaluation is the scored outcome of one iteration's Pmin/Pmax
// check, the refinement-loop analogue of evaluator.go's
// ResponseEvaluation (a score plus a should-stop verdict instead of a
// should-retry one).
type WindowEvaluation struct {
	Window float64
	Closed bool
}

// EvaluateWindow scores one iteration's bounds against epsilon (spec.md
// §4.7 step 4).
func EvaluateWindow(pmin, pmax, epsilon float64) WindowEvaluation {
	window := pmax - pmin
	return WindowEvaluation{Window: window, Closed: window <= epsilon}
}
