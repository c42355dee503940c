package refine

import "github.com/danielpatrickdp/stamina-go/internal/config"

// Continuation is the outer loop's per-iteration stop/continue verdict,
// the refinement-loop analogue of retry.go's RetryEngine.ShouldRetry: a
// gate over a ceiling plus a latest-outcome check, but keyed on window
// closure and the iteration ceiling instead of response quality and
// attempt count.
type Continuation struct {
	ShouldContinue bool
	NextKappa      float64
	Reason         string
}

// Decide implements spec.md §4.7 steps 4-5: stop once the window has
// closed or the configured iteration ceiling is reached; otherwise shrink
// kappa by the configured reduction factor and continue.
func Decide(state *RunState, cfg config.Config, eval WindowEvaluation) Continuation {
	if eval.Closed {
		return Continuation{ShouldContinue: false, NextKappa: state.Kappa, Reason: "window closed"}
	}
	if state.Iteration >= cfg.MaxApproxCount {
		return Continuation{ShouldContinue: false, NextKappa: state.Kappa, Reason: "iteration ceiling reached"}
	}
	return Continuation{ShouldContinue: true, NextKappa: state.Kappa / cfg.ReduceKappa, Reason: "window open"}
}
