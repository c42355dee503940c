package refine

import (
	"github.com/danielpatrickdp/stamina-go/internal/config"
	"github.com/danielpatrickdp/stamina-go/internal/guard"
)

// Classify decides whether the outer loop should stop after the current
// iteration and why, mirroring classifier.go's decision-tree shape
// (ordered checks, first match wins) but over numeric window/iteration
// signals instead of prompt keywords.
func Classify(pmin, pmax float64, iteration int, cfg config.Config) WindowState {
	if guard.CheckWindow(pmin, pmax, cfg.ProbWin) {
		return WindowClosed
	}
	if iteration >= cfg.MaxApproxCount {
		return WindowCeiling
	}
	return WindowOpen
}
