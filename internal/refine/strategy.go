package refine

import "github.com/danielpatrickdp/stamina-go/internal/engine"

// DisciplinePreset bundles the tuning knobs bound to one engine.Mode,
// the same shape orchestrator/strategy.go's Strategies map gives each
// StrategyID: a literal table of presets rather than a computed
// selection rule, so tuning the loop means editing a table entry.
type DisciplinePreset struct {
	Mode engine.Mode
	// EscalateTo is the discipline to switch to when convergence stalls
	// (WindowShrinkRate falls at or below StallThreshold).
	EscalateTo engine.Mode
	// StallThreshold is the WindowShrinkRate at or below which this discipline
	// is considered stalled.
	StallThreshold float64
}

// Disciplines is the full set of built-in discipline presets.
var Disciplines = map[engine.Mode]DisciplinePreset{
	engine.Iterative: {
		Mode:           engine.Iterative,
		EscalateTo:     engine.Priority,
		StallThreshold: 0.05,
	},
	engine.Priority: {
		Mode:           engine.Priority,
		EscalateTo:     engine.ReExploring,
		StallThreshold: 0.02,
	},
	engine.ReExploring: {
		Mode:           engine.ReExploring,
		EscalateTo:     engine.ReExploring,
		StallThreshold: 0,
	},
}

// SelectDiscipline returns the mode the next iteration should run under.
// It escalates from current to its preset's EscalateTo once the window
// has stalled, unless noPropRefine is set (spec.md §6: "no_prop_refine
// (bool): if true, skip property-guided reclassification").
func SelectDiscipline(current engine.Mode, signals ConvergenceSignals, noPropRefine bool) engine.Mode {
	if noPropRefine {
		return current
	}
	preset, ok := Disciplines[current]
	if !ok {
		return current
	}
	if signals.WindowShrinkRate <= preset.StallThreshold {
		return preset.EscalateTo
	}
	return current
}
