package refine

import "github.com/danielpatrickdp/stamina-go/internal/config"

// RunState is the controller's own iteration-local mutable state (its
// live kappa and iteration counter), kept separate from the immutable
// config.Config a run was started from. This is the "explicit
// configuration record" design note in spec.md §9: the engine borrows
// config immutably per iteration and mutates only this local value,
// copying nothing back into config.Config itself.
type RunState struct {
	Kappa     float64
	Iteration int
}

// NewRunState seeds a fresh run's mutable state from cfg's initial kappa.
func NewRunState(cfg config.Config) *RunState {
	return &RunState{Kappa: cfg.Kappa0, Iteration: 0}
}
