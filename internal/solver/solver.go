// Package solver declares the quantitative model-checking collaborator
// (spec.md §6, "Solver interface (consumed)") and a reference
// implementation grounded on standard CTMC transient-analysis numerics.
//
// No linear-algebra or numerical library is present anywhere in the
// retrieved corpus, so the reference solver is built on stdlib math
// (see DESIGN.md): this is an intentional, documented stdlib fallback,
// not an oversight.
package solver

import "github.com/danielpatrickdp/stamina-go/internal/stateindex"

// CTMC is the finished sparse artifact produced by the finalizer (C8)
// and consumed here for quantitative checking.
type CTMC struct {
	// Rows holds the full transition matrix; Rows[i] is the sorted,
	// duplicate-merged outgoing edge list from state i.
	Rows [][]Edge
	// Initial lists the model's initial state indices.
	Initial []stateindex.Ix
	// Labels maps a label name to the set of states it applies to.
	Labels map[string][]stateindex.Ix
}

// Edge is one outgoing transition within a finalized CTMC.
type Edge struct {
	Target stateindex.Ix
	Rate   float64
}

// Property is a bounded-reachability property of the form P=?[F<=T target]
// (time-bounded) or P=?[F target] (unbounded), against a named target
// label. This covers the Pmin/Pmax augmented properties the refinement
// controller constructs (spec.md §6 "Model-modification interface").
type Property struct {
	TargetLabel string
	// TimeBound is the horizon T for F<=T; nil means unbounded F.
	TimeBound *float64
}

// Solver is the quantitative model-checking collaborator consumed by the
// refinement controller (C7).
type Solver interface {
	Check(ctmc *CTMC, prop Property) (float64, error)
}
