// Package genmodel declares the next-state generator collaborator
// interface (spec.md §6) that the exploration engine (C5) consumes. A
// conforming generator turns a loaded packed state into its enabled
// choices and successor rates, and reports enough structural metadata
// for the absorbing-state manager and finalizer to do their jobs.
//
// Grounded on the collaborator shape of orchestrator/strategy.go (a
// narrow interface the orchestrator drives without knowing the concrete
// implementation) and on graph/graph.go's GetNeighbors, which plays the
// same "enumerate outgoing edges from a loaded node" role this
// Generator.Expand plays.
package genmodel

import "github.com/danielpatrickdp/stamina-go/internal/stateindex"

// ModelType classifies the kind of stochastic model a Generator exposes.
type ModelType int

const (
	CTMC ModelType = iota
	DTMC
	Unsupported
)

func (m ModelType) String() string {
	switch m {
	case CTMC:
		return "CTMC"
	case DTMC:
		return "DTMC"
	default:
		return "unsupported"
	}
}

// OnUnknown resolves a freshly observed packed state to an index: either
// inserting it (the default, during ordinary expansion) or collapsing it
// to the absorbing index (when a state is expanded solely to finalize
// truncation; spec.md §4.5 step 3c and §9's callback-binding note).
type OnUnknown[S stateindex.PackedState] func(S) stateindex.Ix

// Successor is one (packed-state, rate) pair produced by expanding a
// choice.
type Successor[S stateindex.PackedState] struct {
	State S
	Rate  float64
}

// Choice is one group of successors enabled from the loaded state, along
// with the label attached to that choice (e.g. an action name).
type Choice[S stateindex.PackedState] struct {
	Label      string
	Successors []Successor[S]
}

// Behavior is the full set of choices enabled from the currently loaded
// state, plus any per-state reward value the generator reports.
type Behavior[S stateindex.PackedState] struct {
	Choices []Choice[S]
	Reward  float64
}

// VariableInfo locates the synthetic Absorbing boolean within the
// generator's variable layout, so the absorbing-state manager (C6) can
// verify it exists and set its bit.
type VariableInfo struct {
	AbsorbingVarIndex int
	AbsorbingBitWidth int
	TotalVars         int
}

// Labeling maps label names (e.g. "init", "deadlock") to the state
// indices they apply to, for consumption by the finalizer (C8).
type Labeling map[string][]stateindex.Ix

// Generator is the next-state collaborator consumed by the exploration
// engine (spec.md §6).
type Generator[S stateindex.PackedState] interface {
	// TotalStateSize reports the bit-width of the packed state encoding.
	TotalStateSize() int

	// InitialStates resolves the model's initial packed states to
	// indices via on, returning them in generator-reported order.
	InitialStates(on OnUnknown[S]) ([]stateindex.Ix, error)

	// Load stages a packed state for expansion by Expand.
	Load(s S) error

	// Expand enumerates the loaded state's enabled choices, resolving
	// successor states to indices via on. A state with zero enabled
	// choices is a legitimate deadlock, not an error: implementations
	// return (Behavior{}, nil) and leave it to the caller to mark the
	// state Deadlock. guard.EmptyBehavior is reserved for a generator
	// failing to report its choices at all (a generator-side fault), not
	// for a state that genuinely has none.
	Expand(on OnUnknown[S]) (Behavior[S], error)

	// VariableInfo reports where the Absorbing variable lives.
	VariableInfo() VariableInfo

	// Label computes the labeling for the given initial and deadlock
	// index sets, consulting idx to translate any generator-declared,
	// packed-state-keyed label into index-keyed form (spec.md §6:
	// "label(index_map, initials, deadlocks) -> Labeling").
	Label(idx *stateindex.Map[S], initials, deadlocks []stateindex.Ix) (Labeling, error)

	// RemapStateIDs notifies the generator that indices have been
	// permuted by f, so any generator-internal index caches stay
	// consistent with the index map.
	RemapStateIDs(f func(stateindex.Ix) stateindex.Ix) error

	// ModelType reports the kind of model this generator exposes.
	ModelType() ModelType
}
