package modelgraph

import (
	"fmt"

	"github.com/danielpatrickdp/stamina-go/internal/genmodel"
	"github.com/danielpatrickdp/stamina-go/internal/stateindex"
)

// Generator adapts a Store into genmodel.Generator[string]: packed states
// are the store's state IDs, which is sufficient for a reference
// implementation exercising the exploration engine end to end.
type Generator struct {
	store  *Store
	loaded string
}

// NewGenerator wraps store as a genmodel.Generator.
func NewGenerator(store *Store) *Generator {
	return &Generator{store: store}
}

var _ genmodel.Generator[string] = (*Generator)(nil)

// TotalStateSize reports a nominal bit-width; this reference generator
// has no fixed-width packed encoding, so it reports the width needed to
// distinguish states by ordinal (a generous, unused upper bound).
func (g *Generator) TotalStateSize() int { return 32 }

func (g *Generator) InitialStates(on genmodel.OnUnknown[string]) ([]stateindex.Ix, error) {
	ids, err := g.store.initialStates()
	if err != nil {
		return nil, fmt.Errorf("initial states: %w", err)
	}
	out := make([]stateindex.Ix, 0, len(ids))
	for _, id := range ids {
		out = append(out, on(id))
	}
	return out, nil
}

func (g *Generator) Load(s string) error {
	g.loaded = s
	return nil
}

func (g *Generator) Expand(on genmodel.OnUnknown[string]) (genmodel.Behavior[string], error) {
	rows, err := g.store.outgoing(g.loaded)
	if err != nil {
		return genmodel.Behavior[string]{}, fmt.Errorf("expand %s: %w", g.loaded, err)
	}
	if len(rows) == 0 {
		return genmodel.Behavior[string]{}, nil
	}

	byLabel := make(map[string][]genmodel.Successor[string])
	var order []string
	for _, r := range rows {
		if _, seen := byLabel[r.label]; !seen {
			order = append(order, r.label)
		}
		on(r.target)
		byLabel[r.label] = append(byLabel[r.label], genmodel.Successor[string]{State: r.target, Rate: r.rate})
	}

	behavior := genmodel.Behavior[string]{}
	for _, label := range order {
		behavior.Choices = append(behavior.Choices, genmodel.Choice[string]{Label: label, Successors: byLabel[label]})
	}
	return behavior, nil
}

// VariableInfo reports the nominal Absorbing variable slot. This
// reference generator models variables abstractly rather than as a
// concrete bit layout, so it always reports a single boolean variable at
// index 0 (the caller's own bootstrap step is responsible for having
// added an "absorbing" state to the store).
func (g *Generator) VariableInfo() genmodel.VariableInfo {
	return genmodel.VariableInfo{AbsorbingVarIndex: 0, AbsorbingBitWidth: 1, TotalVars: 1}
}

func (g *Generator) Label(idx *stateindex.Map[string], initials, deadlocks []stateindex.Ix) (genmodel.Labeling, error) {
	labeling := genmodel.Labeling{
		"init":     initials,
		"deadlock": deadlocks,
	}
	custom := make(map[string][]stateindex.Ix)
	idx.ForEach(func(ix stateindex.Ix, s string, _ *stateindex.Record) {
		labels, err := g.store.labelsFor(s)
		if err != nil {
			return
		}
		for _, l := range labels {
			custom[l] = append(custom[l], ix)
		}
	})
	for l, ids := range custom {
		labeling[l] = ids
	}
	return labeling, nil
}

// RemapStateIDs is a no-op: this generator holds no index-keyed cache of
// its own, it re-queries the store by packed-state ID on every call.
func (g *Generator) RemapStateIDs(f func(stateindex.Ix) stateindex.Ix) error { return nil }

func (g *Generator) ModelType() genmodel.ModelType { return genmodel.CTMC }
