package engine

import (
	"testing"

	"github.com/danielpatrickdp/stamina-go/internal/accumulator"
	"github.com/danielpatrickdp/stamina-go/internal/genmodel"
	"github.com/danielpatrickdp/stamina-go/internal/stateindex"
)

// chainGenerator is a deterministic two-state loop generator for engine
// tests: s0 -> s1 at rate 2, s1 -> s0 at rate 1, matching spec.md §8
// scenario 1.
type chainGenerator struct {
	loaded string
}

func (g *chainGenerator) TotalStateSize() int { return 4 }

func (g *chainGenerator) InitialStates(on genmodel.OnUnknown[string]) ([]stateindex.Ix, error) {
	return []stateindex.Ix{on("s0")}, nil
}

func (g *chainGenerator) Load(s string) error { g.loaded = s; return nil }

func (g *chainGenerator) Expand(on genmodel.OnUnknown[string]) (genmodel.Behavior[string], error) {
	var succ genmodel.Successor[string]
	switch g.loaded {
	case "s0":
		succ = genmodel.Successor[string]{State: "s1", Rate: 2}
	case "s1":
		succ = genmodel.Successor[string]{State: "s0", Rate: 1}
	default:
		return genmodel.Behavior[string]{}, nil
	}
	on(succ.State)
	return genmodel.Behavior[string]{Choices: []genmodel.Choice[string]{{Successors: []genmodel.Successor[string]{succ}}}}, nil
}

func (g *chainGenerator) VariableInfo() genmodel.VariableInfo { return genmodel.VariableInfo{} }
func (g *chainGenerator) Label(idx *stateindex.Map[string], initials, deadlocks []stateindex.Ix) (genmodel.Labeling, error) {
	return genmodel.Labeling{}, nil
}
func (g *chainGenerator) RemapStateIDs(fn func(stateindex.Ix) stateindex.Ix) error { return nil }
func (g *chainGenerator) ModelType() genmodel.ModelType                           { return genmodel.CTMC }

var _ genmodel.Generator[string] = (*chainGenerator)(nil)

func TestEngineSeedAndExpandTwoStateLoop(t *testing.T) {
	idx := stateindex.New("absorbing")
	acc := accumulator.New()
	gen := &chainGenerator{}
	e := New[string](Iterative, gen, idx, acc)

	stats, err := e.Run(1, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.StatesSeeded != 1 {
		t.Fatalf("expected 1 seeded state, got %d", stats.StatesSeeded)
	}
	if stats.StatesExpanded != 2 {
		t.Fatalf("expected both s0 and s1 expanded, got %d", stats.StatesExpanded)
	}

	s0, _ := idx.Lookup("s0")
	s1, _ := idx.Lookup("s1")
	row0 := acc.Row(s0)
	if len(row0) != 1 || row0[0].Target != s1 || row0[0].Rate != 2 {
		t.Fatalf("expected s0 -> s1 rate 2, got %+v", row0)
	}
	row1 := acc.Row(s1)
	if len(row1) != 1 || row1[0].Target != s0 || row1[0].Rate != 1 {
		t.Fatalf("expected s1 -> s0 rate 1, got %+v", row1)
	}
}

func TestEngineLeavesLowPiTerminalInIterativeMode(t *testing.T) {
	idx := stateindex.New("absorbing")
	acc := accumulator.New()
	gen := &chainGenerator{}
	e := New[string](Iterative, gen, idx, acc)

	// kappa above the seeded share (1.0) means the seed itself must not
	// be expanded.
	stats, err := e.Run(1, 2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.StatesExpanded != 0 {
		t.Fatalf("expected no expansion when pi < kappa, got %d", stats.StatesExpanded)
	}
	s0, _ := idx.Lookup("s0")
	if !idx.GetMeta(s0).Terminal {
		t.Fatalf("expected s0 to remain terminal")
	}
}

func TestEngineResumesAfterKappaShrinks(t *testing.T) {
	idx := stateindex.New("absorbing")
	acc := accumulator.New()
	gen := &chainGenerator{}
	e := New[string](Iterative, gen, idx, acc)

	if _, err := e.Run(1, 2.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s0, _ := idx.Lookup("s0")
	if !idx.GetMeta(s0).Terminal {
		t.Fatalf("expected s0 to remain terminal after first iteration")
	}

	stats, err := e.Run(2, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.StatesExpanded == 0 {
		t.Fatalf("expected resume to expand s0 once kappa dropped below its pi")
	}
}

// TestResumeRejectsTerminalWithoutPredecessor exercises guard.CheckPredecessorSeen:
// a terminal record that was never legitimately queued (WasPutInTerminalQueue
// never set) has its pi reset to 0 rather than being resumed from.
func TestResumeRejectsTerminalWithoutPredecessor(t *testing.T) {
	idx := stateindex.New("absorbing")
	acc := accumulator.New()
	gen := &chainGenerator{}
	e := New[string](Iterative, gen, idx, acc)

	ix, _ := idx.LookupOrInsert("orphan")
	rec := idx.GetMeta(ix)
	rec.Terminal = true
	rec.Pi = 5.0

	q := e.newQueue()
	e.resume(q, 0.1)

	if rec.Pi != 0 {
		t.Fatalf("expected orphaned terminal record's pi to be reset to 0, got %v", rec.Pi)
	}
	if q.Len() != 0 {
		t.Fatalf("expected orphaned terminal record not to be requeued")
	}
}

func TestEngineEmptyInitialIsFatal(t *testing.T) {
	idx := stateindex.New("absorbing")
	acc := accumulator.New()
	gen := &emptyInitialGenerator{}
	e := New[string](Iterative, gen, idx, acc)

	_, err := e.Run(1, 1.0)
	if err == nil {
		t.Fatalf("expected error for empty initial states")
	}
}

type emptyInitialGenerator struct{ chainGenerator }

func (g *emptyInitialGenerator) InitialStates(on genmodel.OnUnknown[string]) ([]stateindex.Ix, error) {
	return nil, nil
}

var _ genmodel.Generator[string] = (*emptyInitialGenerator)(nil)
