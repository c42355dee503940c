package refine

import (
	"context"
	"testing"

	"github.com/danielpatrickdp/stamina-go/internal/config"
	"github.com/danielpatrickdp/stamina-go/internal/genmodel"
	"github.com/danielpatrickdp/stamina-go/internal/solver"
	"github.com/danielpatrickdp/stamina-go/internal/stateindex"
)

// loopGenerator is the spec.md §8 scenario 1 two-state loop, augmented
// with the synthetic Absorbing variable the controller's VerifyAugmentation
// check requires: s0 -> s1 at rate 2, s1 -> s0 at rate 1.
type loopGenerator struct {
	loaded string
}

func (g *loopGenerator) TotalStateSize() int { return 4 }

func (g *loopGenerator) InitialStates(on genmodel.OnUnknown[string]) ([]stateindex.Ix, error) {
	return []stateindex.Ix{on("s0")}, nil
}

func (g *loopGenerator) Load(s string) error { g.loaded = s; return nil }

func (g *loopGenerator) Expand(on genmodel.OnUnknown[string]) (genmodel.Behavior[string], error) {
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

func (g *loopGenerator) VariableInfo() genmodel.VariableInfo {
	return genmodel.VariableInfo{AbsorbingVarIndex: 0, AbsorbingBitWidth: 1, TotalVars: 2}
}

func (g *loopGenerator) Label(idx *stateindex.Map[string], initials, deadlocks []stateindex.Ix) (genmodel.Labeling, error) {
	labeling := genmodel.Labeling{"init": initials}
	if s1, ok := idx.Lookup("s1"); ok {
		labeling["target"] = []stateindex.Ix{s1}
	}
	return labeling, nil
}

func (g *loopGenerator) RemapStateIDs(f func(stateindex.Ix) stateindex.Ix) error { return nil }

func (g *loopGenerator) ModelType() genmodel.ModelType { return genmodel.CTMC }

var _ genmodel.Generator[string] = (*loopGenerator)(nil)

func TestControllerClosesWindowOnTwoStateLoop(t *testing.T) {
	cfg := config.Default()
	c := &Controller[string]{
		Generator: &loopGenerator{},
		Solver:    &solver.Local{},
		Config:    cfg,
	}

	result, err := c.Run(context.Background(), "absorbing", solver.Property{TargetLabel: "target"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Terminated != WindowClosed {
		t.Fatalf("expected window to close, got %v (reason=%s)", result.Terminated, result.Reason)
	}
	if result.Iterations != 1 {
		t.Fatalf("expected convergence in a single iteration, got %d", result.Iterations)
	}
	if result.Window > cfg.ProbWin {
		t.Fatalf("expected window <= %v, got %v", cfg.ProbWin, result.Window)
	}
	if result.Pmin < 0.99 || result.Pmax < 0.99 {
		t.Fatalf("expected near-certain reachability, got pmin=%v pmax=%v", result.Pmin, result.Pmax)
	}
}

func TestControllerRejectsMissingAbsorbingVariable(t *testing.T) {
	cfg := config.Default()
	gen := &unaugmentedGenerator{loopGenerator: loopGenerator{}}
	c := &Controller[string]{
		Generator: gen,
		Solver:    &solver.Local{},
		Config:    cfg,
	}

	_, err := c.Run(context.Background(), "absorbing", solver.Property{TargetLabel: "target"})
	if err == nil {
		t.Fatalf("expected fatal error for missing Absorbing variable")
	}
}

type unaugmentedGenerator struct{ loopGenerator }

func (g *unaugmentedGenerator) VariableInfo() genmodel.VariableInfo {
	return genmodel.VariableInfo{AbsorbingVarIndex: -1}
}

var _ genmodel.Generator[string] = (*unaugmentedGenerator)(nil)

func TestControllerHonorsCancellation(t *testing.T) {
	cfg := config.Default()
	cfg.ProbWin = -1 // never closes, forces the loop to keep going
	cfg.MaxApproxCount = 1000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &Controller[string]{
		Generator: &loopGenerator{},
		Solver:    &solver.Local{},
		Config:    cfg,
	}
	result, err := c.Run(ctx, "absorbing", solver.Property{TargetLabel: "target"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Terminated != WindowAborted {
		t.Fatalf("expected aborted termination on pre-cancelled context, got %v", result.Terminated)
	}
}
