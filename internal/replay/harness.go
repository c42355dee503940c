// Harness drives refine.Controller against a FixtureGenerator and reports
// any divergence from the fixture's recorded expectation, the
// STAMINA-domain analogue of replay/harness.go's Replay/Summarize: that
// harness feeds a recorded turn-by-turn interaction trace through the
// update→gate→eval pipeline and diffs outcomes against expectations; this
// one feeds a recorded transition table through the seed→expand→finalize
// pipeline and diffs the resulting (Pmin, Pmax, iterations) window
// against the fixture's expected_final block.
package replay

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/stamina-go/internal/genmodel"
	"github.com/danielpatrickdp/stamina-go/internal/refine"
	"github.com/danielpatrickdp/stamina-go/internal/solver"
	"github.com/danielpatrickdp/stamina-go/internal/stateindex"
)

// FixtureGenerator is a genmodel.Generator[string] backed entirely by a
// Fixture's in-memory transition table, playing the role a live PRISM/
// Storm collaborator would play in production but with fully
// deterministic, disk-loaded behavior for regression testing.
type FixtureGenerator struct {
	fixture *Fixture
	loaded  string
}

// NewFixtureGenerator builds a generator over f's transition table.
func NewFixtureGenerator(f *Fixture) *FixtureGenerator {
	return &FixtureGenerator{fixture: f}
}

var _ genmodel.Generator[string] = (*FixtureGenerator)(nil)

// TotalStateSize reports an upper bound on the table's size; fixtures are
// small enough that the exact bit-width is immaterial to anything the
// engine does with it.
func (g *FixtureGenerator) TotalStateSize() int {
	return len(g.fixture.States) + 1
}

// InitialStates resolves the fixture's recorded initial packed states.
func (g *FixtureGenerator) InitialStates(on genmodel.OnUnknown[string]) ([]stateindex.Ix, error) {
	out := make([]stateindex.Ix, 0, len(g.fixture.InitialStates))
	for _, s := range g.fixture.InitialStates {
		out = append(out, on(s))
	}
	return out, nil
}

// Load stages s for the next Expand call.
func (g *FixtureGenerator) Load(s string) error {
	g.loaded = s
	return nil
}

// Expand enumerates the loaded state's choices from the fixture's table.
// A state absent from the table is a legitimate deadlock (no choices
// enabled), matching how a real generator reports an absorbing or
// dead-end state.
func (g *FixtureGenerator) Expand(on genmodel.OnUnknown[string]) (genmodel.Behavior[string], error) {
	choices, ok := g.fixture.States[g.loaded]
	if !ok {
		return genmodel.Behavior[string]{}, nil
	}
	out := make([]genmodel.Choice[string], 0, len(choices))
	for _, c := range choices {
		succs := make([]genmodel.Successor[string], 0, len(c.Successors))
		for _, s := range c.Successors {
			on(s.Target)
			succs = append(succs, genmodel.Successor[string]{State: s.Target, Rate: s.Rate})
		}
		out = append(out, genmodel.Choice[string]{Label: c.Label, Successors: succs})
	}
	return genmodel.Behavior[string]{Choices: out}, nil
}

// VariableInfo reports a fixed, always-valid synthetic Absorbing variable:
// fixtures describe states as opaque strings rather than packed
// bit-vectors, so there is no real variable layout to report against.
func (g *FixtureGenerator) VariableInfo() genmodel.VariableInfo {
	return genmodel.VariableInfo{AbsorbingVarIndex: 0, AbsorbingBitWidth: 1, TotalVars: 1}
}

// Label marks the fixture's recorded initial and target states.
func (g *FixtureGenerator) Label(idx *stateindex.Map[string], initials, deadlocks []stateindex.Ix) (genmodel.Labeling, error) {
	labeling := genmodel.Labeling{"init": initials}
	var targets []stateindex.Ix
	for _, s := range g.fixture.TargetStates {
		if ix, ok := idx.Lookup(s); ok {
			targets = append(targets, ix)
		}
	}
	if len(targets) > 0 {
		labeling[g.fixture.TargetLabel] = targets
	}
	return labeling, nil
}

// RemapStateIDs is a no-op: FixtureGenerator keeps no index-keyed cache.
func (g *FixtureGenerator) RemapStateIDs(f func(stateindex.Ix) stateindex.Ix) error { return nil }

// ModelType reports CTMC; the fixture format has no DTMC variant.
func (g *FixtureGenerator) ModelType() genmodel.ModelType { return genmodel.CTMC }

// Outcome is the subset of a RefinementResult the harness diffs against a
// fixture's expected_final block.
type Outcome struct {
	Pmin, Pmax float64
	Window     float64
	Iterations int
	StateCount int
	Terminated string
}

// Mismatch is one field that diverged from the fixture's expectation.
type Mismatch struct {
	Field string
	Got   string
	Want  string
}

// Report is the result of replaying one fixture.
type Report struct {
	Description string
	Outcome     Outcome
	Mismatches  []Mismatch
}

// Passed reports whether the replay reproduced every expected field.
func (r Report) Passed() bool { return len(r.Mismatches) == 0 }

const floatTolerance = 1e-6

// Replay drives refine.Controller over f's transition table to
// completion and diffs the resulting outcome against f.ExpectedFinal.
func Replay(f *Fixture) (Report, error) {
	gen := f.ToGenerator()
	controller := &refine.Controller[string]{
		Generator: gen,
		Solver:    &solver.Local{},
		Config:    f.ToConfig(),
	}

	result, err := controller.Run(context.Background(), f.AbsorbingState, f.ToProperty())
	if err != nil {
		return Report{}, fmt.Errorf("replay %q: %w", f.Description, err)
	}

	outcome := Outcome{
		Pmin:       result.Pmin,
		Pmax:       result.Pmax,
		Window:     result.Window,
		Iterations: result.Iterations,
		StateCount: result.StateCount,
		Terminated: string(result.Terminated),
	}

	report := Report{Description: f.Description, Outcome: outcome}
	want := f.ExpectedFinal

	if !floatsEqual(outcome.Pmin, want.Pmin) {
		report.Mismatches = append(report.Mismatches, Mismatch{"pmin", fmt.Sprint(outcome.Pmin), fmt.Sprint(want.Pmin)})
	}
	if !floatsEqual(outcome.Pmax, want.Pmax) {
		report.Mismatches = append(report.Mismatches, Mismatch{"pmax", fmt.Sprint(outcome.Pmax), fmt.Sprint(want.Pmax)})
	}
	if want.Iterations != 0 && outcome.Iterations != want.Iterations {
		report.Mismatches = append(report.Mismatches, Mismatch{"iterations", fmt.Sprint(outcome.Iterations), fmt.Sprint(want.Iterations)})
	}
	if want.StateCount != 0 && outcome.StateCount != want.StateCount {
		report.Mismatches = append(report.Mismatches, Mismatch{"state_count", fmt.Sprint(outcome.StateCount), fmt.Sprint(want.StateCount)})
	}
	if want.Terminated != "" && outcome.Terminated != want.Terminated {
		report.Mismatches = append(report.Mismatches, Mismatch{"terminated", outcome.Terminated, want.Terminated})
	}

	return report, nil
}

func floatsEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= floatTolerance
}

// Summarize renders a one-line-per-fixture pass/fail summary, the
// replay-harness analogue of replay/harness.go's ReplaySummary.
func Summarize(reports []Report) string {
	var pass, fail int
	out := ""
	for _, r := range reports {
		if r.Passed() {
			pass++
			out += fmt.Sprintf("PASS %s\n", r.Description)
			continue
		}
		fail++
		out += fmt.Sprintf("FAIL %s\n", r.Description)
		for _, m := range r.Mismatches {
			out += fmt.Sprintf("  %s: got %s, want %s\n", m.Field, m.Got, m.Want)
		}
	}
	out += fmt.Sprintf("%d passed, %d failed\n", pass, fail)
	return out
}
