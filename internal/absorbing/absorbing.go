// Package absorbing implements the absorbing-state manager (C6):
// installing the synthetic sink at index 0, verifying the model
// augmentation that makes it possible, and redirecting truncated mass
// into the sink at finalization time.
//
// Grounded on gate/gate.go's two-pass shape (hard veto pass, then a
// scored pass): here the "hard veto" pass is VerifyAugmentation's fatal
// checks (I1), and the "scored" pass is RedirectTruncated, which does not
// reject anything but must still run over every terminal state before a
// finalize can proceed.
package absorbing

import (
	"fmt"

	"github.com/danielpatrickdp/stamina-go/internal/accumulator"
	"github.com/danielpatrickdp/stamina-go/internal/genmodel"
	"github.com/danielpatrickdp/stamina-go/internal/guard"
	"github.com/danielpatrickdp/stamina-go/internal/stateindex"
)

// VerifyAugmentation checks that the generator's variable layout actually
// carries the synthetic Absorbing boolean the model-modification layer is
// responsible for adding. Returns a fatal AbsorbingSetupFailed error if
// not (spec.md §4.6).
func VerifyAugmentation(vi genmodel.VariableInfo) error {
	if vi.AbsorbingVarIndex < 0 || vi.AbsorbingVarIndex >= vi.TotalVars {
		return guard.New(guard.AbsorbingSetupFailed, "augmented Absorbing variable not found in generator's variable layout")
	}
	if vi.AbsorbingBitWidth <= 0 {
		return guard.New(guard.AbsorbingSetupFailed, "augmented Absorbing variable has no bit width")
	}
	return nil
}

// Install installs the absorbing packed state as index 0 of idx and
// confirms it landed there (it always does, by stateindex.New's
// contract, but a caller-supplied absorbing packed state that somehow
// collides with an already-installed index is still a fatal
// configuration error worth surfacing explicitly).
func Install[S stateindex.PackedState](idx *stateindex.Map[S], absorbingState S) error {
	ix, ok := idx.Lookup(absorbingState)
	if !ok || ix != stateindex.Absorbing {
		return guard.New(guard.AbsorbingSetupFailed, "absorbing packed state did not install at index 0")
	}
	rec := idx.GetMeta(ix)
	rec.Deadlock = true
	rec.Terminal = false
	return nil
}

// RedirectTruncated re-runs the §4.6 finalization step for every
// still-terminal state t: reload it, enumerate its choices with
// lookup_or_absorbing, and accumulate one edge per known successor plus
// one edge from t to 0 carrying the summed rate to unknown successors.
// This preserves t's total exit rate while diverting truncated mass into
// the sink, and must be re-run fresh every refinement iteration so no
// stale truncation edges survive (spec.md §4.7 step 6).
func RedirectTruncated[S stateindex.PackedState](
	gen genmodel.Generator[S],
	idx *stateindex.Map[S],
	acc *accumulator.Accumulator,
) error {
	var terminal []stateindex.Ix
	idx.ForEach(func(ix stateindex.Ix, _ S, r *stateindex.Record) {
		if r.Terminal {
			terminal = append(terminal, ix)
		}
	})

	for _, t := range terminal {
		acc.Reset(t)
		if err := gen.Load(idx.State(t)); err != nil {
			return err
		}
		behavior, err := gen.Expand(idx.LookupOrAbsorbing)
		if err != nil {
			return err
		}
		if len(behavior.Choices) == 0 {
			// A genuinely deadlocked terminal state: leave it to the
			// accumulator's own deadlock self-loop stub at Flush time.
			continue
		}
		var reported, accumulated, unknownRate float64
		for _, choice := range behavior.Choices {
			for _, succ := range choice.Successors {
				reported += succ.Rate
				target := idx.LookupOrAbsorbing(succ.State)
				if target == stateindex.Absorbing && succ.State != idx.State(stateindex.Absorbing) {
					unknownRate += succ.Rate
					continue
				}
				acc.Append(t, target, succ.Rate)
				accumulated += succ.Rate
			}
		}
		if unknownRate > 0 {
			acc.Append(t, stateindex.Absorbing, unknownRate)
			accumulated += unknownRate
		}
		if err := guard.CheckMassConservation(fmt.Sprintf("ix=%d", t), accumulated, reported); err != nil {
			return err
		}
	}
	return nil
}
