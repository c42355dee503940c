package refine

import (
	"sort"

	"github.com/danielpatrickdp/stamina-go/internal/solver"
	"github.com/danielpatrickdp/stamina-go/internal/stateindex"
)

const (
	minLabelSuffix = "_min"
	maxLabelSuffix = "_max"
)

// AugmentedProperty bundles the Pmin/Pmax property pair derived from one
// base property (spec.md §4.7 step 1): `phi_min = P=?[psi & !Absorbing]`,
// `phi_max = P=?[psi | Absorbing]`.
type AugmentedProperty struct {
	Min solver.Property
	Max solver.Property
}

// Augment materializes the two augmented label sets on ctmc from its
// base target label and its "absorbing" label, and returns the property
// pair that references them (spec.md §6 "Model-modification interface").
// Because the finalized artifact is a resolved state-index set rather
// than a formula AST, the augmentation here is set intersection/union
// over labels instead of syntactic conjunction/disjunction over a
// property string — the functional equivalent for this representation
// (scenario 3's "byte-equal modulo whitespace" becomes "index-set-equal"
// here; see DESIGN.md). Augment mutates ctmc.Labels in place so a
// following Check on the same ctmc sees the new label names.
func Augment(ctmc *solver.CTMC, base solver.Property) AugmentedProperty {
	target := ctmc.Labels[base.TargetLabel]
	absorbing := ctmc.Labels["absorbing"]

	absorbingSet := make(map[stateindex.Ix]bool, len(absorbing))
	for _, ix := range absorbing {
		absorbingSet[ix] = true
	}

	seenInTarget := make(map[stateindex.Ix]bool, len(target))
	var minSet, maxSet []stateindex.Ix
	for _, ix := range target {
		seenInTarget[ix] = true
		if !absorbingSet[ix] {
			minSet = append(minSet, ix)
		}
		maxSet = append(maxSet, ix)
	}
	for _, ix := range absorbing {
		if !seenInTarget[ix] {
			maxSet = append(maxSet, ix)
		}
	}
	sort.Slice(minSet, func(i, j int) bool { return minSet[i] < minSet[j] })
	sort.Slice(maxSet, func(i, j int) bool { return maxSet[i] < maxSet[j] })

	minLabel := base.TargetLabel + minLabelSuffix
	maxLabel := base.TargetLabel + maxLabelSuffix
	ctmc.Labels[minLabel] = minSet
	ctmc.Labels[maxLabel] = maxSet

	return AugmentedProperty{
		Min: solver.Property{TargetLabel: minLabel, TimeBound: base.TimeBound},
		Max: solver.Property{TargetLabel: maxLabel, TimeBound: base.TimeBound},
	}
}
