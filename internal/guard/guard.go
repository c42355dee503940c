package guard

import (
	"fmt"
	"math"
)

// Tolerance is the default floating-point slack for mass-conservation
// checks (P3), matching the teacher's norm-comparison style in eval.go:
// an informational metric rather than a hard-coded magic number inline.
const Tolerance = 1e-6

// CheckMassConservation verifies P3 for one expanded state: the sum of
// accumulated outgoing rates must equal the generator-reported total
// exit rate, within Tolerance. Returns a recoverable GeneratorException
// on violation — a divergence here means the generator misreported its
// own behavior, not that STAMINA's bookkeeping is wrong.
func CheckMassConservation(stateLabel string, accumulated, reported float64) error {
	if math.Abs(accumulated-reported) > Tolerance {
		return New(GeneratorException, fmt.Sprintf(
			"mass conservation violated for %s: accumulated=%.9f reported=%.9f", stateLabel, accumulated, reported))
	}
	return nil
}

// CheckAbsorbingIsolation verifies P4: index 0 has exactly one outgoing
// edge, to itself, at rate 1.
func CheckAbsorbingIsolation(edgeCount int, selfLoopRate float64, isSelfLoop bool) error {
	if edgeCount != 1 || !isSelfLoop || selfLoopRate != 1 {
		return New(AbsorbingSetupFailed, "absorbing state is not isolated: expected exactly one self-loop edge at rate 1")
	}
	return nil
}

// CheckRemapSize validates a remapping vector's length against the
// explored-state count (I2/I3 after a remap). A mismatch is recoverable:
// the caller falls back to the identity permutation and continues.
func CheckRemapSize(vectorLen, exploredCount int) (fallbackToIdentity bool, err error) {
	if vectorLen < exploredCount {
		return true, New(RemapSizeMismatch, fmt.Sprintf(
			"remap vector length %d smaller than explored-state count %d", vectorLen, exploredCount))
	}
	return false, nil
}

// CheckPredecessorSeen reports whether a successor state was ever seen as
// a predecessor in the probability map; if not, it's a recoverable
// UnreachablePredecessor and the caller should initialize pi to 0.
func CheckPredecessorSeen(seen bool, stateLabel string) error {
	if !seen {
		return New(UnreachablePredecessor, fmt.Sprintf("state %s appears as a successor but was never a predecessor", stateLabel))
	}
	return nil
}

// CheckKappaMonotone verifies P5's threshold half of the property: κ
// must strictly decrease across refinement iterations.
func CheckKappaMonotone(prevKappa, nextKappa float64) error {
	if nextKappa >= prevKappa {
		return New(GeneratorException, fmt.Sprintf("kappa did not strictly decrease: %.9f -> %.9f", prevKappa, nextKappa))
	}
	return nil
}

// CheckStateCountMonotone verifies P5's state-count half: the explored
// state count must never decrease across refinement iterations.
func CheckStateCountMonotone(prevCount, nextCount int) error {
	if nextCount < prevCount {
		return New(GeneratorException, fmt.Sprintf("explored state count decreased: %d -> %d", prevCount, nextCount))
	}
	return nil
}

// CheckWindow reports whether the Pmin/Pmax window has closed to within
// epsilon (spec.md §4.7 step 4).
func CheckWindow(pmin, pmax, epsilon float64) bool {
	return pmax-pmin <= epsilon
}
