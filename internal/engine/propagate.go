package engine

// propagateMass implements spec.md §4.5 step 3d's mass-propagation
// formula: pi(v) += pi(u) * (r / R_u), where R_u is the total exit rate
// of u in the embedded discrete jump-chain sense.
//
// Grounded on update/update.go's pure-function style: no hidden state,
// inputs and the arithmetic are explicit.
func propagateMass(piU, rate, totalExitRate float64) float64 {
	if totalExitRate <= 0 {
		return 0
	}
	return piU * (rate / totalExitRate)
}
