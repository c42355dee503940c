package solver

import (
	"fmt"
	"math"
)

// Local is a reference Solver computing quantitative results directly
// against a finalized CTMC: uniformization for time-bounded reachability
// (P=?[F<=T target]), Gauss-Seidel iteration over the embedded jump chain
// for unbounded reachability (P=?[F target]).
type Local struct {
	// Tolerance bounds both the uniformization truncation error and the
	// Gauss-Seidel convergence gap. Zero selects the default (1e-10).
	Tolerance float64
	// MaxIterations bounds the unbounded-reachability fixed-point loop.
	// Zero selects the default (10000).
	MaxIterations int
}

func (l *Local) tolerance() float64 {
	if l.Tolerance > 0 {
		return l.Tolerance
	}
	return 1e-10
}

func (l *Local) maxIterations() int {
	if l.MaxIterations > 0 {
		return l.MaxIterations
	}
	return 10000
}

// Check implements Solver.
func (l *Local) Check(ctmc *CTMC, prop Property) (float64, error) {
	targets, ok := ctmc.Labels[prop.TargetLabel]
	if !ok {
		return 0, fmt.Errorf("solver: unknown target label %q", prop.TargetLabel)
	}
	if len(ctmc.Initial) == 0 {
		return 0, fmt.Errorf("solver: no initial states")
	}
	targetSet := make(map[int]bool, len(targets))
	for _, ix := range targets {
		targetSet[int(ix)] = true
	}

	if prop.TimeBound != nil {
		return l.transientAt(ctmc, targetSet, *prop.TimeBound)
	}
	return l.reachProbability(ctmc, targetSet)
}

// exitRate returns the total rate out of i to states other than i itself;
// a row that is purely a self-loop (deadlock stub or the absorbing sink)
// has exit rate zero and behaves as absorbing for analysis purposes.
func exitRate(ctmc *CTMC, i int) float64 {
	var sum float64
	for _, e := range ctmc.Rows[i] {
		if int(e.Target) != i {
			sum += e.Rate
		}
	}
	return sum
}

// transientAt computes P(in target-set at time t), starting from the
// uniform distribution over initial states, via uniformization: the CTMC
// is approximated by its uniformized DTMC with rate lambda = max exit
// rate, and the transient vector is the Poisson-weighted sum of DTMC
// power-iterates. Target states are treated as absorbing for the
// purpose of this check (F<=T means "reached by time T", so probability
// mass that arrives early must not leak back out).
func (l *Local) transientAt(ctmc *CTMC, targetSet map[int]bool, t float64) (float64, error) {
	n := len(ctmc.Rows)
	if n == 0 {
		return 0, fmt.Errorf("solver: empty state space")
	}

	lambda := 0.0
	for i := 0; i < n; i++ {
		if targetSet[i] {
			continue
		}
		if r := exitRate(ctmc, i); r > lambda {
			lambda = r
		}
	}
	if lambda == 0 {
		// No transitions leave any non-absorbed state: the distribution
		// never moves, so the answer is just the initial mass already
		// resting on target states.
		return l.initialMassOn(ctmc, targetSet), nil
	}

	v := make([]float64, n)
	for _, ix := range ctmc.Initial {
		v[int(ix)] += 1.0 / float64(len(ctmc.Initial))
	}

	theta := lambda * t
	truncation := poissonTruncation(theta, l.tolerance())

	result := make([]float64, n)
	poisson := math.Exp(-theta)
	for k := 0; ; k++ {
		for i := 0; i < n; i++ {
			result[i] += poisson * v[i]
		}
		if k >= truncation {
			break
		}
		v = stepUniformized(ctmc, v, targetSet, lambda)
		poisson *= theta / float64(k+1)
	}

	var total float64
	for i := range targetSet {
		total += result[i]
	}
	return clamp01(total), nil
}

func (l *Local) initialMassOn(ctmc *CTMC, targetSet map[int]bool) float64 {
	var total float64
	for _, ix := range ctmc.Initial {
		if targetSet[int(ix)] {
			total += 1.0 / float64(len(ctmc.Initial))
		}
	}
	return total
}

// stepUniformized applies one step of the uniformized DTMC to v. Target
// states are absorbing: their row is replaced with a self-loop so mass
// that has already arrived never leaves.
func stepUniformized(ctmc *CTMC, v []float64, targetSet map[int]bool, lambda float64) []float64 {
	n := len(v)
	next := make([]float64, n)
	for i := 0; i < n; i++ {
		if v[i] == 0 {
			continue
		}
		if targetSet[i] {
			next[i] += v[i]
			continue
		}
		exit := exitRate(ctmc, i)
		selfProb := 1 - exit/lambda
		if selfProb > 0 {
			next[i] += v[i] * selfProb
		}
		for _, e := range ctmc.Rows[i] {
			if int(e.Target) == i {
				continue
			}
			next[int(e.Target)] += v[i] * (e.Rate / lambda)
		}
	}
	return next
}

// poissonTruncation picks the smallest k such that the Poisson(theta)
// tail beyond k is below tol, bounded to keep the loop finite even for
// pathologically large theta. It returns 0 when exp(-theta) underflows.
func poissonTruncation(theta, tol float64) int {
	if theta <= 0 {
		return 0
	}
	const maxK = 100000
	term := math.Exp(-theta)
	k, sum := 0, term
	for term > 0 && sum < 1-tol && k < maxK {
		k++
		term *= theta / float64(k)
		sum += term
	}
	return k
}

// reachProbability computes the unbounded reachability probability to
// targetSet from the uniform distribution over initial states, by
// solving x_i = sum_j P_ij x_j (x_i = 1 for i in targetSet) over the
// embedded jump chain via Gauss-Seidel iteration to a fixed point.
func (l *Local) reachProbability(ctmc *CTMC, targetSet map[int]bool) (float64, error) {
	n := len(ctmc.Rows)
	x := make([]float64, n)
	for i := range targetSet {
		x[i] = 1
	}

	tol := l.tolerance()
	for iter := 0; iter < l.maxIterations(); iter++ {
		var delta float64
		for i := 0; i < n; i++ {
			if targetSet[i] {
				continue
			}
			exit := exitRate(ctmc, i)
			if exit == 0 {
				// Absorbing with no path to target: contributes 0 and
				// never changes.
				continue
			}
			var sum float64
			for _, e := range ctmc.Rows[i] {
				if int(e.Target) == i {
					continue
				}
				sum += (e.Rate / exit) * x[e.Target]
			}
			d := math.Abs(sum - x[i])
			if d > delta {
				delta = d
			}
			x[i] = sum
		}
		if delta < tol {
			break
		}
	}

	var total float64
	for _, ix := range ctmc.Initial {
		total += x[ix] / float64(len(ctmc.Initial))
	}
	return clamp01(total), nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
