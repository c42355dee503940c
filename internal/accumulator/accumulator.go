// Package accumulator implements the out-of-order transition collector
// (C3): states append (from, to, rate) triples in any order during
// exploration; flushing sorts each row by target, merges duplicate
// targets, and emits a deadlock self-loop for any row left empty.
//
// Grounded on graph/graph.go's evidence_edges model (source, target,
// weight), reshaped from a SQL table into an in-memory row store since C3
// is explicitly scoped to a single iteration's working set.
package accumulator

import (
	"sort"

	"github.com/danielpatrickdp/stamina-go/internal/stateindex"
)

// Entry is one accumulated (target, rate) pair.
type Entry struct {
	Target stateindex.Ix
	Rate   float64
}

// Accumulator collects transitions row-by-row, keyed by source index.
type Accumulator struct {
	rows map[stateindex.Ix][]Entry
}

// New creates an empty accumulator.
func New() *Accumulator {
	return &Accumulator{rows: make(map[stateindex.Ix][]Entry)}
}

// Append records a (from, to, rate) triple. O(1) amortized; rows are not
// kept sorted until Flush is called.
func (a *Accumulator) Append(from, to stateindex.Ix, rate float64) {
	a.rows[from] = append(a.rows[from], Entry{Target: to, Rate: rate})
}

// Reset drops the row for from, so a state can be re-expanded without its
// stale transitions surviving into the next iteration (spec.md §4.7 step
// 6: "the accumulator ... [is] re-run fresh so that no stale truncation
// edges survive").
func (a *Accumulator) Reset(from stateindex.Ix) {
	delete(a.rows, from)
}

// HasRow reports whether from has any accumulated (possibly unflushed)
// outgoing transitions.
func (a *Accumulator) HasRow(from stateindex.Ix) bool {
	_, ok := a.rows[from]
	return ok
}

// Row returns a defensive copy of from's raw, unsorted entries.
func (a *Accumulator) Row(from stateindex.Ix) []Entry {
	src := a.rows[from]
	out := make([]Entry, len(src))
	copy(out, src)
	return out
}

// FlushedRow is one finalized row: a source index plus its sorted,
// duplicate-merged outgoing entries.
type FlushedRow struct {
	Source stateindex.Ix
	Edges  []Entry
}

// Flush sorts each row by target, merges duplicate targets by summing
// rates, and emits rows for every index in [0, n) in index order. A row
// with no entries becomes a single self-loop with unit rate (the deadlock
// stub, preserving I2 trivially for deadlocks).
func (a *Accumulator) Flush(n int) []FlushedRow {
	out := make([]FlushedRow, n)
	for ix := 0; ix < n; ix++ {
		src := stateindex.Ix(ix)
		entries := a.rows[src]
		if len(entries) == 0 {
			out[ix] = FlushedRow{Source: src, Edges: []Entry{{Target: src, Rate: 1}}}
			continue
		}
		sorted := make([]Entry, len(entries))
		copy(sorted, entries)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Target < sorted[j].Target })

		merged := make([]Entry, 0, len(sorted))
		for _, e := range sorted {
			if len(merged) > 0 && merged[len(merged)-1].Target == e.Target {
				merged[len(merged)-1].Rate += e.Rate
			} else {
				merged = append(merged, e)
			}
		}
		out[ix] = FlushedRow{Source: src, Edges: merged}
	}
	return out
}

// Remap applies permutation f to every stored row: a row keyed by from
// becomes keyed by f(from), and every entry's Target becomes f(Target).
// Called by finalize.Finalize immediately after stateindex.Map.Remap, so
// the accumulator's columns stay consistent with the permuted index map
// (spec.md §4.8, scenario 4).
func (a *Accumulator) Remap(f func(stateindex.Ix) stateindex.Ix) {
	remapped := make(map[stateindex.Ix][]Entry, len(a.rows))
	for from, entries := range a.rows {
		out := make([]Entry, len(entries))
		for i, e := range entries {
			out[i] = Entry{Target: f(e.Target), Rate: e.Rate}
		}
		remapped[f(from)] = out
	}
	a.rows = remapped
}

// TotalRate sums the raw (unmerged) outgoing rate for from, before
// flush-time merging happens. The exploration engine computes R_u from
// the generator's Behavior instead of calling this.
func (a *Accumulator) TotalRate(from stateindex.Ix) float64 {
	var sum float64
	for _, e := range a.rows[from] {
		sum += e.Rate
	}
	return sum
}
