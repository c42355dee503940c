// Package frontier implements the work queue (C4) that schedules states
// for expansion: a FIFO discipline for the default iterative builder, and
// a priority (max-heap on pi) discipline for property-guided exploration.
//
// Grounded on graph/graph.go's Walk, which drives a breadth-first queue
// over a growable slice (queueItem{id, depth, score}); here the slice is
// replaced by stateindex.Ix and duplicate-refusal is added per spec.md
// §4.4 ("a state enqueued twice is expanded once per iteration").
package frontier

import "github.com/danielpatrickdp/stamina-go/internal/stateindex"

// Queue is the shared interface both frontier disciplines satisfy.
type Queue interface {
	Push(ix stateindex.Ix)
	Pop() (ix stateindex.Ix, ok bool)
	Contains(ix stateindex.Ix) bool
	Len() int
}

// FIFO is the breadth-first, per-iteration work list used by the default
// discipline.
type FIFO struct {
	items   []stateindex.Ix
	pending map[stateindex.Ix]bool
	head    int
}

// NewFIFO creates an empty FIFO frontier.
func NewFIFO() *FIFO {
	return &FIFO{pending: make(map[stateindex.Ix]bool)}
}

// Push enqueues ix unless it is already pending.
func (q *FIFO) Push(ix stateindex.Ix) {
	if q.pending[ix] {
		return
	}
	q.pending[ix] = true
	q.items = append(q.items, ix)
}

// Pop removes and returns the oldest pushed index.
func (q *FIFO) Pop() (stateindex.Ix, bool) {
	if q.head >= len(q.items) {
		return 0, false
	}
	ix := q.items[q.head]
	q.head++
	delete(q.pending, ix)
	// Reclaim the drained prefix once it dominates the slice, so a long
	// iteration doesn't hold onto an ever-growing backing array.
	if q.head > 64 && q.head*2 > len(q.items) {
		q.items = append(q.items[:0], q.items[q.head:]...)
		q.head = 0
	}
	return ix, true
}

// Contains reports whether ix is currently enqueued (not yet popped).
func (q *FIFO) Contains(ix stateindex.Ix) bool {
	return q.pending[ix]
}

// Len returns the number of indices still queued.
func (q *FIFO) Len() int {
	return len(q.items) - q.head
}
