package frontier

import (
	"container/heap"

	"github.com/danielpatrickdp/stamina-go/internal/stateindex"
)

// PiLookup resolves the current estimated reachability mass for an index,
// so the priority frontier can always expand the highest-pi element
// without owning the metadata pool itself.
type PiLookup func(ix stateindex.Ix) float64

// Priority is the max-heap-on-pi frontier used when the refinement
// controller is configured for property-guided priority exploration.
// Ties break by ascending index (spec.md §5).
//
// No priority-queue library is present anywhere in the retrieved corpus,
// so this is the one place SPEC_FULL leans on the standard library by
// necessity (see DESIGN.md).
type Priority struct {
	h       priorityHeap
	pending map[stateindex.Ix]bool
}

// NewPriority creates an empty priority frontier. pi is consulted at push
// and pop time to order elements by descending estimated reachability.
func NewPriority(pi PiLookup) *Priority {
	p := &Priority{pending: make(map[stateindex.Ix]bool)}
	p.h.pi = pi
	heap.Init(&p.h)
	return p
}

// Push enqueues ix unless it is already pending.
func (p *Priority) Push(ix stateindex.Ix) {
	if p.pending[ix] {
		return
	}
	p.pending[ix] = true
	heap.Push(&p.h, ix)
}

// Pop removes and returns the index with the highest current pi, breaking
// ties by ascending index. Pi values are re-read against the live lookup
// at pop time since they may have changed since the element was pushed.
func (p *Priority) Pop() (stateindex.Ix, bool) {
	if p.h.Len() == 0 {
		return 0, false
	}
	heap.Init(&p.h)
	ix := heap.Pop(&p.h).(stateindex.Ix)
	delete(p.pending, ix)
	return ix, true
}

// Contains reports whether ix is currently enqueued.
func (p *Priority) Contains(ix stateindex.Ix) bool {
	return p.pending[ix]
}

// Len returns the number of indices still queued.
func (p *Priority) Len() int {
	return p.h.Len()
}

type priorityHeap struct {
	items []stateindex.Ix
	pi    PiLookup
}

func (h priorityHeap) Len() int { return len(h.items) }

func (h priorityHeap) Less(i, j int) bool {
	pi, pj := h.pi(h.items[i]), h.pi(h.items[j])
	if pi != pj {
		return pi > pj
	}
	return h.items[i] < h.items[j]
}

func (h priorityHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *priorityHeap) Push(x any) {
	h.items = append(h.items, x.(stateindex.Ix))
}

func (h *priorityHeap) Pop() any {
	old := h.items
	n := len(old)
	x := old[n-1]
	h.items = old[:n-1]
	return x
}
