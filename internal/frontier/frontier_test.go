package frontier

import (
	"testing"

	"github.com/danielpatrickdp/stamina-go/internal/stateindex"
)

func TestFIFORefusesDuplicates(t *testing.T) {
	q := NewFIFO()
	q.Push(1)
	q.Push(2)
	q.Push(1)
	if q.Len() != 2 {
		t.Fatalf("expected 2 distinct entries, got %d", q.Len())
	}
}

func TestFIFOPopOrder(t *testing.T) {
	q := NewFIFO()
	q.Push(3)
	q.Push(1)
	q.Push(2)
	var order []stateindex.Ix
	for q.Len() > 0 {
		ix, _ := q.Pop()
		order = append(order, ix)
	}
	want := []stateindex.Ix{3, 1, 2}
	for i, ix := range want {
		if order[i] != ix {
			t.Fatalf("expected FIFO order %v, got %v", want, order)
		}
	}
}

func TestFIFOContainsTracksPendingOnly(t *testing.T) {
	q := NewFIFO()
	q.Push(5)
	if !q.Contains(5) {
		t.Fatalf("expected 5 to be pending")
	}
	q.Pop()
	if q.Contains(5) {
		t.Fatalf("expected 5 to no longer be pending after pop")
	}
}

func TestFIFOPopEmpty(t *testing.T) {
	q := NewFIFO()
	if _, ok := q.Pop(); ok {
		t.Fatalf("expected pop on empty queue to report ok=false")
	}
}

func TestPriorityPopsHighestPiFirst(t *testing.T) {
	pi := map[stateindex.Ix]float64{1: 0.2, 2: 0.9, 3: 0.5}
	q := NewPriority(func(ix stateindex.Ix) float64 { return pi[ix] })
	q.Push(1)
	q.Push(2)
	q.Push(3)

	first, _ := q.Pop()
	if first != 2 {
		t.Fatalf("expected highest-pi index 2 first, got %d", first)
	}
	second, _ := q.Pop()
	if second != 3 {
		t.Fatalf("expected index 3 second, got %d", second)
	}
}

func TestPriorityTiesBreakByAscendingIndex(t *testing.T) {
	pi := map[stateindex.Ix]float64{5: 0.5, 2: 0.5, 9: 0.5}
	q := NewPriority(func(ix stateindex.Ix) float64 { return pi[ix] })
	q.Push(5)
	q.Push(2)
	q.Push(9)

	first, _ := q.Pop()
	if first != 2 {
		t.Fatalf("expected ascending-index tie-break to pop 2 first, got %d", first)
	}
}

func TestPriorityRefusesDuplicates(t *testing.T) {
	q := NewPriority(func(ix stateindex.Ix) float64 { return 0 })
	q.Push(1)
	q.Push(1)
	if q.Len() != 1 {
		t.Fatalf("expected duplicate push to be ignored, got len %d", q.Len())
	}
}

func TestPriorityReflectsLivePiAtPop(t *testing.T) {
	pi := map[stateindex.Ix]float64{1: 0.1, 2: 0.2}
	q := NewPriority(func(ix stateindex.Ix) float64 { return pi[ix] })
	q.Push(1)
	q.Push(2)

	// Mutate pi after push but before pop; the frontier must consult the
	// live lookup rather than a snapshot taken at push time.
	pi[1] = 0.9

	first, _ := q.Pop()
	if first != 1 {
		t.Fatalf("expected live pi update to reorder pop, got %d", first)
	}
}
