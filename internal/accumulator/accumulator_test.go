package accumulator

import (
	"testing"

	"github.com/danielpatrickdp/stamina-go/internal/stateindex"
)

func TestFlushSortsAndMergesDuplicates(t *testing.T) {
	a := New()
	a.Append(1, 3, 2.0)
	a.Append(1, 2, 1.0)
	a.Append(1, 2, 0.5)

	rows := a.Flush(4)
	row := rows[1]
	if len(row.Edges) != 2 {
		t.Fatalf("expected 2 merged edges, got %d", len(row.Edges))
	}
	if row.Edges[0].Target != 2 || row.Edges[0].Rate != 1.5 {
		t.Fatalf("expected merged edge to index 2 rate 1.5, got %+v", row.Edges[0])
	}
	if row.Edges[1].Target != 3 || row.Edges[1].Rate != 2.0 {
		t.Fatalf("expected edge to index 3 rate 2.0, got %+v", row.Edges[1])
	}
}

func TestFlushEmitsDeadlockSelfLoop(t *testing.T) {
	a := New()
	a.Append(0, 0, 1.0) // absorbing self-loop
	rows := a.Flush(3)

	if len(rows[1].Edges) != 1 || rows[1].Edges[0].Target != 1 || rows[1].Edges[0].Rate != 1 {
		t.Fatalf("expected deadlock self-loop stub for row 1, got %+v", rows[1].Edges)
	}
	if len(rows[2].Edges) != 1 || rows[2].Edges[0].Target != 2 {
		t.Fatalf("expected deadlock self-loop stub for row 2, got %+v", rows[2].Edges)
	}
}

func TestResetDropsStaleRow(t *testing.T) {
	a := New()
	a.Append(1, 2, 1.0)
	if !a.HasRow(1) {
		t.Fatalf("expected row 1 to exist")
	}
	a.Reset(1)
	if a.HasRow(1) {
		t.Fatalf("expected row 1 to be dropped after reset")
	}
}

func TestRemapRewritesRowKeysAndTargets(t *testing.T) {
	a := New()
	a.Append(1, 2, 1.5)
	a.Append(2, 1, 0.5)

	perm := map[stateindex.Ix]stateindex.Ix{0: 0, 1: 2, 2: 1}
	a.Remap(func(ix stateindex.Ix) stateindex.Ix { return perm[ix] })

	if !a.HasRow(2) {
		t.Fatalf("expected old row 1 to now be keyed at 2")
	}
	row := a.Row(2)
	if len(row) != 1 || row[0].Target != 1 || row[0].Rate != 1.5 {
		t.Fatalf("expected remapped row to target 1 at rate 1.5, got %+v", row)
	}

	if !a.HasRow(1) {
		t.Fatalf("expected old row 2 to now be keyed at 1")
	}
	row = a.Row(1)
	if len(row) != 1 || row[0].Target != 2 || row[0].Rate != 0.5 {
		t.Fatalf("expected remapped row to target 2 at rate 0.5, got %+v", row)
	}
}

func TestTotalRate(t *testing.T) {
	a := New()
	a.Append(1, 2, 1.5)
	a.Append(1, 3, 2.5)
	if got := a.TotalRate(1); got != 4.0 {
		t.Fatalf("expected total rate 4.0, got %v", got)
	}
}
