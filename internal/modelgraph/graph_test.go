package modelgraph

import (
	"testing"

	"github.com/danielpatrickdp/stamina-go/internal/stateindex"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGeneratorInitialStates(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddState("s0", true, false); err != nil {
		t.Fatal(err)
	}
	if err := s.AddState("s1", false, false); err != nil {
		t.Fatal(err)
	}
	gen := NewGenerator(s)
	idx := stateindex.New("absorbing")

	initials, err := gen.InitialStates(func(s string) stateindex.Ix {
		ix, _ := idx.LookupOrInsert(s)
		return ix
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(initials) != 1 {
		t.Fatalf("expected 1 initial state, got %d", len(initials))
	}
	if idx.State(initials[0]) != "s0" {
		t.Fatalf("expected s0 as initial, got %s", idx.State(initials[0]))
	}
}

func TestGeneratorExpandGroupsByLabel(t *testing.T) {
	s := newTestStore(t)
	s.AddState("s0", true, false)
	s.AddState("s1", false, false)
	s.AddState("s2", false, false)
	s.AddTransition("s0", "s1", 2.0, "a")
	s.AddTransition("s0", "s2", 3.0, "a")

	gen := NewGenerator(s)
	if err := gen.Load("s0"); err != nil {
		t.Fatal(err)
	}
	behavior, err := gen.Expand(func(x string) stateindex.Ix { return 0 })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(behavior.Choices) != 1 {
		t.Fatalf("expected 1 choice (single label), got %d", len(behavior.Choices))
	}
	if len(behavior.Choices[0].Successors) != 2 {
		t.Fatalf("expected 2 successors, got %d", len(behavior.Choices[0].Successors))
	}
}

func TestGeneratorExpandDeadlockHasNoChoicesAndNoError(t *testing.T) {
	s := newTestStore(t)
	s.AddState("s0", true, false)
	gen := NewGenerator(s)
	gen.Load("s0")

	behavior, err := gen.Expand(func(x string) stateindex.Ix { return 0 })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(behavior.Choices) != 0 {
		t.Fatalf("expected no choices for deadlocked state, got %d", len(behavior.Choices))
	}
}

func TestGeneratorLabelIncludesCustomLabels(t *testing.T) {
	s := newTestStore(t)
	s.AddState("s0", true, false)
	s.AddState("s1", false, false)
	s.AddLabel("s1", "target")

	gen := NewGenerator(s)
	idx := stateindex.New("absorbing")
	ix0, _ := idx.LookupOrInsert("s0")
	ix1, _ := idx.LookupOrInsert("s1")

	labeling, err := gen.Label(idx, []stateindex.Ix{ix0}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, ix := range labeling["target"] {
		if ix == ix1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected s1 to carry the target label, got %+v", labeling)
	}
}
