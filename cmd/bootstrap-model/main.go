// Command bootstrap-model seeds a modelgraph sqlite database with one of a
// small set of toy CTMCs, for demos and for the fixture-export/replay
// round trip. Grounded on cmd/bootstrap-graph/main.go's shape (open db,
// build a graph structure, report counts) with the codec-driven
// similarity/temporal edge synthesis replaced by hardcoded preset
// transition tables, since STAMINA has no evidence store to bootstrap
// edges from.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/stamina-go/internal/modelgraph"
)

func main() {
	dbPath := flag.String("db", "model.db", "path to the modelgraph sqlite database to create")
	preset := flag.String("preset", "two-state-loop", "toy model preset: two-state-loop|bounded-queue")
	flag.Parse()

	store, err := modelgraph.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open model db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	var states, transitions int
	switch *preset {
	case "two-state-loop":
		states, transitions, err = buildTwoStateLoop(store)
	case "bounded-queue":
		states, transitions, err = buildBoundedQueue(store)
	default:
		fmt.Fprintf(os.Stderr, "unknown preset %q (want two-state-loop or bounded-queue)\n", *preset)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "build %s: %v\n", *preset, err)
		os.Exit(1)
	}

	fmt.Printf("=== Model Bootstrap Complete ===\n")
	fmt.Printf("  DB:      %s\n", *dbPath)
	fmt.Printf("  Preset:  %s\n", *preset)
	fmt.Printf("  States:      %d\n", states)
	fmt.Printf("  Transitions: %d\n", transitions)
}

// buildTwoStateLoop matches spec.md §8 scenario 1: s0 <-> s1, no
// truncation possible since the whole state space is two states.
func buildTwoStateLoop(store *modelgraph.Store) (int, int, error) {
	if err := store.AddState("absorbing", false, true); err != nil {
		return 0, 0, err
	}
	if err := store.AddState("s0", true, false); err != nil {
		return 0, 0, err
	}
	if err := store.AddState("s1", false, false); err != nil {
		return 0, 0, err
	}
	if err := store.AddTransition("s0", "s1", 2.0, "a"); err != nil {
		return 0, 0, err
	}
	if err := store.AddTransition("s1", "s0", 1.0, "a"); err != nil {
		return 0, 0, err
	}
	if err := store.AddLabel("s1", "target"); err != nil {
		return 0, 0, err
	}
	return 3, 2, nil
}

// buildBoundedQueue is an M/M/1/K-style birth-death chain (arrival rate
// lambda, service rate mu, capacity cap), the standard truncated-CTMC
// demo model: a real STAMINA run against this preset with kappa small
// enough exercises genuine truncation-and-refine behavior, unlike the
// two-state loop which never truncates.
func buildBoundedQueue(store *modelgraph.Store) (int, int, error) {
	const (
		capacity = 20
		lambda   = 4.0
		mu       = 5.0
	)
	if err := store.AddState("absorbing", false, true); err != nil {
		return 0, 0, err
	}
	transitions := 0
	for i := 0; i <= capacity; i++ {
		id := fmt.Sprintf("q%d", i)
		if err := store.AddState(id, i == 0, false); err != nil {
			return 0, 0, err
		}
		if i < capacity {
			if err := store.AddTransition(id, fmt.Sprintf("q%d", i+1), lambda, "arrive"); err != nil {
				return 0, 0, err
			}
			transitions++
		}
		if i > 0 {
			if err := store.AddTransition(id, fmt.Sprintf("q%d", i-1), mu, "depart"); err != nil {
				return 0, 0, err
			}
			transitions++
		}
	}
	if err := store.AddLabel(fmt.Sprintf("q%d", capacity), "target"); err != nil {
		return 0, 0, err
	}
	return capacity + 2, transitions, nil
}
