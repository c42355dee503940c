// Command fixture-export packages a modelgraph model plus a completed
// checkpoint run's final outcome into a replay fixture JSON file,
// matching cmd/fixture-export/main.go's db-to-fixture extraction shape
// (query production state, materialize it as a self-contained JSON
// document for later replay) with GateRecord/session provenance replaced
// by model states/transitions and checkpoint iteration outcomes.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/stamina-go/internal/checkpoint"
	"github.com/danielpatrickdp/stamina-go/internal/modelgraph"
	"github.com/danielpatrickdp/stamina-go/internal/replay"
)

func main() {
	modelPath := flag.String("model", "", "path to the modelgraph sqlite database the run explored")
	checkpointPath := flag.String("checkpoint", "", "path to the checkpoint sqlite database")
	runID := flag.String("run", "", "run ID to export the final outcome for")
	absorbing := flag.String("absorbing", "absorbing", "packed state ID of the absorbing sink")
	targetLabel := flag.String("target-label", "target", "property target label")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *modelPath == "" || *checkpointPath == "" || *runID == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --model model.db --checkpoint checkpoints.db --run <id> --out fixture.json")
		os.Exit(2)
	}

	if err := run(*modelPath, *checkpointPath, *runID, *absorbing, *targetLabel, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(modelPath, checkpointPath, runID, absorbing, targetLabel, outPath string) error {
	store, err := modelgraph.Open(modelPath)
	if err != nil {
		return fmt.Errorf("open model db: %w", err)
	}
	defer store.Close()

	cpStore, err := checkpoint.Open(checkpointPath)
	if err != nil {
		return fmt.Errorf("open checkpoint db: %w", err)
	}
	defer cpStore.Close()

	history, err := cpStore.History(runID)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if len(history) == 0 {
		return fmt.Errorf("no checkpoints found for run %s", runID)
	}
	last := history[len(history)-1]

	fixture, err := buildFixture(store, absorbing, targetLabel, last)
	if err != nil {
		return fmt.Errorf("build fixture: %w", err)
	}

	return writeFixture(fixture, outPath)
}

func buildFixture(store *modelgraph.Store, absorbing, targetLabel string, last checkpoint.Record) (replay.Fixture, error) {
	states, err := store.AllStates()
	if err != nil {
		return replay.Fixture{}, fmt.Errorf("list states: %w", err)
	}

	fixture := replay.Fixture{
		Description:    fmt.Sprintf("exported from checkpoint run %s at iteration %d", last.RunID, last.Iteration),
		AbsorbingState: absorbing,
		TargetLabel:    targetLabel,
		States:         make(map[string][]replay.FixtureChoice),
	}

	for _, st := range states {
		if st.ID == absorbing {
			continue
		}
		if st.Initial {
			fixture.InitialStates = append(fixture.InitialStates, st.ID)
		}

		labels, err := store.LabelsFor(st.ID)
		if err != nil {
			return replay.Fixture{}, fmt.Errorf("labels for %s: %w", st.ID, err)
		}
		for _, l := range labels {
			if l == targetLabel {
				fixture.TargetStates = append(fixture.TargetStates, st.ID)
			}
		}

		transitions, err := store.Outgoing(st.ID)
		if err != nil {
			return replay.Fixture{}, fmt.Errorf("outgoing for %s: %w", st.ID, err)
		}
		if len(transitions) == 0 {
			continue
		}
		fixture.States[st.ID] = groupByLabel(transitions)
	}

	fixture.Config = replay.FixtureConfig{
		Kappa0:         last.Kappa,
		ReduceKappa:    2.0,
		MaxApproxCount: last.Iteration,
		ProbWin:        last.Pmax - last.Pmin,
		Discipline:     "iterative",
	}
	fixture.ExpectedFinal = replay.FixtureExpected{
		Pmin:       last.Pmin,
		Pmax:       last.Pmax,
		Window:     last.Pmax - last.Pmin,
		Iterations: last.Iteration,
		StateCount: last.StateCount,
		Terminated: terminatedGuess(last.Pmax - last.Pmin),
	}

	return fixture, nil
}

// groupByLabel matches modelgraph.Generator.Expand's own grouping so an
// exported fixture reconstructs the same choice structure the live
// generator would have reported.
func groupByLabel(transitions []modelgraph.Transition) []replay.FixtureChoice {
	byLabel := make(map[string][]replay.FixtureSuccessor)
	var order []string
	for _, t := range transitions {
		if _, seen := byLabel[t.Label]; !seen {
			order = append(order, t.Label)
		}
		byLabel[t.Label] = append(byLabel[t.Label], replay.FixtureSuccessor{Target: t.Target, Rate: t.Rate})
	}
	choices := make([]replay.FixtureChoice, 0, len(order))
	for _, label := range order {
		choices = append(choices, replay.FixtureChoice{Label: label, Successors: byLabel[label]})
	}
	return choices
}

// terminatedGuess approximates the outer loop's final WindowState from
// the exported window width alone, since checkpoint.Record does not
// persist the classifier's verdict directly.
func terminatedGuess(window float64) string {
	if window <= 1e-3 {
		return "closed"
	}
	return "open"
}

func writeFixture(fixture replay.Fixture, outPath string) error {
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	fmt.Printf("Wrote fixture to %s (%d bytes, %d states)\n", outPath, len(data), len(fixture.States))
	return nil
}
