// Command inspect prints a refinement run's checkpoint history, matching
// cmd/inspect/main.go's flag-driven table/JSON dual output shape (list
// mode over recent rows, detail mode for one), swapping state-version
// provenance rows for refinement-checkpoint rows.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/stamina-go/internal/checkpoint"
)

func main() {
	dbPath := flag.String("db", "", "path to a checkpoint sqlite database")
	runID := flag.String("run", "", "show the full iteration history for one run")
	jsonOut := flag.Bool("json", false, "output as JSON instead of a table")
	flag.Parse()

	if *dbPath == "" || *runID == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/checkpoints.db --run <run-id> [--json]")
		os.Exit(2)
	}

	store, err := checkpoint.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	history, err := store.History(*runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
		os.Exit(1)
	}
	if len(history) == 0 {
		fmt.Fprintf(os.Stderr, "no checkpoints found for run %s\n", *runID)
		os.Exit(1)
	}

	if *jsonOut {
		if err := printJSON(history); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	printTable(history)
}

func printTable(rows []checkpoint.Record) {
	fmt.Printf("%-4s  %12s  %10s  %10s  %10s  %-8s  %s\n",
		"Iter", "Kappa", "Pmin", "Pmax", "Window", "States", "Time")
	fmt.Printf("%-4s  %12s  %10s  %10s  %10s  %-8s  %s\n",
		"----", "------------", "----------", "----------", "----------", "--------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-4d  %12.9f  %10.6f  %10.6f  %10.6f  %-8d  %s\n",
			r.Iteration, r.Kappa, r.Pmin, r.Pmax, r.Pmax-r.Pmin, r.StateCount, r.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	last := rows[len(rows)-1]
	fmt.Printf("\nLatest: iteration=%d window=%.9f states=%d\n", last.Iteration, last.Pmax-last.Pmin, last.StateCount)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
