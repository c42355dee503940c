// Command stamina drives the refinement controller against a sqlite-backed
// toy model (see cmd/bootstrap-model) and prints the resulting Pmin/Pmax
// bracket, matching cmd/controller/main.go's env-configured, store-plus-
// collaborator wiring shape but as a one-shot batch run instead of a REPL.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/danielpatrickdp/stamina-go/internal/checkpoint"
	"github.com/danielpatrickdp/stamina-go/internal/config"
	"github.com/danielpatrickdp/stamina-go/internal/engine"
	"github.com/danielpatrickdp/stamina-go/internal/modelgraph"
	"github.com/danielpatrickdp/stamina-go/internal/obslog"
	"github.com/danielpatrickdp/stamina-go/internal/refine"
	"github.com/danielpatrickdp/stamina-go/internal/solver"
)

func main() {
	modelPath := flag.String("model", envOr("STAMINA_MODEL_DB", "model.db"), "path to a modelgraph sqlite database")
	checkpointPath := flag.String("checkpoint", envOr("STAMINA_CHECKPOINT_DB", "checkpoints.db"), "path to the refinement checkpoint database")
	absorbing := flag.String("absorbing", "absorbing", "packed state ID of the absorbing sink")
	target := flag.String("target", "target", "property target label")
	discipline := flag.String("discipline", "", "override the configured exploration discipline (iterative|priority|re-exploring)")
	kappa0 := flag.Float64("kappa0", 0, "override kappa0 (0 keeps the configured default)")
	flag.Parse()

	cfg := config.FromEnv()
	if *kappa0 > 0 {
		cfg.Kappa0 = *kappa0
	}
	switch *discipline {
	case "priority":
		cfg.Discipline = engine.Priority
	case "re-exploring":
		cfg.Discipline = engine.ReExploring
	case "iterative":
		cfg.Discipline = engine.Iterative
	}

	store, err := modelgraph.Open(*modelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open model db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	cpStore, err := checkpoint.Open(*checkpointPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open checkpoint db: %v\n", err)
		os.Exit(1)
	}
	defer cpStore.Close()

	memory, err := refine.NewMemory(cpStore.DB())
	if err != nil {
		fmt.Fprintf(os.Stderr, "init memory: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	controller := &refine.Controller[string]{
		Generator:   modelgraph.NewGenerator(store),
		Solver:      &solver.Local{},
		Config:      cfg,
		Checkpoints: cpStore,
		Memory:      memory,
		Log:         obslog.New(nil),
	}

	result, err := controller.Run(ctx, *absorbing, solver.Property{TargetLabel: *target})
	if err != nil {
		fmt.Fprintf(os.Stderr, "refinement failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Result: %s (%s)\n", result.Terminated, result.Reason)
	fmt.Printf("  Pmin       = %.12f\n", result.Pmin)
	fmt.Printf("  Pmax       = %.12f\n", result.Pmax)
	fmt.Printf("  Window     = %.12f\n", result.Window)
	fmt.Printf("  States     = %d\n", result.StateCount)
	fmt.Printf("  Initials   = %d\n", result.InitialCount)
	fmt.Printf("  Iterations = %d\n", result.Iterations)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
