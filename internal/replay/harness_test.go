package replay

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/stamina-go/internal/config"
	"github.com/danielpatrickdp/stamina-go/internal/refine"
	"github.com/danielpatrickdp/stamina-go/internal/solver"
)

func TestLoadFixtureTwoStateLoop(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "two_state_loop.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if f.AbsorbingState != "absorbing" {
		t.Fatalf("unexpected absorbing state %q", f.AbsorbingState)
	}
	if len(f.States) != 2 {
		t.Fatalf("expected 2 states in table, got %d", len(f.States))
	}

	cfg := f.ToConfig()
	if cfg.Kappa0 != 1.0 || cfg.MaxApproxCount != 10 {
		t.Fatalf("unexpected converted config: %+v", cfg)
	}
	if cfg.Discipline != config.Default().Discipline {
		t.Fatalf("expected default iterative discipline, got %v", cfg.Discipline)
	}
}

func TestReplayTwoStateLoopMatchesFixture(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "two_state_loop.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	report, err := Replay(f)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !report.Passed() {
		t.Fatalf("replay diverged from fixture: %+v", report.Mismatches)
	}
	if report.Outcome.Iterations != 1 {
		t.Fatalf("expected convergence in one iteration, got %d", report.Outcome.Iterations)
	}
}

func TestReplayDetectsDivergedExpectation(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "two_state_loop.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	f.ExpectedFinal.StateCount = 999 // deliberately wrong

	report, err := Replay(f)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if report.Passed() {
		t.Fatalf("expected a mismatch on state_count")
	}
	found := false
	for _, m := range report.Mismatches {
		if m.Field == "state_count" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected state_count mismatch, got %+v", report.Mismatches)
	}
}

func TestFixtureGeneratorSatisfiesControllerDirectly(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "two_state_loop.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	c := &refine.Controller[string]{
		Generator: f.ToGenerator(),
		Solver:    &solver.Local{},
		Config:    f.ToConfig(),
	}
	result, err := c.Run(context.Background(), f.AbsorbingState, f.ToProperty())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Terminated != refine.WindowClosed {
		t.Fatalf("expected window closed, got %v (%s)", result.Terminated, result.Reason)
	}
}

func TestSummarizeReportsPassAndFail(t *testing.T) {
	reports := []Report{
		{Description: "ok", Outcome: Outcome{}},
		{Description: "bad", Mismatches: []Mismatch{{Field: "pmin", Got: "0.5", Want: "1.0"}}},
	}
	out := Summarize(reports)
	if out == "" {
		t.Fatalf("expected non-empty summary")
	}
}
