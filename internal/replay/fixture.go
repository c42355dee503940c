// Package replay drives the refinement controller against a small,
// fully-specified transition table loaded from JSON, and checks the
// resulting (Pmin, Pmax, iterations, state count) against values recorded
// in the fixture. It exists to catch numeric or control-flow drift in
// refine.Controller/engine.Engine across changes without needing a live
// model collaborator.
//
// Grounded on replay/fixture.go's Fixture/LoadFixture/To* converter
// pattern: a JSON document describing a scenario plus its expected
// outcome, loaded once and converted into the concrete types the harness
// under test consumes.
package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/stamina-go/internal/config"
	"github.com/danielpatrickdp/stamina-go/internal/engine"
	"github.com/danielpatrickdp/stamina-go/internal/solver"
)

// FixtureSuccessor is one (target, rate) pair reachable from a choice.
type FixtureSuccessor struct {
	Target string  `json:"target"`
	Rate   float64 `json:"rate"`
}

// FixtureChoice is one labeled group of successors enabled from a state.
type FixtureChoice struct {
	Label      string             `json:"label"`
	Successors []FixtureSuccessor `json:"successors"`
}

// FixtureConfig mirrors config.Config's fields in their JSON-friendly
// form, matching replay/fixture.go's FixtureConfig sub-struct pattern.
type FixtureConfig struct {
	Kappa0         float64 `json:"kappa0"`
	ReduceKappa    float64 `json:"reduce_kappa"`
	MaxApproxCount int     `json:"max_approx_count"`
	ProbWin        float64 `json:"prob_win"`
	NoPropRefine   bool    `json:"no_prop_refine"`
	Discipline     string  `json:"discipline"`
}

// FixtureExpected is the outcome a correctly-behaving controller must
// reproduce for this fixture.
type FixtureExpected struct {
	Pmin       float64 `json:"pmin"`
	Pmax       float64 `json:"pmax"`
	Window     float64 `json:"window"`
	Iterations int     `json:"iterations"`
	StateCount int     `json:"state_count"`
	Terminated string  `json:"terminated"`
}

// Fixture is a complete, self-contained refinement scenario: a small
// transition table in place of a live generator, the property to check,
// the configuration to run under, and the expected final outcome.
type Fixture struct {
	Description    string                     `json:"description"`
	AbsorbingState string                     `json:"absorbing_state"`
	InitialStates  []string                   `json:"initial_states"`
	TargetStates   []string                   `json:"target_states"`
	TargetLabel    string                     `json:"target_label"`
	States         map[string][]FixtureChoice `json:"states"`
	Config         FixtureConfig              `json:"config"`
	ExpectedFinal  FixtureExpected            `json:"expected_final"`
}

// LoadFixture reads and parses a fixture document from path.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToConfig converts the fixture's JSON-friendly configuration into a
// config.Config, falling back to config.Default() zero values for any
// field the fixture leaves at its zero value.
func (f *Fixture) ToConfig() config.Config {
	cfg := config.Default()
	if f.Config.Kappa0 != 0 {
		cfg.Kappa0 = f.Config.Kappa0
	}
	if f.Config.ReduceKappa != 0 {
		cfg.ReduceKappa = f.Config.ReduceKappa
	}
	if f.Config.MaxApproxCount != 0 {
		cfg.MaxApproxCount = f.Config.MaxApproxCount
	}
	if f.Config.ProbWin != 0 {
		cfg.ProbWin = f.Config.ProbWin
	}
	cfg.NoPropRefine = f.Config.NoPropRefine
	switch f.Config.Discipline {
	case "priority":
		cfg.Discipline = engine.Priority
	case "re-exploring":
		cfg.Discipline = engine.ReExploring
	case "iterative", "":
		cfg.Discipline = engine.Iterative
	}
	return cfg
}

// ToProperty builds the base (unaugmented) property the controller
// should bound Pmin/Pmax for.
func (f *Fixture) ToProperty() solver.Property {
	return solver.Property{TargetLabel: f.TargetLabel}
}

// ToGenerator builds the in-memory generator backing this fixture's
// transition table.
func (f *Fixture) ToGenerator() *FixtureGenerator {
	return NewFixtureGenerator(f)
}
