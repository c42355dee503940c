// Package config holds the refinement controller's configuration record
// (spec.md §6 "Configuration (enumerated)"), replacing the source's
// global mutable options with an explicit value the controller borrows
// immutably per iteration (spec.md §9).
//
// Grounded on cmd/controller/main.go's envOr helper for environment
// defaults; flag-based overrides in the CLI layer follow the pattern of
// cmd/inspect/main.go and cmd/replay/main.go's flag.String/flag.Bool use.
package config

import (
	"os"
	"strconv"

	"github.com/danielpatrickdp/stamina-go/internal/engine"
)

// Config is the refinement controller's full configuration.
type Config struct {
	// Kappa0 is kappa's initial value.
	Kappa0 float64
	// ReduceKappa (rho) is the per-iteration shrink factor, > 1.
	ReduceKappa float64
	// MaxApproxCount bounds the number of refinement iterations.
	MaxApproxCount int
	// ProbWin (epsilon) is the window tolerance used to declare
	// convergence.
	ProbWin float64
	// NoPropRefine skips property-guided reclassification when true.
	NoPropRefine bool
	// Discipline selects the frontier/engine variant.
	Discipline engine.Mode
}

// Default returns STAMINA's out-of-the-box configuration.
func Default() Config {
	return Config{
		Kappa0:         1.0,
		ReduceKappa:    2.0,
		MaxApproxCount: 10,
		ProbWin:        1e-3,
		NoPropRefine:   false,
		Discipline:     engine.Iterative,
	}
}

// FromEnv overlays environment variables onto the default configuration,
// matching cmd/controller/main.go's envOr convention.
func FromEnv() Config {
	c := Default()
	c.Kappa0 = envOrFloat("STAMINA_KAPPA", c.Kappa0)
	c.ReduceKappa = envOrFloat("STAMINA_REDUCE_KAPPA", c.ReduceKappa)
	c.MaxApproxCount = envOrInt("STAMINA_MAX_APPROX_COUNT", c.MaxApproxCount)
	c.ProbWin = envOrFloat("STAMINA_PROB_WIN", c.ProbWin)
	c.NoPropRefine = envOrBool("STAMINA_NO_PROP_REFINE", c.NoPropRefine)
	c.Discipline = disciplineFromString(envOr("STAMINA_DISCIPLINE", c.Discipline.String()))
	return c
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func disciplineFromString(s string) engine.Mode {
	switch s {
	case "priority":
		return engine.Priority
	case "re-exploring":
		return engine.ReExploring
	default:
		return engine.Iterative
	}
}
