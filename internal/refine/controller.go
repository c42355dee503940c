package refine

import (
	"context"
	"time"

	"github.com/danielpatrickdp/stamina-go/internal/absorbing"
	"github.com/danielpatrickdp/stamina-go/internal/accumulator"
	"github.com/danielpatrickdp/stamina-go/internal/checkpoint"
	"github.com/danielpatrickdp/stamina-go/internal/config"
	"github.com/danielpatrickdp/stamina-go/internal/engine"
	"github.com/danielpatrickdp/stamina-go/internal/finalize"
	"github.com/danielpatrickdp/stamina-go/internal/genmodel"
	"github.com/danielpatrickdp/stamina-go/internal/guard"
	"github.com/danielpatrickdp/stamina-go/internal/obslog"
	"github.com/danielpatrickdp/stamina-go/internal/solver"
	"github.com/danielpatrickdp/stamina-go/internal/stateindex"
)

// Controller is the outer refinement loop (C7), the refinement-domain
// analogue of orchestrator.go's Orchestrator: it owns no business logic
// of its own beyond wiring classify → select-discipline → explore →
// finalize+check → evaluate → shrink-kappa together, delegating each
// decision to classifier.go/strategy.go/evaluator.go/retry.go.
type Controller[S stateindex.PackedState] struct {
	Generator genmodel.Generator[S]
	Solver    solver.Solver
	Config    config.Config

	// Checkpoints persists one row per completed iteration when non-nil.
	Checkpoints *checkpoint.Store
	// Memory records per-iteration discipline outcomes when non-nil.
	Memory *Memory
	// Log receives a structured trace line per completed iteration; a
	// nil Log is replaced with a default stdlib logger by Run.
	Log *obslog.Logger
}

// Run drives the full refinement loop (spec.md §4.7) against absorbingState
// (the packed encoding with the synthetic Absorbing bit set) and baseProperty
// (the unaugmented P=?[psi] the caller wants bounded). It returns the best
// available (Pmin, Pmax) window even when ctx is cancelled mid-run (spec.md
// §5 "Cancellation & timeouts").
func (c *Controller[S]) Run(ctx context.Context, absorbingState S, baseProperty solver.Property) (RefinementResult, error) {
	if c.Log == nil {
		c.Log = obslog.New(nil)
	}

	idx := stateindex.New(absorbingState)
	vi := c.Generator.VariableInfo()
	if err := absorbing.VerifyAugmentation(vi); err != nil {
		c.Log.LogFatal("GUARD", err)
		return RefinementResult{Terminated: WindowAborted, Reason: err.Error()}, err
	}
	if err := absorbing.Install(idx, absorbingState); err != nil {
		c.Log.LogFatal("GUARD", err)
		return RefinementResult{Terminated: WindowAborted, Reason: err.Error()}, err
	}

	var runID string
	if c.Checkpoints != nil {
		id, err := c.Checkpoints.NewRun(baseProperty.TargetLabel)
		if err != nil {
			return RefinementResult{}, err
		}
		runID = id
	}

	acc := accumulator.New()
	state := NewRunState(c.Config)
	mode := c.Config.Discipline

	result := RefinementResult{Terminated: WindowOpen}
	prevWindow := 0.0
	prevStateCount := 0

	for {
		if err := ctx.Err(); err != nil {
			result.Terminated = WindowAborted
			result.Reason = "cancelled"
			return result, nil
		}

		eng := engine.New(mode, c.Generator, idx, acc)
		stats, err := eng.Run(state.Iteration+1, state.Kappa)
		if err != nil {
			if guard.IsFatal(err) {
				c.Log.LogFatal("ENGINE", err)
				return result, err
			}
			c.Log.LogRecoverable("ENGINE", err)
			result.Terminated = WindowAborted
			result.Reason = "recoverable engine error, returning best-so-far window"
			return result, nil
		}
		state.Iteration++

		if err := absorbing.RedirectTruncated(c.Generator, idx, acc); err != nil {
			if guard.IsFatal(err) {
				c.Log.LogFatal("ABSORBING", err)
				return result, err
			}
			c.Log.LogRecoverable("ABSORBING", err)
		}

		ctmc, err := finalize.Finalize(c.Generator, idx, acc)
		if err != nil {
			if guard.IsFatal(err) {
				c.Log.LogFatal("FINALIZE", err)
				return result, err
			}
			c.Log.LogRecoverable("FINALIZE", err)
			result.Terminated = WindowAborted
			result.Reason = "recoverable finalize error, returning best-so-far window"
			return result, nil
		}

		augmented := Augment(ctmc, baseProperty)
		pmin, err := c.Solver.Check(ctmc, augmented.Min)
		if err != nil {
			c.Log.LogRecoverable("SOLVER", err)
			result.Terminated = WindowAborted
			result.Reason = "solver error on Pmin, returning best-so-far window"
			return result, nil
		}
		pmax, err := c.Solver.Check(ctmc, augmented.Max)
		if err != nil {
			c.Log.LogRecoverable("SOLVER", err)
			result.Terminated = WindowAborted
			result.Reason = "solver error on Pmax, returning best-so-far window"
			return result, nil
		}

		var terminalCount int
		idx.ForEach(func(ix stateindex.Ix, _ S, rec *stateindex.Record) {
			if rec.Terminal {
				terminalCount++
			}
		})
		stateCount := idx.Len()
		if err := guard.CheckStateCountMonotone(prevStateCount, stateCount); err != nil {
			c.Log.LogRecoverable("GUARD", err)
		}
		signals := ComputeSignals(pmin, pmax, prevWindow, stateCount, prevStateCount, terminalCount)
		eval := EvaluateWindow(pmin, pmax, c.Config.ProbWin)

		result.Pmin, result.Pmax, result.Window = pmin, pmax, eval.Window
		result.StateCount = stateCount
		result.InitialCount = len(ctmc.Initial)
		result.Iterations = state.Iteration

		decision := Classify(pmin, pmax, state.Iteration, c.Config)
		result.Terminated = decision

		c.Log.LogIteration(obslog.IterationDecision{
			RunID: runID, Iteration: state.Iteration, Kappa: state.Kappa,
			StatesExpanded: stats.StatesExpanded, StatesSeeded: stats.StatesSeeded,
			StateCount: stateCount, Pmin: pmin, Pmax: pmax,
			WindowClosed: eval.Closed, Reason: string(decision),
		})

		if c.Checkpoints != nil {
			if err := c.Checkpoints.Save(checkpoint.Record{
				RunID: runID, Iteration: state.Iteration, Kappa: state.Kappa,
				Pmin: pmin, Pmax: pmax, StateCount: stateCount,
			}); err != nil {
				c.Log.LogRecoverable("CHECKPOINT", err)
			}
		}
		if c.Memory != nil {
			if err := c.Memory.RecordOutcome(MemoryRecord{
				RunID: runID, SizeBucket: SizeBucket(stateCount), Discipline: mode.String(),
				Iteration: state.Iteration, WindowShrinkRate: signals.WindowShrinkRate,
				WindowClosed: eval.Closed, CreatedAt: time.Now(),
			}); err != nil {
				c.Log.LogRecoverable("MEMORY", err)
			}
		}

		cont := Decide(state, c.Config, eval)
		if !cont.ShouldContinue {
			result.Reason = cont.Reason
			return result, nil
		}

		mode = SelectDiscipline(mode, signals, c.Config.NoPropRefine)
		if err := guard.CheckKappaMonotone(state.Kappa, cont.NextKappa); err != nil {
			c.Log.LogRecoverable("GUARD", err)
		}
		state.Kappa = cont.NextKappa
		prevWindow = eval.Window
		prevStateCount = stateCount
	}
}
