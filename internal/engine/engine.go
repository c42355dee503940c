package engine

import (
	"fmt"

	"github.com/danielpatrickdp/stamina-go/internal/accumulator"
	"github.com/danielpatrickdp/stamina-go/internal/frontier"
	"github.com/danielpatrickdp/stamina-go/internal/genmodel"
	"github.com/danielpatrickdp/stamina-go/internal/guard"
	"github.com/danielpatrickdp/stamina-go/internal/stateindex"
)

// Engine drives one refinement iteration's exploration loop (C5) against
// a Generator, an index map, and an accumulator, all owned by the
// caller (the refinement controller) and mutated solely by this single
// cooperative thread (spec.md §5, "no locking").
type Engine[S stateindex.PackedState] struct {
	Mode        Mode
	Generator   genmodel.Generator[S]
	Index       *stateindex.Map[S]
	Accumulator *accumulator.Accumulator
}

// New creates an engine over the given collaborators.
func New[S stateindex.PackedState](mode Mode, gen genmodel.Generator[S], idx *stateindex.Map[S], acc *accumulator.Accumulator) *Engine[S] {
	return &Engine[S]{Mode: mode, Generator: gen, Index: idx, Accumulator: acc}
}

// Run executes one full iteration: seed (iteration 1) or resume
// (subsequent iterations), then the expand loop until the frontier
// drains (spec.md §4.5).
func (e *Engine[S]) Run(iteration int, kappa float64) (Stats, error) {
	stats := Stats{Iteration: iteration}
	q := e.newQueue()

	if iteration <= 1 {
		seeded, err := e.seed(q)
		if err != nil {
			return stats, err
		}
		stats.StatesSeeded = seeded
	} else {
		e.resume(q, kappa)
	}

	for q.Len() > 0 {
		u, ok := q.Pop()
		if !ok {
			break
		}
		rec := e.Index.GetMeta(u)

		if e.Mode == Iterative && rec.Terminal && rec.Pi < kappa {
			// Remains a frontier sink; absorbing.RedirectTruncated
			// handles it at finalize time (spec.md §4.6).
			continue
		}

		if err := e.Generator.Load(e.Index.State(u)); err != nil {
			return stats, guard.Wrap(guard.GeneratorException, "load failed", err)
		}
		behavior, err := e.Generator.Expand(func(s S) stateindex.Ix {
			ix, fresh := e.Index.LookupOrInsert(s)
			if fresh {
				succ := e.Index.GetMeta(ix)
				succ.Terminal = true
				succ.WasPutInTerminalQueue = true
				q.Push(ix)
			}
			return ix
		})
		if err != nil {
			return stats, guard.Wrap(guard.GeneratorException, "expand failed", err)
		}
		if len(behavior.Choices) == 0 {
			rec.Pi = 0
			rec.Terminal = false
			rec.IterationLastSeen = iteration
			rec.Deadlock = true
			stats.StatesExpanded++
			continue
		}

		var totalExit float64
		for _, choice := range behavior.Choices {
			for _, s := range choice.Successors {
				totalExit += s.Rate
			}
		}

		for _, choice := range behavior.Choices {
			for _, s := range choice.Successors {
				target, _ := e.Index.LookupOrInsert(s.State)
				e.Accumulator.Append(u, target, s.Rate)
				if delta := propagateMass(rec.Pi, s.Rate, totalExit); delta != 0 {
					e.Index.GetMeta(target).Pi += delta
				}
			}
		}

		rec.Pi = 0
		rec.Terminal = false
		rec.IterationLastSeen = iteration
		stats.StatesExpanded++
	}

	return stats, nil
}

func (e *Engine[S]) newQueue() frontier.Queue {
	if e.Mode == Priority {
		return frontier.NewPriority(func(ix stateindex.Ix) float64 { return e.Index.GetMeta(ix).Pi })
	}
	return frontier.NewFIFO()
}

// seed implements spec.md §4.5 step 1: request initial states, assign
// equal pi shares, mark terminal, enqueue.
func (e *Engine[S]) seed(q frontier.Queue) (int, error) {
	initials, err := e.Generator.InitialStates(func(s S) stateindex.Ix {
		ix, _ := e.Index.LookupOrInsert(s)
		return ix
	})
	if err != nil {
		return 0, guard.Wrap(guard.GeneratorException, "initial_states failed", err)
	}
	if len(initials) == 0 {
		return 0, guard.New(guard.EmptyInitial, "generator returned no initial states")
	}
	share := 1.0 / float64(len(initials))
	for _, ix := range initials {
		rec := e.Index.GetMeta(ix)
		rec.Pi = share
		rec.Terminal = true
		rec.WasPutInTerminalQueue = true
		q.Push(ix)
	}
	return len(initials), nil
}

// resume implements spec.md §4.5 step 2: re-enqueue every currently
// terminal state whose pi is no longer below kappa. In ReExploring mode,
// every previously-expanded non-absorbing state is also reopened and its
// stale accumulator row dropped, so shrinking kappa can surface
// successors that were truncated in an earlier iteration (a supplemented
// discipline; see DESIGN.md).
func (e *Engine[S]) resume(q frontier.Queue, kappa float64) {
	if e.Mode == ReExploring {
		e.Index.ForEach(func(ix stateindex.Ix, _ S, rec *stateindex.Record) {
			if ix == stateindex.Absorbing || rec.Terminal {
				return
			}
			rec.Terminal = true
			rec.WasPutInTerminalQueue = true
			e.Accumulator.Reset(ix)
		})
	}

	// Every terminal record should have passed through seed or the
	// ReExploring reset above, so its pi value has a legitimate
	// predecessor behind it. A terminal record that never was is not
	// trustworthy enough to resume from (spec.md §7
	// UnreachablePredecessor): fall back to pi=0 rather than propagate a
	// stale or fabricated value.
	e.Index.ForEach(func(ix stateindex.Ix, _ S, rec *stateindex.Record) {
		if !rec.Terminal {
			return
		}
		if err := guard.CheckPredecessorSeen(rec.WasPutInTerminalQueue, fmt.Sprintf("ix=%d", ix)); err != nil {
			rec.Pi = 0
		}
		if rec.Pi >= kappa {
			q.Push(ix)
		}
	})
}
