package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/flownet/internal/ctxlog"
	"github.com/vk/flownet/internal/network"
)

// ErrConverged is the control signal a handler returns from Run to declare
// that its cyclic subsystem has reached a fixed point. The convergence loop
// stops immediately and the signal is never surfaced to the caller.
var ErrConverged = errors.New("iteration converged")

// MaxIterationsError reports that the convergence loop exceeded its ceiling
// without any handler signaling convergence. The run aborts; the network
// remains usable for a subsequent run after reset.
type MaxIterationsError struct {
	Limit int
}

func (e *MaxIterationsError) Error() string {
	return fmt.Sprintf("maximum iterations (%d) reached without convergence", e.Limit)
}

// converge resolves the in-cycle partition by repeatedly executing its
// ordered sequence until a handler returns ErrConverged or the ceiling is
// exceeded. The ceiling is read once per run. With identical handler
// behavior and starting state, the order and iteration count are identical
// across runs.
func (e *Engine) converge(ctx context.Context, rc *network.RunContext, inCycle []*network.Process) error {
	if len(inCycle) == 0 {
		return nil
	}
	logger := ctxlog.FromContext(ctx)

	ordered := cycleOrder(inCycle)
	maxIter := e.maxIterations

	for iter := 1; ; iter++ {
		if iter > maxIter {
			return &MaxIterationsError{Limit: maxIter}
		}
		rc.Iteration = iter

		converged := false
		for _, p := range ordered {
			err := p.RunIfEnabled(ctx, rc)
			if err == nil {
				continue
			}
			if errors.Is(err, ErrConverged) {
				// Remaining processes in this pass are intentionally skipped.
				logger.Debug("Convergence signaled.", "process", p.Name, "iteration", iter)
				converged = true
				break
			}
			return err
		}
		if converged {
			return nil
		}
	}
}

// cycleOrder produces the execution order for the cyclic partition. When a
// process is flagged cycle_start, the order is a depth-first walk of
// successors from it, appending each in-cycle process the first time it is
// reached; processes unreachable from the start, or the whole partition
// when no start is flagged, fall back to declaration order. The input slice
// is already sorted by declaration order.
func cycleOrder(inCycle []*network.Process) []*network.Process {
	var start *network.Process
	for _, p := range inCycle {
		if p.CycleStart {
			start = p
			break
		}
	}
	if start == nil {
		return inCycle
	}

	unvisited := make(map[*network.Process]bool, len(inCycle))
	for _, p := range inCycle {
		unvisited[p] = true
	}

	ordered := make([]*network.Process, 0, len(inCycle))
	var walk func(p *network.Process)
	walk = func(p *network.Process) {
		if !unvisited[p] {
			return
		}
		delete(unvisited, p)
		ordered = append(ordered, p)
		for _, succ := range p.Successors() {
			walk(succ)
		}
	}

	walk(start)
	for _, p := range inCycle {
		walk(p)
	}
	return ordered
}
