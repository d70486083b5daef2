// Package engine executes a process network: a pre-run imputation walk
// seeds state from exogenous streams, then the enabled processes are split
// into four disjoint partitions (independent, in-cycle, cycle-dependent,
// deferred) and executed in that fixed order. Acyclic partitions run once
// in topological order; the cyclic partition iterates until a handler
// signals convergence or the iteration ceiling is reached. Execution is
// strictly single-threaded: stream values are mutated in place and read by
// downstream processes without synchronization.
package engine

import (
	"context"
	"fmt"

	"github.com/vk/flownet/internal/ctxlog"
	"github.com/vk/flownet/internal/network"
)

// Options configures a single engine instance.
type Options struct {
	// Boundary is the active boundary tag for the run, if any.
	Boundary string
	// MaxIterations overrides the network's configured convergence ceiling
	// when positive.
	MaxIterations int
}

// Engine schedules and executes one network. It exclusively owns the
// network's graph, partition sets, and per-process transient flags during a
// run; a network instance must not be shared across concurrent runs.
type Engine struct {
	net           *network.Network
	boundary      string
	maxIterations int
}

// New creates an engine for the given network.
func New(net *network.Network, opts Options) *Engine {
	maxIter := net.MaxIterations()
	if opts.MaxIterations > 0 {
		maxIter = opts.MaxIterations
	}
	return &Engine{
		net:           net,
		boundary:      opts.Boundary,
		maxIterations: maxIter,
	}
}

// Run executes every enabled process exactly once, except the cyclic
// partition which iterates to a fixed point. The network is reset first, so
// it remains usable for a subsequent run even after a failed one.
func (e *Engine) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	e.net.ResetRun()
	rc := network.NewRunContext(e.net, e.boundary)

	if err := e.impute(ctx, rc); err != nil {
		return err
	}

	parts := e.computePartitions(ctx)
	logger.Debug("Partitions computed.",
		"independent", len(parts.independent),
		"in_cycle", len(parts.inCycle),
		"cycle_dependent", len(parts.cycleDependent),
		"deferred", len(parts.deferred))

	for _, p := range parts.inCycle {
		p.InCycle = true
	}

	if err := e.runInOrder(ctx, rc, parts.independent); err != nil {
		return err
	}
	if err := e.converge(ctx, rc, parts.inCycle); err != nil {
		return err
	}
	// Iteration counting is scoped to the convergence loop.
	iterations := rc.Iteration
	rc.Iteration = 0

	if err := e.runInOrder(ctx, rc, parts.cycleDependent); err != nil {
		return err
	}
	if err := e.runInOrder(ctx, rc, parts.deferred); err != nil {
		return err
	}

	logger.Info("Network run complete.",
		"processes", len(parts.independent)+len(parts.inCycle)+len(parts.cycleDependent)+len(parts.deferred),
		"cycle_iterations", iterations)
	return nil
}

// runInOrder executes a partition in topological order on its induced
// subgraph. Disabled processes never appear in partitions; a process with
// no usable input is expected to short-circuit itself.
func (e *Engine) runInOrder(ctx context.Context, rc *network.RunContext, procs []*network.Process) error {
	if len(procs) == 0 {
		return nil
	}

	ids := make([]string, len(procs))
	for i, p := range procs {
		ids[i] = p.Name
	}
	order, err := e.net.Graph().TopoSort(ids)
	if err != nil {
		return fmt.Errorf("ordering partition: %w", err)
	}

	for _, id := range order {
		p, _ := e.net.Process(id)
		if err := p.RunIfEnabled(ctx, rc); err != nil {
			return err
		}
	}
	return nil
}
