package engine

import (
	"context"
	"sort"

	"github.com/vk/flownet/internal/ctxlog"
	"github.com/vk/flownet/internal/network"
)

// partitions holds the four disjoint schedulable classes of enabled
// processes. Their union is exactly the set of enabled processes; each
// slice is sorted by declaration order.
type partitions struct {
	independent    []*network.Process
	inCycle        []*network.Process
	cycleDependent []*network.Process
	deferred       []*network.Process
}

// computePartitions recomputes the four partitions from the cached cycle
// set. Membership priority keeps the sets disjoint: a process found in a
// cycle is in-cycle regardless of its other flags, a deferred (run_after)
// process stays deferred even when it depends on a cycle.
func (e *Engine) computePartitions(ctx context.Context) *partitions {
	logger := ctxlog.FromContext(ctx)
	parts := &partitions{}

	inCycle := make(map[*network.Process]bool)
	for _, cycle := range e.net.Cycles() {
		for _, p := range cycle {
			if p.Enabled {
				inCycle[p] = true
			} else {
				logger.Debug("Disabled process is a member of a cycle.", "process", p.Name)
			}
		}
	}

	for _, p := range e.net.EnabledProcesses() {
		switch {
		case inCycle[p]:
			parts.inCycle = append(parts.inCycle, p)
		case p.RunAfter:
			parts.deferred = append(parts.deferred, p)
		case len(inCycle) > 0 && dependsOnCycle(p):
			parts.cycleDependent = append(parts.cycleDependent, p)
		default:
			parts.independent = append(parts.independent, p)
		}
	}

	for _, set := range [][]*network.Process{
		parts.independent, parts.inCycle, parts.cycleDependent, parts.deferred,
	} {
		sort.Slice(set, func(i, j int) bool { return set[i].Index() < set[j].Index() })
	}
	return parts
}

// dependsOnCycle walks backward through input streams and reports whether
// any ancestor is reachable along more than one path, meaning the process
// sits downstream of a cycle. The walk is iterative with an explicit stack
// and a visited set local to this start process, so deep networks cannot
// blow the call stack.
func dependsOnCycle(p *network.Process) bool {
	visited := make(map[*network.Process]bool)
	stack := append([]*network.Process(nil), p.Predecessors()...)

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n] {
			return true
		}
		visited[n] = true
		stack = append(stack, n.Predecessors()...)
	}
	return false
}
