package network

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/flownet/internal/ctxlog"
)

// ValidationError aggregates every validation violation found in a network,
// so a user can fix them all in one pass.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("network validation failed:\n - %s", strings.Join(e.Problems, "\n - "))
}

// Validate performs the logical checks that make a network well-defined, so
// run-time code does not have to re-test validity:
//
//   - deferred (run_after) processes may only feed other deferred processes
//   - the active boundary must be declared when one is requested
//   - a cycle may not span a boundary that has processes beyond it
//   - an aggregation group may not straddle a boundary
//   - handler-level attribute constraints must hold
//
// Violations are accumulated and returned together as a ValidationError.
func (n *Network) Validate(ctx context.Context, activeBoundary string) error {
	logger := ctxlog.FromContext(ctx)
	var problems []string

	problems = append(problems, n.checkRunAfter()...)

	if activeBoundary != "" {
		if _, ok := n.boundaries[activeBoundary]; !ok {
			problems = append(problems,
				fmt.Sprintf("network does not declare boundary process %q", activeBoundary))
		}
	}

	for _, bp := range n.BoundaryProcesses() {
		beyond := n.Beyond(bp)
		if len(beyond) == 0 {
			// Nothing lies beyond this boundary, so there is nothing for a
			// cycle or group to straddle.
			continue
		}

		for _, cycle := range n.cycles {
			if containsProcess(cycle, bp) {
				problems = append(problems,
					fmt.Sprintf("%s boundary %s is in one or more cycles", bp.Boundary, bp))
				break
			}
		}

		for _, agg := range n.aggregators {
			if len(agg.Members) == 0 {
				continue
			}
			inside := !beyond[agg.Members[0]]
			for _, m := range agg.Members[1:] {
				if inside == beyond[m] {
					problems = append(problems,
						fmt.Sprintf("aggregator %q spans the %s boundary", agg.Name, bp.Boundary))
					break
				}
			}
		}
	}

	for _, p := range n.EnabledProcesses() {
		v, ok := p.runner.(Validator)
		if !ok {
			continue
		}
		if err := v.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %s", p, err))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	logger.Debug("Network validation passed.", "boundary", activeBoundary)
	return nil
}

// checkRunAfter collects every deferred process that feeds a non-deferred
// process through an enabled stream.
func (n *Network) checkRunAfter() []string {
	var problems []string
	for _, p := range n.processes {
		if !p.RunAfter {
			continue
		}
		for _, s := range p.Outputs {
			if s.Enabled && !s.Dest.RunAfter {
				problems = append(problems,
					fmt.Sprintf("%s has run_after set but feeds %s, which does not", p, s.Dest))
				break
			}
		}
	}
	return problems
}

func containsProcess(cycle []*Process, p *Process) bool {
	for _, member := range cycle {
		if member == p {
			return true
		}
	}
	return false
}
