package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/flownet/internal/ctxlog"
	"github.com/vk/flownet/internal/network"
)

// impute runs the pre-scheduling seeding walk. Streams carrying exogenous
// data determine a single start process (unless one is flagged explicitly),
// and the walk proceeds depth-first upstream from it over impute-flagged
// streams, seeding each process at most once. Zero start processes means
// there is nothing to impute; more than one is a configuration error.
func (e *Engine) impute(ctx context.Context, rc *network.RunContext) error {
	logger := ctxlog.FromContext(ctx)

	var startStreams []*network.Stream
	for _, s := range e.net.Streams() {
		if !s.Exogenous {
			continue
		}
		if !s.Impute {
			return fmt.Errorf("start %s cannot have its impute flag disabled", s)
		}
		startStreams = append(startStreams, s)
	}

	var starts []*network.Process
	seen := make(map[*network.Process]bool)
	for _, p := range e.net.EnabledProcesses() {
		if p.ImputeStart && !seen[p] {
			seen[p] = true
			starts = append(starts, p)
		}
	}
	if len(starts) == 0 {
		for _, s := range startStreams {
			if p := s.Source; p.Enabled && !seen[p] {
				seen[p] = true
				starts = append(starts, p)
			}
		}
	}

	if len(starts) == 0 {
		logger.Debug("No imputation start process; skipping seeding walk.")
		return nil
	}
	if len(starts) > 1 {
		names := make([]string, len(starts))
		for i, p := range starts {
			names[i] = p.Name
		}
		return fmt.Errorf("only one imputation start process is allowed, found %d: %s",
			len(starts), strings.Join(names, ", "))
	}

	start := starts[0]
	logger.Debug("Running imputation walk.", "start", start.Name)

	visited := make(map[*network.Process]bool)
	onPath := make(map[*network.Process]bool)

	// Depth-first upstream walk. Loop safety relies only on the impute
	// flags and the walk's own path, never on the cycle analysis: an
	// impute-flagged stream closing the current path is a fatal
	// configuration error rather than runaway recursion.
	var walk func(p *network.Process) error
	walk = func(p *network.Process) error {
		if visited[p] {
			return nil
		}
		visited[p] = true
		onPath[p] = true
		defer delete(onPath, p)

		if err := p.Seed(ctx, rc); err != nil {
			return err
		}

		for _, s := range p.Inputs {
			if !s.Enabled || !s.Impute {
				continue
			}
			// Disabled processes neither seed nor propagate the walk.
			up := s.Source
			if !up.Enabled {
				continue
			}
			if onPath[up] {
				return fmt.Errorf(
					"imputation failed due to a process loop through %s; set impute = false on a stream to break the cycle", up)
			}
			if err := walk(up); err != nil {
				return err
			}
		}
		return nil
	}

	return walk(start)
}
