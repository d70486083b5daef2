package network

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/flownet/internal/config"
	"github.com/vk/flownet/internal/ctxlog"
	"github.com/vk/flownet/internal/graph"
)

// RunnerFactory instantiates the handler behavior for a declared process.
// The registry implements it; accepting an interface here keeps the network
// model independent of handler registration and argument decoding.
type RunnerFactory interface {
	Instantiate(ctx context.Context, decl *config.Process) (Runner, error)
}

// Aggregator is a named group of processes reported together. A group must
// not straddle the active boundary.
type Aggregator struct {
	Name    string
	Members []*Process
}

// Network is a process network: the declared processes and streams, their
// directed multigraph, and the cycle set computed over the full graph at
// construction time. A Network instance is owned by one run at a time.
type Network struct {
	processes  []*Process
	procByName map[string]*Process

	streams []*Stream

	boundaries  map[string]*Process
	aggregators []*Aggregator

	graph         *graph.Graph
	cycles        [][]*Process
	maxIterations int
}

// New builds a Network from the config model: processes are created and
// their handlers instantiated, boundary tags checked, streams wired into a
// multigraph, and the cycle set computed. Structural errors (duplicate
// names, unknown endpoints or boundary tags, multiple cycle_start flags)
// fail immediately.
func New(ctx context.Context, model *config.Model, factory RunnerFactory) (*Network, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building network from config model.",
		"processes", len(model.Processes), "streams", len(model.Streams))

	n := &Network{
		procByName:    make(map[string]*Process),
		boundaries:    make(map[string]*Process),
		maxIterations: model.Settings.MaxIterations,
	}

	known := make(map[string]bool, len(model.Settings.Boundaries))
	for _, b := range model.Settings.Boundaries {
		known[b] = true
	}

	cycleStarts := 0
	for i, decl := range model.Processes {
		if _, exists := n.procByName[decl.Name]; exists {
			return nil, fmt.Errorf("duplicate process name %q", decl.Name)
		}

		runner, err := factory.Instantiate(ctx, decl)
		if err != nil {
			return nil, fmt.Errorf("instantiating process %q: %w", decl.Name, err)
		}

		p := &Process{
			Name:        decl.Name,
			Type:        decl.Type,
			Enabled:     decl.Enabled,
			Boundary:    decl.Boundary,
			RunAfter:    decl.RunAfter,
			CycleStart:  decl.CycleStart,
			ImputeStart: decl.ImputeStart,
			index:       i,
			runner:      runner,
		}

		if p.Boundary != "" {
			if !known[p.Boundary] {
				return nil, fmt.Errorf(
					"%s: boundary %q is not a known boundary name, must be one of %s",
					p, p.Boundary, strings.Join(model.Settings.Boundaries, ", "))
			}
			if other, dup := n.boundaries[p.Boundary]; dup {
				return nil, fmt.Errorf(
					"duplicate declaration of boundary %q in %s and %s", p.Boundary, p, other)
			}
			n.boundaries[p.Boundary] = p
		}

		if p.CycleStart {
			cycleStarts++
		}

		n.processes = append(n.processes, p)
		n.procByName[p.Name] = p
	}

	if cycleStarts > 1 {
		return nil, fmt.Errorf("only one process may set cycle_start, found %d", cycleStarts)
	}

	seenStreams := make(map[string]bool, len(model.Streams))
	for _, decl := range model.Streams {
		if seenStreams[decl.Name] {
			return nil, fmt.Errorf("duplicate stream name %q", decl.Name)
		}
		seenStreams[decl.Name] = true

		s := NewStream(decl.Name, decl.Source, decl.Dest, decl.Components)
		s.Enabled = decl.Enabled
		s.Impute = decl.Impute
		s.Exogenous = decl.Exogenous
		n.streams = append(n.streams, s)
	}

	for _, decl := range model.Aggregators {
		agg := &Aggregator{Name: decl.Name}
		for _, name := range decl.Members {
			p, ok := n.procByName[name]
			if !ok {
				return nil, fmt.Errorf("aggregator %q names unknown process %q", decl.Name, name)
			}
			agg.Members = append(agg.Members, p)
		}
		n.aggregators = append(n.aggregators, agg)
	}

	if err := n.Connect(ctx); err != nil {
		return nil, err
	}

	n.computeCycles(ctx)
	return n, nil
}

// Connect assembles the directed multigraph: every declared process becomes
// a vertex (enabled or not), every declared stream has its endpoints
// resolved by name and is wired into its processes' input/output lists.
// Previously wired lists are cleared first, so rebuilding after a topology
// change is idempotent. A stream naming a missing process is a lookup
// error; a stream touching a disabled process is only logged.
func (n *Network) Connect(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	g := graph.New()
	for _, p := range n.processes {
		p.ClearWiring()
		g.AddNode(p.Name)
	}

	for _, s := range n.streams {
		src, ok := n.procByName[s.SourceName]
		if !ok {
			return fmt.Errorf("%s: source process %q not found", s, s.SourceName)
		}
		dst, ok := n.procByName[s.DestName]
		if !ok {
			return fmt.Errorf("%s: destination process %q not found", s, s.DestName)
		}
		s.Source = src
		s.Dest = dst

		if !src.Enabled || !dst.Enabled {
			logger.Debug("Stream is connected to a disabled process.",
				"stream", s.Name, "source_enabled", src.Enabled, "dest_enabled", dst.Enabled)
		}

		src.Outputs = append(src.Outputs, s)
		dst.Inputs = append(dst.Inputs, s)

		if err := g.AddEdge(src.Name, dst.Name); err != nil {
			return fmt.Errorf("wiring %s: %w", s, err)
		}
	}

	n.graph = g
	logger.Debug("Network graph assembled.", "nodes", g.Len(), "streams", len(n.streams))
	return nil
}

// computeCycles enumerates and caches the simple cycles of the full graph.
// Run once per construction; disabled members are filtered out again at run
// time when the in-cycle partition is formed.
func (n *Network) computeCycles(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	idCycles := n.graph.SimpleCycles()
	n.cycles = make([][]*Process, 0, len(idCycles))
	for _, ids := range idCycles {
		cycle := make([]*Process, len(ids))
		for i, id := range ids {
			cycle[i] = n.procByName[id]
		}
		n.cycles = append(n.cycles, cycle)
	}
	if len(n.cycles) > 0 {
		logger.Debug("Cycle enumeration complete.", "cycle_count", len(n.cycles))
	}
}

// Processes returns all declared processes in declaration order.
func (n *Network) Processes() []*Process {
	return n.processes
}

// EnabledProcesses returns the enabled processes in declaration order.
func (n *Network) EnabledProcesses() []*Process {
	var out []*Process
	for _, p := range n.processes {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out
}

// Process looks up a process by name.
func (n *Network) Process(name string) (*Process, bool) {
	p, ok := n.procByName[name]
	return p, ok
}

// Streams returns the enabled streams in declaration order.
func (n *Network) Streams() []*Stream {
	var out []*Stream
	for _, s := range n.streams {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// AllStreams returns every declared stream in declaration order.
func (n *Network) AllStreams() []*Stream {
	return n.streams
}

// BoundaryProcesses returns the processes carrying a boundary tag, in
// declaration order.
func (n *Network) BoundaryProcesses() []*Process {
	var out []*Process
	for _, p := range n.processes {
		if p.Boundary != "" {
			out = append(out, p)
		}
	}
	return out
}

// BoundaryProcess returns the process declaring the given boundary tag.
func (n *Network) BoundaryProcess(tag string) (*Process, error) {
	p, ok := n.boundaries[tag]
	if !ok {
		return nil, fmt.Errorf("network does not declare boundary process %q", tag)
	}
	return p, nil
}

// Beyond returns the set of processes beyond the given boundary process:
// everything downstream of it, excluding anything that also feeds it.
func (n *Network) Beyond(p *Process) map[*Process]bool {
	descendants := n.graph.Descendants(p.Name)
	ancestors := n.graph.Ancestors(p.Name)

	beyond := make(map[*Process]bool)
	for name := range descendants {
		if name == p.Name || ancestors[name] {
			continue
		}
		beyond[n.procByName[name]] = true
	}
	return beyond
}

// Aggregators returns the declared aggregation groups.
func (n *Network) Aggregators() []*Aggregator {
	return n.aggregators
}

// Cycles returns the cached simple cycles of the full graph.
func (n *Network) Cycles() [][]*Process {
	return n.cycles
}

// Graph returns the wired multigraph.
func (n *Network) Graph() *graph.Graph {
	return n.graph
}

// MaxIterations returns the configured convergence loop ceiling.
func (n *Network) MaxIterations() int {
	return n.maxIterations
}

// ResetRun clears per-run transient state on every process and restores
// declared stream flows, leaving the network usable for a subsequent run.
func (n *Network) ResetRun() {
	for _, p := range n.processes {
		p.ResetRun()
	}
	for _, s := range n.streams {
		s.ResetFlows()
	}
}
