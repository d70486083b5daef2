package network

import (
	"context"
	"fmt"
)

// Runner is the behavior attached to a process. Concrete handlers implement
// it; the engine never inspects the concrete type. Run must be safely
// re-invokable within the same convergence loop.
type Runner interface {
	Run(ctx context.Context, rc *RunContext) error
}

// Seeder is an optional capability invoked only during the imputation walk,
// before the main scheduling pass.
type Seeder interface {
	Seed(ctx context.Context, rc *RunContext) error
}

// Validator is an optional capability letting a handler check its own
// attribute-level logical constraints at validation time.
type Validator interface {
	Validate() error
}

// Resetter is an optional capability for handlers that keep per-run
// transient state, cleared at the start of every run.
type Resetter interface {
	ResetRun()
}

// Process is a schedulable unit in the network. Input and output stream
// lists are owned by the graph build and rebuilt on every connect; InCycle
// is owned by the engine during a run.
type Process struct {
	Name        string
	Type        string
	Enabled     bool
	Boundary    string
	RunAfter    bool
	CycleStart  bool
	ImputeStart bool

	// InCycle is set by the engine for processes in the cyclic partition.
	InCycle bool

	Inputs  []*Stream
	Outputs []*Stream

	index  int
	runner Runner
}

// Index returns the process's declaration order within the network.
func (p *Process) Index() int {
	return p.index
}

// Runner returns the handler behavior attached to this process.
func (p *Process) Runner() Runner {
	return p.runner
}

// ClearWiring drops the wired stream lists before a graph rebuild.
func (p *Process) ClearWiring() {
	p.Inputs = nil
	p.Outputs = nil
}

// Predecessors returns the distinct enabled source processes of this
// process's enabled input streams, in wiring order. Disabled processes stay
// wired but never run, so traversals must not treat them as dependencies.
func (p *Process) Predecessors() []*Process {
	return distinctEnds(p.Inputs, func(s *Stream) *Process { return s.Source })
}

// Successors returns the distinct enabled destination processes of this
// process's enabled output streams, in wiring order.
func (p *Process) Successors() []*Process {
	return distinctEnds(p.Outputs, func(s *Stream) *Process { return s.Dest })
}

// ResetRun clears per-run transient state, including any kept by the
// handler.
func (p *Process) ResetRun() {
	p.InCycle = false
	if r, ok := p.runner.(Resetter); ok {
		r.ResetRun()
	}
}

// RunIfEnabled invokes the handler's Run if the process is enabled.
func (p *Process) RunIfEnabled(ctx context.Context, rc *RunContext) error {
	if !p.Enabled {
		return nil
	}
	if err := p.runner.Run(ctx, rc); err != nil {
		return fmt.Errorf("process %q: %w", p.Name, err)
	}
	return nil
}

// Seed invokes the handler's seeding operation if it has one.
func (p *Process) Seed(ctx context.Context, rc *RunContext) error {
	s, ok := p.runner.(Seeder)
	if !ok {
		return nil
	}
	if err := s.Seed(ctx, rc); err != nil {
		return fmt.Errorf("seeding process %q: %w", p.Name, err)
	}
	return nil
}

func (p *Process) String() string {
	return fmt.Sprintf("process %s.%s", p.Type, p.Name)
}

// distinctEnds collects one end of each enabled stream, skipping disabled
// end processes, deduplicated in first-occurrence order.
func distinctEnds(streams []*Stream, end func(*Stream) *Process) []*Process {
	var out []*Process
	seen := make(map[*Process]bool, len(streams))
	for _, s := range streams {
		if !s.Enabled {
			continue
		}
		p := end(s)
		if p == nil || !p.Enabled || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
