// Package source provides the built-in source handler: a process with no
// computed inputs that writes configured component flow rates onto its
// output streams.
package source

import (
	"context"

	"github.com/vk/flownet/internal/network"
	"github.com/vk/flownet/internal/registry"
)

// Module registers the source handler.
type Module struct{}

// Input is the decoded arguments block for a source process.
type Input struct {
	// Rates maps component names to the flow rates emitted on every
	// enabled output stream.
	Rates map[string]float64 `hcl:"rates,optional"`
}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterProcess("source", &registry.RegisteredProcess{
		NewInput: func() any { return new(Input) },
		New: func(name string, input any) (network.Runner, error) {
			in := input.(*Input)
			return &runner{name: name, rates: in.Rates}, nil
		},
	})
}

type runner struct {
	name  string
	rates map[string]float64
}

// Run emits the configured rates on every enabled output stream.
func (r *runner) Run(ctx context.Context, rc *network.RunContext) error {
	return r.emit(rc)
}

// Seed makes a source usable as an imputation start: the seeding walk gets
// the same rates the main pass would produce.
func (r *runner) Seed(ctx context.Context, rc *network.RunContext) error {
	return r.emit(rc)
}

func (r *runner) emit(rc *network.RunContext) error {
	for _, s := range rc.Outputs(r.name) {
		for component, rate := range r.rates {
			s.SetFlow(component, rate)
		}
	}
	return nil
}
