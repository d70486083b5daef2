// Package mixer provides the built-in mixer handler: it merges the
// component flows of all enabled input streams onto its single enabled
// output stream.
package mixer

import (
	"context"
	"fmt"

	"github.com/vk/flownet/internal/network"
	"github.com/vk/flownet/internal/registry"
)

// Module registers the mixer handler.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterProcess("mixer", &registry.RegisteredProcess{
		NewInput: func() any { return new(struct{}) },
		New: func(name string, _ any) (network.Runner, error) {
			return &runner{name: name}, nil
		},
	})
}

type runner struct {
	name string
}

// Run merges input component flows onto the first enabled output stream.
// Having no input flow yet is the mixer's own signal to short-circuit; it
// may be re-run later in a convergence pass once upstream values exist.
func (r *runner) Run(ctx context.Context, rc *network.RunContext) error {
	outputs := rc.Outputs(r.name)
	if len(outputs) == 0 {
		return fmt.Errorf("mixer %q has no enabled output stream", r.name)
	}

	merged := make(map[string]float64)
	for _, s := range rc.Inputs(r.name) {
		for component, rate := range s.Flows() {
			merged[component] += rate
		}
	}
	if len(merged) == 0 {
		return nil
	}

	out := outputs[0]
	for component, rate := range merged {
		out.SetFlow(component, rate)
	}
	return nil
}
