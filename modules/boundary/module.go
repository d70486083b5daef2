// Package boundary provides the built-in boundary handler: a pass-through
// process marking a semantic cut point in the network. It forwards the sum
// of its input flows unchanged to each of its output streams.
package boundary

import (
	"context"

	"github.com/vk/flownet/internal/network"
	"github.com/vk/flownet/internal/registry"
)

// Module registers the boundary handler.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterProcess("boundary", &registry.RegisteredProcess{
		NewInput: func() any { return new(struct{}) },
		New: func(name string, _ any) (network.Runner, error) {
			return &runner{name: name}, nil
		},
	})
}

type runner struct {
	name string
}

// Run sums the component flows arriving on enabled input streams and
// writes the merged flows onto every enabled output stream. With no input
// flow there is nothing to forward and the process short-circuits.
func (r *runner) Run(ctx context.Context, rc *network.RunContext) error {
	merged := make(map[string]float64)
	for _, s := range rc.Inputs(r.name) {
		for component, rate := range s.Flows() {
			merged[component] += rate
		}
	}
	if len(merged) == 0 {
		return nil
	}

	for _, s := range rc.Outputs(r.name) {
		for component, rate := range merged {
			s.SetFlow(component, rate)
		}
	}
	return nil
}
