// Package sink provides the built-in sink handler: a terminal consumer that
// records the total flow it receives in the run context.
package sink

import (
	"context"

	"github.com/vk/flownet/internal/network"
	"github.com/vk/flownet/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module registers the sink handler.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterProcess("sink", &registry.RegisteredProcess{
		NewInput: func() any { return new(struct{}) },
		New: func(name string, _ any) (network.Runner, error) {
			return &runner{name: name}, nil
		},
	})
}

type runner struct {
	name string
}

// Run sums the enabled input flows and records the total under
// "sink.<name>" for reporting layers.
func (r *runner) Run(ctx context.Context, rc *network.RunContext) error {
	var total float64
	for _, s := range rc.Inputs(r.name) {
		total += s.TotalFlow()
	}
	rc.SetValue("sink."+r.name, cty.NumberFloatVal(total))
	return nil
}
