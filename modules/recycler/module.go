// Package recycler provides the built-in recycler handler: it returns a
// configured fraction of its input flow upstream, making it the natural
// convergence probe inside a cyclic subsystem. When its recycled total
// stops changing between passes it signals convergence.
package recycler

import (
	"context"
	"fmt"
	"math"

	"github.com/vk/flownet/internal/engine"
	"github.com/vk/flownet/internal/network"
	"github.com/vk/flownet/internal/registry"
)

const defaultTolerance = 1e-3

// Module registers the recycler handler.
type Module struct{}

// Input is the decoded arguments block for a recycler process.
type Input struct {
	// Fraction of the total input flow returned on the recycle stream.
	Fraction float64 `hcl:"fraction"`
	// Tolerance is the relative change below which the recycler declares
	// convergence.
	Tolerance float64 `hcl:"tolerance,optional"`
	// Purge marks that the remainder leaves the loop; a purging recycler
	// must retain some flow, so fraction cannot be zero.
	Purge bool `hcl:"purge,optional"`
}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterProcess("recycler", &registry.RegisteredProcess{
		NewInput: func() any { return new(Input) },
		New: func(name string, input any) (network.Runner, error) {
			in := input.(*Input)
			if in.Fraction < 0 || in.Fraction > 1 {
				return nil, fmt.Errorf("fraction must be within [0, 1], got %g", in.Fraction)
			}
			tol := in.Tolerance
			if tol <= 0 {
				tol = defaultTolerance
			}
			return &runner{name: name, fraction: in.Fraction, tolerance: tol, purge: in.Purge}, nil
		},
	})
}

type runner struct {
	name      string
	fraction  float64
	tolerance float64
	purge     bool

	prev    float64
	hasPrev bool
}

// Run recycles a fraction of the summed input flow onto every enabled
// output stream, then compares the recycled total against the previous
// pass. A relative change within tolerance raises the convergence signal.
func (r *runner) Run(ctx context.Context, rc *network.RunContext) error {
	var total float64
	for _, s := range rc.Inputs(r.name) {
		total += s.TotalFlow()
	}
	recycled := r.fraction * total

	for _, s := range rc.Outputs(r.name) {
		s.SetFlow("recycle", recycled)
	}

	prev, hasPrev := r.prev, r.hasPrev
	r.prev, r.hasPrev = recycled, true

	if hasPrev {
		scale := math.Max(math.Abs(prev), 1)
		if math.Abs(recycled-prev) <= r.tolerance*scale {
			return engine.ErrConverged
		}
	}
	return nil
}

// Validate rejects the logical contradiction of a purging recycler that
// retains nothing.
func (r *runner) Validate() error {
	if r.purge && r.fraction == 0 {
		return fmt.Errorf("fraction cannot be zero when purge is enabled")
	}
	return nil
}

// ResetRun clears the previous-pass snapshot at the start of every run.
func (r *runner) ResetRun() {
	r.prev = 0
	r.hasPrev = false
}
