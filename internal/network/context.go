package network

import "github.com/zclconf/go-cty/cty"

// RunContext is the per-run state passed to every process invocation. It
// replaces any cross-run shared registry: iteration counters and keyed
// shared values live here and are reset at the start of each run. A single
// run is strictly single-threaded, so no locking is needed.
type RunContext struct {
	// Boundary is the active boundary tag for this run, if any.
	Boundary string
	// Iteration is the current convergence loop pass, starting at 1. It is
	// zero outside the cyclic partition.
	Iteration int

	net    *Network
	values map[string]cty.Value
}

// NewRunContext creates a fresh run context for one run of the given
// network.
func NewRunContext(net *Network, boundary string) *RunContext {
	return &RunContext{
		Boundary: boundary,
		net:      net,
		values:   make(map[string]cty.Value),
	}
}

// Inputs returns the enabled input streams wired to the named process.
func (rc *RunContext) Inputs(name string) []*Stream {
	return enabledStreams(rc.net.procByName[name], func(p *Process) []*Stream { return p.Inputs })
}

// Outputs returns the enabled output streams wired to the named process.
func (rc *RunContext) Outputs(name string) []*Stream {
	return enabledStreams(rc.net.procByName[name], func(p *Process) []*Stream { return p.Outputs })
}

// SetValue stores a keyed value shared across process invocations within
// this run.
func (rc *RunContext) SetValue(key string, v cty.Value) {
	rc.values[key] = v
}

// Value returns a previously stored shared value.
func (rc *RunContext) Value(key string) (cty.Value, bool) {
	v, ok := rc.values[key]
	return v, ok
}

func enabledStreams(p *Process, side func(*Process) []*Stream) []*Stream {
	if p == nil {
		return nil
	}
	var out []*Stream
	for _, s := range side(p) {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}
