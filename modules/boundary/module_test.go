package boundary

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flownet/internal/config"
	"github.com/vk/flownet/internal/network"
	"github.com/vk/flownet/internal/registry"
)

type noopRunner struct{}

func (noopRunner) Run(ctx context.Context, rc *network.RunContext) error { return nil }

func buildNet(t *testing.T, streams []*config.Stream, procs ...*config.Process) *network.Network {
	t.Helper()
	reg := registry.New()
	Module{}.Register(reg)
	reg.RegisterProcess("noop", &registry.RegisteredProcess{
		NewInput: func() any { return new(struct{}) },
		New: func(name string, _ any) (network.Runner, error) {
			return noopRunner{}, nil
		},
	})

	model := &config.Model{
		Settings:  &config.Settings{Boundaries: []string{"Production"}, MaxIterations: 10},
		Processes: procs,
		Streams:   streams,
	}
	net, err := network.New(context.Background(), model, reg)
	require.NoError(t, err)
	return net
}

func proc(typ, name string) *config.Process {
	return &config.Process{Type: typ, Name: name, Enabled: true, Arguments: hcl.EmptyBody()}
}

func streamByName(t *testing.T, net *network.Network, name string) *network.Stream {
	t.Helper()
	for _, s := range net.AllStreams() {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("stream %q not found", name)
	return nil
}

func TestRun_ForwardsMergedFlowsToEveryOutput(t *testing.T) {
	t.Parallel()

	net := buildNet(t,
		[]*config.Stream{
			{Name: "in1", Source: "a", Dest: "bnd", Enabled: true, Impute: true,
				Components: map[string]float64{"oil": 10}},
			{Name: "in2", Source: "b", Dest: "bnd", Enabled: true, Impute: true,
				Components: map[string]float64{"oil": 5, "gas": 2}},
			{Name: "out1", Source: "bnd", Dest: "d1", Enabled: true, Impute: true},
			{Name: "out2", Source: "bnd", Dest: "d2", Enabled: true, Impute: true},
		},
		proc("noop", "a"), proc("noop", "b"), proc("boundary", "bnd"),
		proc("noop", "d1"), proc("noop", "d2"),
	)

	p, ok := net.Process("bnd")
	require.True(t, ok)
	require.NoError(t, p.Runner().Run(context.Background(), network.NewRunContext(net, "")))

	want := map[string]float64{"oil": 15, "gas": 2}
	assert.Equal(t, want, streamByName(t, net, "out1").Flows())
	assert.Equal(t, want, streamByName(t, net, "out2").Flows())
}

func TestRun_NoInputFlowShortCircuits(t *testing.T) {
	t.Parallel()

	net := buildNet(t,
		[]*config.Stream{
			{Name: "in1", Source: "a", Dest: "bnd", Enabled: true, Impute: true},
			{Name: "out1", Source: "bnd", Dest: "d", Enabled: true, Impute: true},
		},
		proc("noop", "a"), proc("boundary", "bnd"), proc("noop", "d"),
	)

	p, _ := net.Process("bnd")
	require.NoError(t, p.Runner().Run(context.Background(), network.NewRunContext(net, "")))

	assert.Empty(t, streamByName(t, net, "out1").Flows())
}
