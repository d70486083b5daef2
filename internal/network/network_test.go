package network

import (
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flownet/internal/config"
)

// stubRunner is a minimal handler for tests; validateErr is surfaced
// through the Validator capability when set.
type stubRunner struct {
	validateErr error
}

func (s *stubRunner) Run(ctx context.Context, rc *RunContext) error { return nil }

func (s *stubRunner) Validate() error { return s.validateErr }

// stubFactory builds stubRunners, keyed by process name for per-process
// validation errors.
type stubFactory struct {
	validateErrs map[string]error
}

func (f stubFactory) Instantiate(ctx context.Context, decl *config.Process) (Runner, error) {
	return &stubRunner{validateErr: f.validateErrs[decl.Name]}, nil
}

func testSettings() *config.Settings {
	return &config.Settings{
		Boundaries:    []string{"Production", "Transportation"},
		MaxIterations: 10,
	}
}

func proc(name string, mutate ...func(*config.Process)) *config.Process {
	p := &config.Process{
		Type:      "stub",
		Name:      name,
		Enabled:   true,
		Arguments: hcl.EmptyBody(),
	}
	for _, m := range mutate {
		m(p)
	}
	return p
}

func stream(name, src, dst string, mutate ...func(*config.Stream)) *config.Stream {
	s := &config.Stream{
		Name:    name,
		Source:  src,
		Dest:    dst,
		Enabled: true,
		Impute:  true,
	}
	for _, m := range mutate {
		m(s)
	}
	return s
}

func buildNetwork(t *testing.T, model *config.Model) *Network {
	t.Helper()
	if model.Settings == nil {
		model.Settings = testSettings()
	}
	net, err := New(context.Background(), model, stubFactory{})
	require.NoError(t, err)
	return net
}

func TestNew_WiresStreamEndpoints(t *testing.T) {
	t.Parallel()

	net := buildNetwork(t, &config.Model{
		Processes: []*config.Process{proc("A"), proc("B")},
		Streams:   []*config.Stream{stream("s1", "A", "B")},
	})

	a, ok := net.Process("A")
	require.True(t, ok)
	b, ok := net.Process("B")
	require.True(t, ok)

	require.Len(t, a.Outputs, 1)
	require.Len(t, b.Inputs, 1)
	assert.Same(t, a, a.Outputs[0].Source)
	assert.Same(t, b, a.Outputs[0].Dest)
	assert.Equal(t, []*Process{b}, a.Successors())
	assert.Equal(t, []*Process{a}, b.Predecessors())
}

func TestNew_UnknownEndpointFails(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), &config.Model{
		Settings:  testSettings(),
		Processes: []*config.Process{proc("A")},
		Streams:   []*config.Stream{stream("s1", "A", "missing")},
	}, stubFactory{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `destination process "missing" not found`)
}

func TestNew_DuplicateBoundaryTagFails(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), &config.Model{
		Settings: testSettings(),
		Processes: []*config.Process{
			proc("A", func(p *config.Process) { p.Boundary = "Production" }),
			proc("B", func(p *config.Process) { p.Boundary = "Production" }),
		},
	}, stubFactory{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate declaration of boundary "Production"`)
}

func TestNew_UnknownBoundaryTagFails(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), &config.Model{
		Settings: testSettings(),
		Processes: []*config.Process{
			proc("A", func(p *config.Process) { p.Boundary = "Atmosphere" }),
		},
	}, stubFactory{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a known boundary name")
}

func TestNew_MultipleCycleStartsFail(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), &config.Model{
		Settings: testSettings(),
		Processes: []*config.Process{
			proc("A", func(p *config.Process) { p.CycleStart = true }),
			proc("B", func(p *config.Process) { p.CycleStart = true }),
		},
	}, stubFactory{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "only one process may set cycle_start")
}

func TestNew_DuplicateProcessNameFails(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), &config.Model{
		Settings:  testSettings(),
		Processes: []*config.Process{proc("A"), proc("A")},
	}, stubFactory{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate process name "A"`)
}

func TestConnect_RebuildIsIdempotent(t *testing.T) {
	t.Parallel()

	net := buildNetwork(t, &config.Model{
		Processes: []*config.Process{proc("A"), proc("B")},
		Streams:   []*config.Stream{stream("s1", "A", "B")},
	})

	require.NoError(t, net.Connect(context.Background()))
	require.NoError(t, net.Connect(context.Background()))

	a, _ := net.Process("A")
	b, _ := net.Process("B")
	assert.Len(t, a.Outputs, 1)
	assert.Len(t, b.Inputs, 1)
}

func TestNew_DisabledEndpointIsNotAnError(t *testing.T) {
	t.Parallel()

	net := buildNetwork(t, &config.Model{
		Processes: []*config.Process{
			proc("A", func(p *config.Process) { p.Enabled = false }),
			proc("B"),
		},
		Streams: []*config.Stream{stream("s1", "A", "B")},
	})

	b, _ := net.Process("B")
	// The disabled source is wired but filtered from traversal accessors.
	assert.Len(t, b.Inputs, 1)
	assert.Empty(t, b.Predecessors())
}

func TestSuccessors_DisabledDestFiltered(t *testing.T) {
	t.Parallel()

	net := buildNetwork(t, &config.Model{
		Processes: []*config.Process{
			proc("A"),
			proc("B", func(p *config.Process) { p.Enabled = false }),
			proc("C"),
		},
		Streams: []*config.Stream{
			stream("s1", "A", "B"),
			stream("s2", "A", "C"),
		},
	})

	a, _ := net.Process("A")
	require.Len(t, a.Outputs, 2)

	c, _ := net.Process("C")
	assert.Equal(t, []*Process{c}, a.Successors())
}

func TestCycles_ComputedOverFullGraph(t *testing.T) {
	t.Parallel()

	net := buildNetwork(t, &config.Model{
		Processes: []*config.Process{proc("A"), proc("B"), proc("C")},
		Streams: []*config.Stream{
			stream("s1", "A", "B"),
			stream("s2", "B", "A"),
			stream("s3", "B", "C"),
		},
	})

	cycles := net.Cycles()
	require.Len(t, cycles, 1)
	require.Len(t, cycles[0], 2)
	assert.Equal(t, "A", cycles[0][0].Name)
	assert.Equal(t, "B", cycles[0][1].Name)
}

func TestBeyond_ExcludesFeeders(t *testing.T) {
	t.Parallel()

	// A feeds the boundary P; C and D lie beyond it.
	net := buildNetwork(t, &config.Model{
		Processes: []*config.Process{
			proc("A"),
			proc("P", func(p *config.Process) { p.Boundary = "Production" }),
			proc("C"),
			proc("D"),
		},
		Streams: []*config.Stream{
			stream("s1", "A", "P"),
			stream("s2", "P", "C"),
			stream("s3", "C", "D"),
		},
	})

	p, err := net.BoundaryProcess("Production")
	require.NoError(t, err)

	beyond := net.Beyond(p)
	names := make(map[string]bool, len(beyond))
	for bp := range beyond {
		names[bp.Name] = true
	}
	assert.Equal(t, map[string]bool{"C": true, "D": true}, names)
}

func TestBoundaryProcess_UnknownTag(t *testing.T) {
	t.Parallel()

	net := buildNetwork(t, &config.Model{Processes: []*config.Process{proc("A")}})

	_, err := net.BoundaryProcess("Production")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `does not declare boundary process "Production"`)
}

func TestResetRun_RestoresDeclaredFlows(t *testing.T) {
	t.Parallel()

	net := buildNetwork(t, &config.Model{
		Processes: []*config.Process{proc("A"), proc("B")},
		Streams: []*config.Stream{
			stream("s1", "A", "B", func(s *config.Stream) {
				s.Components = map[string]float64{"oil": 10}
			}),
		},
	})

	s := net.AllStreams()[0]
	s.SetFlow("oil", 99)
	s.SetFlow("gas", 5)

	a, _ := net.Process("A")
	a.InCycle = true

	net.ResetRun()

	assert.Equal(t, 10.0, s.Flow("oil"))
	assert.Equal(t, 0.0, s.Flow("gas"))
	assert.False(t, a.InCycle)
}

func TestValidationErrorType(t *testing.T) {
	t.Parallel()

	err := error(&ValidationError{Problems: []string{"one", "two"}})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Error(), "one")
	assert.Contains(t, vErr.Error(), "two")
}
