package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flownet/internal/config"
)

func TestConverge_CeilingReturnsTypedError(t *testing.T) {
	t.Parallel()

	// Nothing ever converges, so the loop must stop at the ceiling after
	// exactly five full passes.
	var log []string
	factory := newFakeFactory(&log)
	net := buildNetwork(t, factory,
		[]*config.Process{proc("A"), proc("B")},
		[]*config.Stream{stream("s1", "A", "B"), stream("s2", "B", "A")},
	)

	err := New(net, Options{MaxIterations: 5}).Run(context.Background())

	var maxErr *MaxIterationsError
	require.True(t, errors.As(err, &maxErr), "expected MaxIterationsError, got %v", err)
	assert.Equal(t, 5, maxErr.Limit)

	counts := make(map[string]int)
	for _, name := range log {
		counts[name]++
	}
	assert.Equal(t, map[string]int{"A": 5, "B": 5}, counts)
}

func TestConverge_DeterministicAcrossRuns(t *testing.T) {
	t.Parallel()

	var log []string
	factory := newFakeFactory(&log)
	factory.convergeAt["B"] = 3
	net := buildNetwork(t, factory,
		[]*config.Process{proc("A"), proc("B")},
		[]*config.Stream{stream("s1", "A", "B"), stream("s2", "B", "A")},
	)
	eng := New(net, Options{})

	require.NoError(t, eng.Run(context.Background()))
	first := append([]string(nil), log...)

	log = log[:0]
	require.NoError(t, eng.Run(context.Background()))

	assert.Equal(t, first, log)
	assert.Equal(t, []string{"A", "B", "A", "B", "A", "B"}, first)
}

func TestConverge_StopsMidPass(t *testing.T) {
	t.Parallel()

	// B converges on the second pass; C must not run again afterwards.
	var log []string
	factory := newFakeFactory(&log)
	factory.convergeAt["B"] = 2
	net := buildNetwork(t, factory,
		[]*config.Process{proc("A"), proc("B"), proc("C")},
		[]*config.Stream{
			stream("s1", "A", "B"),
			stream("s2", "B", "C"),
			stream("s3", "C", "A"),
		},
	)

	require.NoError(t, New(net, Options{}).Run(context.Background()))

	assert.Equal(t, []string{"A", "B", "C", "A", "B"}, log)
}

func TestConverge_CycleStartOrdering(t *testing.T) {
	t.Parallel()

	// Declaration order is C2, C3, C1 but the flagged start C3 dictates a
	// successor-first walk: C3, C1, C2.
	var log []string
	factory := newFakeFactory(&log)
	factory.convergeAt["C2"] = 1
	net := buildNetwork(t, factory,
		[]*config.Process{
			proc("C2"),
			proc("C3", func(p *config.Process) { p.CycleStart = true }),
			proc("C1"),
		},
		[]*config.Stream{
			stream("s1", "C1", "C2"),
			stream("s2", "C2", "C3"),
			stream("s3", "C3", "C1"),
		},
	)

	require.NoError(t, New(net, Options{}).Run(context.Background()))

	assert.Equal(t, []string{"C3", "C1", "C2"}, log)
}

func TestConverge_UnreachableMembersFallBackToDeclarationOrder(t *testing.T) {
	t.Parallel()

	// Two disjoint cycles; the walk from the flagged start X covers only
	// {X, Y}, so {A, B} is appended in declaration order.
	var log []string
	factory := newFakeFactory(&log)
	factory.convergeAt["B"] = 1
	net := buildNetwork(t, factory,
		[]*config.Process{
			proc("A"),
			proc("B"),
			proc("X", func(p *config.Process) { p.CycleStart = true }),
			proc("Y"),
		},
		[]*config.Stream{
			stream("s1", "A", "B"),
			stream("s2", "B", "A"),
			stream("s3", "X", "Y"),
			stream("s4", "Y", "X"),
		},
	)

	require.NoError(t, New(net, Options{}).Run(context.Background()))

	assert.Equal(t, []string{"X", "Y", "A", "B"}, log)
}

func TestConverge_HandlerErrorAborts(t *testing.T) {
	t.Parallel()

	var log []string
	factory := newFakeFactory(&log)
	factory.failErrs["B"] = assert.AnError
	net := buildNetwork(t, factory,
		[]*config.Process{proc("A"), proc("B")},
		[]*config.Stream{stream("s1", "A", "B"), stream("s2", "B", "A")},
	)

	err := New(net, Options{}).Run(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConverged)
	assert.Contains(t, err.Error(), `process "B"`)
	assert.Equal(t, []string{"A", "B"}, log)
}
