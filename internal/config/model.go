package config

import "github.com/hashicorp/hcl/v2"

// Model is the unified, format-agnostic representation of a network
// definition: settings, processes, streams, and aggregation groups.
type Model struct {
	Settings    *Settings
	Processes   []*Process
	Streams     []*Stream
	Aggregators []*Aggregator
}

// Settings holds network-wide parameters.
type Settings struct {
	// Boundaries is the set of recognized boundary tag names. A process
	// declaring a tag outside this list fails the build.
	Boundaries []string
	// MaxIterations is the convergence loop ceiling. Must be positive.
	MaxIterations int
}

// Process is the format-agnostic representation of a `process` block.
type Process struct {
	Type        string
	Name        string
	Enabled     bool
	Boundary    string
	RunAfter    bool
	CycleStart  bool
	ImputeStart bool
	// Arguments holds the undecoded handler argument body, decoded into the
	// handler's input struct when the process is instantiated.
	Arguments hcl.Body
}

// Stream is the format-agnostic representation of a `stream` block.
type Stream struct {
	Name      string
	Source    string
	Dest      string
	Enabled   bool
	Impute    bool
	Exogenous bool
	// Components maps component names to initial flow rates.
	Components map[string]float64
}

// Aggregator is the format-agnostic representation of an `aggregator` block.
type Aggregator struct {
	Name    string
	Members []string
}
