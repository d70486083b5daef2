// Package schema declares the HCL block structures for network definition
// files. The loader decodes files into these structures and translates them
// into the format-agnostic config model.
package schema

import "github.com/hashicorp/hcl/v2"

// ProcessArgs represents the content of the 'arguments' block within a
// process. The body is decoded against the handler's input struct when the
// process is instantiated.
type ProcessArgs struct {
	Body hcl.Body `hcl:",remain"`
}

// Process represents a `process` block: a schedulable unit of the given
// handler type.
type Process struct {
	Type        string       `hcl:"handler_type,label"`
	Name        string       `hcl:"name,label"`
	Enabled     *bool        `hcl:"enabled,optional"`
	Boundary    string       `hcl:"boundary,optional"`
	RunAfter    bool         `hcl:"run_after,optional"`
	CycleStart  bool         `hcl:"cycle_start,optional"`
	ImputeStart bool         `hcl:"impute_start,optional"`
	Arguments   *ProcessArgs `hcl:"arguments,block"`
}

// Stream represents a `stream` block: a directed flow between two processes.
type Stream struct {
	Name       string             `hcl:"name,label"`
	Source     string             `hcl:"source"`
	Dest       string             `hcl:"dest"`
	Enabled    *bool              `hcl:"enabled,optional"`
	Impute     *bool              `hcl:"impute,optional"`
	Exogenous  bool               `hcl:"exogenous,optional"`
	Components map[string]float64 `hcl:"components,optional"`
}

// Aggregator represents an `aggregator` block: a named group of processes
// reported together. Groups must not straddle the active boundary.
type Aggregator struct {
	Name    string   `hcl:"name,label"`
	Members []string `hcl:"members"`
}

// Settings represents the `settings` block with network-wide parameters.
type Settings struct {
	Boundaries    []string `hcl:"boundaries,optional"`
	MaxIterations *int     `hcl:"max_iterations,optional"`
}

// NetworkConfig represents the top-level structure of a network definition
// file.
type NetworkConfig struct {
	Settings    *Settings     `hcl:"settings,block"`
	Processes   []*Process    `hcl:"process,block"`
	Streams     []*Stream     `hcl:"stream,block"`
	Aggregators []*Aggregator `hcl:"aggregator,block"`
	Body        hcl.Body      `hcl:",remain"`
}
