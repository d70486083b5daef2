package network

import "fmt"

// Stream is a directed flow of material or energy between two processes.
// Source and Dest are resolved by the graph build. Flow values are mutated
// in place by process handlers and read by downstream processes in the same
// or a later iteration; a handler that needs the value from before the
// current iteration must snapshot it itself.
type Stream struct {
	Name       string
	SourceName string
	DestName   string

	Source *Process
	Dest   *Process

	Enabled bool
	// Impute marks whether this stream participates in the seeding walk.
	// Setting it to false is the way to break a loop during imputation.
	Impute bool
	// Exogenous marks a stream whose value is externally supplied rather
	// than computed.
	Exogenous bool

	initial map[string]float64
	flows   map[string]float64
}

// NewStream creates a stream with the given initial component flow rates.
func NewStream(name, source, dest string, components map[string]float64) *Stream {
	s := &Stream{
		Name:       name,
		SourceName: source,
		DestName:   dest,
		Enabled:    true,
		Impute:     true,
		initial:    components,
	}
	s.ResetFlows()
	return s
}

// Flow returns the current flow rate of a single component.
func (s *Stream) Flow(component string) float64 {
	return s.flows[component]
}

// SetFlow sets the flow rate of a single component.
func (s *Stream) SetFlow(component string, rate float64) {
	if s.flows == nil {
		s.flows = make(map[string]float64)
	}
	s.flows[component] = rate
}

// Flows returns a snapshot copy of all component flow rates.
func (s *Stream) Flows() map[string]float64 {
	out := make(map[string]float64, len(s.flows))
	for c, r := range s.flows {
		out[c] = r
	}
	return out
}

// TotalFlow returns the sum of all component flow rates.
func (s *Stream) TotalFlow() float64 {
	var total float64
	for _, r := range s.flows {
		total += r
	}
	return total
}

// ResetFlows restores the flow rates declared in the network definition.
func (s *Stream) ResetFlows() {
	s.flows = make(map[string]float64, len(s.initial))
	for c, r := range s.initial {
		s.flows[c] = r
	}
}

func (s *Stream) String() string {
	return fmt.Sprintf("stream %q (%s -> %s)", s.Name, s.SourceName, s.DestName)
}
