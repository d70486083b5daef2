// Package registry maps process handler types to the Go code implementing
// them. Modules register their handlers at startup; the network build asks
// the registry to instantiate a handler for each declared process, decoding
// the process's HCL arguments into the handler's input struct.
package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/flownet/internal/config"
	"github.com/vk/flownet/internal/network"
)

// Module is the interface that all handler modules implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// RegisteredProcess holds the compiled Go parts of a process handler.
type RegisteredProcess struct {
	// NewInput returns a pointer to a fresh, gohcl-taggable input struct
	// that the process's arguments block is decoded into.
	NewInput func() any
	// New builds the runner for one declared process from its decoded input.
	New func(name string, input any) (network.Runner, error)
}

// Registry holds all registered process handlers for a single application
// instance.
type Registry struct {
	handlers map[string]*RegisteredProcess
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{handlers: make(map[string]*RegisteredProcess)}
}

// RegisterProcess registers a handler for a process type.
func (r *Registry) RegisterProcess(name string, handler *RegisteredProcess) {
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("process handler with name '%s' already registered", name))
	}
	slog.Debug("Registering process handler.", "name", name)
	r.handlers[name] = handler
}

// Handler returns the registered handler for a process type.
func (r *Registry) Handler(name string) (*RegisteredProcess, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Instantiate implements network.RunnerFactory: it decodes the declared
// process's arguments into the handler's input struct and builds the
// runner.
func (r *Registry) Instantiate(ctx context.Context, decl *config.Process) (network.Runner, error) {
	h, ok := r.handlers[decl.Type]
	if !ok {
		return nil, fmt.Errorf("unknown process type %q", decl.Type)
	}

	input := h.NewInput()
	if diags := gohcl.DecodeBody(decl.Arguments, nil, input); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode arguments for %s.%s: %s", decl.Type, decl.Name, diags.Error())
	}

	return h.New(decl.Name, input)
}
