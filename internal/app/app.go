// Package app wires the application together: it builds the logger, loads
// the network definition through a format-specific loader, registers the
// process handler modules, and drives the build/validate/run sequence.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/flownet/internal/config"
	"github.com/vk/flownet/internal/ctxlog"
	"github.com/vk/flownet/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	model    *config.Model
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and registry, or an
// error if the network definition cannot be loaded.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.NetworkPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load network definition: %w", err)
	}
	logger.Debug("Network definition loaded and translated into unified model.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All process handler modules registered.", "count", len(modules))

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		model:    model,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
