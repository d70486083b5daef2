package app

import (
	"context"
	"fmt"

	"github.com/vk/flownet/internal/ctxlog"
	"github.com/vk/flownet/internal/engine"
	"github.com/vk/flownet/internal/network"
)

// Run executes the main application logic: build the network from the
// loaded model, validate it against the active boundary, and execute one
// full scheduling pass.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	net, err := network.New(ctx, a.model, a.registry)
	if err != nil {
		return fmt.Errorf("failed to build network: %w", err)
	}
	a.logger.Debug("Network built.",
		"processes", len(net.Processes()), "streams", len(net.AllStreams()))

	if err := net.Validate(ctx, appConfig.Boundary); err != nil {
		return err
	}
	a.logger.Info("Network validated.", "boundary", appConfig.Boundary)

	if appConfig.ValidateOnly {
		a.logger.Info("Validate-only mode, skipping execution.")
		return nil
	}

	eng := engine.New(net, engine.Options{
		Boundary:      appConfig.Boundary,
		MaxIterations: appConfig.MaxIterations,
	})
	if err := eng.Run(ctx); err != nil {
		return fmt.Errorf("network run failed: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
