package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/flownet/internal/config"
	"github.com/vk/flownet/internal/ctxlog"
	"github.com/vk/flownet/internal/schema"
)

// Defaults applied when a network file omits the settings block.
const defaultMaxIterations = 10

var defaultBoundaries = []string{"Production", "Transportation", "Distribution"}

// translate merges the decoded file schemas into a single format-agnostic
// model. Only one settings block is permitted across all files.
func translate(ctx context.Context, configs []*schema.NetworkConfig) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	model := &config.Model{
		Settings: &config.Settings{
			Boundaries:    defaultBoundaries,
			MaxIterations: defaultMaxIterations,
		},
	}

	seenSettings := false
	for _, cfg := range configs {
		if cfg.Settings != nil {
			if seenSettings {
				return nil, fmt.Errorf("duplicate settings block found; only one is allowed")
			}
			seenSettings = true
			if len(cfg.Settings.Boundaries) > 0 {
				model.Settings.Boundaries = cfg.Settings.Boundaries
			}
			if cfg.Settings.MaxIterations != nil {
				model.Settings.MaxIterations = *cfg.Settings.MaxIterations
			}
		}
		for _, p := range cfg.Processes {
			model.Processes = append(model.Processes, translateProcess(p))
		}
		for _, s := range cfg.Streams {
			model.Streams = append(model.Streams, translateStream(s))
		}
		for _, a := range cfg.Aggregators {
			model.Aggregators = append(model.Aggregators, &config.Aggregator{
				Name:    a.Name,
				Members: a.Members,
			})
		}
	}

	if model.Settings.MaxIterations <= 0 {
		return nil, fmt.Errorf("max_iterations must be positive, got %d", model.Settings.MaxIterations)
	}

	logger.Debug("Network model translated.",
		"processes", len(model.Processes),
		"streams", len(model.Streams),
		"aggregators", len(model.Aggregators))
	return model, nil
}

// translateProcess converts the HCL-specific process schema into the
// agnostic model. Enabled defaults to true.
func translateProcess(p *schema.Process) *config.Process {
	args := hcl.Body(hcl.EmptyBody())
	if p.Arguments != nil {
		args = p.Arguments.Body
	}
	return &config.Process{
		Type:        p.Type,
		Name:        p.Name,
		Enabled:     boolOr(p.Enabled, true),
		Boundary:    p.Boundary,
		RunAfter:    p.RunAfter,
		CycleStart:  p.CycleStart,
		ImputeStart: p.ImputeStart,
		Arguments:   args,
	}
}

// translateStream converts the HCL-specific stream schema into the agnostic
// model. Enabled and impute both default to true; impute is switched off
// explicitly to break loops during the seeding walk.
func translateStream(s *schema.Stream) *config.Stream {
	return &config.Stream{
		Name:       s.Name,
		Source:     s.Source,
		Dest:       s.Dest,
		Enabled:    boolOr(s.Enabled, true),
		Impute:     boolOr(s.Impute, true),
		Exogenous:  s.Exogenous,
		Components: s.Components,
	}
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
