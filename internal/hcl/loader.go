// Package hcl implements the HCL-backed network definition loader. It parses
// .hcl files, decodes them against the schema structures, and translates the
// result into the format-agnostic config model.
package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/flownet/internal/config"
	"github.com/vk/flownet/internal/ctxlog"
	"github.com/vk/flownet/internal/schema"
)

// Loader loads network definitions from HCL files.
type Loader struct{}

// NewLoader returns a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load implements config.Loader. Each path may be a single .hcl file or a
// directory scanned (non-recursively) for .hcl files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat config path %s: %w", path, err)
		}
		if info.IsDir() {
			found, err := filepath.Glob(filepath.Join(path, "*.hcl"))
			if err != nil {
				return nil, fmt.Errorf("failed to scan directory %s: %w", path, err)
			}
			sort.Strings(found)
			files = append(files, found...)
		} else {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}

	var configs []*schema.NetworkConfig
	for _, file := range files {
		cfg, err := decodeNetworkFile(ctx, file)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	logger.Debug("All network files decoded.", "file_count", len(files))

	return translate(ctx, configs)
}

// decodeNetworkFile parses and decodes a single HCL network definition file.
func decodeNetworkFile(ctx context.Context, filePath string) (*schema.NetworkConfig, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding network file.", "path", filePath)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", filePath, diags.Error())
	}

	var cfg schema.NetworkConfig
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", filePath, diags.Error())
	}

	logger.Debug("Successfully decoded network file.",
		"path", filePath,
		"processes", len(cfg.Processes),
		"streams", len(cfg.Streams))
	return &cfg, nil
}
