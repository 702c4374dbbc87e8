// Package configloader provides configuration loading and resolution.
// It implements XDG-compliant configuration discovery, layered overlays,
// environment variable support and validation.
package configloader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/yaklabco/gomdsite/pkg/config"
)

// ErrInvalidConfig marks configuration files that cannot be parsed or hold
// invalid values.
var ErrInvalidConfig = errors.New("invalid configuration")

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir is the directory to search from for project config.
	// Defaults to current working directory if empty.
	WorkingDir string

	// ExplicitPath is an explicit config file path (from --config flag).
	ExplicitPath string

	// IgnoreSystemConfig skips loading system-level configuration.
	IgnoreSystemConfig bool

	// IgnoreUserConfig skips loading user-level configuration.
	IgnoreUserConfig bool

	// IgnoreProjectConfig skips loading project-level configuration.
	IgnoreProjectConfig bool

	// IgnoreEnv skips loading environment variables.
	IgnoreEnv bool

	// Overrides contains configuration from CLI flags.
	// These take highest precedence.
	Overrides *Overrides
}

// LoadResult contains the resolved configuration and metadata.
type LoadResult struct {
	// Config is the final merged configuration.
	Config *config.Config

	// Paths contains the discovered configuration file paths.
	Paths *ConfigPaths

	// LoadedFrom lists the files that were actually loaded (in order).
	LoadedFrom []string

	// Warnings contains non-fatal issues encountered during loading.
	Warnings []string
}

// Load resolves the final configuration by layering all sources.
// Precedence (highest to lowest):
//  1. CLI flags (opts.Overrides)
//  2. Environment variables (GOMDSITE_*)
//  3. Explicit config file (opts.ExplicitPath)
//  4. Project config (.gomdsite.yml upward search)
//  5. User config ($XDG_CONFIG_HOME/gomdsite/config.yaml)
//  6. System config (/etc/gomdsite/config.yaml)
//  7. Defaults
//
// The project root is the directory of the explicit or project config,
// or the working directory when neither exists.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	paths, err := DiscoverPaths(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	paths.Explicit = opts.ExplicitPath
	result := &LoadResult{Paths: paths}

	cfg := config.NewConfig()
	cfg.Root = workDir

	layers := []struct {
		path string
		skip bool
	}{
		{paths.System, opts.IgnoreSystemConfig},
		{paths.User, opts.IgnoreUserConfig},
		{paths.Project, opts.IgnoreProjectConfig || opts.ExplicitPath != ""},
		{paths.Explicit, false},
	}
	for _, layer := range layers {
		if layer.skip || layer.path == "" {
			continue
		}
		if err := overlayFile(cfg, layer.path, result); err != nil {
			return nil, err
		}
		result.LoadedFrom = append(result.LoadedFrom, layer.path)
	}

	switch {
	case opts.ExplicitPath != "":
		cfg.Root = filepath.Dir(opts.ExplicitPath)
	case paths.Project != "" && !opts.IgnoreProjectConfig:
		cfg.Root = filepath.Dir(paths.Project)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("%w: load environment: %w", ErrInvalidConfig, err)
		}
	}

	cfg = merge(cfg, opts.Overrides)

	validation := Validate(cfg)
	if !validation.Valid() {
		return nil, &validation.Errors[0]
	}
	for _, w := range validation.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}

	result.Config = cfg
	return result, nil
}

// overlayFile layers the YAML file at path onto cfg.
func overlayFile(cfg *config.Config, path string, result *LoadResult) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.Overlay(content); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	if unknown := config.UnknownFields(content); unknown != "" {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", path, unknown))
	}
	return nil
}

// Confirm asks a yes/no question on out and reads the answer from in.
// An empty answer counts as no.
func Confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	if _, err := fmt.Fprintf(out, "%s [y/N] ", question); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read response: %w", err)
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// IsInteractive returns true if stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
