package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/yaklabco/gomdsite/internal/configloader"
	"github.com/yaklabco/gomdsite/internal/logging"
	"github.com/yaklabco/gomdsite/pkg/config"
)

// siteFlags are the configuration overrides shared by build and check.
type siteFlags struct {
	flags *pflag.FlagSet

	drafts          bool
	output          string
	baseURL         string
	jobs            int
	noHighlight     bool
	detectLanguages bool
}

func (f *siteFlags) register(flags *pflag.FlagSet) {
	f.flags = flags
	flags.BoolVar(&f.drafts, "drafts", false, "include draft posts")
	flags.StringVarP(&f.output, "output", "o", "", "output directory (overrides dirs.output)")
	flags.StringVar(&f.baseURL, "base-url", "", "absolute URL the site is served from")
	flags.IntVarP(&f.jobs, "jobs", "j", 0, "number of parallel renders (0 = GOMAXPROCS)")
	flags.BoolVar(&f.noHighlight, "no-highlight", false, "disable syntax highlighting of code blocks")
	flags.BoolVar(&f.detectLanguages, "detect-languages", false,
		"guess the language of unlabelled code blocks")
}

// overrides returns the flags the user set explicitly.
func (f *siteFlags) overrides() *configloader.Overrides {
	overrides := &configloader.Overrides{}
	if f.flags == nil {
		return overrides
	}
	if f.flags.Changed("drafts") {
		overrides.Drafts = &f.drafts
	}
	if f.flags.Changed("output") {
		overrides.Output = &f.output
	}
	if f.flags.Changed("base-url") {
		overrides.BaseURL = &f.baseURL
	}
	if f.flags.Changed("jobs") {
		overrides.Jobs = &f.jobs
	}
	if f.flags.Changed("no-highlight") {
		highlight := !f.noHighlight
		overrides.HighlightCode = &highlight
	}
	if f.flags.Changed("detect-languages") {
		overrides.DetectLanguages = &f.detectLanguages
	}
	return overrides
}

// loadConfig resolves the layered configuration and applies its log level
// to the logger in ctx unless --debug was given.
func loadConfig(ctx context.Context, globals *globalFlags, overrides *configloader.Overrides) (*config.Config, error) {
	logger := logging.FromContext(ctx)

	workDir := globals.dir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	result, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: globals.configPath,
		Overrides:    overrides,
	})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if !globals.debug {
		logger.SetLevel(logging.ParseLevel(string(result.Config.LogLevel)))
	}
	for _, path := range result.LoadedFrom {
		logger.Debug("loaded config", logging.FieldConfig, path)
	}
	for _, warning := range result.Warnings {
		logger.Warn("config warning", "message", warning)
	}

	return result.Config, nil
}
