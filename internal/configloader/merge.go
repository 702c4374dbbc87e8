package configloader

import "github.com/yaklabco/gomdsite/pkg/config"

// Overrides carries settings from CLI flags. Nil fields were not given on
// the command line and leave the loaded value alone, so a flag can also
// switch a setting off.
type Overrides struct {
	Title           *string
	BaseURL         *string
	Output          *string
	LogLevel        *config.LogLevel
	Format          *config.OutputFormat
	Drafts          *bool
	HighlightCode   *bool
	DetectLanguages *bool
	Jobs            *int
}

// merge applies override on top of base and returns the result. base is
// not modified.
func merge(base *config.Config, override *Overrides) *config.Config {
	if base == nil {
		base = config.NewConfig()
	}
	result := base.Clone()
	if override == nil {
		return result
	}

	setIf(&result.Title, override.Title)
	setIf(&result.BaseURL, override.BaseURL)
	setIf(&result.Dirs.Output, override.Output)
	setIf(&result.LogLevel, override.LogLevel)
	setIf(&result.Format, override.Format)
	setIf(&result.Drafts, override.Drafts)
	setIf(&result.Markdown.HighlightCode, override.HighlightCode)
	setIf(&result.Markdown.DetectLanguages, override.DetectLanguages)
	setIf(&result.Jobs, override.Jobs)

	return result
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// MergeAll applies overrides in order, with later ones taking precedence.
func MergeAll(base *config.Config, overrides ...*Overrides) *config.Config {
	result := base
	for _, override := range overrides {
		result = merge(result, override)
	}
	if result == nil {
		return config.NewConfig()
	}
	return result
}
