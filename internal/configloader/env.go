package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/yaklabco/gomdsite/pkg/config"
	"github.com/yaklabco/gomdsite/pkg/date"
)

// envVarPrefix is the prefix for all gomdsite environment variables.
const envVarPrefix = "GOMDSITE_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field string
	typ   envFieldType
	help  string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"TITLE":            {field: "title", typ: envTypeString, help: "Site title"},
	"BASE_URL":         {field: "base_url", typ: envTypeString, help: "Absolute URL the site is served from"},
	"OUTPUT":           {field: "dirs.output", typ: envTypeString, help: "Output directory"},
	"DATE_STYLE":       {field: "date_style", typ: envTypeString, help: "Post date style: short, long, or rfc3339"},
	"LOG_LEVEL":        {field: "log_level", typ: envTypeString, help: "Log level: debug, info, warn, or error"},
	"DRAFTS":           {field: "drafts", typ: envTypeBool, help: "Include draft posts: true or false"},
	"HIGHLIGHT_CODE":   {field: "markdown.highlight_code", typ: envTypeBool, help: "Highlight fenced code: true or false"},
	"DETECT_LANGUAGES": {field: "markdown.detect_languages", typ: envTypeBool, help: "Detect languages of unlabeled fences"},
	"JOBS":             {field: "jobs", typ: envTypeInt, help: "Number of parallel workers (0 = auto)"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with GOMDSITE_ (e.g., GOMDSITE_DRAFTS).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// setStringField sets a string field on the config by field path.
func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "title":
		cfg.Title = value
	case "base_url":
		cfg.BaseURL = value
	case "dirs.output":
		cfg.Dirs.Output = value
	case "date_style":
		cfg.DateStyle = date.Style(value)
	case "log_level":
		cfg.LogLevel = config.LogLevel(value)
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

// setBoolField sets a boolean field on the config by field path.
func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "drafts":
		cfg.Drafts = value
	case "markdown.highlight_code":
		cfg.Markdown.HighlightCode = value
	case "markdown.detect_languages":
		cfg.Markdown.DetectLanguages = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// setIntField sets an integer field on the config by field path.
func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "jobs":
		cfg.Jobs = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns the supported environment variables, sorted, with
// their descriptions.
func ListEnvVars() [][2]string {
	vars := make([][2]string, 0, len(envMappings))
	for suffix, mapping := range envMappings {
		vars = append(vars, [2]string{envVarPrefix + suffix, mapping.help})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i][0] < vars[j][0] })
	return vars
}
