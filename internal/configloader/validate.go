package configloader

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/yaklabco/gomdsite/pkg/config"
	"github.com/yaklabco/gomdsite/pkg/date"
)

// maxHeadingShift bounds markdown.shift_heading_level.
const maxHeadingShift = 5

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "feed.limit").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// Unwrap lets callers match validation failures with ErrInvalidConfig.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues (e.g., unknown fields).
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Format != "" {
		if _, err := config.ParseOutputFormat(string(cfg.Format)); err != nil {
			result.fail("format", cfg.Format, "%s", err)
		}
	}
	if cfg.LogLevel != "" {
		if _, err := config.ParseLogLevel(string(cfg.LogLevel)); err != nil {
			result.fail("log_level", cfg.LogLevel, "%s", err)
		}
	}
	if _, err := date.ParseStyle(string(cfg.DateStyle)); err != nil {
		result.fail("date_style", cfg.DateStyle, "%s", err)
	}
	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}

	shift := cfg.Markdown.ShiftHeadingLevel
	if shift < -maxHeadingShift || shift > maxHeadingShift {
		result.fail("markdown.shift_heading_level", shift,
			"shift must be between %d and %d", -maxHeadingShift, maxHeadingShift)
	}

	validateDirs(cfg, result)
	validateFeed(cfg, result)

	if cfg.Title == "" {
		result.warn("title", cfg.Title, "site title is empty")
	}

	return result
}

// validateDirs checks that directories are set and distinct from the output.
func validateDirs(cfg *config.Config, result *ValidationResult) {
	dirs := []struct {
		field string
		value string
	}{
		{"dirs.posts", cfg.Dirs.Posts},
		{"dirs.pages", cfg.Dirs.Pages},
		{"dirs.templates", cfg.Dirs.Templates},
		{"dirs.assets", cfg.Dirs.Assets},
		{"dirs.output", cfg.Dirs.Output},
	}
	for _, dir := range dirs {
		if dir.value == "" {
			result.fail(dir.field, dir.value, "directory must not be empty")
		}
	}

	output := path.Clean(cfg.Dirs.Output)
	for _, dir := range dirs[:4] {
		if dir.value != "" && path.Clean(dir.value) == output {
			result.fail("dirs.output", cfg.Dirs.Output, "output directory must differ from %s", dir.field)
		}
	}
}

// validateFeed checks the feed settings and the base URL they depend on.
func validateFeed(cfg *config.Config, result *ValidationResult) {
	if cfg.BaseURL != "" {
		parsed, err := url.Parse(cfg.BaseURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			result.fail("base_url", cfg.BaseURL, "base URL must be absolute (e.g. https://example.com)")
		}
	}

	if !cfg.Feed.Enabled {
		return
	}
	if cfg.Feed.Path == "" {
		result.fail("feed.path", cfg.Feed.Path, "feed path must not be empty when the feed is enabled")
	}
	if cfg.Feed.Limit < 0 {
		result.fail("feed.limit", cfg.Feed.Limit, "limit must be >= 0 (0 means all posts)")
	}
	if cfg.BaseURL == "" {
		result.warn("base_url", cfg.BaseURL, "base URL is empty; feed links will be relative")
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}
