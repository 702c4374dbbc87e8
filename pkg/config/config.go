// Package config defines the site configuration types.
// These types are plain data with YAML tags and no dependency on the loader.
package config

import (
	"github.com/yaklabco/gomdsite/pkg/date"
)

// OutputFormat specifies how check results are printed.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// LogLevel names a charmbracelet/log level.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// DirsConfig locates the site sources and the output, relative to the
// project root.
type DirsConfig struct {
	Posts     string `yaml:"posts"`
	Pages     string `yaml:"pages"`
	Templates string `yaml:"templates"`
	Assets    string `yaml:"assets"`
	Output    string `yaml:"output"`
}

// MarkdownConfig controls how post bodies are rendered.
type MarkdownConfig struct {
	// HighlightCode highlights fenced code blocks with chroma.
	HighlightCode bool `yaml:"highlight_code"`

	// AutoHeadingIDs adds id attributes to headings.
	AutoHeadingIDs bool `yaml:"auto_heading_ids"`

	// ShiftHeadingLevel is added to heading levels in post bodies.
	ShiftHeadingLevel int `yaml:"shift_heading_level"`

	// DetectLanguages guesses the language of unlabeled fences.
	DetectLanguages bool `yaml:"detect_languages"`
}

// FeedConfig controls the Atom feed.
type FeedConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`

	// Limit caps the number of entries. 0 means all posts.
	Limit int `yaml:"limit"`
}

// Config is the root configuration structure for a site.
type Config struct {
	// Title is the site title, used by templates and the feed.
	Title string `yaml:"title"`

	// Author is the feed author.
	Author string `yaml:"author"`

	// BaseURL is the absolute URL the site is served from.
	BaseURL string `yaml:"base_url"`

	// Dirs locates sources and output.
	Dirs DirsConfig `yaml:"dirs"`

	// Markdown controls rendering of post bodies.
	Markdown MarkdownConfig `yaml:"markdown"`

	// DateStyle formats the "date" value of posts.
	DateStyle date.Style `yaml:"date_style"`

	// Drafts includes draft posts in the build.
	Drafts bool `yaml:"drafts"`

	// Jobs specifies the number of parallel workers. 0 means GOMAXPROCS.
	Jobs int `yaml:"jobs"`

	// LogLevel is the default log level.
	LogLevel LogLevel `yaml:"log_level"`

	// Feed configures the Atom feed.
	Feed FeedConfig `yaml:"feed"`

	// CLI-level options (not persisted to config files).

	// Root is the project root every directory is resolved against.
	Root string `yaml:"-"`

	// Format specifies the output format of check.
	Format OutputFormat `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Dirs: DirsConfig{
			Posts:     "posts",
			Pages:     "pages",
			Templates: "templates",
			Assets:    "assets",
			Output:    "public",
		},
		Markdown: MarkdownConfig{
			HighlightCode:  true,
			AutoHeadingIDs: true,
		},
		DateStyle: date.StyleLong,
		LogLevel:  LogLevelInfo,
		Feed: FeedConfig{
			Enabled: true,
			Path:    "feed.xml",
		},
		Root:   ".",
		Format: FormatText,
		Jobs:   0, // 0 means use GOMAXPROCS
	}
}
