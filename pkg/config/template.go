package config

import (
	"bytes"
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full writes every setting with its default value.
	// If false, generates a minimal template with the rest commented out.
	Full bool

	// Title is written as the site title.
	Title string
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Full {
		return generateFullTemplate(opts)
	}
	return generateMinimalTemplate(opts), nil
}

// generateMinimalTemplate creates a minimal commented template.
func generateMinimalTemplate(opts TemplateOptions) []byte {
	title := opts.Title
	if title == "" {
		title = "My Blog"
	}

	var buf bytes.Buffer
	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString("\n\n")
	fmt.Fprintf(&buf, "title: %q\n", title)
	buf.WriteString(`# author: ""
# base_url: https://example.com

# Source and output directories, relative to this file
# dirs:
#   posts: posts
#   pages: pages
#   templates: templates
#   assets: assets
#   output: public

# markdown:
#   highlight_code: true
#   auto_heading_ids: true
#   shift_heading_level: 0
#   detect_languages: false

# Date style for posts: short, long, or rfc3339
# date_style: long

# Include draft posts
# drafts: false

# Number of parallel workers (0 = auto)
# jobs: 0

# feed:
#   enabled: true
#   path: feed.xml
#   limit: 0
`)
	return buf.Bytes()
}

// generateFullTemplate writes the defaults in full.
func generateFullTemplate(opts TemplateOptions) ([]byte, error) {
	cfg := NewConfig()
	cfg.Title = opts.Title
	return cfg.ToYAMLWithHeader(DefaultTemplateHeader())
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# gomdsite configuration
# See: https://github.com/yaklabco/gomdsite`
}
