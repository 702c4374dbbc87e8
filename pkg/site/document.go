package site

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/yaklabco/gomdsite/pkg/config"
	"github.com/yaklabco/gomdsite/pkg/date"
	"github.com/yaklabco/gomdsite/pkg/fsutil"
	"github.com/yaklabco/gomdsite/pkg/highlight"
	"github.com/yaklabco/gomdsite/pkg/markdown"
	"github.com/yaklabco/gomdsite/pkg/metadata"
	"github.com/yaklabco/gomdsite/pkg/reporter"
	"github.com/yaklabco/gomdsite/pkg/scanner"
	"github.com/yaklabco/gomdsite/pkg/template"
)

// ErrReservedName indicates a page whose name collides with a generated
// output.
var ErrReservedName = errors.New("reserved name")

// Document is a parsed post or page. Its Markdown is parsed once and shared
// read-only by every render that prints it.
type Document struct {
	Kind Kind

	// Source is the input path relative to the project root.
	Source string

	// Name is the file name without extension.
	Name string

	// Slug is Name normalized for use in URLs.
	Slug string

	// URL is the site-absolute URL of the rendered document.
	URL string

	// Output is the output path relative to the output directory.
	Output string

	Meta metadata.Metadata
	Body markdown.Document

	title *markdown.Document
	value template.Dict
}

// Draft reports whether the document is an unpublished post.
func (d *Document) Draft() bool {
	return d.Kind == KindPost && d.Meta.Status.Draft
}

// Published returns the publication date, or the zero Date for drafts and
// pages.
func (d *Document) Published() date.Date {
	if d.Kind != KindPost {
		return date.Date{}
	}
	return d.Meta.Status.Published
}

// Value returns the template bindings of the document.
func (d *Document) Value() template.Dict {
	return d.value
}

// loadDocument reads and parses the post or page at file.
func loadDocument(ctx context.Context, src *Sources, file string, kind Kind) (*Document, error) {
	data, _, err := fsutil.ReadFile(ctx, file)
	if err != nil {
		return nil, err
	}
	rel := src.Rel(file)

	meta, body, err := metadata.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rel, err)
	}

	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	normalized, err := slug.Normalize(name)
	if err != nil || normalized == "" {
		return nil, fmt.Errorf("%s: cannot derive a URL slug from %q", rel, name)
	}

	rep := reporter.New()
	doc := &Document{
		Kind:   kind,
		Source: rel,
		Name:   name,
		Slug:   normalized,
		Meta:   meta,
	}
	if doc.Body, err = markdown.Parse(scanner.FromSpan(body, rel, rep)); err != nil {
		return nil, err
	}
	if meta.Title != "" {
		title, err := markdown.Parse(scanner.New([]byte(meta.Title), rel, rep))
		if err != nil {
			return nil, err
		}
		doc.title = &title
	}

	switch kind {
	case KindPost:
		doc.URL = "/" + postsDir + "/" + normalized + "/"
		doc.Output = path.Join(postsDir, normalized, indexFile)
	default:
		if normalized == postsDir || normalized == "index" {
			return nil, fmt.Errorf("%s: %w: %q", rel, ErrReservedName, normalized)
		}
		doc.URL = "/" + normalized + "/"
		doc.Output = path.Join(normalized, indexFile)
	}

	return doc, nil
}

// bind builds the template bindings of d.
func (d *Document) bind(cfg *config.Config, hl highlight.Highlighter) {
	opts := markdownOptions(cfg, hl)
	excerpt := opts
	excerpt.FirstBlockOnly = true

	value := template.Dict{
		"subtitle":    template.String(d.Meta.Subtitle),
		"description": template.String(d.Meta.Description),
		"category":    template.String(d.Meta.Category),
		"url":         template.String(d.URL),
		"slug":        template.String(d.Slug),
		"content":     template.Markdown{Doc: d.Body, Options: opts},
		"excerpt":     template.Markdown{Doc: d.Body, Options: excerpt},
		"draft":       template.Bool(d.Draft()),
		"title":       template.String(""),
	}
	if d.title != nil {
		value["title"] = template.Markdown{Doc: *d.title, Options: markdown.Options{IsInline: true}}
	}
	if published := d.Published(); !published.IsZero() {
		value["date"] = template.Date{Date: published, Style: cfg.DateStyle}
		value["date_short"] = template.Date{Date: published, Style: date.StyleShort}
		value["rfc3339"] = template.Date{Date: published, Style: date.StyleRFC3339}
	}
	d.value = value
}

// markdownOptions returns the render options for document bodies.
func markdownOptions(cfg *config.Config, hl highlight.Highlighter) markdown.Options {
	return markdown.Options{
		HighlightCode:     cfg.Markdown.HighlightCode,
		AutoHeadingIDs:    cfg.Markdown.AutoHeadingIDs,
		ShiftHeadingLevel: int8(cfg.Markdown.ShiftHeadingLevel), //nolint:gosec // validated to a small range
		Highlighter:       hl,
	}
}

// sortPosts orders posts newest first, then by slug. Drafts have no date
// and sort last.
func sortPosts(posts []*Document) {
	sort.SliceStable(posts, func(i, j int) bool {
		if c := posts[i].Published().Compare(posts[j].Published()); c != 0 {
			return c > 0
		}
		return posts[i].Slug < posts[j].Slug
	})
}
