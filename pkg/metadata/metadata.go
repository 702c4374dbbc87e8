// Package metadata reads the YAML front matter at the top of posts and
// pages.
package metadata

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/yaklabco/gomdsite/pkg/date"
	"github.com/yaklabco/gomdsite/pkg/scanner"
)

// ErrInvalid indicates front matter that parsed but holds bad values.
var ErrInvalid = errors.New("invalid metadata")

// statusDraft marks an unpublished post.
const statusDraft = "draft"

// Metadata describes a post or page.
type Metadata struct {
	Title       string
	Subtitle    string
	Description string
	Category    string
	Status      Status
}

// Status is either draft or published on a date.
type Status struct {
	Draft     bool
	Published date.Date
}

// String returns "draft" or the RFC 3339 publication date.
func (s Status) String() string {
	if s.Draft {
		return statusDraft
	}
	return s.Published.String()
}

// ParseStatus accepts "draft" or a date.
func ParseStatus(value string) (Status, error) {
	value = strings.TrimSpace(value)
	if value == statusDraft {
		return Status{Draft: true}, nil
	}
	published, err := date.Parse(value)
	if err != nil {
		return Status{}, fmt.Errorf("%w: status: %w", ErrInvalid, err)
	}
	return Status{Published: published}, nil
}

// envelope is the YAML shape of the front matter.
type envelope struct {
	Title       string `yaml:"title"`
	Subtitle    string `yaml:"subtitle"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Status      string `yaml:"status"`
}

// Parse splits src into metadata and the Markdown body. The body borrows
// from src and carries the location of its first byte. A file without
// front matter yields empty metadata and the whole file as body.
func Parse(src []byte) (Metadata, scanner.Span, error) {
	var env envelope
	body, err := frontmatter.Parse(bytes.NewReader(src), &env)
	if err != nil {
		return Metadata{}, scanner.Span{}, fmt.Errorf("parse front matter: %w", err)
	}

	meta := Metadata{
		Title:       strings.TrimSpace(env.Title),
		Subtitle:    strings.TrimSpace(env.Subtitle),
		Description: strings.TrimSpace(env.Description),
		Category:    strings.TrimSpace(env.Category),
	}
	if env.Status != "" {
		meta.Status, err = ParseStatus(env.Status)
		if err != nil {
			return Metadata{}, scanner.Span{}, err
		}
	} else {
		meta.Status.Draft = true
	}

	offset := bodyOffset(src, body)
	span := scanner.Span{
		Text:     src[offset:],
		Location: scanner.New(src, "", nil).LocationAt(offset),
	}
	return meta, span, nil
}

// bodyOffset finds where body starts in src, skipping the blank lines
// that separate it from the front matter.
func bodyOffset(src, body []byte) int {
	if len(body) > len(src) || !bytes.HasSuffix(src, body) {
		return 0
	}
	offset := len(src) - len(body)
	for offset < len(src) && src[offset] == '\n' {
		offset++
	}
	return offset
}
