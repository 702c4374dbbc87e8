package site

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/yaklabco/gomdsite/pkg/config"
	"github.com/yaklabco/gomdsite/pkg/date"
	"github.com/yaklabco/gomdsite/pkg/markdown"
	"github.com/yaklabco/gomdsite/pkg/reporter"
)

const atomNamespace = "http://www.w3.org/2005/Atom"

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Xmlns   string      `xml:"xmlns,attr"`
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Author  *atomPerson `xml:"author,omitempty"`
	Links   []atomLink  `xml:"link"`
	Entries []atomEntry `xml:"entry"`
}

type atomPerson struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
}

type atomText struct {
	Type string `xml:"type,attr,omitempty"`
	Body string `xml:",chardata"`
}

type atomEntry struct {
	Title     atomText  `xml:"title"`
	ID        string    `xml:"id"`
	Link      atomLink  `xml:"link"`
	Published string    `xml:"published"`
	Updated   string    `xml:"updated"`
	Summary   *atomText `xml:"summary,omitempty"`
	Content   atomText  `xml:"content"`
}

// writeFeed renders an Atom feed of posts, which must be published and
// sorted newest first.
func writeFeed(w io.Writer, rep *reporter.Reporter, cfg *config.Config, posts []*Document, hooks markdown.Hooks) error {
	if cfg.Feed.Limit > 0 && len(posts) > cfg.Feed.Limit {
		posts = posts[:cfg.Feed.Limit]
	}

	base := strings.TrimSuffix(cfg.BaseURL, "/")
	feed := atomFeed{
		Xmlns: atomNamespace,
		Title: cfg.Title,
		ID:    base + "/",
		Links: []atomLink{
			{Href: base + "/" + cfg.Feed.Path, Rel: "self"},
			{Href: base + "/"},
		},
	}
	if cfg.Author != "" {
		feed.Author = &atomPerson{Name: cfg.Author}
	}
	if len(posts) > 0 {
		feed.Updated = posts[0].Published().Format(date.StyleRFC3339)
	}

	opts := markdownOptions(cfg, nil)
	opts.HighlightCode = false

	for _, post := range posts {
		var content strings.Builder
		if err := markdown.Render(rep, &content, post.Body, hooks, opts); err != nil {
			return err
		}
		published := post.Published().Format(date.StyleRFC3339)
		entry := atomEntry{
			Title:     atomText{Type: "html", Body: post.Meta.Title},
			ID:        base + post.URL,
			Link:      atomLink{Href: base + post.URL},
			Published: published,
			Updated:   published,
			Content:   atomText{Type: "html", Body: content.String()},
		}
		if post.title != nil {
			var title strings.Builder
			if err := markdown.Render(rep, &title, *post.title, hooks, markdown.Options{IsInline: true}); err != nil {
				return err
			}
			entry.Title.Body = title.String()
		}
		if post.Meta.Description != "" {
			entry.Summary = &atomText{Body: post.Meta.Description}
		}
		feed.Entries = append(feed.Entries, entry)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(feed); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
