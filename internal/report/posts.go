package report

import (
	"bufio"
	"fmt"

	"github.com/yaklabco/gomdsite/internal/ui/pretty"
	"github.com/yaklabco/gomdsite/pkg/config"
	"github.com/yaklabco/gomdsite/pkg/site"
)

// JSONPost describes one post in a listing.
type JSONPost struct {
	Path        string `json:"path"`
	Slug        string `json:"slug"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Status      string `json:"status"`
}

// ReportPosts writes a listing of posts, newest first, as a table or as a
// JSON array.
func ReportPosts(opts Options, posts []*site.Document) (err error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}
	bw := bufio.NewWriterSize(opts.Writer, bufWriterSize)
	defer func() {
		if flushErr := bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	switch opts.Format {
	case config.FormatJSON:
		listing := make([]JSONPost, 0, len(posts))
		for _, post := range posts {
			listing = append(listing, JSONPost{
				Path:        post.Source,
				Slug:        post.Slug,
				URL:         post.URL,
				Title:       post.Meta.Title,
				Subtitle:    post.Meta.Subtitle,
				Description: post.Meta.Description,
				Category:    post.Meta.Category,
				Status:      post.Meta.Status.String(),
			})
		}
		return encode(bw, listing, opts.Compact)

	case config.FormatText, "":
		styles := pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer))
		_, err := fmt.Fprint(bw, pretty.NewTableFormatter(styles, opts.TermWidth).FormatPosts(posts))
		return err

	default:
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}
}
