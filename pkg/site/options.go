// Package site builds a blog from Markdown posts, Markdown pages and
// templates.
//
// A build discovers the sources, parses every template and document once
// and then renders the outputs concurrently. Each render owns its scanner,
// Reporter and output buffer; parsed templates and documents are shared
// read-only between workers.
package site

// Output file names inside the output directory.
const (
	indexFile = "index.html"
	postsDir  = "post"
)

// Template names looked up for each output kind.
const (
	TemplateIndex = "index.html"
	TemplatePost  = "post.html"
	TemplatePage  = "page.html"
)

// Options controls a build.
type Options struct {
	// DryRun renders every output without writing anything or copying
	// assets.
	DryRun bool

	// Jobs overrides the configured number of workers when positive.
	Jobs int
}
