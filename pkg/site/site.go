package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/yaklabco/gomdsite/internal/logging"
	"github.com/yaklabco/gomdsite/pkg/config"
	"github.com/yaklabco/gomdsite/pkg/fsutil"
	"github.com/yaklabco/gomdsite/pkg/highlight"
	"github.com/yaklabco/gomdsite/pkg/reporter"
	"github.com/yaklabco/gomdsite/pkg/scanner"
	"github.com/yaklabco/gomdsite/pkg/template"
)

// ErrMissingTemplate indicates an output whose template does not exist.
var ErrMissingTemplate = errors.New("missing template")

// Site holds the parsed sources of a site. After Load it is read-only and
// may be rendered from many goroutines.
type Site struct {
	cfg *config.Config
	hl  highlight.Highlighter

	src       *Sources
	templates map[string]*template.Template
	posts     []*Document
	pages     []*Document
	drafts    int
	hooks     *linkHooks
	globals   template.Dict
}

// New creates a Site for cfg.
func New(cfg *config.Config) *Site {
	var hl highlight.Highlighter = highlight.Plain{}
	if cfg.Markdown.HighlightCode {
		hl = highlight.NewChroma(cfg.Markdown.DetectLanguages)
	}
	return &Site{cfg: cfg, hl: hl}
}

// Sources returns the discovered sources, or nil before Load.
func (s *Site) Sources() *Sources {
	return s.src
}

// Posts returns the posts included in the build, newest first.
func (s *Site) Posts() []*Document {
	return s.posts
}

// Pages returns the pages of the site.
func (s *Site) Pages() []*Document {
	return s.pages
}

// Load discovers and parses every template, post and page. Files that
// fail to parse are returned as outcomes and left out of the site; the
// error is reserved for failures that stop the whole build.
func (s *Site) Load(ctx context.Context) ([]Outcome, error) {
	logger := logging.FromContext(ctx)

	src, err := Discover(ctx, s.cfg)
	if err != nil {
		return nil, err
	}
	s.src = src
	logger.Debug("discovered sources",
		logging.FieldPosts, len(src.Posts),
		logging.FieldPages, len(src.Pages),
		logging.FieldTemplates, len(src.Templates),
	)

	var failed []Outcome

	s.templates = make(map[string]*template.Template, len(src.Templates))
	for _, path := range src.Templates {
		tmpl, err := loadTemplate(ctx, src.Rel(path), path)
		if err != nil {
			if !isFileFailure(err) {
				return nil, err
			}
			failed = append(failed, Outcome{Kind: KindTemplate, Source: src.Rel(path), Err: err})
			continue
		}
		s.templates[filepath.Base(path)] = tmpl
	}

	s.posts, s.pages, s.drafts = nil, nil, 0
	for _, path := range src.Posts {
		doc, err := loadDocument(ctx, src, path, KindPost)
		if err != nil {
			if !isFileFailure(err) {
				return nil, err
			}
			failed = append(failed, Outcome{Kind: KindPost, Source: src.Rel(path), Err: err})
			continue
		}
		if doc.Draft() && !s.cfg.Drafts {
			logger.Debug("skipping draft", logging.FieldPath, doc.Source)
			s.drafts++
			continue
		}
		s.posts = append(s.posts, doc)
	}
	sortPosts(s.posts)

	for _, path := range src.Pages {
		doc, err := loadDocument(ctx, src, path, KindPage)
		if err != nil {
			if !isFileFailure(err) {
				return nil, err
			}
			failed = append(failed, Outcome{Kind: KindPage, Source: src.Rel(path), Err: err})
			continue
		}
		s.pages = append(s.pages, doc)
	}

	s.hooks = newLinkHooks(s.posts, src.Assets)
	s.bind()

	return failed, nil
}

// bind builds the document values and the globals every render sees:
// the templates by file name, the site settings and the post list.
func (s *Site) bind() {
	posts := make(template.Array, 0, len(s.posts))
	for _, doc := range s.posts {
		doc.bind(s.cfg, s.hl)
		posts = append(posts, template.PointerTo(doc.value))
	}
	pages := make(template.Array, 0, len(s.pages))
	for _, doc := range s.pages {
		doc.bind(s.cfg, s.hl)
		pages = append(pages, template.PointerTo(doc.value))
	}

	globals := make(template.Dict, len(s.templates)+6)
	for name, tmpl := range s.templates {
		globals[name] = template.SubTemplate{Template: tmpl}
	}
	globals["site_title"] = template.String(s.cfg.Title)
	globals["site_author"] = template.String(s.cfg.Author)
	globals["base_url"] = template.String(s.cfg.BaseURL)
	globals["feed_url"] = template.String("")
	if s.cfg.Feed.Enabled {
		globals["feed_url"] = template.String("/" + s.cfg.Feed.Path)
	}
	globals["posts"] = posts
	globals["pages"] = pages
	s.globals = globals
}

// loadTemplate reads and parses one template.
func loadTemplate(ctx context.Context, rel, path string) (*template.Template, error) {
	data, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return template.Parse(scanner.New(data, rel, reporter.New()))
}

// isFileFailure reports whether err concerns a single file, as opposed to
// a cancelled context.
func isFileFailure(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// renderFunc renders one output with its own Reporter.
type renderFunc func(w io.Writer, rep *reporter.Reporter) error

type job struct {
	kind   Kind
	source string
	output string
	render renderFunc
}

// Build loads the site and renders every output. Render failures are
// collected in the Result; the error is reserved for discovery failures
// and cancellation.
func (s *Site) Build(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	failed, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{dryRun: opts.DryRun}
	for _, outcome := range failed {
		result.accumulate(outcome)
	}
	result.Stats.Templates = len(s.templates)
	result.Stats.Drafts = s.drafts

	jobs := s.plan()
	outDir := s.src.Output

	workers := opts.Jobs
	if workers <= 0 {
		workers = s.cfg.Jobs
	}
	logger.Debug("rendering", logging.FieldJobs, workers, logging.FieldOutput, outDir)

	for _, outcome := range s.run(ctx, jobs, workers, outDir, opts.DryRun) {
		result.accumulate(outcome)
	}

	if !opts.DryRun && ctx.Err() == nil {
		copied, err := fsutil.CopyTree(ctx, s.src.Assets, outDir)
		result.Stats.Assets = copied
		if err != nil {
			result.accumulate(Outcome{Kind: KindAssets, Source: s.src.Rel(s.src.Assets), Err: err})
		}
	}

	result.Stats.Duration = time.Since(start)

	if ctx.Err() != nil {
		return result, fmt.Errorf("build cancelled: %w", ctx.Err())
	}

	return result, nil
}

// plan lists the outputs in the order they are reported.
func (s *Site) plan() []job {
	jobs := make([]job, 0, len(s.posts)+len(s.pages)+2)

	jobs = append(jobs, job{
		kind:   KindIndex,
		output: indexFile,
		render: s.execute(TemplateIndex, template.NewScope(s.globals)),
	})
	for _, doc := range s.posts {
		jobs = append(jobs, job{
			kind:   KindPost,
			source: doc.Source,
			output: doc.Output,
			render: s.execute(TemplatePost, template.NewScope(s.globals).With(doc.value)),
		})
	}
	for _, doc := range s.pages {
		jobs = append(jobs, job{
			kind:   KindPage,
			source: doc.Source,
			output: doc.Output,
			render: s.execute(TemplatePage, template.NewScope(s.globals).With(doc.value)),
		})
	}

	if s.cfg.Feed.Enabled {
		var published []*Document
		for _, doc := range s.posts {
			if !doc.Draft() {
				published = append(published, doc)
			}
		}
		if len(published) > 0 {
			jobs = append(jobs, job{
				kind:   KindFeed,
				output: s.cfg.Feed.Path,
				render: func(w io.Writer, rep *reporter.Reporter) error {
					return writeFeed(w, rep, s.cfg, published, s.hooks)
				},
			})
		}
	}

	return jobs
}

// execute returns a render of the named template in scope.
func (s *Site) execute(name string, scope *template.Scope) renderFunc {
	return func(w io.Writer, rep *reporter.Reporter) error {
		tmpl, ok := s.templates[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingTemplate, name)
		}
		return template.Execute(w, rep, tmpl, scope, s.hooks)
	}
}

// run renders jobs concurrently and returns their outcomes in job order.
func (s *Site) run(ctx context.Context, jobs []job, workers int, outDir string, dryRun bool) []Outcome {
	if len(jobs) == 0 {
		return nil
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	// Don't use more workers than jobs.
	if workers > len(jobs) {
		workers = len(jobs)
	}

	type indexed struct {
		index   int
		outcome Outcome
	}

	workCh := make(chan int)
	outCh := make(chan indexed)

	var wg sync.WaitGroup

	// Start workers.
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range workCh {
				outcome := s.render(ctx, jobs[index], outDir, dryRun)
				select {
				case <-ctx.Done():
					return
				case outCh <- indexed{index: index, outcome: outcome}:
				}
			}
		}()
	}

	// Feed work in a separate goroutine.
	go func() {
		defer close(workCh)
		for index := range jobs {
			select {
			case <-ctx.Done():
				return
			case workCh <- index:
			}
		}
	}()

	// Close outCh when all workers are done.
	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Collect results; workers may complete out of order.
	done := make([]*Outcome, len(jobs))
	for item := range outCh {
		outcome := item.outcome
		done[item.index] = &outcome
	}

	outcomes := make([]Outcome, 0, len(jobs))
	for _, outcome := range done {
		if outcome != nil {
			outcomes = append(outcomes, *outcome)
		}
	}
	return outcomes
}

// render runs one job into a private buffer and writes the result.
func (s *Site) render(ctx context.Context, j job, outDir string, dryRun bool) Outcome {
	outcome := Outcome{Kind: j.kind, Source: j.source, Output: j.output}

	var buf bytes.Buffer
	if err := j.render(&buf, reporter.New()); err != nil {
		outcome.Err = err
		return outcome
	}
	if dryRun {
		return outcome
	}

	written, err := fsutil.WriteAtomicIfChanged(ctx, filepath.Join(outDir, filepath.FromSlash(j.output)), buf.Bytes(), fsutil.DefaultFileMode)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Written = written

	logging.FromContext(ctx).Debug("rendered", logging.FieldOutput, j.output, logging.FieldWritten, written)
	return outcome
}
