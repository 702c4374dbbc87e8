package site

import (
	"errors"
	"time"

	"github.com/yaklabco/gomdsite/pkg/reporter"
)

// Kind identifies what an Outcome was produced from.
type Kind string

// Outcome kinds.
const (
	KindTemplate Kind = "template"
	KindPost     Kind = "post"
	KindPage     Kind = "page"
	KindIndex    Kind = "index"
	KindFeed     Kind = "feed"
	KindAssets   Kind = "assets"
)

// Outcome is the result of loading or rendering one file.
type Outcome struct {
	// Kind is what was processed.
	Kind Kind

	// Source is the input path, relative to the project root. Empty for
	// generated outputs such as the index and the feed.
	Source string

	// Output is the written path, relative to the output directory. Empty
	// for load failures.
	Output string

	// Written is true when the output changed on disk.
	Written bool

	// Err is set if the file could not be loaded or rendered.
	Err error
}

// Failure returns the located failure in Err, if any.
func (o Outcome) Failure() (*reporter.Failure, bool) {
	if o.Err == nil {
		return nil, false
	}
	return reporter.AsFailure(o.Err)
}

// Stats captures aggregate information about a build.
type Stats struct {
	// Posts and Pages count the documents that were rendered.
	Posts int
	Pages int

	// Templates is the number of parsed templates.
	Templates int

	// Drafts is the number of draft posts left out of the build.
	Drafts int

	// Written is the number of outputs whose content changed on disk.
	Written int

	// Unchanged is the number of outputs that already held the same bytes.
	Unchanged int

	// Assets is the number of asset files copied.
	Assets int

	// Failures is the number of outcomes with an error.
	Failures int

	// Duration is the wall time of the build.
	Duration time.Duration
}

// Result is the overall build result.
type Result struct {
	// Outcomes are ordered deterministically: load failures first, then
	// the index, posts, pages, feed and assets.
	Outcomes []Outcome

	// Stats contains aggregate statistics for the build.
	Stats Stats

	dryRun bool
}

// HasFailures reports whether any outcome failed.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.Failures > 0
}

// Failures returns the failed outcomes.
func (r *Result) Failures() []Outcome {
	if r == nil {
		return nil
	}
	var failed []Outcome
	for _, outcome := range r.Outcomes {
		if outcome.Err != nil {
			failed = append(failed, outcome)
		}
	}
	return failed
}

// Err joins every outcome error, or returns nil.
func (r *Result) Err() error {
	var errs []error
	for _, outcome := range r.Failures() {
		errs = append(errs, outcome.Err)
	}
	return errors.Join(errs...)
}

// accumulate updates the result with an outcome.
func (r *Result) accumulate(outcome Outcome) {
	r.Outcomes = append(r.Outcomes, outcome)

	if outcome.Err != nil {
		r.Stats.Failures++
		return
	}

	switch outcome.Kind {
	case KindPost:
		r.Stats.Posts++
	case KindPage:
		r.Stats.Pages++
	case KindTemplate, KindIndex, KindFeed, KindAssets:
	}

	if r.dryRun || outcome.Output == "" || outcome.Kind == KindAssets {
		return
	}
	if outcome.Written {
		r.Stats.Written++
	} else {
		r.Stats.Unchanged++
	}
}
