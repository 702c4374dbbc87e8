// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"
	FieldDuration   = "duration"

	// Build fields.
	FieldJobs     = "jobs"
	FieldKind     = "kind"
	FieldSlug     = "slug"
	FieldTemplate = "template"
	FieldDrafts   = "drafts"

	// Statistics fields.
	FieldPosts     = "posts"
	FieldPages     = "pages"
	FieldTemplates = "templates"
	FieldWritten   = "written"
	FieldUnchanged = "unchanged"
	FieldAssets    = "assets"
	FieldFailures  = "failures"
	FieldSkipped   = "skipped"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
