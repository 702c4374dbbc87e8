package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdsite/internal/report"
	"github.com/yaklabco/gomdsite/pkg/config"
	"github.com/yaklabco/gomdsite/pkg/date"
	"github.com/yaklabco/gomdsite/pkg/metadata"
	"github.com/yaklabco/gomdsite/pkg/reporter"
	"github.com/yaklabco/gomdsite/pkg/site"
)

func sampleResult() *site.Result {
	rep := reporter.New()
	located := rep.Fail("posts/a.md", reporter.Position{Line: 2, Column: 3}, "unclosed <em> tag")
	rep.AddNote("templates/post.html", reporter.Position{Line: 1, Column: 1}, "in template included from here")

	return &site.Result{
		Outcomes: []site.Outcome{
			{Kind: site.KindIndex, Output: "index.html", Written: true},
			{Kind: site.KindPost, Source: "posts/a.md", Output: "post/a/index.html", Err: located},
			{Kind: site.KindPage, Source: "pages/b.md", Err: errors.New("permission denied")},
		},
		Stats: site.Stats{Posts: 0, Pages: 0, Written: 1, Failures: 2},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := report.New(report.Options{Writer: &bytes.Buffer{}, Format: config.FormatJSON})
	require.NoError(t, err)

	_, err = report.New(report.Options{Writer: &bytes.Buffer{}, Format: "sarif"})
	require.Error(t, err)
}

func TestTextReporter(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "posts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "posts", "a.md"), []byte("x\n  _oops\n"), 0o644))

	var buf bytes.Buffer
	rep, err := report.New(report.Options{
		Writer:      &buf,
		Format:      config.FormatText,
		Color:       "never",
		ShowContext: true,
		ShowSummary: true,
		Root:        root,
	})
	require.NoError(t, err)

	count, err := rep.Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	out := buf.String()
	assert.Contains(t, out, "  posts/a.md:2:3  error  unclosed <em> tag\n          _oops\n          ^\n")
	assert.Contains(t, out, "  templates/post.html:1:1  note  in template included from here\n")
	assert.Contains(t, out, "  pages/b.md  error  permission denied\n")
	assert.Contains(t, out, "2 failures, built 0 posts and 0 pages")
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := report.NewJSONReporter(report.Options{Writer: &buf, Compact: true})

	count, err := rep.Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var output report.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	require.Len(t, output.Outcomes, 3)
	assert.Nil(t, output.Outcomes[0].Error)
	assert.True(t, output.Outcomes[0].Written)

	located := output.Outcomes[1].Error
	require.NotNil(t, located)
	assert.Equal(t, "unclosed <em> tag", located.Message)
	assert.Equal(t, "posts/a.md", located.File)
	assert.Equal(t, 2, located.Line)
	assert.Equal(t, 3, located.Column)
	require.Len(t, located.Notes, 1)
	assert.Equal(t, "templates/post.html", located.Notes[0].File)

	assert.Equal(t, "permission denied", output.Outcomes[2].Error.Message)
	assert.Zero(t, output.Outcomes[2].Error.Line)
	assert.Equal(t, 2, output.Summary.Failures)
}

func TestReportPosts(t *testing.T) {
	t.Parallel()

	posts := []*site.Document{{
		Kind:   site.KindPost,
		Source: "posts/hello.md",
		Slug:   "hello",
		URL:    "/post/hello/",
		Meta: metadata.Metadata{
			Title:  "Hello",
			Status: metadata.Status{Published: date.MustParse("2023-09-05")},
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, report.ReportPosts(report.Options{Writer: &buf, Format: config.FormatJSON, Compact: true}, posts))
	assert.JSONEq(t,
		`[{"path":"posts/hello.md","slug":"hello","url":"/post/hello/","title":"Hello","status":"2023-09-05T00:00:00+00:00"}]`,
		buf.String())

	buf.Reset()
	require.NoError(t, report.ReportPosts(report.Options{Writer: &buf, Color: "never"}, posts))
	assert.Contains(t, buf.String(), "Sep 5, 2023")
	assert.Contains(t, buf.String(), "hello")
}
