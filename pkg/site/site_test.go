package site_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdsite/pkg/config"
	"github.com/yaklabco/gomdsite/pkg/reporter"
	"github.com/yaklabco/gomdsite/pkg/site"
)

const (
	baseTemplate  = `<title>{{ title }}</title>{{ body }}`
	indexTemplate = `{{ define title }}{{ site_title }}{{ end }}` +
		`{{ define body }}{{ range posts }}[{{ title }}|{{ url }}|{{ date_short }}]{{ end }}{{ end }}` +
		`{{ template "base.html" }}`
	postTemplate = `{{ define body }}<h1>{{ title }}</h1><time>{{ date }}</time>{{ content }}{{ end }}` +
		`{{ template "base.html" }}`
	pageTemplate = `{{ define body }}{{ content }}{{ end }}{{ template "base.html" }}`
)

// writeFiles creates files under root from a map of slash paths to content.
func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func readOutput(t *testing.T, root, rel string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(root, "public", filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func newSite(t *testing.T, files map[string]string) (string, *config.Config) {
	t.Helper()

	root := t.TempDir()
	writeFiles(t, root, files)

	cfg := config.NewConfig()
	cfg.Root = root
	cfg.Title = "My Blog"
	cfg.Author = "Ada"
	cfg.BaseURL = "https://example.com"
	cfg.Markdown.HighlightCode = false
	cfg.Jobs = 2
	return root, cfg
}

func blogFiles() map[string]string {
	return map[string]string{
		"templates/base.html":  baseTemplate,
		"templates/index.html": indexTemplate,
		"templates/post.html":  postTemplate,
		"templates/page.html":  pageTemplate,
		"posts/hello.md": "---\ntitle: Hello _world_\nstatus: 2023-09-05\n---\n" +
			"See [the older post](older.md#top).",
		"posts/older.md":     "---\ntitle: Older\nstatus: 2023-01-02\n---\n![A cat](img/cat.png)",
		"posts/draft.md":     "---\ntitle: Draft\nstatus: draft\n---\nNot yet.",
		"posts/.hidden.md":   "ignored",
		"pages/about.md":     "---\ntitle: About\n---\nAbout me.",
		"assets/img/cat.png": "png",
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	t.Run("lists sources in order", func(t *testing.T) {
		t.Parallel()

		root, cfg := newSite(t, blogFiles())
		src, err := site.Discover(context.Background(), cfg)
		require.NoError(t, err)

		rel := func(paths []string) []string {
			var out []string
			for _, path := range paths {
				out = append(out, filepath.ToSlash(src.Rel(path)))
			}
			return out
		}
		assert.Equal(t, []string{"posts/draft.md", "posts/hello.md", "posts/older.md"}, rel(src.Posts))
		assert.Equal(t, []string{"pages/about.md"}, rel(src.Pages))
		assert.Len(t, src.Templates, 4)
		assert.Equal(t, filepath.Join(root, "assets"), src.Assets)
	})

	t.Run("missing templates", func(t *testing.T) {
		t.Parallel()

		_, cfg := newSite(t, map[string]string{"posts/a.md": "x"})
		_, err := site.Discover(context.Background(), cfg)
		require.ErrorIs(t, err, site.ErrNoTemplates)
	})
}

func TestBuild(t *testing.T) {
	t.Parallel()

	root, cfg := newSite(t, blogFiles())
	result, err := site.New(cfg).Build(context.Background(), site.Options{})
	require.NoError(t, err)
	require.False(t, result.HasFailures(), "%v", result.Err())

	assert.Equal(t,
		"<title>My Blog</title>[Hello <em>world</em>|/post/hello/|Sep 5, 2023][Older|/post/older/|Jan 2, 2023]",
		readOutput(t, root, "index.html"))

	hello := readOutput(t, root, "post/hello/index.html")
	assert.Contains(t, hello, "<title>Hello <em>world</em></title><h1>Hello <em>world</em></h1>")
	assert.Contains(t, hello, "<time>September 5, 2023</time>")
	assert.Contains(t, hello, `<a href="/post/older/#top">the older post</a>`)

	older := readOutput(t, root, "post/older/index.html")
	assert.Contains(t, older, `<img src="/img/cat.png">`)

	assert.Contains(t, readOutput(t, root, "about/index.html"), "<title>About</title><p>About me.</p>")
	assert.Equal(t, "png", readOutput(t, root, "img/cat.png"))
	assert.NoFileExists(t, filepath.Join(root, "public", "post", "draft", "index.html"))

	feed := readOutput(t, root, "feed.xml")
	assert.Contains(t, feed, `<feed xmlns="http://www.w3.org/2005/Atom">`)
	assert.Contains(t, feed, "<updated>2023-09-05T00:00:00+00:00</updated>")
	assert.Contains(t, feed, `<link href="https://example.com/post/hello/"></link>`)
	assert.Contains(t, feed, "<name>Ada</name>")

	stats := result.Stats
	assert.Equal(t, 2, stats.Posts)
	assert.Equal(t, 1, stats.Pages)
	assert.Equal(t, 4, stats.Templates)
	assert.Equal(t, 1, stats.Drafts)
	assert.Equal(t, 1, stats.Assets)
	assert.Equal(t, 5, stats.Written)
	assert.Zero(t, stats.Unchanged)

	kinds := make([]site.Kind, 0, len(result.Outcomes))
	for _, outcome := range result.Outcomes {
		kinds = append(kinds, outcome.Kind)
	}
	assert.Equal(t, []site.Kind{site.KindIndex, site.KindPost, site.KindPost, site.KindPage, site.KindFeed}, kinds)

	t.Run("rebuild leaves outputs unchanged", func(t *testing.T) {
		again, err := site.New(cfg).Build(context.Background(), site.Options{Jobs: 1})
		require.NoError(t, err)
		assert.Zero(t, again.Stats.Written)
		assert.Equal(t, 5, again.Stats.Unchanged)
	})
}

func TestBuild_Drafts(t *testing.T) {
	t.Parallel()

	files := blogFiles()
	files["templates/index.html"] = `{{ range posts }}{{ slug }}{{ if draft }}*{{ end }} {{ end }}`
	root, cfg := newSite(t, files)
	cfg.Drafts = true

	result, err := site.New(cfg).Build(context.Background(), site.Options{})
	require.NoError(t, err)
	require.Error(t, result.Err(), "post.html prints a date that drafts lack")

	assert.Equal(t, "hello older draft* ", readOutput(t, root, "index.html"))
	assert.Zero(t, result.Stats.Drafts)
}

func TestBuild_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		files map[string]string
		want  string
		is    error
	}{
		{
			name:  "missing image",
			files: map[string]string{"posts/older.md": "---\nstatus: 2023-01-02\n---\n\n![cat](img/dog.png)"},
			want:  "posts/older.md:5:8: image not found: img/dog.png",
			is:    reporter.ErrFailure,
		},
		{
			name:  "unknown post link",
			files: map[string]string{"posts/hello.md": "---\nstatus: 2023-09-05\n---\n[x](nope.md)"},
			want:  "posts/hello.md:4:5: link to unknown post 'nope.md'",
			is:    reporter.ErrFailure,
		},
		{
			name:  "template failure notes the include",
			files: map[string]string{"templates/base.html": "{{ nope }}"},
			want:  "templates/base.html:1:1: undefined variable 'nope'\ntemplates/index.html:1:",
			is:    reporter.ErrFailure,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			files := blogFiles()
			for rel, content := range testCase.files {
				files[rel] = content
			}
			_, cfg := newSite(t, files)

			result, err := site.New(cfg).Build(context.Background(), site.Options{DryRun: true})
			require.NoError(t, err)
			require.True(t, result.HasFailures())

			failures := result.Failures()
			require.NotEmpty(t, failures)
			got := failures[0].Err
			require.ErrorIs(t, got, testCase.is)
			assert.True(t, strings.HasPrefix(filepath.ToSlash(got.Error()), testCase.want), got.Error())
		})
	}
}

func TestBuild_MissingTemplate(t *testing.T) {
	t.Parallel()

	files := blogFiles()
	delete(files, "templates/page.html")
	_, cfg := newSite(t, files)

	result, err := site.New(cfg).Build(context.Background(), site.Options{DryRun: true})
	require.NoError(t, err)

	failures := result.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, site.KindPage, failures[0].Kind)
	require.ErrorIs(t, failures[0].Err, site.ErrMissingTemplate)
	assert.Zero(t, result.Stats.Written)
}

func TestBuild_TemplateParseFailure(t *testing.T) {
	t.Parallel()

	files := blogFiles()
	files["templates/page.html"] = "{{ if x }}"
	_, cfg := newSite(t, files)

	result, err := site.New(cfg).Build(context.Background(), site.Options{DryRun: true})
	require.NoError(t, err)

	failures := result.Failures()
	require.NotEmpty(t, failures)
	assert.Equal(t, site.KindTemplate, failures[0].Kind)
	failure, ok := failures[0].Failure()
	require.True(t, ok)
	assert.Equal(t, "missing {{ end }} for {{ if }}", failure.Message)
}

func TestBuild_Cancelled(t *testing.T) {
	t.Parallel()

	_, cfg := newSite(t, blogFiles())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := site.New(cfg).Build(ctx, site.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRenderFile(t *testing.T) {
	t.Parallel()

	root, cfg := newSite(t, blogFiles())
	s := site.New(cfg)

	var out strings.Builder
	require.NoError(t, s.RenderFile(context.Background(), &out, filepath.Join(root, "posts", "hello.md")))
	assert.Equal(t, `<p>See <a href="/post/older/#top">the older post</a>.</p>`, strings.TrimSpace(out.String()))

	out.Reset()
	require.NoError(t, s.RenderFile(context.Background(), &out, filepath.Join(root, "templates", "index.html")))
	assert.Contains(t, out.String(), "<title>My Blog</title>")

	err := s.RenderFile(context.Background(), &out, filepath.Join(root, "assets", "img", "cat.png"))
	require.ErrorIs(t, err, site.ErrUnsupportedFile)
}

func TestCollectChars(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"index.html":   "<p>café über naïve</p>",
		"feed.xml":     "<title>Ω</title>",
		"notes.txt":    "ignored ✓",
		"img/logo.svg": "<svg>é</svg>",
	})

	chars, err := site.CollectChars(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, site.ASCIICharset+"éïüΩ", chars)
}
