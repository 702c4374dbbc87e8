package template_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdsite/pkg/date"
	"github.com/yaklabco/gomdsite/pkg/markdown"
	"github.com/yaklabco/gomdsite/pkg/reporter"
	"github.com/yaklabco/gomdsite/pkg/scanner"
	"github.com/yaklabco/gomdsite/pkg/template"
)

func TestExecuteString(t *testing.T) {
	t.Parallel()

	names := template.Array{template.String("Alice"), template.String("Bob")}

	tests := []struct {
		name  string
		src   string
		value template.Value
		want  string
	}{
		{"plain text", "hello", template.Null{}, "hello"},
		{"variable", "Hi {{ name }}!", template.Dict{"name": template.String("Ann")}, "Hi Ann!"},
		{"dot", "{{ . }}", template.String("x"), "x"},
		{"definition", "{{ define x }}foo{{ end }}{{ x }}", template.Dict{}, "foo"},
		{"definitions shadow context", "{{ define x }}foo{{ end }}{{ x }}", template.Dict{"x": template.String("bar")}, "foo"},
		{"definitions are hoisted", "{{ x }}{{ define x }}late{{ end }}", template.Null{}, "late"},
		{"assignment", `{{ q = "say \"hi\"\n" }}{{ q }}`, template.Null{}, "say \"hi\"\n"},
		{"range", "{{ range . }}{{ . }},{{ end }}", names, "Alice,Bob,"},
		{"range else", "{{ range . }}{{ . }}{{ else }}none{{ end }}", template.Array{}, "none"},
		{"range over non-array runs once", "{{ range name }}[{{ . }}]{{ end }}", template.Dict{"name": template.String("n")}, "[n]"},
		{"range over undefined is falsy", "{{ range nope }}x{{ else }}y{{ end }}", template.Dict{}, "y"},
		{"range dicts", "{{ range posts }}{{ title }};{{ end }}", template.Dict{"posts": template.Array{
			template.Dict{"title": template.String("A")},
			template.Dict{"title": template.String("B")},
		}}, "A;B;"},
		{"if binds dot", "{{ if post }}{{ title }}{{ end }}", template.Dict{"post": template.Dict{"title": template.String("T")}}, "T"},
		{"if else", "{{ if x }}a{{ else }}b{{ end }}", template.Dict{"x": template.Bool(false)}, "b"},
		{"if undefined", "{{ if x }}a{{ end }}", template.Dict{}, ""},
		{"empty string is falsy", "{{ if x }}a{{ else }}b{{ end }}", template.Dict{"x": template.String("")}, "b"},
		{"empty dict is truthy", "{{ if x }}a{{ end }}", template.Dict{"x": template.Dict{}}, "a"},
		{"pointer", "{{ range posts }}{{ . }}{{ end }}", template.Dict{"posts": template.PointerTo(names)}, "AliceBob"},
		{"date", "{{ when }}", template.Dict{"when": template.Date{Date: date.MustParse("2023-09-05"), Style: date.StyleLong}}, "September 5, 2023"},
		{"strings are raw", "{{ html }}", template.Dict{"html": template.String("<b>&")}, "<b>&"},
		{"lookup through if", "{{ if a }}{{ b }}{{ end }}", template.Dict{"a": template.Bool(true), "b": template.String("B")}, "B"},
		{"dashes in names", "{{ date-short }}", template.Dict{"date-short": template.String("d")}, "d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := template.ExecuteString(tt.src, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecuteString_Whitespace(t *testing.T) {
	t.Parallel()

	list := template.Array{template.String("a"), template.String("b")}

	tests := []struct {
		name  string
		src   string
		value template.Value
		want  string
	}{
		{
			"standalone control commands are trimmed",
			"<ul>\n  {{ range . }}\n  <li>{{ . }}</li>\n  {{ end }}\n</ul>\n",
			list,
			"<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>\n",
		},
		{
			"inline control commands are kept",
			"<p>{{ range . }}{{ . }} {{ end }}</p>\n",
			list,
			"<p>a b </p>\n",
		},
		{
			"variables are never trimmed",
			"  {{ x }}\n",
			template.Dict{"x": template.String("v")},
			"  v\n",
		},
		{
			"leading whitespace before a control command",
			"\n  {{ x = \"1\" }}\n{{ x }}",
			template.Null{},
			"1",
		},
		{
			"standalone else",
			"{{ if x }}\nyes\n{{ else }}\nno\n{{ end }}\n",
			template.Dict{},
			"no\n",
		},
		{
			"standalone define",
			"{{ define body }}\n<p>hi</p>\n{{ end }}\n{{ body }}",
			template.Null{},
			"<p>hi</p>\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := template.ExecuteString(tt.src, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unclosed command", "{{ x ", `1:6: expected "}}", got EOF`},
		{"missing identifier", "{{ }}", `1:4: expected identifier, got "}}"`},
		{"missing end", "a {{ if x }}b", "1:3: missing {{ end }} for {{ if }}"},
		{"missing define end", "{{ define x }}", "1:1: missing {{ end }} for {{ define }}"},
		{"unmatched end", "{{ end }}", "1:1: unexpected {{ end }}"},
		{"unmatched else", "x{{ else }}", "1:2: unexpected {{ else }}"},
		{"else in define", "{{ define x }}{{ else }}{{ end }}", "1:15: unexpected {{ else }} in {{ define }}"},
		{"duplicate else", "{{ if x }}{{ else }}{{ else }}{{ end }}", "1:21: duplicate {{ else }} in {{ if }}"},
		{"unterminated string", `{{ x = "abc }}`, "1:8: unterminated string"},
		{"bad escape", `{{ x = "\q" }}`, `1:9: unknown escape sequence '\q'`},
		{"template needs a string", "{{ template base }}", `1:13: expected "\"", got "b"`},
		{"define dot", "{{ define . }}{{ end }}", "1:11: cannot define '.'"},
		{
			"duplicate definition",
			"{{ x = \"a\" }}\n{{ x = \"b\" }}",
			"2:1: 'x' is already defined\n1:1: note: previous definition is here",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := template.Parse(scanner.New([]byte(tt.src), "", reporter.New()))
			require.Error(t, err)
			assert.ErrorIs(t, err, reporter.ErrFailure)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestParse_Structure(t *testing.T) {
	t.Parallel()

	src := "a{{ if x }}{{ define d }}D{{ end }}b{{ else }}c{{ end }}{{ template \"t.html\" }}"
	tmpl, err := template.Parse(scanner.New([]byte(src), "page.html", nil))
	require.NoError(t, err)

	assert.Equal(t, "page.html", tmpl.Filename)
	require.Len(t, tmpl.Definitions, 1, "defines inside if bodies are hoisted")
	assert.Equal(t, "d", tmpl.Definitions[0].Name)
	require.NotNil(t, tmpl.Definitions[0].Body)

	require.Len(t, tmpl.Commands, 3)
	assert.Equal(t, template.Text{Text: []byte("a")}, tmpl.Commands[0])

	cond, ok := tmpl.Commands[1].(template.If)
	require.True(t, ok)
	assert.Equal(t, "x", cond.Cond.Name)
	assert.Equal(t, []template.Command{template.Text{Text: []byte("b")}}, cond.Body)
	assert.Equal(t, []template.Command{template.Text{Text: []byte("c")}}, cond.Else)

	include, ok := tmpl.Commands[2].(template.Include)
	require.True(t, ok)
	assert.Equal(t, "t.html", include.Name)
	assert.Equal(t, scanner.Location{Line: 1, Column: 57}, include.Location)
}

func TestExecuteString_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		value template.Value
		want  string
	}{
		{"undefined variable", "ab {{ nope }}", template.Dict{}, "1:4: undefined variable 'nope'"},
		{"undefined template", `{{ template "x.html" }}`, template.Dict{}, "1:1: template 'x.html' not found"},
		{"array is not printable", "{{ . }}", template.Array{}, "1:1: cannot print array value '.'"},
		{"bool is not printable", "{{ b }}", template.Dict{"b": template.Bool(true)}, "1:1: cannot print bool value 'b'"},
		{"dict is not printable", "{{ . }}", template.Dict{}, "1:1: cannot print dict value '.'"},
		{"null is not printable", "{{ . }}", template.Null{}, "1:1: cannot print null value '.'"},
		{
			"double pointer",
			"{{ p }}",
			template.Dict{"p": template.PointerTo(template.PointerTo(template.String("x")))},
			"1:1: double pointer",
		},
		{
			"recursion",
			"{{ define x }}{{ x }}{{ end }}{{ x }}",
			template.Null{},
			"1:15: exceeded maximum template depth (32)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := template.ExecuteString(tt.src, tt.value)
			require.Error(t, err)
			assert.ErrorIs(t, err, reporter.ErrFailure)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

// parse parses src as filename against rep.
func parse(t *testing.T, rep *reporter.Reporter, filename, src string) *template.Template {
	t.Helper()

	tmpl, err := template.Parse(scanner.New([]byte(src), filename, rep))
	require.NoError(t, err)
	return tmpl
}

func TestExecute_Includes(t *testing.T) {
	t.Parallel()

	t.Run("dynamic scoping", func(t *testing.T) {
		t.Parallel()

		rep := reporter.New()
		base := parse(t, rep, "base.html", "<title>{{ title }}</title>{{ body }}")
		post := parse(t, rep, "post.html",
			`{{ define title }}Hi {{ name }}{{ end }}{{ define body }}<p>{{ name }}</p>{{ end }}{{ template "base.html" }}`)

		scope := template.NewScope(template.Dict{"base.html": template.SubTemplate{Template: base}}).
			With(template.Dict{"name": template.String("World")})

		var out strings.Builder
		require.NoError(t, template.Execute(&out, rep, post, scope, nil))
		assert.Equal(t, "<title>Hi World</title><p>World</p>", out.String())
	})

	t.Run("failures note the include site", func(t *testing.T) {
		t.Parallel()

		rep := reporter.New()
		base := parse(t, rep, "base.html", "<h1>\n{{ missing }}")
		post := parse(t, rep, "post.html", "x\n  {{ template \"base.html\" }}")
		scope := template.NewScope(template.Dict{"base.html": template.SubTemplate{Template: base}})

		err := template.Execute(&strings.Builder{}, rep, post, scope, nil)
		require.Error(t, err)
		assert.Equal(t,
			"base.html:2:1: undefined variable 'missing'\npost.html:2:3: note: in template included from here",
			err.Error())
		assert.Same(t, rep.Err(), mustFailure(t, err))
	})
}

func TestExecute_Markdown(t *testing.T) {
	t.Parallel()

	rep := reporter.New()
	doc, err := markdown.Parse(scanner.New([]byte("Hello _world_\n\nMore."), "post.md", rep))
	require.NoError(t, err)

	title, err := markdown.Parse(scanner.New([]byte("Hello _world_"), "post.md", rep))
	require.NoError(t, err)

	tmpl := parse(t, rep, "post.html", "<article>{{ content }}</article>|{{ excerpt }}|{{ title }}")
	scope := template.NewScope(template.Dict{
		"content": template.Markdown{Doc: doc},
		"excerpt": template.Markdown{Doc: doc, Options: markdown.Options{FirstBlockOnly: true}},
		"title":   template.Markdown{Doc: title, Options: markdown.Options{IsInline: true}},
	})

	var out strings.Builder
	require.NoError(t, template.Execute(&out, rep, tmpl, scope, nil))
	assert.Equal(t,
		"<article><p>Hello <em>world</em></p>\n<p>More.</p></article>|<p>Hello <em>world</em></p>|Hello <em>world</em>",
		out.String())
}

func TestExecute_MarkdownFailure(t *testing.T) {
	t.Parallel()

	rep := reporter.New()
	doc, err := markdown.Parse(scanner.New([]byte("_open"), "post.md", rep))
	require.NoError(t, err)

	tmpl := parse(t, rep, "post.html", "{{ content }}")
	scope := template.NewScope(template.Dict{"content": template.Markdown{Doc: doc}})

	err = template.Execute(&strings.Builder{}, rep, tmpl, scope, nil)
	require.Error(t, err)
	assert.Equal(t, "post.md:1:1: unclosed <em> tag", err.Error())
}

type failingWriter struct{}

var errWrite = errors.New("disk full")

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestExecute_WriterErrors(t *testing.T) {
	t.Parallel()

	rep := reporter.New()
	tmpl := parse(t, rep, "a.html", "text")
	err := template.Execute(failingWriter{}, rep, tmpl, template.NewScope(template.Null{}), nil)
	require.ErrorIs(t, err, errWrite)
	assert.NotErrorIs(t, err, reporter.ErrFailure)
}

func TestScope(t *testing.T) {
	t.Parallel()

	root := template.NewScope(template.Dict{"a": template.String("root")})
	child := root.With(template.String("dot"))

	v, ok := child.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, template.String("root"), v)
	assert.Equal(t, template.String("dot"), child.Dot())

	_, ok = child.Lookup("b")
	assert.False(t, ok)

	shadow := child.With(template.Dict{"a": template.String("inner")})
	v, _ = shadow.Lookup("a")
	assert.Equal(t, template.String("inner"), v)
	v, _ = child.Lookup("a")
	assert.Equal(t, template.String("root"), v, "scopes are immutable")
}

func TestTruthy(t *testing.T) {
	t.Parallel()

	assert.False(t, template.Truthy(nil))
	assert.False(t, template.Truthy(template.Null{}))
	assert.False(t, template.Truthy(template.Bool(false)))
	assert.False(t, template.Truthy(template.String("")))
	assert.False(t, template.Truthy(template.Array{}))
	assert.True(t, template.Truthy(template.Bool(true)))
	assert.True(t, template.Truthy(template.String("0")))
	assert.True(t, template.Truthy(template.Dict{}))
	assert.True(t, template.Truthy(template.Date{}))
	assert.Equal(t, "markdown", template.KindMarkdown.String())
}

func mustFailure(t *testing.T, err error) *reporter.Failure {
	t.Helper()

	failure, ok := reporter.AsFailure(err)
	require.True(t, ok)
	return failure
}
