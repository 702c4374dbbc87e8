package pretty_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/gomdsite/internal/ui/pretty"
	"github.com/yaklabco/gomdsite/pkg/reporter"
)

func sources(files map[string]string) pretty.SourceFunc {
	return func(filename string) ([]byte, bool) {
		content, ok := files[filename]
		return []byte(content), ok
	}
}

func TestFormatFailure(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false) // No colors for easier testing

	failure := &reporter.Failure{
		Filename: "base.html",
		Position: reporter.Position{Line: 2, Column: 3},
		Message:  "undefined variable 'nope'",
		Notes: []reporter.Note{{
			Filename: "post.html",
			Position: reporter.Position{Line: 1, Column: 1},
			Message:  "in template included from here",
		}},
	}
	files := sources(map[string]string{
		"base.html": "<h1>\n  {{ nope }}\n",
		"post.html": `{{ template "base.html" }}`,
	})

	want := "  base.html:2:3  error  undefined variable 'nope'\n" +
		"          {{ nope }}\n" +
		"          ^\n" +
		"  post.html:1:1  note  in template included from here\n" +
		"        {{ template \"base.html\" }}\n" +
		"        ^\n"
	assert.Equal(t, want, styles.FormatFailure(failure, files))
}

func TestFormatFailure_WithoutSource(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	failure := &reporter.Failure{Position: reporter.Position{Line: 1, Column: 4}, Message: "unclosed <em> tag"}

	assert.Equal(t, "  1:4  error  unclosed <em> tag\n", styles.FormatFailure(failure, nil))
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	rep := reporter.New()
	located := rep.Fail("post.md", reporter.Position{Line: 1, Column: 1}, "boom")
	assert.Equal(t, "  post.md:1:1  error  boom\n", styles.FormatError("ignored", located, nil))

	plain := errors.New("permission denied")
	assert.Equal(t, "  posts/a.md  error  permission denied\n", styles.FormatError("posts/a.md", plain, nil))
	assert.Equal(t, "  error  permission denied\n", styles.FormatError("", plain, nil))
}

func TestSourceLine(t *testing.T) {
	t.Parallel()

	content := []byte("one\r\ntwo\nthree")

	tests := []struct {
		line int
		want string
		ok   bool
	}{
		{1, "one", true},
		{2, "two", true},
		{3, "three", true},
		{4, "", false},
		{0, "", false},
	}

	for _, testCase := range tests {
		got, ok := pretty.SourceLine(content, testCase.line)
		assert.Equal(t, testCase.ok, ok, "line %d", testCase.line)
		assert.Equal(t, testCase.want, got, "line %d", testCase.line)
	}
}

func TestFormatSourceContext(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	assert.Equal(t, "        a b\n          ^\n", styles.FormatSourceContext("a\tb", 3))
	assert.Equal(t, "        abc\n", styles.FormatSourceContext("abc", 0))
}
