package site

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRelative(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want bool
	}{
		{"older.md", true},
		{"img/cat.png", true},
		{"older.md#top", true},
		{"a:b/c", false},
		{"dir/a:b", true},
		{"/about/", false},
		{"#top", false},
		{"https://example.com/x.md", false},
		{"mailto:me@example.com", false},
		{"", false},
	}

	for _, testCase := range tests {
		t.Run(testCase.url, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, isRelative(testCase.url))
		})
	}
}

func TestLinkHooks_WriteURL(t *testing.T) {
	t.Parallel()

	hooks := newLinkHooks([]*Document{{Name: "hello", URL: "/post/hello/"}}, t.TempDir())
	fail := func(format string, args ...any) error { return fmt.Errorf(format, args...) }

	var out strings.Builder
	require.NoError(t, hooks.WriteURL(&out, "../posts/hello.md", fail))
	assert.Equal(t, "/post/hello/", out.String())

	out.Reset()
	require.NoError(t, hooks.WriteURL(&out, "https://example.com/x.md", fail))
	assert.Equal(t, "https://example.com/x.md", out.String())

	err := hooks.WriteURL(&out, "gone.md", fail)
	require.EqualError(t, err, "link to unknown post 'gone.md'")
}
