package site

import (
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/yaklabco/gomdsite/pkg/fsutil"
	"github.com/yaklabco/gomdsite/pkg/markdown"
)

// linkHooks resolve links between posts and check images against the
// assets directory. They are read-only after construction and shared by
// all workers.
type linkHooks struct {
	// posts maps a post file name ("hello.md") to its URL.
	posts  map[string]string
	assets string
}

func newLinkHooks(posts []*Document, assets string) *linkHooks {
	h := &linkHooks{posts: make(map[string]string, len(posts)), assets: assets}
	for _, post := range posts {
		h.posts[post.Name+".md"] = post.URL
	}
	return h
}

// WriteURL implements markdown.Hooks. Relative links to a .md file must
// name a post and are rewritten to its URL.
func (h *linkHooks) WriteURL(w io.Writer, url string, fail markdown.FailFunc) error {
	if isRelative(url) {
		target, fragment, _ := strings.Cut(url, "#")
		if strings.HasSuffix(target, ".md") {
			resolved, ok := h.posts[path.Base(target)]
			if !ok {
				return fail("link to unknown post '%s'", target)
			}
			url = resolved
			if fragment != "" {
				url += "#" + fragment
			}
		}
	}
	return markdown.WriteEscapedURL(w, url)
}

// WriteImage implements markdown.Hooks. Relative images must exist under
// the assets directory and are served from the site root.
func (h *linkHooks) WriteImage(w io.Writer, url string, fail markdown.FailFunc) error {
	if isRelative(url) {
		if !fsutil.Exists(filepath.Join(h.assets, filepath.FromSlash(url))) {
			return fail("image not found: %s", url)
		}
		url = "/" + url
	}
	return markdown.DefaultHooks{}.WriteImage(w, url, fail)
}

// isRelative reports whether url is a path relative to the current
// document: no scheme, no leading slash and not a bare fragment.
func isRelative(url string) bool {
	if url == "" || url[0] == '/' || url[0] == '#' {
		return false
	}
	if i := strings.IndexAny(url, ":/?#"); i >= 0 && url[i] == ':' {
		return false
	}
	return true
}
