package markdown

import (
	"io"

	"github.com/yuin/goldmark/util"
)

// FailFunc reports a failure located at the token that triggered a hook.
type FailFunc func(format string, args ...any) error

// Hooks write link targets and images. The renderer never resolves paths
// itself; a hook that fails should return the error from fail, which the
// renderer propagates unchanged.
type Hooks interface {
	// WriteURL writes the value of an href attribute.
	WriteURL(w io.Writer, url string, fail FailFunc) error

	// WriteImage writes the element for a figure image.
	WriteImage(w io.Writer, url string, fail FailFunc) error
}

// DefaultHooks escape URLs and emit plain <img> elements.
type DefaultHooks struct{}

// WriteURL implements Hooks.
func (DefaultHooks) WriteURL(w io.Writer, url string, _ FailFunc) error {
	return WriteEscapedURL(w, url)
}

// WriteImage implements Hooks.
func (DefaultHooks) WriteImage(w io.Writer, url string, _ FailFunc) error {
	if _, err := io.WriteString(w, `<img src="`); err != nil {
		return err
	}
	if err := WriteEscapedURL(w, url); err != nil {
		return err
	}
	_, err := io.WriteString(w, `">`)
	return err
}

// WriteEscapedURL percent-encodes url and escapes it for an HTML attribute.
func WriteEscapedURL(w io.Writer, url string) error {
	_, err := w.Write(util.EscapeHTML(util.URLEscape([]byte(url), false)))
	return err
}
