package site

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/gomdsite/pkg/fsutil"
)

// ASCIICharset is the printable ASCII range every font subset keeps.
const ASCIICharset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~ "

// charsExtensions are the generated files scanned by CollectChars.
var charsExtensions = []string{".html", ".xml", ".svg"}

// CollectChars returns ASCIICharset followed by every non-ASCII character
// used in the HTML, XML and SVG files under dir, in code point order. The
// result is meant for font subsetting.
func CollectChars(ctx context.Context, dir string) (string, error) {
	seen := make(map[rune]struct{})

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("collect chars: %w", err)
		}
		if entry.IsDir() || !slices.Contains(charsExtensions, strings.ToLower(filepath.Ext(path))) {
			return nil
		}

		content, _, err := fsutil.ReadFile(ctx, path)
		if err != nil {
			return err
		}
		for len(content) > 0 {
			r, size := utf8.DecodeRune(content)
			content = content[size:]
			if r >= utf8.RuneSelf && r != utf8.RuneError {
				seen[r] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	runes := make([]rune, 0, len(seen))
	for r := range seen {
		runes = append(runes, r)
	}
	slices.Sort(runes)

	return ASCIICharset + string(runes), nil
}
