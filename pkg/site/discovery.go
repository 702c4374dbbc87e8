package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yaklabco/gomdsite/pkg/config"
)

// ErrNoTemplates indicates a templates directory without any .html file.
var ErrNoTemplates = errors.New("no templates found")

// Sources lists the input files of a site. Paths are absolute and sorted.
type Sources struct {
	Root      string
	Posts     []string
	Pages     []string
	Templates []string
	Assets    string
	Output    string
}

// Discover finds the posts, pages and templates of the site configured by
// cfg. Missing post and page directories yield no files; a missing or empty
// templates directory is an error.
func Discover(ctx context.Context, cfg *config.Config) (*Sources, error) {
	root, err := resolveRoot(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	src := &Sources{
		Root:   root,
		Assets: ResolveDir(root, cfg.Dirs.Assets),
		Output: ResolveDir(root, cfg.Dirs.Output),
	}

	if src.Posts, err = listFiles(ctx, ResolveDir(root, cfg.Dirs.Posts), ".md"); err != nil {
		return nil, err
	}
	if src.Pages, err = listFiles(ctx, ResolveDir(root, cfg.Dirs.Pages), ".md"); err != nil {
		return nil, err
	}

	templatesDir := ResolveDir(root, cfg.Dirs.Templates)
	if src.Templates, err = listFiles(ctx, templatesDir, ".html"); err != nil {
		return nil, err
	}
	if len(src.Templates) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoTemplates, templatesDir)
	}

	return src, nil
}

// Rel returns path relative to the project root for display.
func (s *Sources) Rel(path string) string {
	rel, err := filepath.Rel(s.Root, path)
	if err != nil {
		return path
	}
	return rel
}

// ResolveDir resolves a configured directory against the project root.
// Absolute directories are returned unchanged.
func ResolveDir(root, dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(root, dir)
}

// resolveRoot resolves the project root, defaulting to os.Getwd().
func resolveRoot(root string) (string, error) {
	if root == "" || root == "." {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

// listFiles returns the regular files directly inside dir with extension
// ext, skipping hidden files.
func listFiles(ctx context.Context, dir, ext string) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("discovery cancelled: %w", ctx.Err())
	default:
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}

	// Sort for deterministic ordering.
	sort.Strings(files)

	return files, nil
}
