package fsutil

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyFile copies src to dst atomically, keeping the source mode. It
// returns false when dst already held the same bytes.
func CopyFile(ctx context.Context, src, dst string) (bool, error) {
	content, info, err := ReadFile(ctx, src)
	if err != nil {
		return false, err
	}
	return WriteAtomicIfChanged(ctx, dst, content, info.Mode.Perm())
}

// CopyTree copies every regular file under src into dst, preserving the
// relative layout, and returns the number of files written. A missing src
// copies nothing.
func CopyTree(ctx context.Context, src, dst string) (int, error) {
	if !dirExists(src) {
		return 0, nil
	}

	written := 0
	err := filepath.WalkDir(src, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("copy tree: %w", err)
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("relative path: %w", err)
		}
		changed, err := CopyFile(ctx, path, filepath.Join(dst, rel))
		if err != nil {
			return err
		}
		if changed {
			written++
		}
		return nil
	})
	if err != nil {
		return written, fmt.Errorf("copy %s: %w", src, err)
	}
	return written, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
