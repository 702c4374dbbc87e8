package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdsite/pkg/fsutil"
)

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	t.Run("writes new file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "index.html")
		require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte("hello"), 0o644))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(got))
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "index.html")
		require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))
		require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte("new content"), 0o644))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new content", string(got))
	})

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "post", "hello", "index.html")
		require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte("x"), 0))

		stat, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, fsutil.DefaultFileMode, stat.Mode().Perm())

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		for _, entry := range entries {
			assert.False(t, strings.Contains(entry.Name(), ".tmp."), "temp file left behind: %s", entry.Name())
		}
	})

	t.Run("preserves specified mode", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "secret")
		require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte("x"), 0o600))

		stat, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), stat.Mode().Perm())
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "index.html")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.Error(t, fsutil.WriteAtomic(ctx, path, []byte("content"), 0o644))
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err), "file should not have been created")
	})
}

func TestWriteAtomicIfChanged(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "feed.xml")

	written, err := fsutil.WriteAtomicIfChanged(ctx, path, []byte("a"), 0)
	require.NoError(t, err)
	assert.True(t, written, "new files are written")

	written, err = fsutil.WriteAtomicIfChanged(ctx, path, []byte("a"), 0)
	require.NoError(t, err)
	assert.False(t, written, "identical content is skipped")

	written, err = fsutil.WriteAtomicIfChanged(ctx, path, []byte("b"), 0)
	require.NoError(t, err)
	assert.True(t, written)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "b", string(got))
}
