package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/yaklabco/gomdsite/pkg/fsutil"
)

func FuzzWriteAtomic(f *testing.F) {
	// Add seed corpus.
	f.Add([]byte(""))
	f.Add([]byte("hello"))
	f.Add([]byte("hello\nworld\n"))
	f.Add([]byte("line with trailing space  \n"))
	f.Add([]byte("\x00\x01\x02\x03"))
	f.Add(make([]byte, 1024))

	f.Fuzz(func(t *testing.T, content []byte) {
		dir := t.TempDir()
		path := filepath.Join(dir, "test.txt")

		ctx := context.Background()
		err := fsutil.WriteAtomic(ctx, path, content, 0644)

		if err != nil {
			// WriteAtomic should not fail for valid paths and content.
			t.Fatalf("WriteAtomic failed: %v", err)
		}

		// Read back and verify.
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}

		if len(got) != len(content) {
			t.Errorf("content length mismatch: got %d, want %d", len(got), len(content))
		}

		for i := range got {
			if got[i] != content[i] {
				t.Errorf("content mismatch at byte %d: got %d, want %d", i, got[i], content[i])
				break
			}
		}
	})
}

func FuzzReadFile(f *testing.F) {
	// Add seed corpus.
	f.Add([]byte("hello"))
	f.Add([]byte("---\ntitle: x\n---\n"))
	f.Add([]byte(""))
	f.Add(make([]byte, 1024))

	f.Fuzz(func(t *testing.T, content []byte) {
		dir := t.TempDir()
		path := filepath.Join(dir, "post.md")

		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}

		got, info, err := fsutil.ReadFile(context.Background(), path)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}

		if len(got) != len(content) || info.Size != int64(len(content)) {
			t.Errorf("content length mismatch: got %d (size %d), want %d", len(got), info.Size, len(content))
		}
	})
}
