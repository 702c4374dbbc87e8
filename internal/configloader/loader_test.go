package configloader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdsite/pkg/config"
)

// isolated returns options that read nothing outside dir.
func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".git", "HEAD"), "ref")

	result, err := Load(context.Background(), isolated(tmpDir))
	require.NoError(t, err)
	require.NotNil(t, result.Config)

	assert.Equal(t, "public", result.Config.Dirs.Output)
	assert.Equal(t, tmpDir, result.Config.Root)
	assert.Empty(t, result.LoadedFrom)
	assert.Contains(t, strings.Join(result.Warnings, "\n"), "site title is empty")
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref")
	writeFile(t, filepath.Join(root, ".gomdsite.yml"), `
title: Notes
base_url: https://example.com
drafts: true
markdown:
  shift_heading_level: 1
`)
	nested := filepath.Join(root, "posts", "2024")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	result, err := Load(context.Background(), isolated(nested))
	require.NoError(t, err)

	cfg := result.Config
	assert.Equal(t, "Notes", cfg.Title)
	assert.True(t, cfg.Drafts)
	assert.Equal(t, 1, cfg.Markdown.ShiftHeadingLevel)
	assert.True(t, cfg.Markdown.HighlightCode, "defaults survive the overlay")
	assert.Equal(t, root, cfg.Root, "the root is the directory of the project config")
	assert.Equal(t, []string{filepath.Join(root, ".gomdsite.yml")}, result.LoadedFrom)
	assert.Empty(t, result.Warnings)
}

func TestLoad_ExplicitConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".gomdsite.yml"), "title: Project\n")
	custom := filepath.Join(tmpDir, "site", "custom.yml")
	writeFile(t, custom, "title: Explicit\ntheme: dark\n")

	opts := isolated(tmpDir)
	opts.ExplicitPath = custom
	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, "Explicit", result.Config.Title)
	assert.Equal(t, filepath.Dir(custom), result.Config.Root)
	assert.Equal(t, []string{custom}, result.LoadedFrom, "an explicit config replaces the project config")
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "theme")
}

func TestLoad_Overrides(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".gomdsite.yml"), "title: T\nbase_url: https://x.org\ndrafts: true\njobs: 2\n")

	drafts := false
	jobs := 8
	opts := isolated(tmpDir)
	opts.Overrides = &Overrides{Drafts: &drafts, Jobs: &jobs}

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, result.Config.Drafts, "flags can switch settings off")
	assert.Equal(t, 8, result.Config.Jobs)
	assert.Equal(t, "T", result.Config.Title)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "title: [", "parse yaml"},
		{"bad date style", "date_style: medium", "date_style"},
		{"negative jobs", "jobs: -1", "jobs must be >= 0"},
		{"relative base url", "base_url: /blog", "base URL must be absolute"},
		{"output collides", "dirs:\n  output: posts", "output directory must differ from dirs.posts"},
		{"heading shift", "markdown:\n  shift_heading_level: 9", "shift must be between -5 and 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			writeFile(t, filepath.Join(tmpDir, ".gomdsite.yml"), tt.content)

			_, err := Load(context.Background(), isolated(tmpDir))
			require.Error(t, err)
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

//nolint:paralleltest // Uses t.Setenv.
func TestLoad_Env(t *testing.T) {
	t.Setenv("GOMDSITE_DRAFTS", "true")
	t.Setenv("GOMDSITE_JOBS", "3")
	t.Setenv("GOMDSITE_BASE_URL", "https://env.example")

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".gomdsite.yml"), "title: T\nbase_url: https://file.example\n")

	opts := isolated(tmpDir)
	opts.IgnoreEnv = false
	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	assert.True(t, result.Config.Drafts)
	assert.Equal(t, 3, result.Config.Jobs)
	assert.Equal(t, "https://env.example", result.Config.BaseURL)
}

//nolint:paralleltest // Uses t.Setenv.
func TestLoadFromEnv_Invalid(t *testing.T) {
	t.Setenv("GOMDSITE_DRAFTS", "maybe")

	err := LoadFromEnv(config.NewConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid boolean for GOMDSITE_DRAFTS")
}

func TestFindProjectConfig_StopsAtVCSRoot(t *testing.T) {
	t.Parallel()

	outer := t.TempDir()
	writeFile(t, filepath.Join(outer, ".gomdsite.yml"), "title: outer\n")
	repo := filepath.Join(outer, "repo")
	writeFile(t, filepath.Join(repo, ".git", "HEAD"), "ref")

	path, err := FindProjectConfig(context.Background(), repo)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestMergeAll(t *testing.T) {
	t.Parallel()

	title := "first"
	second := "second"
	output := "dist"

	base := config.NewConfig()
	cfg := MergeAll(base, &Overrides{Title: &title, Output: &output}, nil, &Overrides{Title: &second})

	assert.Equal(t, "second", cfg.Title)
	assert.Equal(t, "dist", cfg.Dirs.Output)
	assert.Equal(t, "public", base.Dirs.Output, "the base is not modified")
	assert.NotNil(t, MergeAll(nil))
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		answer string
		want   bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"\n", false},
		{"no\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out strings.Builder
		got, err := Confirm(strings.NewReader(tt.answer), &out, "Overwrite?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "answer %q", tt.answer)
		assert.Equal(t, "Overwrite? [y/N] ", out.String())
	}
}

func TestListEnvVars(t *testing.T) {
	t.Parallel()

	vars := ListEnvVars()
	require.NotEmpty(t, vars)
	assert.Equal(t, "GOMDSITE_BASE_URL", vars[0][0])
	assert.Equal(t, "GOMDSITE_DRAFTS", GetEnvVarName("drafts"))
}
