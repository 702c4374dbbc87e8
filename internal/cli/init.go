package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdsite/internal/configloader"
	"github.com/yaklabco/gomdsite/internal/logging"
	"github.com/yaklabco/gomdsite/pkg/config"
	"github.com/yaklabco/gomdsite/pkg/fsutil"
)

// defaultConfigFile is the project configuration written by init.
const defaultConfigFile = ".gomdsite.yml"

// errExists is returned when init would overwrite a file without --force.
var errExists = errors.New("file already exists")

// initFlags holds the flags for the init command.
type initFlags struct {
	force    bool
	full     bool
	scaffold bool
	title    string
	output   string
}

func newInitCommand(globals *globalFlags) *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new gomdsite project",
		Long: `Create a new .gomdsite.yml configuration file in the current directory
with sensible defaults. With --scaffold, starter templates and a first post
are written as well.

Examples:
  gomdsite init                       Create minimal .gomdsite.yml
  gomdsite init --full                Write every setting with its default
  gomdsite init --scaffold            Also create templates and a first post
  gomdsite init --title "Field Notes" Set the site title`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), globals, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&flags.full, "full", false, "Write every setting with its default value")
	cmd.Flags().BoolVar(&flags.scaffold, "scaffold", false, "Create starter templates and a first post")
	cmd.Flags().StringVar(&flags.title, "title", "", "Site title")
	cmd.Flags().StringVarP(&flags.output, "output", "o", defaultConfigFile, "Configuration file path")

	return cmd
}

func runInit(ctx context.Context, globals *globalFlags, flags *initFlags) error {
	logger := logging.NewInteractive()

	dir := globals.dir
	if dir == "" {
		dir = "."
	}
	outputPath := flags.output
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(dir, outputPath)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{
		Full:  flags.full,
		Title: flags.title,
	})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	written, err := writeNew(ctx, logger, outputPath, content, flags.force)
	if err != nil {
		return err
	}
	if written {
		logger.Info("created configuration file", logging.FieldPath, outputPath)
	}

	if flags.scaffold {
		for _, file := range scaffoldFiles(time.Now()) {
			path := filepath.Join(filepath.Dir(outputPath), filepath.FromSlash(file.path))
			written, err := writeNew(ctx, logger, path, []byte(file.content), flags.force)
			if err != nil {
				return err
			}
			if written {
				logger.Info("created", logging.FieldPath, path)
			}
		}
	}

	logger.Info("run 'gomdsite build' to render the site")

	return nil
}

// writeNew writes content to path. An existing file is replaced only with
// force or after confirmation on an interactive terminal.
func writeNew(ctx context.Context, logger *log.Logger, path string, content []byte, force bool) (bool, error) {
	if fsutil.Exists(path) {
		switch {
		case force:
			logger.Warn("overwriting existing file", logging.FieldPath, path)
		case configloader.IsInteractive():
			ok, err := configloader.Confirm(os.Stdin, os.Stderr, fmt.Sprintf("Overwrite %s?", path))
			if err != nil {
				return false, err
			}
			if !ok {
				logger.Info("skipped", logging.FieldPath, path)
				return false, nil
			}
		default:
			return false, usageError(fmt.Errorf("%w: %s; use --force to overwrite", errExists, path))
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), fsutil.DefaultDirMode); err != nil {
		return false, fmt.Errorf("create directory: %w", err)
	}
	if err := fsutil.WriteAtomic(ctx, path, content, fsutil.DefaultFileMode); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

type scaffoldFile struct {
	path    string
	content string
}

func scaffoldFiles(now time.Time) []scaffoldFile {
	return []scaffoldFile{
		{"templates/base.html", scaffoldBase},
		{"templates/index.html", scaffoldIndex},
		{"templates/post.html", scaffoldPost},
		{"templates/page.html", scaffoldPage},
		{"posts/hello-world.md", fmt.Sprintf(scaffoldPostSource, now.Format(time.DateOnly))},
	}
}

const scaffoldBase = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{ title }}</title>
{{ if feed_url }}
<link rel="alternate" type="application/atom+xml" href="{{ feed_url }}">
{{ end }}
</head>
<body>
<header><a href="/">{{ site_title }}</a></header>
<main>
{{ body }}
</main>
</body>
</html>
`

const scaffoldIndex = `{{ define title }}{{ site_title }}{{ end }}
{{ define body }}
<ul>
{{ range posts }}
<li><a href="{{ url }}">{{ title }}</a>{{ if date_short }} <time>{{ date_short }}</time>{{ end }}</li>
{{ end }}
</ul>
{{ end }}
{{ template "base.html" }}
`

const scaffoldPost = `{{ define body }}
<article>
<h1>{{ title }}</h1>
{{ if date }}
<time>{{ date }}</time>
{{ end }}
{{ content }}
</article>
{{ end }}
{{ template "base.html" }}
`

const scaffoldPage = `{{ define body }}
<h1>{{ title }}</h1>
{{ content }}
{{ end }}
{{ template "base.html" }}
`

const scaffoldPostSource = `---
title: Hello, world
description: The first post.
status: %s
---
Posts are written in Markdown. Link to other posts by file name, like
[this one](hello-world.md), and put images under assets/.
`
