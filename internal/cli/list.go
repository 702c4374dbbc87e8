package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/gomdsite/internal/configloader"
	"github.com/yaklabco/gomdsite/internal/logging"
	"github.com/yaklabco/gomdsite/internal/report"
	"github.com/yaklabco/gomdsite/pkg/config"
	"github.com/yaklabco/gomdsite/pkg/site"
)

func newListCommand(globals *globalFlags) *cobra.Command {
	var (
		format string
		drafts bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"posts"},
		Short:   "List posts, newest first",
		Long: `List the posts of the site, newest first, with their date, slug, title
and category. Posts that fail to load are logged and left out.

Examples:
  gomdsite list                   Table of published posts
  gomdsite list --drafts          Include drafts
  gomdsite list --format json     JSON array of posts`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := logging.FromContext(ctx)

			outputFormat, err := config.ParseOutputFormat(format)
			if err != nil {
				return usageError(err)
			}

			overrides := &configloader.Overrides{Format: &outputFormat}
			if cmd.Flags().Changed("drafts") {
				overrides.Drafts = &drafts
			}
			cfg, err := loadConfig(ctx, globals, overrides)
			if err != nil {
				return err
			}

			s := site.New(cfg)
			failed, err := s.Load(ctx)
			if err != nil {
				return err
			}
			for _, outcome := range failed {
				logger.Warn("skipped", logging.FieldPath, outcome.Source, logging.FieldError, outcome.Err)
			}

			opts := report.DefaultOptions()
			opts.Writer = cmd.OutOrStdout()
			opts.Format = cfg.Format
			opts.Color = globals.color
			opts.TermWidth = terminalWidth(opts.Writer)
			return report.ReportPosts(opts, s.Posts())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(config.FormatText), "output format: text, json")
	cmd.Flags().BoolVar(&drafts, "drafts", false, "include draft posts")

	return cmd
}

// terminalWidth returns the width of w when it is a terminal, or 0.
func terminalWidth(w any) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
