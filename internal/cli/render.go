package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdsite/internal/configloader"
	"github.com/yaklabco/gomdsite/pkg/site"
)

func newRenderCommand(globals *globalFlags) *cobra.Command {
	var noHighlight bool

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a single Markdown file or template to stdout",
		Long: `Render one file and print the result.

A Markdown file is rendered without its front matter. A template (.html) is
executed with the site globals bound. Links and images are checked against
the site when it has templates; otherwise they are written as given.

Examples:
  gomdsite render posts/hello.md
  gomdsite render templates/index.html > index.html`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			overrides := &configloader.Overrides{}
			if noHighlight {
				highlight := false
				overrides.HighlightCode = &highlight
			}

			cfg, err := loadConfig(ctx, globals, overrides)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := site.New(cfg).RenderFile(ctx, &buf, args[0]); err != nil {
				return err
			}
			if _, err := buf.WriteTo(cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noHighlight, "no-highlight", false, "disable syntax highlighting of code blocks")

	return cmd
}
