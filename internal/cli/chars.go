package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdsite/internal/logging"
	"github.com/yaklabco/gomdsite/pkg/site"
)

func newCharsCommand(globals *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chars [dir]",
		Short: "Print the characters used by the built site",
		Long: `Print every character a font must cover to display the built site: the
printable ASCII range followed by each other character found in the .html,
.xml and .svg files under dir, sorted and without duplicates. dir defaults
to the output directory.

The result can be passed to a font subsetting tool.

Examples:
  gomdsite chars
  pyftsubset font.ttf --text="$(gomdsite chars)"`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var dir string
			if len(args) == 1 {
				dir = args[0]
			} else {
				cfg, err := loadConfig(ctx, globals, nil)
				if err != nil {
					return err
				}
				dir = site.ResolveDir(cfg.Root, cfg.Dirs.Output)
			}
			logging.FromContext(ctx).Debug("collecting characters", logging.FieldOutput, dir)

			chars, err := site.CollectChars(ctx, dir)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), chars)
			return err
		},
	}

	return cmd
}
