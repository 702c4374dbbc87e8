// Package cli provides the Cobra command structure for gomdsite.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdsite/internal/logging"
	"github.com/yaklabco/gomdsite/internal/ui/pretty"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	debug      bool
	configPath string
	color      string
	dir        string
}

// NewRootCommand creates the root gomdsite command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	globals := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "gomdsite",
		Short: "A small static site generator for Markdown blogs",
		Long: `gomdsite turns a directory of Markdown posts and pages into a static
website.

Posts and pages carry a short front matter block. They are rendered through
HTML layouts written in a small template language, linked against each other
and published together with an Atom feed. Broken links, missing images and
template mistakes are reported with the file, line and column they occur at.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := "info"
			if globals.debug {
				level = "debug"
			}
			logger := logging.NewWithWriter(cmd.ErrOrStderr(), level)
			logging.SetDefault(logger)
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&globals.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&globals.configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&globals.color, "color", pretty.ColorAuto,
		"colorize output: auto, always, never")
	rootCmd.PersistentFlags().StringVarP(&globals.dir, "chdir", "C", "",
		"run as if started in this directory")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	// Add subcommands.
	rootCmd.AddCommand(newBuildCommand(globals))
	rootCmd.AddCommand(newCheckCommand(globals))
	rootCmd.AddCommand(newRenderCommand(globals))
	rootCmd.AddCommand(newListCommand(globals))
	rootCmd.AddCommand(newCharsCommand(globals))
	rootCmd.AddCommand(newInitCommand(globals))
	rootCmd.AddCommand(newVersionCommand(info))

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(globals.color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
