package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/gomdsite/internal/ui/pretty"
)

// HelpStyles contains Lipgloss styles for command help formatting.
type HelpStyles struct {
	Command     lipgloss.Style
	Heading     lipgloss.Style
	Subcommand  lipgloss.Style
	Flag        lipgloss.Style
	Description lipgloss.Style
	Example     lipgloss.Style
	Dim         lipgloss.Style
}

// NewHelpStyles creates help styles based on color mode.
func NewHelpStyles(colorEnabled bool) *HelpStyles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &HelpStyles{
			Command:     plain,
			Heading:     plain,
			Subcommand:  plain,
			Flag:        plain,
			Description: plain,
			Example:     plain,
			Dim:         plain,
		}
	}
	return &HelpStyles{
		Command:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Heading:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Subcommand:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Flag:        lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Description: lipgloss.NewStyle(),
		Example:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Dim:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// HelpFormatter provides styled help output for Cobra commands.
type HelpFormatter struct {
	styles *HelpStyles
}

// NewHelpFormatter creates a new help formatter with the given color mode.
func NewHelpFormatter(colorMode string, writer io.Writer) *HelpFormatter {
	return &HelpFormatter{styles: NewHelpStyles(pretty.IsColorEnabled(colorMode, writer))}
}

// ApplyToCommand installs the styled help and usage functions on cmd. Cobra
// inherits them in every subcommand.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	cmd.SetUsageFunc(func(command *cobra.Command) error {
		_, err := io.WriteString(command.OutOrStderr(), h.Usage(command))
		return err
	})
	cmd.SetHelpFunc(func(command *cobra.Command, _ []string) {
		if _, err := io.WriteString(command.OutOrStdout(), h.Help(command)); err != nil {
			command.PrintErrln(err)
		}
	})
}

// Help renders the long description of cmd followed by its usage.
func (h *HelpFormatter) Help(cmd *cobra.Command) string {
	var b strings.Builder
	if cmd.Runnable() || cmd.HasSubCommands() {
		b.WriteString(h.styles.Command.Render(cmd.CommandPath()))
		b.WriteString("\n\n")
	}
	if text := cmd.Long; text != "" || cmd.Short != "" {
		if text == "" {
			text = cmd.Short
		}
		b.WriteString(trimTrailingWhitespaces(text))
		b.WriteString("\n\n")
	}
	b.WriteString(h.Usage(cmd))
	return b.String()
}

// Usage renders the usage line, subcommands and flags of cmd.
func (h *HelpFormatter) Usage(cmd *cobra.Command) string {
	var b strings.Builder
	heading := func(title string) {
		b.WriteString("\n")
		b.WriteString(h.styles.Heading.Render(title))
		b.WriteString("\n")
	}

	b.WriteString(h.styles.Heading.Render("Usage:"))
	b.WriteString("\n")
	if cmd.Runnable() {
		fmt.Fprintf(&b, "  %s\n", h.styles.Command.Render(cmd.UseLine()))
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(&b, "  %s [command]\n", h.styles.Command.Render(cmd.CommandPath()))
	}

	if len(cmd.Aliases) > 0 {
		heading("Aliases:")
		fmt.Fprintf(&b, "  %s\n", h.styles.Dim.Render(strings.Join(cmd.Aliases, ", ")))
	}

	if cmd.HasAvailableSubCommands() {
		heading("Available Commands:")
		for _, sub := range cmd.Commands() {
			if !sub.IsAvailableCommand() && sub.Name() != "help" {
				continue
			}
			fmt.Fprintf(&b, "  %s %s\n",
				h.styles.Subcommand.Render(rpad(sub.Name(), cmd.NamePadding())),
				h.styles.Description.Render(sub.Short))
		}
	}

	if cmd.HasAvailableLocalFlags() {
		heading("Flags:")
		b.WriteString(h.flagUsages(cmd.LocalFlags()))
	}
	if cmd.HasAvailableInheritedFlags() {
		heading("Global Flags:")
		b.WriteString(h.flagUsages(cmd.InheritedFlags()))
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(&b, "\nUse \"%s\" for more information about a command.\n",
			h.styles.Command.Render(cmd.CommandPath()+" [command] --help"))
	}
	return b.String()
}

// flagUsages lists the visible flags of flags, one per line, with names
// aligned in a column.
func (h *HelpFormatter) flagUsages(flags *pflag.FlagSet) string {
	type row struct {
		names, kind, usage string
	}

	var rows []row
	width := 0
	flags.VisitAll(func(flag *pflag.Flag) {
		if flag.Hidden {
			return
		}
		names := "    --" + flag.Name
		if flag.Shorthand != "" {
			names = "-" + flag.Shorthand + ", --" + flag.Name
		}
		kind, usage := pflag.UnquoteUsage(flag)
		if flag.DefValue != "" && flag.DefValue != "false" && flag.DefValue != "0" {
			usage += fmt.Sprintf(" (default %q)", flag.DefValue)
		}
		r := row{names: names, kind: kind, usage: usage}
		if n := len(r.names) + len(r.kind) + 1; n > width {
			width = n
		}
		rows = append(rows, r)
	})

	var b strings.Builder
	for _, r := range rows {
		pad := width - len(r.names)
		b.WriteString("  ")
		b.WriteString(h.styles.Flag.Render(r.names))
		if r.kind != "" {
			b.WriteString(" ")
			b.WriteString(h.styles.Dim.Render(r.kind))
			pad -= len(r.kind) + 1
		}
		b.WriteString(strings.Repeat(" ", pad+3))
		b.WriteString(h.styles.Description.Render(r.usage))
		b.WriteString("\n")
	}
	return b.String()
}

// rpad adds padding to the right of a string.
func rpad(str string, padding int) string {
	if len(str) >= padding {
		return str
	}
	return str + strings.Repeat(" ", padding-len(str))
}

// trimTrailingWhitespaces removes trailing whitespace from lines.
func trimTrailingWhitespaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
