package pretty

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yaklabco/gomdsite/pkg/site"
)

const summaryDividerWidth = 40

// plural returns "n word" with an "s" appended unless n is 1.
func plural(n int, word string) string {
	if n == 1 {
		return strconv.Itoa(n) + " " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

// FormatSummaryOneLine formats build statistics as a single line.
// Example: "Built 2 posts and 1 page (5 written, 1 unchanged, 3 assets) in 12ms".
func (s *Styles) FormatSummaryOneLine(stats site.Stats, dryRun bool) string {
	verb := "Built"
	if dryRun {
		verb = "Checked"
	}
	head := fmt.Sprintf("%s %s and %s", verb, plural(stats.Posts, "post"), plural(stats.Pages, "page"))

	var details []string
	if !dryRun {
		details = append(details,
			fmt.Sprintf("%d written", stats.Written),
			fmt.Sprintf("%d unchanged", stats.Unchanged),
		)
		if stats.Assets > 0 {
			details = append(details, plural(stats.Assets, "asset"))
		}
	}
	if stats.Drafts > 0 {
		details = append(details, plural(stats.Drafts, "draft")+" skipped")
	}

	var builder strings.Builder
	if stats.Failures > 0 {
		builder.WriteString(s.Failure.Render(plural(stats.Failures, "failure")))
		builder.WriteString(", ")
		head = strings.ToLower(head[:1]) + head[1:]
	} else {
		head = s.Success.Render(head)
	}
	builder.WriteString(head)
	if len(details) > 0 {
		builder.WriteString(s.Dim.Render(" (" + strings.Join(details, ", ") + ")"))
	}
	builder.WriteString(s.Dim.Render(" in " + stats.Duration.Round(time.Millisecond).String()))
	builder.WriteString("\n")

	return builder.String()
}

// FormatSummary formats build statistics as a summary block.
func (s *Styles) FormatSummary(stats site.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	row := func(label string, value int) {
		builder.WriteString(fmt.Sprintf("  %-19s%s\n", label+":", s.SummaryValue.Render(strconv.Itoa(value))))
	}
	row("Templates", stats.Templates)
	row("Posts", stats.Posts)
	row("Pages", stats.Pages)
	if stats.Drafts > 0 {
		row("Drafts skipped", stats.Drafts)
	}
	row("Written", stats.Written)
	row("Unchanged", stats.Unchanged)
	if stats.Assets > 0 {
		row("Assets copied", stats.Assets)
	}

	builder.WriteString("\n")

	if stats.Failures > 0 {
		builder.WriteString(s.Failure.Render("Build failed with " + plural(stats.Failures, "failure")))
	} else {
		builder.WriteString(s.Success.Render("Build passed"))
	}
	builder.WriteString("\n")

	return builder.String()
}
