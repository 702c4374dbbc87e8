package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/gomdsite/pkg/date"
	"github.com/yaklabco/gomdsite/pkg/site"
)

// Table formatting constants.
const (
	tablePadding     = 2
	tableColumnCount = 4 // DATE, SLUG, TITLE, CATEGORY
	minDateWidth     = 12
	minSlugWidth     = 12
	minTitleWidth    = 30
	minCategoryWidth = 8
	heavySeparator   = "="
	defaultTermWidth = 100
	draftLabel       = "draft"
)

// TableRow represents a single row in the post table.
type TableRow struct {
	Date     string
	Slug     string
	Title    string
	Category string
	Draft    bool
}

// TableFormatter formats post listings as a styled table.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:    styles,
		termWidth: termWidth,
	}
}

// FormatPosts formats posts as a table, one row per post in the given
// order.
func (t *TableFormatter) FormatPosts(posts []*site.Document) string {
	if len(posts) == 0 {
		return ""
	}

	rows := make([]TableRow, 0, len(posts))
	for _, post := range posts {
		rows = append(rows, DocumentToTableRow(post))
	}

	widths := t.calculateColumnWidths(rows)

	var builder strings.Builder
	builder.WriteString(t.formatHeader(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths))
	builder.WriteString("\n")
	for _, row := range rows {
		builder.WriteString(t.formatRow(row, widths))
		builder.WriteString("\n")
	}
	builder.WriteString(t.formatSeparator(widths))
	builder.WriteString("\n")

	return builder.String()
}

type columnWidths struct {
	date     int
	slug     int
	title    int
	category int
}

// calculateColumnWidths determines optimal column widths based on content.
func (t *TableFormatter) calculateColumnWidths(rows []TableRow) columnWidths {
	widths := columnWidths{
		date:     minDateWidth,
		slug:     minSlugWidth,
		title:    minTitleWidth,
		category: minCategoryWidth,
	}

	// Scan all rows to find max widths
	for _, row := range rows {
		widths.date = max(widths.date, len(row.Date))
		widths.slug = max(widths.slug, len(row.Slug))
		widths.title = max(widths.title, len(row.Title))
		widths.category = max(widths.category, len(row.Category))
	}

	// Constrain to terminal width, shrinking the title first
	totalWidth := t.calculateTotalWidth(widths)
	if totalWidth > t.termWidth {
		excess := totalWidth - t.termWidth
		widths.title = max(minTitleWidth, widths.title-excess)

		totalWidth = t.calculateTotalWidth(widths)
		if totalWidth > t.termWidth {
			excess = totalWidth - t.termWidth
			widths.slug = max(minSlugWidth, widths.slug-excess)
		}
	}

	return widths
}

// calculateTotalWidth calculates the total table width from column widths.
func (t *TableFormatter) calculateTotalWidth(widths columnWidths) int {
	return widths.date + widths.slug + widths.title + widths.category + (tablePadding * tableColumnCount)
}

// formatHeader formats the table header row.
func (t *TableFormatter) formatHeader(widths columnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %-*s  %-*s",
		widths.date, "DATE",
		widths.slug, "SLUG",
		widths.title, "TITLE",
		widths.category, "CATEGORY",
	)
	return t.styles.TableHeader.Render(header)
}

// formatSeparator formats a separator line.
func (t *TableFormatter) formatSeparator(widths columnWidths) string {
	return t.styles.TableSeparator.Render(strings.Repeat(heavySeparator, t.calculateTotalWidth(widths)))
}

// formatRow formats a single table row. Drafts are highlighted.
func (t *TableFormatter) formatRow(row TableRow, widths columnWidths) string {
	content := fmt.Sprintf(" %-*s  %-*s  %-*s  %-*s",
		widths.date, truncateString(row.Date, widths.date),
		widths.slug, truncateString(row.Slug, widths.slug),
		widths.title, truncateString(row.Title, widths.title),
		widths.category, truncateString(row.Category, widths.category),
	)
	if row.Draft {
		return t.styles.TableDraft.Render(content)
	}
	return content
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// DocumentToTableRow converts a post to a table row.
func DocumentToTableRow(doc *site.Document) TableRow {
	row := TableRow{
		Date:     draftLabel,
		Slug:     doc.Slug,
		Title:    doc.Meta.Title,
		Category: doc.Meta.Category,
		Draft:    doc.Draft(),
	}
	if !row.Draft {
		row.Date = doc.Published().Format(date.StyleShort)
	}
	return row
}
