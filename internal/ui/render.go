package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/Bixxler/nextech/internal/story"
)

const defaultWidth = 80

// RenderStories formats one page as a numbered list with muted URLs and a
// page footer. Numbers continue across pages.
func RenderStories(page story.Page, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	if len(page.Items) == 0 {
		return HelpStyle.Render("No stories found")
	}

	offset := pageOffset(page)
	numWidth := len(fmt.Sprint(offset + len(page.Items)))

	rows := make([]string, 0, len(page.Items)+2)
	for i, s := range page.Items {
		num := fmt.Sprintf("%*d.", numWidth, offset+i+1)
		indent := strings.Repeat(" ", numWidth+2)
		textWidth := width - len(indent)

		rows = append(rows, lipgloss.JoinVertical(lipgloss.Left,
			IndexStyle.Render(num)+" "+StoryTitleStyle.Render(truncateEnd(s.Title, textWidth)),
			indent+URLStyle.Render(truncateMiddle(s.URL, textWidth)),
		))
	}

	rows = append(rows, "", StatusBarStyle.Render(pageSummary(page)))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func pageOffset(page story.Page) int {
	if page.Page < 1 {
		return 0
	}
	return (page.Page - 1) * page.Size
}

func pageSummary(page story.Page) string {
	noun := "stories"
	if page.Total == 1 {
		noun = "story"
	}
	return fmt.Sprintf("page %d/%d • %d %s", page.Page, max(page.Pages, 1), page.Total, noun)
}

// Markdown renders page as a markdown document with one link per story.
func Markdown(page story.Page) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# New stories\n\n")
	if len(page.Items) == 0 {
		b.WriteString("_No stories found._\n")
		return b.String()
	}

	offset := pageOffset(page)
	for i, s := range page.Items {
		fmt.Fprintf(&b, "%d. [%s](%s)\n", offset+i+1, escapeMarkdown(s.Title), strings.ReplaceAll(s.URL, ")", "%29"))
	}
	fmt.Fprintf(&b, "\n%s\n", pageSummary(page))
	return b.String()
}

// RenderMarkdown renders Markdown(page) for the terminal with glamour.
func RenderMarkdown(page story.Page, width int) (string, error) {
	if width <= 0 {
		width = defaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(Markdown(page))
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"[", `\[`,
	"]", `\]`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
