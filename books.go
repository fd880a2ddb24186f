package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gallery-reader/internal/library"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4F4FB7")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#81A1C1")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#959595"))

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D08770"))
)

// ChapterInfo is one line of a chapter listing.
type ChapterInfo struct {
	Name   string
	Images int
	Err    error
}

// renderBooks formats the library listing.
func renderBooks(root string, books []library.BookInfo) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%d books)", root, len(books))))
	b.WriteString("\n")
	if len(books) == 0 {
		b.WriteString(statusStyle.Render("  no books found"))
		b.WriteString("\n")
		return b.String()
	}

	width := 0
	for _, info := range books {
		width = max(width, lipgloss.Width(info.Name))
	}
	name := nameStyle.Width(width)

	for _, info := range books {
		details := fmt.Sprintf("%-4s %3d chapters %5d images", info.Format, info.Chapters, info.Images)
		progress := statusStyle.Render("unread")
		if info.Started {
			progress = progressStyle.Render(fmt.Sprintf("page %d", info.Page+1))
			if !info.LastRead.IsZero() {
				progress += statusStyle.Render(" · " + info.LastRead.Format("2006-01-02"))
			}
		}
		line := fmt.Sprintf("  %s  %s  %s", name.Render(info.Name), statusStyle.Render(details), progress)
		if info.Cover != "" {
			line += statusStyle.Render(" · cover " + info.Cover)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// renderChapters formats the chapter listing of one book. Images at the
// book root are listed first.
func renderChapters(book string, rootImages int, chapters []ChapterInfo) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(strings.ReplaceAll(book, "_", " ")))
	b.WriteString("\n")
	if rootImages > 0 {
		b.WriteString(fmt.Sprintf("  %s  %s\n", nameStyle.Render("(root)"), statusStyle.Render(fmt.Sprintf("%d images", rootImages))))
	}
	if len(chapters) == 0 && rootImages == 0 {
		b.WriteString(statusStyle.Render("  no images"))
		b.WriteString("\n")
		return b.String()
	}
	for i, ch := range chapters {
		detail := statusStyle.Render(fmt.Sprintf("%d images", ch.Images))
		if ch.Err != nil {
			detail = warnStyle.Render(ch.Err.Error())
		}
		b.WriteString(fmt.Sprintf("  %3d  %s  %s\n", i+1, nameStyle.Render(ch.Name), detail))
	}
	return b.String()
}
