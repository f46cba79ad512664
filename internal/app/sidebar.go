package app

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"neuralnotes/internal/notetree"
	"neuralnotes/internal/types"
)

func (m *Model) renderSidebar(width, height int) string {
	lines := make([]string, 0, height)
	switch {
	case m.focus == focusSearch:
		lines = append(lines, m.search.View())
	case m.focus == focusFilter || m.filter.Value() != "":
		lines = append(lines, m.filter.View())
	case m.state.SearchMode:
		lines = append(lines, searchBadgeStyle.Render(truncate(" search: "+m.state.Keyword+" ", width)))
	default:
		lines = append(lines, dimStyle.Render(padRight("notes", width)))
	}

	if m.state.ListErr != nil {
		lines = append(lines, errorStyle.Render(truncate("could not load notes", width)))
		lines = append(lines, dimStyle.Render(truncate(m.state.ListErr.Error(), width)))
		lines = append(lines, dimStyle.Render(truncate("ctrl+r to retry", width)))
		return strings.Join(lines, "\n")
	}
	if len(m.rows) == 0 {
		lines = append(lines, dimStyle.Render(truncate("no notes", width)))
		return strings.Join(lines, "\n")
	}

	visible := height - 1
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	now := m.now()
	for i := start; i < len(m.rows) && i < start+visible; i++ {
		lines = append(lines, m.renderRow(m.rows[i], i == m.cursor && m.focus == focusSidebar, width, now))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(row notetree.Row, selected bool, width int, now time.Time) string {
	indent := strings.Repeat("  ", row.Depth)
	icon := "  "
	if row.Folder {
		icon = "▸ "
		if row.Expanded {
			icon = "▾ "
		}
	}
	label := ""
	if row.HasNote() {
		label = relativeDay(row.UpdatedAt, now)
	}
	name := row.Name
	if strings.TrimSpace(name) == "" {
		name = "(untitled)"
	}
	text := sidebarLine(indent+icon+name, label, width)

	switch {
	case selected:
		return selectedStyle.Render(text)
	case row.HasNote() && row.NoteID == m.state.OpenID:
		return openNoteStyle.Render(text)
	case !row.HasNote():
		return folderStyle.Render(text)
	}
	return noteStyle.Render(text)
}

// sidebarLine lays out name on the left and label right-aligned in width
// cells. The name is truncated first so the label stays readable.
func sidebarLine(name, label string, width int) string {
	if label == "" {
		return padRight(truncate(name, width), width)
	}
	labelWidth := runewidth.StringWidth(label)
	nameWidth := width - labelWidth - 1
	if nameWidth < 4 {
		return padRight(truncate(name, width), width)
	}
	return padRight(truncate(name, nameWidth), nameWidth) + " " + label
}

func truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	return xansi.Truncate(text, width, "…")
}

func padRight(text string, width int) string {
	w := runewidth.StringWidth(text)
	if w >= width {
		return text
	}
	return text + strings.Repeat(" ", width-w)
}

func renderRelated(related []types.RelatedNote, width int) string {
	if len(related) == 0 {
		return dimStyle.Render(truncate("no related notes", width))
	}
	parts := make([]string, 0, len(related))
	for i, note := range related {
		title := note.Title
		if title == "" {
			title = note.ID.String()
		}
		parts = append(parts, "["+string(rune('1'+i))+"] "+title)
	}
	return relatedStyle.Render(truncate("related: "+strings.Join(parts, "  "), width))
}

func paneFor(focused bool) lipgloss.Style {
	if focused {
		return focusPaneStyle
	}
	return paneStyle
}
