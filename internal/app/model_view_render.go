package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"neuralnotes/internal/logging"
	"neuralnotes/internal/notesync"
)

const helpText = "tab focus · enter open · ctrl+n new · ctrl+d delete · ctrl+s save · ctrl+f filter · ctrl+g search · ctrl+r reload · ctrl+p preview · ctrl+y copy · alt+1-3 related · ctrl+b sidebar · ctrl+x logout · ctrl+q quit"

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	sections := []string{m.renderHeader(), m.renderBody(), m.renderLogPanel(), m.renderStatusLine()}
	if m.confirmDelete != "" {
		sections = append(sections, confirmStyle.Render("Delete this note? y to confirm, any other key to cancel"))
	} else {
		sections = append(sections, helpStyle.Render(truncate(helpText, m.width)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	user := "logged out"
	if m.session != nil && m.session.LoggedIn() {
		user = m.session.Username()
		if user == "" {
			user = "logged in"
		}
	}
	header := headerStyle.Render("neuralnotes") + statusStyle.Render(" · "+user)
	if m.state.SearchMode {
		header += "  " + searchBadgeStyle.Render(" search: "+m.state.Keyword+" ")
	}
	return header
}

func (m *Model) renderBody() string {
	height := m.bodyHeight()
	editorPane := paneFor(m.focus == focusTitle || m.focus == focusEditor).Render(m.renderEditor())
	if m.sidebarHidden {
		return editorPane
	}
	sidebar := paneFor(m.focus == focusSidebar || m.focus == focusFilter || m.focus == focusSearch).
		Width(sidebarWidth).
		Height(height).
		Render(m.renderSidebar(sidebarWidth, height))
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, editorPane)
}

func (m *Model) renderEditor() string {
	width := m.editor.Width()
	if m.state.OpenID == "" {
		placeholder := dimStyle.Render(truncate("Open a note from the sidebar or press ctrl+n.", width))
		return lipgloss.NewStyle().Width(width).Height(m.bodyHeight()).Render(placeholder)
	}
	body := m.editor.View()
	if m.previewing {
		body = m.preview.View()
	}
	return strings.Join([]string{m.title.View(), renderRelated(m.state.Related, width), body}, "\n")
}

func (m *Model) renderLogPanel() string {
	return paneStyle.Width(m.logView.Width).Render(m.logView.View())
}

func (m *Model) renderStatusLine() string {
	var indicator string
	switch {
	case m.state.Loading:
		indicator = m.loader.View() + " loading"
	case m.state.Saving:
		indicator = m.loader.View() + " saving"
	case m.state.Dirty:
		indicator = dirtyStyle.Render("● unsaved")
	case m.state.OpenID != "":
		indicator = statusStyle.Render("saved")
	}
	line := statusStyle.Render(m.status)
	if indicator != "" {
		line = indicator + "  " + line
	}
	return truncate(line, m.width)
}

func renderEvents(events []notesync.Event) string {
	lines := make([]string, 0, len(events))
	for _, event := range events {
		text := event.String()
		switch event.Level {
		case logging.Error:
			text = errorStyle.Render(text)
		case logging.Warn:
			text = dirtyStyle.Render(text)
		default:
			text = dimStyle.Render(text)
		}
		lines = append(lines, text)
	}
	return strings.Join(lines, "\n")
}
