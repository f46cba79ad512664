package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"neuralnotes/internal/types"
)

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.confirmDelete != "" {
		return m.reduceConfirmKey(msg)
	}
	if handled, cmd := m.reduceGlobalKey(msg); handled {
		return cmd
	}
	switch m.focus {
	case focusTitle:
		return m.reduceTitleKey(msg)
	case focusEditor:
		return m.reduceEditorKey(msg)
	case focusFilter:
		return m.reduceFilterKey(msg)
	case focusSearch:
		return m.reduceSearchKey(msg)
	}
	return m.reduceSidebarKey(msg)
}

func (m *Model) reduceGlobalKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "ctrl+q":
		m.setStatus("saving before exit")
		return true, quitCmd(m.ctrl, m.timeout)
	case "tab":
		return true, m.cycleFocus(1)
	case "shift+tab":
		return true, m.cycleFocus(-1)
	case "esc":
		m.previewing = false
		return true, m.setFocus(focusSidebar)
	case "ctrl+n":
		m.setStatus("creating note")
		return true, createNoteCmd(m.ctrl, m.timeout)
	case "ctrl+d":
		m.requestDelete()
		return true, nil
	case "ctrl+r":
		m.filter.SetValue("")
		m.ctrl.SetFilter("")
		m.setStatus("reloading")
		return true, listNotesCmd(m.ctrl, m.timeout)
	case "ctrl+f":
		return true, m.setFocus(focusFilter)
	case "ctrl+g":
		return true, m.setFocus(focusSearch)
	case "ctrl+s":
		return true, flushCmd(m.ctrl, m.timeout)
	case "ctrl+p":
		m.previewing = !m.previewing
		if m.previewing {
			m.renderPreview()
		}
		return true, nil
	case "ctrl+y":
		m.copyWithStatus(m.editor.Value(), "note copied")
		return true, nil
	case "ctrl+b":
		m.sidebarHidden = !m.sidebarHidden
		m.resize(m.width, m.height)
		var cmd tea.Cmd
		if m.sidebarHidden && m.focus == focusSidebar {
			cmd = m.setFocus(focusEditor)
		}
		return true, tea.Batch(cmd, m.saveAppStateCmd())
	case "ctrl+x":
		m.setStatus("logging out")
		return true, logoutCmd(m.ctrl, m.timeout)
	case "alt+1", "alt+2", "alt+3":
		index := int(msg.String()[len("alt+")] - '1')
		return true, m.openRelated(index)
	}
	return false, nil
}

func (m *Model) cycleFocus(step int) tea.Cmd {
	order := []focusArea{focusSidebar, focusTitle, focusEditor}
	if m.sidebarHidden {
		order = order[1:]
	}
	current := 0
	for i, area := range order {
		if area == m.focus {
			current = i
			break
		}
	}
	next := (current + step + len(order)) % len(order)
	return m.setFocus(order[next])
}

func (m *Model) requestDelete() {
	target := m.state.OpenID
	title := m.state.Title
	if m.focus == focusSidebar {
		if row, ok := m.selectedRow(); ok && row.HasNote() {
			target = row.NoteID
			title = row.Path
		}
	}
	if target == "" {
		m.setStatus("no note selected")
		return
	}
	m.confirmDelete = target
	m.setStatus("delete " + title + "? (y/n)")
}

func (m *Model) reduceConfirmKey(msg tea.KeyMsg) tea.Cmd {
	target := m.confirmDelete
	m.confirmDelete = ""
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		m.setStatus("deleting")
		return deleteNoteCmd(m.ctrl, target, m.timeout)
	}
	m.setStatus("delete canceled")
	return nil
}

func (m *Model) openRelated(index int) tea.Cmd {
	if index < 0 || index >= len(m.state.Related) {
		m.setStatus("no related note " + string(rune('1'+index)))
		return nil
	}
	return m.openNote(m.state.Related[index].ID)
}

func (m *Model) openNote(id types.NoteID) tea.Cmd {
	if id == "" {
		return nil
	}
	if id == m.state.OpenID {
		return m.setFocus(focusEditor)
	}
	m.setStatus("opening")
	return loadNoteCmd(m.ctrl, id, m.timeout)
}

func (m *Model) reduceSidebarKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		m.cursor--
		m.clampCursor()
	case "down", "j":
		m.cursor++
		m.clampCursor()
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.rows) - 1
		m.clampCursor()
	case "/":
		return m.setFocus(focusSearch)
	case "right", "l":
		if row, ok := m.selectedRow(); ok && row.Folder {
			m.expanded[row.Path] = true
			m.rebuildRows()
			return m.saveAppStateCmd()
		}
	case "left", "h":
		return m.collapseSelected()
	case "enter", " ":
		row, ok := m.selectedRow()
		if !ok {
			return nil
		}
		if row.HasNote() {
			return m.openNote(row.NoteID)
		}
		m.expanded[row.Path] = !m.expanded[row.Path]
		m.rebuildRows()
		return m.saveAppStateCmd()
	}
	return nil
}

func (m *Model) collapseSelected() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}
	if row.Folder && m.expanded[row.Path] {
		m.expanded[row.Path] = false
		m.rebuildRows()
		return m.saveAppStateCmd()
	}
	// Jump to the parent folder.
	for i := m.cursor - 1; i >= 0; i-- {
		if m.rows[i].Depth < row.Depth {
			m.cursor = i
			break
		}
	}
	return nil
}

func (m *Model) reduceTitleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "enter" {
		return m.setFocus(focusEditor)
	}
	if m.state.OpenID == "" {
		m.setStatus("open or create a note first")
		return nil
	}
	before := m.title.Value()
	var cmd tea.Cmd
	m.title, cmd = m.title.Update(msg)
	if after := m.title.Value(); after != before {
		m.ctrl.OnTitleChanged(after)
	}
	return cmd
}

func (m *Model) reduceEditorKey(msg tea.KeyMsg) tea.Cmd {
	if m.state.OpenID == "" {
		m.setStatus("open or create a note first")
		return nil
	}
	m.syncEditorFromHost()
	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if after := m.editor.Value(); after != before {
		m.host.userEdit(after)
		m.ctrl.OnDocumentChanged(after)
		if m.previewing {
			m.renderPreview()
		}
	}
	return cmd
}

func (m *Model) reduceFilterKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "enter" {
		return m.setFocus(focusSidebar)
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.ctrl.SetFilter(m.filter.Value())
	m.cursor = 0
	return cmd
}

func (m *Model) reduceSearchKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "enter" {
		keyword := strings.TrimSpace(m.search.Value())
		focus := m.setFocus(focusSidebar)
		m.cursor = 0
		if keyword == "" {
			m.setStatus("reloading")
		} else {
			m.setStatus("searching " + keyword)
		}
		return tea.Batch(focus, searchNotesCmd(m.ctrl, keyword, m.timeout))
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return cmd
}
