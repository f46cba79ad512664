package app

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"neuralnotes/internal/client"
	"neuralnotes/internal/notesync"
	"neuralnotes/internal/types"
)

type stubNotes struct {
	mu      sync.Mutex
	notes   []types.Note
	updates []types.NoteInput
	deleted []types.NoteID
	listErr error
}

func (s *stubNotes) ListNotes(ctx context.Context) ([]types.NoteSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]types.NoteSummary, 0, len(s.notes))
	for i := range s.notes {
		out = append(out, s.notes[i].Summary())
	}
	return out, nil
}

func (s *stubNotes) SearchNotes(ctx context.Context, keyword string) ([]types.NoteSummary, error) {
	all, err := s.ListNotes(ctx)
	if err != nil {
		return nil, err
	}
	var out []types.NoteSummary
	for _, note := range all {
		if strings.Contains(note.Title, keyword) {
			out = append(out, note)
		}
	}
	return out, nil
}

func (s *stubNotes) GetNote(ctx context.Context, id types.NoteID) (*types.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notes {
		if s.notes[i].ID == id {
			note := s.notes[i]
			return &note, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Message: "not found"}
}

func (s *stubNotes) CreateNote(ctx context.Context, input types.NoteInput) (*types.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	note := types.Note{ID: "new", Title: input.Title, Content: input.Content}
	s.notes = append(s.notes, note)
	return &note, nil
}

func (s *stubNotes) UpdateNote(ctx context.Context, id types.NoteID, input types.NoteInput) (*types.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, input)
	return &types.Note{ID: id, Title: input.Title, Content: input.Content}, nil
}

func (s *stubNotes) DeleteNote(ctx context.Context, id types.NoteID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	kept := s.notes[:0]
	for _, note := range s.notes {
		if note.ID != id {
			kept = append(kept, note)
		}
	}
	s.notes = kept
	return nil
}

func newTestModel(t *testing.T) (*Model, *stubNotes, *notesync.ManualClock) {
	t.Helper()
	notes := &stubNotes{notes: []types.Note{
		{ID: "1", Title: "work/plan", Content: "# Plan", UpdatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)},
		{ID: "2", Title: "journal", Content: "dear diary", RelatedNotes: []types.RelatedNote{{ID: "1", Title: "work/plan"}}},
	}}
	clock := notesync.NewManualClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	host := NewEditorHost()
	ctrl := notesync.New(notes, host, notesync.WithClock(clock), notesync.WithSilentWindow(0))
	t.Cleanup(ctrl.Close)
	m := NewModel(ctrl, host, nil, WithNow(clock.Now))
	// Blinking cursors return tick commands that block for the blink interval.
	m.title.Cursor.SetMode(cursor.CursorStatic)
	m.editor.Cursor.SetMode(cursor.CursorStatic)
	m.filter.Cursor.SetMode(cursor.CursorStatic)
	m.search.Cursor.SetMode(cursor.CursorStatic)
	return &m, notes, clock
}

// run executes cmd and feeds the resulting messages back into the model,
// the way the bubbletea runtime would.
func run(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	switch msg := msg.(type) {
	case nil:
		return
	case tea.BatchMsg:
		for _, inner := range msg {
			run(m, inner)
		}
		return
	case opResultMsg, appStateMsg, appStateSavedMsg, quitMsg:
		_, next := m.Update(msg)
		run(m, next)
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+q":
		return tea.KeyMsg{Type: tea.KeyCtrlQ}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, s string) {
	_, cmd := m.Update(key(s))
	run(m, cmd)
}

func TestInitialLoadBuildsSidebarRows(t *testing.T) {
	m, _, _ := newTestModel(t)
	run(m, listNotesCmd(m.ctrl, time.Second))

	if len(m.rows) != 2 || m.rows[0].Path != "work" || m.rows[1].Path != "journal" {
		t.Fatalf("unexpected rows: %#v", m.rows)
	}
	if m.status != "notes loaded" {
		t.Fatalf("unexpected status %q", m.status)
	}

	press(m, "enter")
	if len(m.rows) != 3 || m.rows[1].Path != "work/plan" {
		t.Fatalf("expected folder expanded, got %#v", m.rows)
	}
}

func TestOpeningNoteFillsEditorWithoutScheduling(t *testing.T) {
	m, notes, clock := newTestModel(t)
	run(m, listNotesCmd(m.ctrl, time.Second))
	press(m, "down")
	press(m, "enter")

	if m.state.OpenID != "2" || m.editor.Value() != "dear diary" || m.title.Value() != "journal" {
		t.Fatalf("expected journal open, got id=%q editor=%q title=%q", m.state.OpenID, m.editor.Value(), m.title.Value())
	}
	if len(m.state.Related) != 1 {
		t.Fatalf("expected related notes surfaced")
	}
	clock.Advance(time.Second)
	if len(notes.updates) != 0 {
		t.Fatalf("expected no save after opening, got %#v", notes.updates)
	}
}

func TestTypingSchedulesDebouncedSave(t *testing.T) {
	m, notes, clock := newTestModel(t)
	run(m, listNotesCmd(m.ctrl, time.Second))
	press(m, "down")
	press(m, "enter")
	run(m, m.setFocus(focusEditor))

	press(m, "!")
	press(m, "?")
	if m.host.Content() != "dear diary!?" {
		t.Fatalf("expected host to mirror typing, got %q", m.host.Content())
	}
	if len(notes.updates) != 0 {
		t.Fatalf("expected no immediate save")
	}
	clock.Advance(notesync.DefaultDebounce)
	if len(notes.updates) != 1 || notes.updates[0].Content != "dear diary!?" {
		t.Fatalf("expected one debounced save, got %#v", notes.updates)
	}
}

func TestTitleEditsReachController(t *testing.T) {
	m, notes, _ := newTestModel(t)
	run(m, loadNoteCmd(m.ctrl, "2", time.Second))
	run(m, m.setFocus(focusTitle))
	press(m, "x")
	press(m, "ctrl+s")

	if len(notes.updates) != 1 || notes.updates[0].Title != "journalx" {
		t.Fatalf("expected title saved, got %#v", notes.updates)
	}
	if m.status != "saved" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m, notes, _ := newTestModel(t)
	run(m, loadNoteCmd(m.ctrl, "2", time.Second))

	run(m, m.setFocus(focusEditor))
	press(m, "ctrl+d")
	if m.confirmDelete != "2" {
		t.Fatalf("expected confirmation for open note, got %q", m.confirmDelete)
	}
	press(m, "n")
	if len(notes.deleted) != 0 || m.status != "delete canceled" {
		t.Fatalf("expected delete canceled")
	}

	press(m, "ctrl+d")
	press(m, "y")
	if len(notes.deleted) != 1 || notes.deleted[0] != "2" {
		t.Fatalf("expected note 2 deleted, got %#v", notes.deleted)
	}
	if m.state.OpenID != "" || m.editor.Value() != "" {
		t.Fatalf("expected editor cleared after deleting open note")
	}
}

func TestCreateFocusesTitle(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(m, "ctrl+n")
	if m.state.OpenID != "new" || m.title.Value() != notesync.DefaultPlaceholderTitle {
		t.Fatalf("expected new note open, got %#v", m.state)
	}
	if m.focus != focusTitle {
		t.Fatalf("expected title focus after create")
	}
}

func TestQuitFlushesPendingEdits(t *testing.T) {
	m, notes, _ := newTestModel(t)
	run(m, loadNoteCmd(m.ctrl, "1", time.Second))
	run(m, m.setFocus(focusEditor))
	press(m, "x")

	_, cmd := m.Update(key("ctrl+q"))
	msg := cmd()
	if _, ok := msg.(quitMsg); !ok {
		t.Fatalf("expected quit message, got %#v", msg)
	}
	if len(notes.updates) != 1 || notes.updates[0].Content != "# Planx" {
		t.Fatalf("expected flush on quit, got %#v", notes.updates)
	}
}

func TestUnauthorizedReloadShowsLoginHint(t *testing.T) {
	m, notes, _ := newTestModel(t)
	notes.listErr = &client.APIError{StatusCode: 401}
	run(m, listNotesCmd(m.ctrl, time.Second))
	if m.status != "session expired; run neuralnotes login" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestSearchSubmitEntersSearchMode(t *testing.T) {
	m, _, _ := newTestModel(t)
	run(m, listNotesCmd(m.ctrl, time.Second))
	run(m, m.setFocus(focusSearch))
	for _, r := range "jour" {
		press(m, string(r))
	}
	press(m, "enter")
	if !m.state.SearchMode || len(m.rows) != 1 || m.rows[0].NoteID != "2" {
		t.Fatalf("expected search results, got %#v", m.rows)
	}
	if !strings.Contains(m.View(), "search: jour") {
		t.Fatalf("expected search badge in view")
	}
}

func TestAppStateRestoresLastNote(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(appStateMsg{state: &types.AppState{LastNoteID: "1", ExpandedFolders: []string{"work"}}})
	run(m, cmd)
	if m.state.OpenID != "1" {
		t.Fatalf("expected last note reopened, got %q", m.state.OpenID)
	}
	state := m.currentAppState()
	if state.LastNoteID != "1" || len(state.ExpandedFolders) != 1 || state.ExpandedFolders[0] != "work" {
		t.Fatalf("unexpected app state %#v", state)
	}
}

func TestViewRendersDirtyIndicator(t *testing.T) {
	m, _, _ := newTestModel(t)
	run(m, loadNoteCmd(m.ctrl, "1", time.Second))
	run(m, m.setFocus(focusEditor))
	press(m, "x")
	m.refresh()
	if !strings.Contains(m.View(), "unsaved") {
		t.Fatalf("expected unsaved marker in view")
	}
}
