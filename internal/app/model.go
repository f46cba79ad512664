package app

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"neuralnotes/internal/client"
	"neuralnotes/internal/logging"
	"neuralnotes/internal/notesync"
	"neuralnotes/internal/notetree"
	"neuralnotes/internal/session"
	"neuralnotes/internal/store"
	"neuralnotes/internal/types"
)

const defaultRequestTimeout = 10 * time.Second

type focusArea int

const (
	focusSidebar focusArea = iota
	focusTitle
	focusEditor
	focusFilter
	focusSearch
)

type Model struct {
	ctrl     *notesync.Controller
	host     *EditorHost
	changes  <-chan struct{}
	session  *session.Session
	appStore store.AppStateStore
	logger   logging.Logger
	now      func() time.Time
	timeout  time.Duration

	title   textinput.Model
	editor  textarea.Model
	filter  textinput.Model
	search  textinput.Model
	logView viewport.Model
	preview viewport.Model
	loader  spinner.Model

	focus         focusArea
	state         notesync.State
	rows          []notetree.Row
	cursor        int
	expanded      map[string]bool
	hostVersion   uint64
	openID        types.NoteID
	sidebarHidden bool
	previewing    bool
	confirmDelete types.NoteID
	status        string
	width         int
	height        int
	quitting      bool
}

type ModelOption func(*Model)

func WithSession(s *session.Session) ModelOption {
	return func(m *Model) {
		m.session = s
	}
}

func WithAppStateStore(states store.AppStateStore) ModelOption {
	return func(m *Model) {
		m.appStore = states
	}
}

func WithLogger(logger logging.Logger) ModelOption {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithNow(now func() time.Time) ModelOption {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

func WithRequestTimeout(d time.Duration) ModelOption {
	return func(m *Model) {
		if d > 0 {
			m.timeout = d
		}
	}
}

func NewModel(ctrl *notesync.Controller, host *EditorHost, changes <-chan struct{}, opts ...ModelOption) Model {
	title := textinput.New()
	title.Prompt = ""
	title.Placeholder = "title (use / for folders)"
	title.CharLimit = 256

	editor := textarea.New()
	editor.ShowLineNumbers = false
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.Prompt = ""
	editor.Placeholder = "Open a note from the sidebar or press ctrl+n."

	filter := textinput.New()
	filter.Prompt = "filter: "
	search := textinput.New()
	search.Prompt = "search: "

	loader := spinner.New()
	loader.Spinner = spinner.Line
	loader.Style = lipgloss.NewStyle()

	m := Model{
		ctrl:     ctrl,
		host:     host,
		changes:  changes,
		logger:   logging.Nop(),
		now:      time.Now,
		timeout:  defaultRequestTimeout,
		title:    title,
		editor:   editor,
		filter:   filter,
		search:   search,
		logView:  viewport.New(minEditorWidth, logPanelHeight),
		preview:  viewport.New(minEditorWidth, minBodyHeight),
		loader:   loader,
		expanded: map[string]bool{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	if m.host == nil {
		m.host = NewEditorHost()
	}
	m.resize(100, 32)
	return m
}

// Run starts the terminal UI over store and blocks until the user quits.
func Run(deps Deps) error {
	model, ctrl := newRuntimeModel(deps)
	defer ctrl.Close()
	p := tea.NewProgram(&model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type Deps struct {
	Store             notesync.NoteStore
	Session           *session.Session
	AppState          store.AppStateStore
	Logger            logging.Logger
	RequestTimeout    time.Duration
	ControllerOptions []notesync.Option
}

func newRuntimeModel(deps Deps) (Model, *notesync.Controller) {
	host := NewEditorHost()
	changes := make(chan struct{}, 1)
	notify := func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}
	opts := []notesync.Option{notesync.WithLogger(deps.Logger), notesync.WithNotify(notify)}
	if deps.Session != nil {
		opts = append(opts, notesync.WithSession(deps.Session))
	}
	opts = append(opts, deps.ControllerOptions...)
	ctrl := notesync.New(deps.Store, host, opts...)
	model := NewModel(ctrl, host, changes,
		WithSession(deps.Session),
		WithAppStateStore(deps.AppState),
		WithLogger(deps.Logger),
		WithRequestTimeout(deps.RequestTimeout),
	)
	return model, ctrl
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		waitForChange(m.changes),
		loadAppStateCmd(m.appStore),
		listNotesCmd(m.ctrl, m.timeout),
		m.loader.Tick,
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case controllerChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes)
	case opResultMsg:
		m.refresh()
		return m, m.handleOpResult(msg)
	case appStateMsg:
		return m, m.applyAppState(msg)
	case appStateSavedMsg:
		if msg.err != nil {
			m.logger.Warn("save app state failed", logging.F("err", msg.err))
		}
		return m, nil
	case quitMsg:
		if msg.err != nil {
			m.logger.Error("flush on quit failed", logging.F("err", msg.err))
		}
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.loader, cmd = m.loader.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleOpResult(msg opResultMsg) tea.Cmd {
	if msg.err != nil {
		m.setStatus(statusForError(msg.op, msg.err))
		return nil
	}
	switch msg.op {
	case opReload:
		m.setStatus("notes loaded")
	case opSearch:
		if m.state.SearchMode {
			m.setStatus("search results for " + m.state.Keyword)
		} else {
			m.setStatus("notes loaded")
		}
	case opOpen:
		m.setStatus("opened " + m.state.Title)
		return m.saveAppStateCmd()
	case opCreate:
		m.setStatus("note created")
		cmd := m.setFocus(focusTitle)
		return tea.Batch(cmd, m.saveAppStateCmd())
	case opDelete:
		m.setStatus("note deleted")
		return m.saveAppStateCmd()
	case opSave:
		m.setStatus("saved")
	case opLogout:
		m.setStatus("logged out")
	}
	return nil
}

func statusForError(op string, err error) string {
	switch {
	case errors.Is(err, notesync.ErrNotLoggedIn):
		return "not logged in; run neuralnotes login"
	case client.IsUnauthorized(err):
		return "session expired; run neuralnotes login"
	}
	return op + " failed: " + err.Error()
}

func (m *Model) applyAppState(msg appStateMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Warn("load app state failed", logging.F("err", msg.err))
		return nil
	}
	if msg.state == nil {
		return nil
	}
	m.sidebarHidden = msg.state.SidebarHidden
	for _, path := range msg.state.ExpandedFolders {
		m.expanded[path] = true
	}
	m.resize(m.width, m.height)
	m.rebuildRows()
	if msg.state.LastNoteID != "" && m.openID == "" {
		return loadNoteCmd(m.ctrl, msg.state.LastNoteID, m.timeout)
	}
	return nil
}

func (m *Model) currentAppState() types.AppState {
	expanded := make([]string, 0, len(m.expanded))
	for path, open := range m.expanded {
		if open {
			expanded = append(expanded, path)
		}
	}
	sort.Strings(expanded)
	return types.AppState{
		LastNoteID:      m.openID,
		SidebarHidden:   m.sidebarHidden,
		ExpandedFolders: expanded,
	}
}

func (m *Model) saveAppStateCmd() tea.Cmd {
	return saveAppStateCmd(m.appStore, m.currentAppState())
}

// refresh pulls a fresh snapshot from the controller and applies pending
// document pushes to the textarea.
func (m *Model) refresh() {
	if m.ctrl == nil {
		return
	}
	m.state = m.ctrl.Snapshot()
	m.syncEditorFromHost()
	if m.state.OpenID != m.openID {
		m.openID = m.state.OpenID
		m.title.SetValue(m.state.Title)
		m.title.CursorEnd()
		for _, path := range notetree.AncestorPaths(m.state.Tree, m.openID) {
			m.expanded[path] = true
		}
	} else if m.focus != focusTitle && m.title.Value() != m.state.Title {
		m.title.SetValue(m.state.Title)
	}
	m.rebuildRows()
	m.logView.SetContent(renderEvents(m.state.Events))
	m.logView.GotoBottom()
	if m.previewing {
		m.renderPreview()
	}
}

func (m *Model) syncEditorFromHost() {
	content, version := m.host.Snapshot()
	if version == m.hostVersion {
		return
	}
	m.hostVersion = version
	m.editor.SetValue(content)
}

func (m *Model) rebuildRows() {
	var key string
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		key = m.rows[m.cursor].Key()
	}
	expandAll := m.state.SearchMode || strings.TrimSpace(m.state.Filter) != ""
	m.rows = notetree.Flatten(m.state.Tree, func(path string) bool {
		return expandAll || m.expanded[path]
	})
	for i, row := range m.rows {
		if key != "" && row.Key() == key {
			m.cursor = i
			return
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selectedRow() (notetree.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return notetree.Row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) setStatus(status string) {
	m.status = status
}

func (m *Model) setFocus(focus focusArea) tea.Cmd {
	m.title.Blur()
	m.editor.Blur()
	m.filter.Blur()
	m.search.Blur()
	m.focus = focus
	switch focus {
	case focusTitle:
		return m.title.Focus()
	case focusEditor:
		m.syncEditorFromHost()
		return m.editor.Focus()
	case focusFilter:
		return m.filter.Focus()
	case focusSearch:
		return m.search.Focus()
	}
	return nil
}

func (m *Model) renderPreview() {
	m.preview.SetContent(renderMarkdown(m.editor.Value(), m.preview.Width))
}

func (m *Model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width = width
	m.height = height

	bodyHeight := height - 3 - (logPanelHeight + 2) - 2
	if bodyHeight < minBodyHeight {
		bodyHeight = minBodyHeight
	}
	editorWidth := width - 2
	if !m.sidebarHidden {
		editorWidth -= sidebarWidth + 2
	}
	if editorWidth < minEditorWidth {
		editorWidth = minEditorWidth
	}
	m.title.Width = editorWidth - 1
	m.editor.SetWidth(editorWidth)
	m.editor.SetHeight(bodyHeight - 2)
	m.preview.Width = editorWidth
	m.preview.Height = bodyHeight - 2
	m.filter.Width = sidebarWidth - len(m.filter.Prompt) - 1
	m.search.Width = sidebarWidth - len(m.search.Prompt) - 1
	m.logView.Width = width - 2
	m.logView.Height = logPanelHeight
}

func (m *Model) bodyHeight() int {
	return m.editor.Height() + 2
}
