// Package notesync keeps the open note's editable document in step with the
// remote note store: debounced autosave, flush before navigation, suppression
// of programmatic pushes, and the cached note list shown in the sidebar.
package notesync

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"neuralnotes/internal/client"
	"neuralnotes/internal/logging"
	"neuralnotes/internal/types"
)

type NoteStore interface {
	ListNotes(ctx context.Context) ([]types.NoteSummary, error)
	SearchNotes(ctx context.Context, keyword string) ([]types.NoteSummary, error)
	GetNote(ctx context.Context, id types.NoteID) (*types.Note, error)
	CreateNote(ctx context.Context, input types.NoteInput) (*types.Note, error)
	UpdateNote(ctx context.Context, id types.NoteID, input types.NoteInput) (*types.Note, error)
	DeleteNote(ctx context.Context, id types.NoteID) error
}

// SessionGuard is the controller's view of the login session. Expire is
// called when the server rejects the token.
type SessionGuard interface {
	LoggedIn() bool
	Expire()
}

type sessionEnder interface {
	End(ctx context.Context) error
}

type pendingSave struct {
	seq     uint64
	id      types.NoteID
	title   string
	content string
	timer   Timer
}

// Controller owns the working mirror of the open note. Operations that talk
// to the store are serialized in call order by opMu; mu guards the state and
// is never held while calling the host or the store.
type Controller struct {
	store   NoteStore
	host    DocumentHost
	session SessionGuard
	clock   Clock
	logger  logging.Logger
	events  *EventLog
	notify  func()

	debounce       time.Duration
	silentWindow   time.Duration
	requestTimeout time.Duration
	relatedLimit   int
	placeholder    string

	opMu sync.Mutex

	mu           sync.Mutex
	openID       types.NoteID
	title        string
	savedTitle   string
	savedContent string
	related      []types.RelatedNote
	pending      *pendingSave
	saveSeq      uint64
	silent       bool
	silentSeq    uint64
	loading      bool
	saving       bool
	notes        []types.NoteSummary
	searchMode   bool
	keyword      string
	filter       string
	listErr      error
	closed       bool
}

func New(store NoteStore, host DocumentHost, opts ...Option) *Controller {
	c := &Controller{
		store:          store,
		host:           host,
		clock:          realClock{},
		logger:         logging.Nop(),
		debounce:       DefaultDebounce,
		silentWindow:   DefaultSilentWindow,
		requestTimeout: DefaultRequestTimeout,
		relatedLimit:   DefaultRelatedLimit,
		placeholder:    DefaultPlaceholderTitle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.host == nil {
		c.host = NewMemoryHost("")
	}
	if c.events == nil {
		c.events = NewEventLog(defaultEventLogSize)
	}
	return c
}

func (c *Controller) Host() DocumentHost {
	return c.host
}

func (c *Controller) Events() *EventLog {
	return c.events
}

func (c *Controller) PlaceholderTitle() string {
	return c.placeholder
}

// LoadNote makes id the open note. Unsaved edits of the current note are
// persisted first; if that fails the current note stays open.
func (c *Controller) LoadNote(ctx context.Context, id types.NoteID) error {
	if id == "" {
		return ErrNoteIDRequired
	}
	c.opMu.Lock()
	defer c.opMu.Unlock()
	defer c.changed()
	if !c.loggedIn() {
		return ErrNotLoggedIn
	}
	if err := c.flushLocked(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.silentSeq++
	c.loading = true
	c.mu.Unlock()
	c.changed()

	note, err := c.store.GetNote(ctx, id)
	if err == nil && note == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		c.mu.Lock()
		c.loading = false
		c.silent = false
		c.mu.Unlock()
		return c.fail("load note "+id.String(), err)
	}
	if note.ID == "" {
		note.ID = id
	}
	c.open(note)
	c.record(logging.Info, "opened note "+note.ID.String()+" ("+note.Title+")")
	return nil
}

// CreateNote creates an empty note with the placeholder title and opens it.
func (c *Controller) CreateNote(ctx context.Context) (types.NoteID, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	defer c.changed()
	if !c.loggedIn() {
		return "", ErrNotLoggedIn
	}
	if err := c.flushLocked(ctx); err != nil {
		return "", err
	}
	note, err := c.store.CreateNote(ctx, types.NoteInput{Title: c.placeholder})
	if err == nil && (note == nil || note.ID == "") {
		err = errors.New("server returned no note id")
	}
	if err != nil {
		return "", c.fail("create note", err)
	}

	c.mu.Lock()
	c.notes = appendNote(c.notes, note.Summary())
	c.mu.Unlock()
	c.open(note)
	c.record(logging.Info, "created note "+note.ID.String())
	return note.ID, nil
}

// DeleteNote removes id remotely and from the cached list. Deleting the open
// note drops its pending save and clears the document.
func (c *Controller) DeleteNote(ctx context.Context, id types.NoteID) error {
	if id == "" {
		return ErrNoteIDRequired
	}
	c.opMu.Lock()
	defer c.opMu.Unlock()
	defer c.changed()
	if !c.loggedIn() {
		return ErrNotLoggedIn
	}
	if err := c.store.DeleteNote(ctx, id); err != nil {
		return c.fail("delete note "+id.String(), err)
	}

	c.mu.Lock()
	c.notes = removeNote(c.notes, id)
	wasOpen := c.openID == id
	var seq uint64
	if wasOpen {
		c.cancelPendingLocked()
		c.resetMirrorLocked()
		seq = c.beginSilentLocked()
	}
	c.mu.Unlock()
	if wasOpen {
		c.host.SetContent("")
		c.endSilentAfter(seq)
	}
	c.record(logging.Info, "deleted note "+id.String())
	return nil
}

// OnDocumentChanged reports a user edit of the document.
func (c *Controller) OnDocumentChanged(content string) {
	c.mu.Lock()
	if c.suppressedLocked() {
		c.mu.Unlock()
		return
	}
	c.scheduleLocked(c.title, content)
	c.mu.Unlock()
	c.changed()
}

// OnTitleChanged reports a user edit of the title field.
func (c *Controller) OnTitleChanged(title string) {
	content := c.host.Content()
	c.mu.Lock()
	if c.suppressedLocked() || c.openID == "" {
		c.mu.Unlock()
		return
	}
	c.title = title
	c.scheduleLocked(title, content)
	c.mu.Unlock()
	c.changed()
}

// ListNotes reloads the full list and leaves search mode.
func (c *Controller) ListNotes(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	defer c.changed()
	return c.listLocked(ctx)
}

// SearchNotes replaces the list with the server-side matches for keyword. A
// blank keyword reloads the full list.
func (c *Controller) SearchNotes(ctx context.Context, keyword string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	defer c.changed()
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return c.listLocked(ctx)
	}
	if !c.loggedIn() {
		return ErrNotLoggedIn
	}
	notes, err := c.store.SearchNotes(ctx, keyword)
	if err != nil {
		return c.listFailed("search notes", err)
	}
	c.mu.Lock()
	c.notes = append([]types.NoteSummary(nil), notes...)
	c.searchMode = true
	c.keyword = keyword
	c.listErr = nil
	c.mu.Unlock()
	c.record(logging.Info, "search \""+keyword+"\" matched "+itoa(len(notes))+" notes")
	return nil
}

// SetFilter narrows the visible list by title substring. It has no effect on
// search results.
func (c *Controller) SetFilter(filter string) {
	c.mu.Lock()
	c.filter = filter
	c.mu.Unlock()
	c.changed()
}

// Flush persists unsaved edits of the open note now.
func (c *Controller) Flush(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	defer c.changed()
	return c.flushLocked(ctx)
}

// Logout saves what it can, then ends the session and forgets all note state.
func (c *Controller) Logout(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	defer c.changed()
	if err := c.flushLocked(ctx); err != nil {
		c.record(logging.Warn, "logging out with unsaved changes")
	}
	c.clearAll()

	var err error
	switch s := c.session.(type) {
	case nil:
	case sessionEnder:
		err = s.End(ctx)
	default:
		s.Expire()
	}
	c.record(logging.Info, "logged out")
	return err
}

// Close stops the pending save timer. Unsaved edits are not persisted; call
// Flush first.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.cancelPendingLocked()
}

func (c *Controller) listLocked(ctx context.Context) error {
	if !c.loggedIn() {
		return ErrNotLoggedIn
	}
	notes, err := c.store.ListNotes(ctx)
	if err != nil {
		return c.listFailed("load notes", err)
	}
	c.mu.Lock()
	c.notes = append([]types.NoteSummary(nil), notes...)
	c.searchMode = false
	c.keyword = ""
	c.listErr = nil
	c.mu.Unlock()
	c.record(logging.Debug, "loaded "+itoa(len(notes))+" notes")
	return nil
}

func (c *Controller) listFailed(op string, err error) error {
	if client.IsUnauthorized(err) {
		return c.fail(op, err)
	}
	c.mu.Lock()
	c.notes = nil
	c.listErr = err
	c.mu.Unlock()
	return c.fail(op, err)
}

func (c *Controller) flushLocked(ctx context.Context) error {
	content := c.host.Content()
	c.mu.Lock()
	c.cancelPendingLocked()
	id, title := c.openID, c.title
	if id == "" || c.sameAsSavedLocked(title, content) {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	return c.persist(ctx, id, title, content)
}

func (c *Controller) scheduleLocked(title, content string) {
	c.cancelPendingLocked()
	if c.openID == "" || c.closed || c.sameAsSavedLocked(title, content) {
		return
	}
	c.saveSeq++
	p := &pendingSave{seq: c.saveSeq, id: c.openID, title: title, content: content}
	p.timer = c.clock.AfterFunc(c.debounce, func() { c.fire(p) })
	c.pending = p
}

func (c *Controller) fire(p *pendingSave) {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.mu.Lock()
	if c.pending != p || c.openID != p.id {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.requestTimeout)
	defer cancel()
	_ = c.persist(ctx, p.id, p.title, p.content)
	c.changed()
}

func (c *Controller) persist(ctx context.Context, id types.NoteID, title, content string) error {
	title = c.effectiveTitle(title)
	c.mu.Lock()
	c.saving = true
	c.mu.Unlock()
	c.changed()

	updated, err := c.store.UpdateNote(ctx, id, types.NoteInput{Title: title, Content: content})
	c.mu.Lock()
	c.saving = false
	if err != nil {
		c.mu.Unlock()
		return c.fail("save note "+id.String(), err)
	}
	summary := types.NoteSummary{ID: id, Title: title, UpdatedAt: c.clock.Now()}
	if updated != nil {
		summary = updated.Summary()
		summary.ID = id
	}
	if c.openID == id {
		c.savedTitle = title
		c.savedContent = content
	}
	c.notes = replaceNote(c.notes, summary)
	c.mu.Unlock()
	c.record(logging.Info, "saved note "+id.String())
	return nil
}

func (c *Controller) open(note *types.Note) {
	c.mu.Lock()
	c.cancelPendingLocked()
	c.openID = note.ID
	c.title = note.Title
	c.savedTitle = note.Title
	c.savedContent = note.Content
	c.related = capRelated(note.RelatedNotes, c.relatedLimit)
	c.loading = true
	seq := c.beginSilentLocked()
	c.mu.Unlock()
	c.host.SetContent(note.Content)
	c.endSilentAfter(seq)
}

// fail records err and, for a rejected token, runs the expiry cascade.
func (c *Controller) fail(op string, err error) error {
	c.record(logging.Error, op+" failed: "+err.Error(), logging.F("kind", client.Kind(err)))
	if client.IsUnauthorized(err) {
		c.expire()
	}
	return err
}

func (c *Controller) expire() {
	c.clearAll()
	if c.session != nil {
		c.session.Expire()
	}
	c.record(logging.Warn, "session expired; logged out")
}

func (c *Controller) clearAll() {
	c.mu.Lock()
	c.cancelPendingLocked()
	c.resetMirrorLocked()
	c.notes = nil
	c.searchMode = false
	c.keyword = ""
	c.listErr = nil
	seq := c.beginSilentLocked()
	c.mu.Unlock()
	c.host.SetContent("")
	c.endSilentAfter(seq)
}

func (c *Controller) beginSilentLocked() uint64 {
	c.silentSeq++
	c.silent = true
	return c.silentSeq
}

func (c *Controller) endSilentAfter(seq uint64) {
	if c.silentWindow <= 0 {
		c.endSilent(seq)
		return
	}
	c.clock.AfterFunc(c.silentWindow, func() {
		c.endSilent(seq)
		c.changed()
	})
}

func (c *Controller) endSilent(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.silentSeq != seq {
		return
	}
	c.silent = false
	c.loading = false
}

func (c *Controller) cancelPendingLocked() {
	if c.pending == nil {
		return
	}
	c.pending.timer.Stop()
	c.pending = nil
}

func (c *Controller) resetMirrorLocked() {
	c.openID = ""
	c.title = ""
	c.savedTitle = ""
	c.savedContent = ""
	c.related = nil
}

func (c *Controller) suppressedLocked() bool {
	return c.loading || c.silent
}

func (c *Controller) sameAsSavedLocked(title, content string) bool {
	return c.effectiveTitle(title) == c.effectiveTitle(c.savedTitle) && content == c.savedContent
}

func (c *Controller) effectiveTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return c.placeholder
	}
	return title
}

func (c *Controller) loggedIn() bool {
	return c.session == nil || c.session.LoggedIn()
}

func (c *Controller) record(level logging.Level, msg string, fields ...logging.Field) {
	c.events.Add(c.clock.Now(), level, msg)
	switch level {
	case logging.Error:
		c.logger.Error(msg, fields...)
	case logging.Warn:
		c.logger.Warn(msg, fields...)
	case logging.Info:
		c.logger.Info(msg, fields...)
	default:
		c.logger.Debug(msg, fields...)
	}
}

func (c *Controller) changed() {
	if c.notify != nil {
		c.notify()
	}
}
