package notesync

import (
	"strconv"

	"neuralnotes/internal/notetree"
	"neuralnotes/internal/types"
)

// State is a consistent copy of everything the presentation layer renders.
type State struct {
	OpenID      types.NoteID
	Title       string
	Dirty       bool
	SavePending bool
	Related     []types.RelatedNote
	Notes       []types.NoteSummary
	Tree        []*notetree.Node
	SearchMode  bool
	Keyword     string
	Filter      string
	Loading     bool
	Silent      bool
	Saving      bool
	ListErr     error
	Events      []Event
}

func (s State) HasOpenNote() bool {
	return s.OpenID != ""
}

func (c *Controller) Snapshot() State {
	content := c.host.Content()
	c.mu.Lock()
	defer c.mu.Unlock()
	visible := c.notes
	if !c.searchMode {
		visible = filterNotes(c.notes, c.filter)
	}
	return State{
		OpenID:      c.openID,
		Title:       c.title,
		Dirty:       c.openID != "" && !c.sameAsSavedLocked(c.title, content),
		SavePending: c.pending != nil,
		Related:     append([]types.RelatedNote(nil), c.related...),
		Notes:       visible,
		Tree:        notetree.Build(visible),
		SearchMode:  c.searchMode,
		Keyword:     c.keyword,
		Filter:      c.filter,
		Loading:     c.loading,
		Silent:      c.silent,
		Saving:      c.saving,
		ListErr:     c.listErr,
		Events:      c.events.Entries(),
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
