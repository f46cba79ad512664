package notesync

import "errors"

var (
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrNoteIDRequired = errors.New("note id is required")
)
