package types

type AppState struct {
	LastNoteID      NoteID   `json:"last_note_id,omitempty"`
	SidebarHidden   bool     `json:"sidebar_hidden"`
	ExpandedFolders []string `json:"expanded_folders,omitempty"`
}
