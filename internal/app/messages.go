package app

import "neuralnotes/internal/types"

type controllerChangedMsg struct{}

type opResultMsg struct {
	op  string
	id  types.NoteID
	err error
}

type appStateMsg struct {
	state *types.AppState
	err   error
}

type appStateSavedMsg struct {
	err error
}

type quitMsg struct {
	err error
}
