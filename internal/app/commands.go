package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"neuralnotes/internal/notesync"
	"neuralnotes/internal/store"
	"neuralnotes/internal/types"
)

const (
	opReload = "reload"
	opSearch = "search"
	opOpen   = "open"
	opCreate = "create"
	opDelete = "delete"
	opSave   = "save"
	opLogout = "logout"
)

func waitForChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return controllerChangedMsg{}
	}
}

func listNotesCmd(ctrl *notesync.Controller, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return opResultMsg{op: opReload, err: ctrl.ListNotes(ctx)}
	}
}

func searchNotesCmd(ctrl *notesync.Controller, keyword string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return opResultMsg{op: opSearch, err: ctrl.SearchNotes(ctx, keyword)}
	}
}

func loadNoteCmd(ctrl *notesync.Controller, id types.NoteID, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return opResultMsg{op: opOpen, id: id, err: ctrl.LoadNote(ctx, id)}
	}
}

func createNoteCmd(ctrl *notesync.Controller, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		id, err := ctrl.CreateNote(ctx)
		return opResultMsg{op: opCreate, id: id, err: err}
	}
}

func deleteNoteCmd(ctrl *notesync.Controller, id types.NoteID, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return opResultMsg{op: opDelete, id: id, err: ctrl.DeleteNote(ctx, id)}
	}
}

func flushCmd(ctrl *notesync.Controller, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return opResultMsg{op: opSave, err: ctrl.Flush(ctx)}
	}
}

func logoutCmd(ctrl *notesync.Controller, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return opResultMsg{op: opLogout, err: ctrl.Logout(ctx)}
	}
}

func quitCmd(ctrl *notesync.Controller, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := ctrl.Flush(ctx)
		ctrl.Close()
		return quitMsg{err: err}
	}
}

func loadAppStateCmd(states store.AppStateStore) tea.Cmd {
	if states == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		state, err := states.Load(ctx)
		return appStateMsg{state: state, err: err}
	}
}

func saveAppStateCmd(states store.AppStateStore, state types.AppState) tea.Cmd {
	if states == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return appStateSavedMsg{err: states.Save(ctx, &state)}
	}
}
