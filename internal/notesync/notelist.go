package notesync

import (
	"strings"

	"neuralnotes/internal/types"
)

// The note list is never mutated in place: every change builds a new slice
// from the current one, so a slice handed out by Snapshot stays valid.

func appendNote(list []types.NoteSummary, note types.NoteSummary) []types.NoteSummary {
	next := make([]types.NoteSummary, 0, len(list)+1)
	next = append(next, list...)
	return append(next, note)
}

func removeNote(list []types.NoteSummary, id types.NoteID) []types.NoteSummary {
	next := make([]types.NoteSummary, 0, len(list))
	for _, note := range list {
		if note.ID != id {
			next = append(next, note)
		}
	}
	return next
}

func replaceNote(list []types.NoteSummary, note types.NoteSummary) []types.NoteSummary {
	next := make([]types.NoteSummary, len(list))
	for i, existing := range list {
		if existing.ID == note.ID {
			existing = note
		}
		next[i] = existing
	}
	return next
}

func filterNotes(list []types.NoteSummary, filter string) []types.NoteSummary {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return list
	}
	var out []types.NoteSummary
	for _, note := range list {
		if strings.Contains(strings.ToLower(note.Title), filter) {
			out = append(out, note)
		}
	}
	return out
}

func capRelated(related []types.RelatedNote, limit int) []types.RelatedNote {
	if limit > 0 && len(related) > limit {
		related = related[:limit]
	}
	return append([]types.RelatedNote(nil), related...)
}
