package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// NoteID is the server-assigned identifier of a note. The remote store may
// encode it as a JSON number or string; it is always handled as a string here.
type NoteID string

func (id NoteID) String() string {
	return string(id)
}

func (id NoteID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

func (id *NoteID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*id = NoteID(strings.TrimSpace(raw))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return errors.New("note id must be a string or number")
	}
	if _, err := strconv.ParseFloat(num.String(), 64); err != nil {
		return err
	}
	*id = NoteID(num.String())
	return nil
}

type RelatedNote struct {
	ID        NoteID    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NoteSummary struct {
	ID        NoteID    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Note struct {
	ID           NoteID        `json:"id"`
	Title        string        `json:"title"`
	Content      string        `json:"content"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	RelatedNotes []RelatedNote `json:"related_notes,omitempty"`
}

// UnmarshalJSON accepts the older "related_posts" key when "related_notes" is
// absent.
func (n *Note) UnmarshalJSON(data []byte) error {
	type noteAlias Note
	var wire struct {
		noteAlias
		RelatedPosts []RelatedNote `json:"related_posts"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*n = Note(wire.noteAlias)
	if n.RelatedNotes == nil && wire.RelatedPosts != nil {
		n.RelatedNotes = wire.RelatedPosts
	}
	return nil
}

func (n *Note) Summary() NoteSummary {
	if n == nil {
		return NoteSummary{}
	}
	return NoteSummary{ID: n.ID, Title: n.Title, UpdatedAt: n.UpdatedAt}
}

type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
