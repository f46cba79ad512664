// Package notetree turns the flat note list into the folder hierarchy encoded
// in note titles ("work/2026/q3 plan").
package notetree

import (
	"strings"
	"time"

	"neuralnotes/internal/types"
)

const Separator = "/"

// Node is either a folder (NoteID empty, identified by name among its
// siblings) or a leaf (identified by name and NoteID). A leaf may have
// children when another title extends its path.
type Node struct {
	Name      string
	NoteID    types.NoteID
	UpdatedAt time.Time
	Children  []*Node
}

func (n *Node) IsLeaf() bool {
	return n != nil && n.NoteID != ""
}

// Build returns the forest for notes. Siblings keep first-seen order, so the
// result is deterministic for a given input order.
func Build(notes []types.NoteSummary) []*Node {
	var root []*Node
	for _, note := range notes {
		parts := strings.Split(note.Title, Separator)
		level := &root
		for i, part := range parts {
			last := i == len(parts)-1
			var node *Node
			if last {
				node = findLeaf(*level, part, note.ID)
			} else {
				node = findFolder(*level, part)
			}
			if node == nil {
				node = &Node{Name: part}
				if last {
					node.NoteID = note.ID
					node.UpdatedAt = note.UpdatedAt
				}
				*level = append(*level, node)
			}
			level = &node.Children
		}
	}
	return root
}

func findFolder(nodes []*Node, name string) *Node {
	for _, node := range nodes {
		if node.NoteID == "" && node.Name == name {
			return node
		}
	}
	return nil
}

func findLeaf(nodes []*Node, name string, id types.NoteID) *Node {
	for _, node := range nodes {
		if node.NoteID == id && node.Name == name {
			return node
		}
	}
	return nil
}

// Row is one visible line of a flattened forest.
type Row struct {
	Path      string
	Name      string
	Depth     int
	NoteID    types.NoteID
	UpdatedAt time.Time
	Folder    bool
	Expanded  bool
}

func (r Row) HasNote() bool {
	return r.NoteID != ""
}

// Key is unique per row: leaves sharing a path differ by note id.
func (r Row) Key() string {
	if r.NoteID == "" {
		return r.Path
	}
	return r.Path + "#" + r.NoteID.String()
}

// Flatten walks the forest depth-first. Children are emitted only for nodes
// whose path is expanded; a nil expanded func expands everything.
func Flatten(forest []*Node, expanded func(path string) bool) []Row {
	var rows []Row
	var walk func(nodes []*Node, parent string, depth int)
	walk = func(nodes []*Node, parent string, depth int) {
		for _, node := range nodes {
			path := node.Name
			if parent != "" {
				path = parent + Separator + node.Name
			}
			open := expanded == nil || expanded(path)
			rows = append(rows, Row{
				Path:      path,
				Name:      node.Name,
				Depth:     depth,
				NoteID:    node.NoteID,
				UpdatedAt: node.UpdatedAt,
				Folder:    len(node.Children) > 0,
				Expanded:  open && len(node.Children) > 0,
			})
			if open && len(node.Children) > 0 {
				walk(node.Children, path, depth+1)
			}
		}
	}
	walk(forest, "", 0)
	return rows
}

// AncestorPaths lists the folder paths that must be expanded for the leaf of
// id to be visible, outermost first.
func AncestorPaths(forest []*Node, id types.NoteID) []string {
	if id == "" {
		return nil
	}
	var found []string
	var walk func(nodes []*Node, trail []string) bool
	walk = func(nodes []*Node, trail []string) bool {
		for _, node := range nodes {
			if node.NoteID == id {
				found = append([]string{}, trail...)
				return true
			}
			if len(node.Children) == 0 {
				continue
			}
			path := node.Name
			if len(trail) > 0 {
				path = trail[len(trail)-1] + Separator + node.Name
			}
			if walk(node.Children, append(trail, path)) {
				return true
			}
		}
		return false
	}
	walk(forest, nil)
	return found
}

// Count returns the number of leaves in the forest.
func Count(forest []*Node) int {
	total := 0
	for _, node := range forest {
		if node.IsLeaf() {
			total++
		}
		total += Count(node.Children)
	}
	return total
}
