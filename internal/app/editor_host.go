package app

import "sync"

// EditorHost is the document the sync controller reads and pushes into. The
// textarea owned by Model is the visible copy: pushes bump Version and are
// applied to the textarea on the UI goroutine, while user edits are written
// back through userEdit without bumping it. That split is what tells a
// programmatic change from a keystroke.
type EditorHost struct {
	mu      sync.Mutex
	content string
	version uint64
}

func NewEditorHost() *EditorHost {
	return &EditorHost{}
}

func (h *EditorHost) Content() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.content
}

func (h *EditorHost) SetContent(content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.content = content
	h.version++
}

func (h *EditorHost) Version() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.version
}

func (h *EditorHost) Snapshot() (string, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.content, h.version
}

func (h *EditorHost) userEdit(content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.content = content
}
