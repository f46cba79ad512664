package notesync

import "sync"

// DocumentHost is the editable document the controller mirrors. SetContent is
// a programmatic push; the host's owner reports user edits back through
// Controller.OnDocumentChanged.
type DocumentHost interface {
	Content() string
	SetContent(content string)
}

// MemoryHost is a DocumentHost without a UI, used by the command line and in
// tests. OnSet, when set, runs after every SetContent with the pushed value.
type MemoryHost struct {
	mu      sync.Mutex
	content string
	pushes  int
	OnSet   func(content string)
}

func NewMemoryHost(content string) *MemoryHost {
	return &MemoryHost{content: content}
}

func (h *MemoryHost) Content() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.content
}

func (h *MemoryHost) SetContent(content string) {
	h.mu.Lock()
	h.content = content
	h.pushes++
	fn := h.OnSet
	h.mu.Unlock()
	if fn != nil {
		fn(content)
	}
}

// Edit replaces the content the way a user would, without counting as a push.
func (h *MemoryHost) Edit(content string) {
	h.mu.Lock()
	h.content = content
	h.mu.Unlock()
}

// Pushes counts SetContent calls.
func (h *MemoryHost) Pushes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pushes
}
