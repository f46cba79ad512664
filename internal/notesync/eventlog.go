package notesync

import (
	"strings"
	"sync"
	"time"

	"neuralnotes/internal/logging"
)

const defaultEventLogSize = 200

type Event struct {
	Time    time.Time
	Level   logging.Level
	Message string
}

func (e Event) String() string {
	return e.Time.Format("15:04:05") + " " + e.Message
}

// EventLog keeps the most recent events for the log panel.
type EventLog struct {
	mu      sync.Mutex
	entries []Event
	max     int
}

func NewEventLog(max int) *EventLog {
	if max <= 0 {
		max = defaultEventLogSize
	}
	return &EventLog{max: max}
}

func (l *EventLog) Add(at time.Time, level logging.Level, message string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Event{Time: at, Level: level, Message: message})
	if over := len(l.entries) - l.max; over > 0 {
		l.entries = append([]Event(nil), l.entries[over:]...)
	}
}

func (l *EventLog) Entries() []Event {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.entries...)
}

func (l *EventLog) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *EventLog) String() string {
	entries := l.Entries()
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, entry.String())
	}
	return strings.Join(lines, "\n")
}
