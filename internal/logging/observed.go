package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// Observed is a Logger that records entries in memory.
type Observed struct {
	Logger
	logs *observer.ObservedLogs
}

func NewObserved(level Level) *Observed {
	core, logs := observer.New(zapLevel(level))
	return &Observed{Logger: Wrap(zap.New(core), level), logs: logs}
}

func (o *Observed) Entries() []observer.LoggedEntry {
	return o.logs.All()
}

// Contains reports whether an entry at level with a message containing msg
// was recorded.
func (o *Observed) Contains(level Level, msg string) bool {
	for _, entry := range o.logs.All() {
		if entry.Level == zapLevel(level) && strings.Contains(entry.Message, msg) {
			return true
		}
	}
	return false
}
