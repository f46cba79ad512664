package notesync

import (
	"strings"
	"time"

	"neuralnotes/internal/logging"
)

const (
	DefaultDebounce         = 500 * time.Millisecond
	DefaultSilentWindow     = 100 * time.Millisecond
	DefaultRelatedLimit     = 3
	DefaultPlaceholderTitle = "Untitled"
	DefaultRequestTimeout   = 10 * time.Second
)

type Option func(*Controller)

func WithSession(session SessionGuard) Option {
	return func(c *Controller) {
		c.session = session
	}
}

func WithClock(clock Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithSilentWindow sets how long programmatic pushes stay suppressed. Zero
// ends the window as soon as SetContent returns, which suits hosts that never
// echo pushes back as change events.
func WithSilentWindow(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.silentWindow = d
		}
	}
}

// WithRelatedLimit caps the related notes kept for the open note. Zero or
// less keeps all of them.
func WithRelatedLimit(n int) Option {
	return func(c *Controller) {
		c.relatedLimit = n
	}
}

func WithPlaceholderTitle(title string) Option {
	return func(c *Controller) {
		if title = strings.TrimSpace(title); title != "" {
			c.placeholder = title
		}
	}
}

// WithRequestTimeout bounds saves started by the debounce timer, which have
// no caller context.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// WithNotify registers a hook run after every observable state change. It is
// called without controller locks held.
func WithNotify(fn func()) Option {
	return func(c *Controller) {
		c.notify = fn
	}
}

func WithEventLogSize(n int) Option {
	return func(c *Controller) {
		c.events = NewEventLog(n)
	}
}
