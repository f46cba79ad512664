package app

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRelativeDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	cases := []struct {
		at   time.Time
		want string
	}{
		{time.Time{}, ""},
		{now.Add(-2 * time.Hour), "today"},
		{time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC), "1 day ago"},
		{time.Date(2026, 3, 3, 1, 0, 0, 0, time.UTC), "7 days ago"},
		{time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), "2025-12-01"},
	}
	for _, tc := range cases {
		if got := relativeDay(tc.at, now); got != tc.want {
			t.Fatalf("relativeDay(%v) = %q, want %q", tc.at, got, tc.want)
		}
	}
}

func TestSidebarLineKeepsLabel(t *testing.T) {
	line := sidebarLine("a very long note title that will not fit", "today", 20)
	if !strings.HasSuffix(line, " today") {
		t.Fatalf("expected label kept, got %q", line)
	}
	if got := sidebarLine("short", "", 10); got != "short     " {
		t.Fatalf("expected padded line, got %q", got)
	}
}

func TestEditorHostVersioning(t *testing.T) {
	host := NewEditorHost()
	host.SetContent("pushed")
	if host.Version() != 1 {
		t.Fatalf("expected version bump on push")
	}
	host.userEdit("typed")
	content, version := host.Snapshot()
	if content != "typed" || version != 1 {
		t.Fatalf("expected user edit without version bump, got %q %d", content, version)
	}
}

func TestRenderMarkdownFallsBackToPlainInput(t *testing.T) {
	if got := renderMarkdown("", 40); got != "" {
		t.Fatalf("expected empty render, got %q", got)
	}
	out := renderMarkdown("# Heading\n\nparagraph", 40)
	if !strings.Contains(out, "Heading") || !strings.Contains(out, "paragraph") {
		t.Fatalf("expected rendered markdown to keep text, got %q", out)
	}
}

func TestCopyTextToClipboardFallsBackToOSC52(t *testing.T) {
	origWriteAll := clipboardWriteAll
	origWriteOSC52 := clipboardWriteOSC52
	t.Cleanup(func() {
		clipboardWriteAll = origWriteAll
		clipboardWriteOSC52 = origWriteOSC52
	})

	fallbackCalled := false
	clipboardWriteAll = func(string) error { return errors.New("exit status 1") }
	clipboardWriteOSC52 = func(string) error {
		fallbackCalled = true
		return nil
	}

	method, err := copyTextToClipboard("hello")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if method != clipboardMethodOSC52 || !fallbackCalled {
		t.Fatalf("expected OSC52 fallback, got %v", method)
	}
}

func TestCopyTextToClipboardHelpfulErrorWhenDisplayMissing(t *testing.T) {
	origWriteAll := clipboardWriteAll
	origWriteOSC52 := clipboardWriteOSC52
	t.Cleanup(func() {
		clipboardWriteAll = origWriteAll
		clipboardWriteOSC52 = origWriteOSC52
	})
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")

	clipboardWriteAll = func(string) error { return errors.New("exit status 1") }
	clipboardWriteOSC52 = func(string) error { return errors.New("open /dev/tty: no such device") }

	_, err := copyTextToClipboard("hello")
	if err == nil || !strings.Contains(err.Error(), "no GUI clipboard available") {
		t.Fatalf("expected display hint, got %v", err)
	}
}

func TestWriteOSC52SequenceWrapsForTmux(t *testing.T) {
	t.Setenv("TMUX", "/tmp/tmux-1000/default,1,0")
	var buf bytes.Buffer
	if err := writeOSC52Sequence(&buf, "hi"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1bPtmux;") {
		t.Fatalf("expected tmux passthrough, got %q", buf.String())
	}
}
