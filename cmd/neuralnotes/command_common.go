package main

import (
	"bufio"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"neuralnotes/internal/client"
	"neuralnotes/internal/notesync"
	"neuralnotes/internal/types"
)

const version = "dev"

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"

	titleColumnWidth = 48
)

var (
	errNotLoggedIn    = errors.New("not logged in; run neuralnotes login")
	errSessionExpired = errors.New("session expired; run neuralnotes login")
)

// commandError maps controller and client errors onto the messages users act
// on. A rejected token also clears the stored credentials.
func commandError(env *commandEnv, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, notesync.ErrNotLoggedIn):
		return errNotLoggedIn
	case client.IsUnauthorized(err):
		if env != nil && env.session != nil {
			env.session.Expire()
		}
		return errSessionExpired
	default:
		return err
	}
}

func requireLogin(env *commandEnv) error {
	if env.session == nil || !env.session.LoggedIn() {
		return errNotLoggedIn
	}
	return nil
}

func resolveFormat(raw string, allowed ...string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" && len(allowed) > 0 {
		return allowed[0], nil
	}
	for _, candidate := range allowed {
		if value == candidate {
			return value, nil
		}
	}
	return "", fmt.Errorf("invalid format %q: must be one of %s", raw, strings.Join(allowed, ", "))
}

func writeStructured(out io.Writer, format string, payload any) error {
	switch format {
	case formatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	case formatYAML:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(payload); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return errors.New("unsupported format")
	}
}

type noteRow struct {
	ID        types.NoteID `json:"id" yaml:"id"`
	Title     string       `json:"title" yaml:"title"`
	UpdatedAt time.Time    `json:"updated_at" yaml:"updated_at"`
}

func noteRows(notes []types.NoteSummary) []noteRow {
	rows := make([]noteRow, 0, len(notes))
	for _, note := range notes {
		rows = append(rows, noteRow{ID: note.ID, Title: note.Title, UpdatedAt: note.UpdatedAt})
	}
	return rows
}

func printNotes(output io.Writer, notes []types.NoteSummary) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tUPDATED\tTITLE")
	for _, note := range notes {
		updated := "-"
		if !note.UpdatedAt.IsZero() {
			updated = note.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\n", note.ID, updated, fitTitle(note.Title))
	}
	_ = writer.Flush()
}

// fitTitle truncates by display width. The title is the last column because
// tabwriter assumes every rune is one cell wide.
func fitTitle(title string) string {
	return runewidth.Truncate(title, titleColumnWidth, "…")
}

func writeNotes(output io.Writer, format string, notes []types.NoteSummary) error {
	if format == formatTable {
		printNotes(output, notes)
		return nil
	}
	return writeStructured(output, format, noteRows(notes))
}

// readContent reads path, or stdin for "-".
func readContent(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readLine(in io.Reader) (string, error) {
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func readTerminalPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal; use --password-stdin")
	}
	fmt.Fprint(os.Stderr, "password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func terminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return fallback
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

func exitOnErr(label string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s: %v\n", label, err)
	os.Exit(1)
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		var revision string
		var modified string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value
			}
		}
		if revision != "" {
			if modified == "true" {
				return revision + "-dirty"
			}
			return revision
		}
	}

	exe, err := os.Executable()
	if err == nil {
		file, err := os.Open(exe)
		if err == nil {
			defer file.Close()
			hasher := sha256.New()
			if _, err := io.Copy(hasher, file); err == nil {
				sum := hasher.Sum(nil)
				return fmt.Sprintf("bin-%x", sum[:6])
			}
		}
	}

	return version
}
