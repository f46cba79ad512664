package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"neuralnotes/internal/notesync"
	"neuralnotes/internal/types"
)

// noteEdit is a title and/or content change fed to the controller as if typed.
type noteEdit struct {
	title      string
	hasTitle   bool
	content    string
	hasContent bool
}

func loadEdit(stdin io.Reader, cmd *cobra.Command, title, contentFile string) (noteEdit, error) {
	var edit noteEdit
	if cmd.Flags().Changed("title") {
		edit.title = title
		edit.hasTitle = true
	}
	if strings.TrimSpace(contentFile) != "" {
		content, err := readContent(stdin, contentFile)
		if err != nil {
			return noteEdit{}, err
		}
		edit.content = content
		edit.hasContent = true
	}
	return edit, nil
}

func (e noteEdit) empty() bool {
	return !e.hasTitle && !e.hasContent
}

func (e noteEdit) apply(ctrl *notesync.Controller, host *notesync.MemoryHost) {
	if e.hasContent {
		host.Edit(e.content)
		ctrl.OnDocumentChanged(e.content)
	}
	if e.hasTitle {
		ctrl.OnTitleChanged(e.title)
	}
}

type EditCommand struct {
	stdin       io.Reader
	stdout      io.Writer
	newEnv      envFactory
	title       string
	contentFile string
}

func NewEditCommand(stdin io.Reader, stdout io.Writer, newEnv envFactory) *EditCommand {
	return &EditCommand{stdin: stdin, stdout: stdout, newEnv: newEnv}
}

func (c *EditCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a note's title or content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edit, err := loadEdit(c.stdin, cmd, c.title, c.contentFile)
			if err != nil {
				return err
			}
			if edit.empty() {
				return errors.New("nothing to change: pass --title or --content-file")
			}
			env, err := c.newEnv(envCLI)
			if err != nil {
				return err
			}
			defer env.Close()

			host := notesync.NewMemoryHost("")
			ctrl := env.controller(host)
			defer ctrl.Close()
			ctx, cancel := env.context(cmd.Context())
			defer cancel()

			id := types.NoteID(strings.TrimSpace(args[0]))
			if err := ctrl.LoadNote(ctx, id); err != nil {
				return commandError(env, err)
			}
			edit.apply(ctrl, host)
			if !ctrl.Snapshot().Dirty {
				fmt.Fprintf(c.stdout, "%s unchanged\n", id)
				return nil
			}
			if err := ctrl.Flush(ctx); err != nil {
				return commandError(env, err)
			}
			fmt.Fprintf(c.stdout, "saved %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&c.title, "title", "", "new title (folders are separated by /)")
	cmd.Flags().StringVar(&c.contentFile, "content-file", "", "read the new content from a file (- for stdin)")
	return cmd
}
