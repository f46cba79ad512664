package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/spf13/cobra"

	"neuralnotes/internal/notesync"
	"neuralnotes/internal/notetree"
	"neuralnotes/internal/types"
)

type ListCommand struct {
	stdout io.Writer
	newEnv envFactory
	format string
	filter string
}

func NewListCommand(stdout io.Writer, newEnv envFactory) *ListCommand {
	return &ListCommand{stdout: stdout, newEnv: newEnv}
}

func (c *ListCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List notes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := resolveFormat(c.format, formatTable, formatJSON, formatYAML)
			if err != nil {
				return err
			}
			env, err := c.newEnv(envCLI)
			if err != nil {
				return err
			}
			defer env.Close()

			ctrl := env.controller(notesync.NewMemoryHost(""))
			defer ctrl.Close()
			ctx, cancel := env.context(cmd.Context())
			defer cancel()
			if err := ctrl.ListNotes(ctx); err != nil {
				return commandError(env, err)
			}
			ctrl.SetFilter(c.filter)
			return writeNotes(c.stdout, format, ctrl.Snapshot().Notes)
		},
	}
	cmd.Flags().StringVar(&c.format, "format", formatTable, "output format: table|json|yaml")
	cmd.Flags().StringVar(&c.filter, "filter", "", "only titles containing this text (case-insensitive)")
	return cmd
}

type SearchCommand struct {
	stdout io.Writer
	newEnv envFactory
	format string
}

func NewSearchCommand(stdout io.Writer, newEnv envFactory) *SearchCommand {
	return &SearchCommand{stdout: stdout, newEnv: newEnv}
}

func (c *SearchCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search note titles and content on the server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(c.format, formatTable, formatJSON, formatYAML)
			if err != nil {
				return err
			}
			env, err := c.newEnv(envCLI)
			if err != nil {
				return err
			}
			defer env.Close()

			ctrl := env.controller(notesync.NewMemoryHost(""))
			defer ctrl.Close()
			ctx, cancel := env.context(cmd.Context())
			defer cancel()
			if err := ctrl.SearchNotes(ctx, strings.Join(args, " ")); err != nil {
				return commandError(env, err)
			}
			return writeNotes(c.stdout, format, ctrl.Snapshot().Notes)
		},
	}
	cmd.Flags().StringVar(&c.format, "format", formatTable, "output format: table|json|yaml")
	return cmd
}

type TreeCommand struct {
	stdout io.Writer
	newEnv envFactory
	filter string
}

func NewTreeCommand(stdout io.Writer, newEnv envFactory) *TreeCommand {
	return &TreeCommand{stdout: stdout, newEnv: newEnv}
}

func (c *TreeCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print notes as the folder tree encoded in their titles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.newEnv(envCLI)
			if err != nil {
				return err
			}
			defer env.Close()

			ctrl := env.controller(notesync.NewMemoryHost(""))
			defer ctrl.Close()
			ctx, cancel := env.context(cmd.Context())
			defer cancel()
			if err := ctrl.ListNotes(ctx); err != nil {
				return commandError(env, err)
			}
			ctrl.SetFilter(c.filter)
			printTree(c.stdout, ctrl.Snapshot().Tree)
			return nil
		},
	}
	cmd.Flags().StringVar(&c.filter, "filter", "", "only titles containing this text (case-insensitive)")
	return cmd
}

func printTree(out io.Writer, forest []*notetree.Node) {
	for _, row := range notetree.Flatten(forest, nil) {
		indent := strings.Repeat("  ", row.Depth)
		switch {
		case row.HasNote():
			fmt.Fprintf(out, "%s%s  [%s]\n", indent, row.Name, row.NoteID)
		default:
			fmt.Fprintf(out, "%s%s/\n", indent, row.Name)
		}
	}
}

type ShowCommand struct {
	stdout io.Writer
	newEnv envFactory
	render bool
	format string
}

func NewShowCommand(stdout io.Writer, newEnv envFactory) *ShowCommand {
	return &ShowCommand{stdout: stdout, newEnv: newEnv}
}

func (c *ShowCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(c.format, "text", formatJSON, formatYAML)
			if err != nil {
				return err
			}
			env, err := c.newEnv(envCLI)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := requireLogin(env); err != nil {
				return err
			}

			ctx, cancel := env.context(cmd.Context())
			defer cancel()
			note, err := env.client.GetNote(ctx, types.NoteID(args[0]))
			if err != nil {
				return commandError(env, err)
			}
			if format != "text" {
				return writeStructured(c.stdout, format, note)
			}
			return c.printNote(note, env.cfg.RelatedLimit())
		},
	}
	cmd.Flags().BoolVar(&c.render, "render", false, "render the content as markdown")
	cmd.Flags().StringVar(&c.format, "format", "text", "output format: text|json|yaml")
	return cmd
}

func (c *ShowCommand) printNote(note *types.Note, relatedLimit int) error {
	fmt.Fprintf(c.stdout, "# %s\n", note.Title)
	if !note.UpdatedAt.IsZero() {
		fmt.Fprintf(c.stdout, "updated %s\n", note.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(c.stdout)

	content := note.Content
	if c.render {
		rendered, err := renderMarkdown(content, terminalWidth(80))
		if err != nil {
			return err
		}
		content = rendered
	}
	fmt.Fprint(c.stdout, content)
	if !strings.HasSuffix(content, "\n") {
		fmt.Fprintln(c.stdout)
	}

	related := note.RelatedNotes
	if relatedLimit > 0 && len(related) > relatedLimit {
		related = related[:relatedLimit]
	}
	if len(related) > 0 {
		fmt.Fprintln(c.stdout)
		fmt.Fprintln(c.stdout, "related:")
		for _, rel := range related {
			fmt.Fprintf(c.stdout, "  %s  %s\n", rel.ID, rel.Title)
		}
	}
	return nil
}

func renderMarkdown(content string, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.DarkStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}

type NewCommand struct {
	stdin       io.Reader
	stdout      io.Writer
	newEnv      envFactory
	title       string
	contentFile string
}

func NewNewCommand(stdin io.Reader, stdout io.Writer, newEnv envFactory) *NewCommand {
	return &NewCommand{stdin: stdin, stdout: stdout, newEnv: newEnv}
}

func (c *NewCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a note and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			edit, err := loadEdit(c.stdin, cmd, c.title, c.contentFile)
			if err != nil {
				return err
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
			id, err := ctrl.CreateNote(ctx)
			if err != nil {
				return commandError(env, err)
			}
			edit.apply(ctrl, host)
			if err := ctrl.Flush(ctx); err != nil {
				return commandError(env, fmt.Errorf("note %s created but not saved: %w", id, err))
			}
			fmt.Fprintln(c.stdout, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&c.title, "title", "", "note title")
	cmd.Flags().StringVar(&c.contentFile, "content-file", "", "read the content from a file (- for stdin)")
	return cmd
}

type RemoveCommand struct {
	stdout io.Writer
	newEnv envFactory
}

func NewRemoveCommand(stdout io.Writer, newEnv envFactory) *RemoveCommand {
	return &RemoveCommand{stdout: stdout, newEnv: newEnv}
}

func (c *RemoveCommand) Command() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.newEnv(envCLI)
			if err != nil {
				return err
			}
			defer env.Close()

			ctrl := env.controller(notesync.NewMemoryHost(""))
			defer ctrl.Close()
			ctx, cancel := env.context(cmd.Context())
			defer cancel()
			id := types.NoteID(strings.TrimSpace(args[0]))
			if err := ctrl.DeleteNote(ctx, id); err != nil {
				return commandError(env, err)
			}
			fmt.Fprintf(c.stdout, "deleted %s\n", id)
			return nil
		},
	}
}

type GraphCommand struct {
	stdout   io.Writer
	newEnv   envFactory
	format   string
	minScore float64
}

func NewGraphCommand(stdout io.Writer, newEnv envFactory) *GraphCommand {
	return &GraphCommand{stdout: stdout, newEnv: newEnv}
}

func (c *GraphCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the note similarity graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := resolveFormat(c.format, formatTable, formatJSON, formatYAML)
			if err != nil {
				return err
			}
			env, err := c.newEnv(envCLI)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := requireLogin(env); err != nil {
				return err
			}

			ctx, cancel := env.context(cmd.Context())
			defer cancel()
			graph, err := env.client.Graph(ctx)
			if err != nil {
				return commandError(env, err)
			}
			graph = filterGraph(graph, c.minScore)
			if format != formatTable {
				return writeStructured(c.stdout, format, graph)
			}
			printGraph(c.stdout, graph)
			return nil
		},
	}
	cmd.Flags().StringVar(&c.format, "format", formatTable, "output format: table|json|yaml")
	cmd.Flags().Float64Var(&c.minScore, "min-score", 0, "hide links scoring below this value")
	return cmd
}

func filterGraph(graph *types.Graph, minScore float64) *types.Graph {
	if graph == nil {
		return &types.Graph{}
	}
	if minScore <= 0 {
		return graph
	}
	out := &types.Graph{Nodes: graph.Nodes}
	for _, link := range graph.Links {
		if link.Value >= minScore {
			out.Links = append(out.Links, link)
		}
	}
	return out
}

func printGraph(out io.Writer, graph *types.Graph) {
	names := make(map[types.NoteID]string, len(graph.Nodes))
	for _, node := range graph.Nodes {
		names[node.ID] = node.Name
	}
	label := func(id types.NoteID) string {
		if name, ok := names[id]; ok && name != "" {
			return fitTitle(name)
		}
		return string(id)
	}
	fmt.Fprintf(out, "%d notes, %d links\n", len(graph.Nodes), len(graph.Links))
	for _, link := range graph.Links {
		fmt.Fprintf(out, "%.2f  %s <-> %s\n", link.Value, label(link.Source), label(link.Target))
	}
}
