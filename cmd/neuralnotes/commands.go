package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"neuralnotes/internal/app"
)

type commandRunner interface {
	Command() *cobra.Command
}

type globalOptions struct {
	configPath string
	serverURL  string
	logLevel   string
}

type commandWiring struct {
	stdin        io.Reader
	stdout       io.Writer
	stderr       io.Writer
	globals      *globalOptions
	newEnv       envFactory
	readPassword func() (string, error)
	runUI        func(app.Deps) error
	version      string
}

func defaultCommandWiring(stdin io.Reader, stdout, stderr io.Writer) commandWiring {
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	globals := &globalOptions{}
	return commandWiring{
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		globals: globals,
		newEnv: func(mode envMode) (*commandEnv, error) {
			return openCommandEnv(globals, mode, stderr)
		},
		readPassword: readTerminalPassword,
		runUI:        app.Run,
		version:      buildVersion(),
	}
}

func buildCommands(wiring commandWiring) []commandRunner {
	return []commandRunner{
		NewLoginCommand(wiring.stdin, wiring.stdout, wiring.stderr, wiring.newEnv, wiring.readPassword),
		NewSignupCommand(wiring.stdin, wiring.stdout, wiring.stderr, wiring.newEnv, wiring.readPassword),
		NewLogoutCommand(wiring.stdout, wiring.newEnv),
		NewWhoamiCommand(wiring.stdout, wiring.newEnv),
		NewListCommand(wiring.stdout, wiring.newEnv),
		NewSearchCommand(wiring.stdout, wiring.newEnv),
		NewTreeCommand(wiring.stdout, wiring.newEnv),
		NewShowCommand(wiring.stdout, wiring.newEnv),
		NewNewCommand(wiring.stdin, wiring.stdout, wiring.newEnv),
		NewEditCommand(wiring.stdin, wiring.stdout, wiring.newEnv),
		NewRemoveCommand(wiring.stdout, wiring.newEnv),
		NewGraphCommand(wiring.stdout, wiring.newEnv),
		NewConfigCommand(wiring.stdout, wiring.globals),
		NewUICommand(wiring.newEnv, wiring.runUI),
	}
}

func newRootCommand(wiring commandWiring) *cobra.Command {
	root := &cobra.Command{
		Use:           "neuralnotes",
		Short:         "Terminal client for a neuralnotes server",
		Version:       wiring.version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(wiring.stdin)
	root.SetOut(wiring.stdout)
	root.SetErr(wiring.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&wiring.globals.configPath, "config", "", "config file (default <data dir>/config.toml)")
	flags.StringVar(&wiring.globals.serverURL, "server", "", "server base URL")
	flags.StringVar(&wiring.globals.logLevel, "log-level", "", "log level: debug|info|warn|error")

	for _, runner := range buildCommands(wiring) {
		root.AddCommand(runner.Command())
	}
	return root
}
