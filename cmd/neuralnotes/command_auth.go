package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"neuralnotes/internal/client"
)

type credentialInput struct {
	stdin         io.Reader
	stderr        io.Writer
	readPassword  func() (string, error)
	username      string
	passwordStdin bool
}

// resolve prompts for whatever the flags left out. With --password-stdin the
// password is the first line of stdin, so the username must come from a flag.
func (in *credentialInput) resolve() (string, string, error) {
	username := strings.TrimSpace(in.username)
	if in.passwordStdin {
		if username == "" {
			return "", "", errors.New("--username is required with --password-stdin")
		}
		password, err := readLine(in.stdin)
		if err != nil {
			return "", "", err
		}
		return username, password, nil
	}
	if username == "" {
		fmt.Fprint(in.stderr, "username: ")
		line, err := readLine(in.stdin)
		if err != nil {
			return "", "", err
		}
		username = strings.TrimSpace(line)
	}
	if in.readPassword == nil {
		return "", "", errors.New("no password source; use --password-stdin")
	}
	password, err := in.readPassword()
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

func (in *credentialInput) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&in.username, "username", "u", "", "account name")
	cmd.Flags().BoolVar(&in.passwordStdin, "password-stdin", false, "read the password from stdin")
}

type LoginCommand struct {
	stdout io.Writer
	input  credentialInput
	newEnv envFactory
}

func NewLoginCommand(stdin io.Reader, stdout, stderr io.Writer, newEnv envFactory, readPassword func() (string, error)) *LoginCommand {
	return &LoginCommand{
		stdout: stdout,
		input:  credentialInput{stdin: stdin, stderr: stderr, readPassword: readPassword},
		newEnv: newEnv,
	}
}

func (c *LoginCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.newEnv(envCLI)
			if err != nil {
				return err
			}
			defer env.Close()

			username, password, err := c.input.resolve()
			if err != nil {
				return err
			}
			ctx, cancel := env.context(cmd.Context())
			defer cancel()
			if err := env.session.Login(ctx, env.client, username, password); err != nil {
				if client.IsUnauthorized(err) {
					return errors.New("login failed: invalid username or password")
				}
				return err
			}
			fmt.Fprintf(c.stdout, "logged in as %s\n", env.session.Username())
			return nil
		},
	}
	c.input.bind(cmd)
	return cmd
}

type SignupCommand struct {
	stdout io.Writer
	input  credentialInput
	newEnv envFactory
}

func NewSignupCommand(stdin io.Reader, stdout, stderr io.Writer, newEnv envFactory, readPassword func() (string, error)) *SignupCommand {
	return &SignupCommand{
		stdout: stdout,
		input:  credentialInput{stdin: stdin, stderr: stderr, readPassword: readPassword},
		newEnv: newEnv,
	}
}

func (c *SignupCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.newEnv(envCLI)
			if err != nil {
				return err
			}
			defer env.Close()

			username, password, err := c.input.resolve()
			if err != nil {
				return err
			}
			ctx, cancel := env.context(cmd.Context())
			defer cancel()
			account, err := env.client.Signup(ctx, client.SignupRequest{Username: username, Password: password})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "account %s created; run neuralnotes login\n", account.Username)
			return nil
		},
	}
	c.input.bind(cmd)
	return cmd
}

type LogoutCommand struct {
	stdout io.Writer
	newEnv envFactory
}

func NewLogoutCommand(stdout io.Writer, newEnv envFactory) *LogoutCommand {
	return &LogoutCommand{stdout: stdout, newEnv: newEnv}
}

func (c *LogoutCommand) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.newEnv(envCLI)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx, cancel := env.context(cmd.Context())
			defer cancel()
			if err := env.session.End(ctx); err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, "logged out")
			return nil
		},
	}
}

type WhoamiCommand struct {
	stdout io.Writer
	newEnv envFactory
}

func NewWhoamiCommand(stdout io.Writer, newEnv envFactory) *WhoamiCommand {
	return &WhoamiCommand{stdout: stdout, newEnv: newEnv}
}

func (c *WhoamiCommand) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.newEnv(envCLI)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := requireLogin(env); err != nil {
				return err
			}
			name := env.session.Username()
			if name == "" {
				name = "(unknown user)"
			}
			fmt.Fprintln(c.stdout, name)
			return nil
		},
	}
}
