package main

import (
	"github.com/spf13/cobra"

	"neuralnotes/internal/app"
	"neuralnotes/internal/logging"
)

type UICommand struct {
	newEnv envFactory
	runUI  func(app.Deps) error
}

func NewUICommand(newEnv envFactory, runUI func(app.Deps) error) *UICommand {
	return &UICommand{newEnv: newEnv, runUI: runUI}
}

func (c *UICommand) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Run the terminal UI (logs to <data dir>/ui.log)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.newEnv(envUI)
			if err != nil {
				return err
			}
			defer env.Close()

			env.logger.Info("ui starting", logging.F("server", env.cfg.ServerURL()))
			return c.runUI(app.Deps{
				Store:             env.client,
				Session:           env.session,
				AppState:          env.appState,
				Logger:            env.logger,
				RequestTimeout:    env.cfg.RequestTimeout(),
				ControllerOptions: env.controllerOptions(),
			})
		},
	}
}
