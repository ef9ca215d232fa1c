package cmd

import (
	"context"
	"errors"

	"scsm/internal/app"
	"scsm/internal/server"

	"github.com/spf13/cobra"
)

func newStartCmd() *cobra.Command {
	var attach, debug bool
	cmd := &cobra.Command{
		Use:   "start [apps...]",
		Short: "Start servers",
		Long: `Starts each server in a detached tmux session named <app>-<server>.

--attach opens the console once the server is up. --debug runs the server
in the foreground of this terminal instead of a session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := getEnvironment(cmd)
			ctx := cmd.Context()

			tokens, err := env.expandServers(ctx, args)
			if err != nil {
				return err
			}
			for _, token := range tokens {
				s, err := env.server(ctx, token)
				if err != nil {
					return err
				}
				if err := env.startServer(ctx, s, attach, debug); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&attach, "attach", "a", false, "Attach to the session after starting")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Run the server in the foreground")
	return cmd
}

func (e *environment) startServer(ctx context.Context, s *server.Server, attach, debug bool) error {
	e.out.Info(s.ServerName, 0)
	if !s.Installed() {
		e.out.Error("App not installed")
		return nil
	}
	if s.Running(ctx) {
		e.out.Error("Already running")
		return nil
	}

	e.out.Status("Starting")
	err := s.Start(ctx, debug)
	switch {
	case errors.Is(err, app.ErrUnsupportedPlatform):
		e.out.Error("No executable for %s %s", s.Platform, s.Arch)
		return nil
	case err != nil:
		return err
	}
	e.out.Status("Started")

	if attach && !debug {
		if err := e.console(ctx, s); err != nil {
			return err
		}
	}
	if debug && s.Running(ctx) {
		// A session with the same name may have been left behind.
		e.out.Status("Killing")
		if err := s.Kill(ctx); err != nil {
			return err
		}
		e.out.Status("Stopped")
	}
	return nil
}
