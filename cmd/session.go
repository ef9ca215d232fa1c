package cmd

import (
	"context"

	"scsm/internal/cli"
	"scsm/internal/server"

	"github.com/spf13/cobra"
)

// forEachRunning resolves the server tokens and calls fn for each
// server that is installed and running. The others get an error line.
func forEachRunning(cmd *cobra.Command, args []string, fn func(context.Context, *environment, *server.Server) error) error {
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
		env.out.Info(s.ServerName, 0)
		if !s.Installed() {
			env.out.Error("App not installed")
			continue
		}
		if !s.Running(ctx) {
			env.out.Error("Stopped")
			continue
		}
		if err := fn(ctx, env, s); err != nil {
			return err
		}
	}
	return nil
}

func (e *environment) console(ctx context.Context, s *server.Server) error {
	e.out.Status("Attaching to session")
	if err := s.Console(ctx); err != nil {
		return &cli.ExternalToolError{Tool: "tmux", Err: err}
	}
	e.out.Status("Disconnected from session")
	return nil
}

func newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console [apps...]",
		Short: "Attach to server sessions",
		Long:  `Attaches this terminal to each server's tmux session in turn. Detach with the tmux prefix key followed by d.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return forEachRunning(cmd, args, func(ctx context.Context, env *environment, s *server.Server) error {
				return env.console(ctx, s)
			})
		},
	}
}

func newKillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill [apps...]",
		Short: "Kill server sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return forEachRunning(cmd, args, func(ctx context.Context, env *environment, s *server.Server) error {
				env.out.Status("Killing")
				if err := s.Kill(ctx); err != nil {
					return &cli.ExternalToolError{Tool: "tmux", Err: err}
				}
				env.out.Status("Stopped")
				return nil
			})
		},
	}
}

func newSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <command> [apps...]",
		Short: "Send a console command to servers",
		Long: `Types a command into each server's console, for example

  scsm send "changelevel de_nuke" casual`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := args[0]
			return forEachRunning(cmd, args[1:], func(ctx context.Context, env *environment, s *server.Server) error {
				env.out.Status("Command sent")
				if err := s.Send(ctx, command); err != nil {
					return &cli.ExternalToolError{Tool: "tmux", Err: err}
				}
				env.out.Status("Command finished")
				return nil
			})
		},
	}
}
