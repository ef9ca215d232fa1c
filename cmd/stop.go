package cmd

import (
	"context"
	"time"

	"scsm/internal/server"

	"github.com/spf13/cobra"
)

func newStopCmd() *cobra.Command {
	var waitTime int
	cmd := &cobra.Command{
		Use:   "stop [apps...]",
		Short: "Stop servers",
		Long: `Sends each server its stop commands and waits for the session to end.
A server still running after the wait time is killed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := getEnvironment(cmd)
			ctx := cmd.Context()
			if !cmd.Flags().Changed("wait-time") {
				waitTime = env.cfg.General.WaitTime
			}

			tokens, err := env.expandServers(ctx, args)
			if err != nil {
				return err
			}
			for _, token := range tokens {
				s, err := env.server(ctx, token)
				if err != nil {
					return err
				}
				if err := env.stopServer(ctx, s, waitTime); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&waitTime, "wait-time", "w", 0, "Seconds to wait before killing (default from config)")
	return cmd
}

func (e *environment) stopServer(ctx context.Context, s *server.Server, waitTime int) error {
	e.out.Info(s.ServerName, 0)
	if !s.Installed() {
		e.out.Error("App not installed")
		return nil
	}
	if !s.Running(ctx) {
		e.out.Error("Stopped")
		return nil
	}

	e.out.Status("Stopping")
	killed, err := s.Shutdown(ctx, time.Duration(waitTime)*time.Second)
	if err != nil {
		return err
	}
	if killed {
		e.out.Error("Waited %d seconds", waitTime)
		e.out.Error("Killing")
	}
	e.out.Status("Stopped")
	return nil
}
