package cmd

import (
	"github.com/spf13/cobra"
)

func newRestartCmd() *cobra.Command {
	var waitTime int
	cmd := &cobra.Command{
		Use:   "restart [apps...]",
		Short: "Stop and start servers",
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
				if err := env.startServer(ctx, s, false, false); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&waitTime, "wait-time", "w", 0, "Seconds to wait before killing (default from config)")
	return cmd
}
