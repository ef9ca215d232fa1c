package cmd

import (
	"errors"
	"slices"

	"scsm/internal/cli"
	"scsm/internal/steamcmd"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "remove [steamcmd | apps...]",
		Short: "Remove installed apps or SteamCMD",
		Long: `Deletes app directories. Backups are kept. "scsm remove steamcmd"
deletes the private SteamCMD copy; a system SteamCMD is left alone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := getEnvironment(cmd)
			ctx := cmd.Context()

			if slices.Equal(args, []string{"steamcmd"}) {
				env.out.Separator()
				err := env.steam.Remove()
				switch {
				case errors.Is(err, steamcmd.ErrNotManaged):
					env.out.Error("SteamCMD is not managed by SCSM")
					return nil
				case errors.Is(err, steamcmd.ErrNotInstalled):
					env.out.Error("SteamCMD not installed")
					return nil
				case err != nil:
					return &cli.ExternalToolError{Tool: "steamcmd", Err: err}
				}
				env.out.Status("SteamCMD removed")
				return nil
			}

			tokens, err := env.expandApps(ctx, args)
			if err != nil {
				return err
			}
			for _, token := range tokens {
				a, err := env.app(ctx, token)
				if err != nil {
					return err
				}
				env.out.Info(a.AppName, a.AppID)

				if !a.Installed() {
					env.out.Error("App not installed")
					continue
				}
				if !force && a.Running(ctx) {
					env.out.Error("Stop server before removing")
					continue
				}
				env.out.Status("Removing")
				if err := a.Remove(); err != nil {
					return err
				}
				env.out.Status("Remove complete")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove even if a server is running")
	return cmd
}
