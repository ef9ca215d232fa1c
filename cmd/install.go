package cmd

import (
	"slices"

	"github.com/spf13/cobra"
)

func newInstallCmd() *cobra.Command {
	flags := &updateFlags{}
	cmd := &cobra.Command{
		Use:   "install [steamcmd | apps...]",
		Short: "Install apps or SteamCMD",
		Long: `Installs apps through SteamCMD, like update. "scsm install steamcmd"
downloads the private SteamCMD copy instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := getEnvironment(cmd)
			if !slices.Equal(args, []string{"steamcmd"}) {
				return runUpdate(cmd.Context(), env, args, flags)
			}

			if !env.steam.Installed() {
				return env.installSteamCMD(cmd.Context())
			}
			env.out.Separator()
			env.out.Error("SteamCMD is already installed")
			if !env.steam.Managed() {
				env.out.Error("SteamCMD is not managed by SCSM")
				return nil
			}
			ok, err := env.prompt.Confirm("Reinstall SteamCMD?")
			if err != nil || !ok {
				return err
			}
			return env.installSteamCMD(cmd.Context())
		},
	}
	flags.login.register(cmd)
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Install even if a server is running")
	cmd.Flags().BoolVar(&flags.validate, "validate", false, "Validate the installed files")
	return cmd
}
