package cmd

import (
	"os"

	"scsm/internal/cli"

	"github.com/spf13/cobra"
)

func newRestoreCmd() *cobra.Command {
	var force, latest bool
	cmd := &cobra.Command{
		Use:   "restore [apps...]",
		Short: "Restore apps from a backup",
		Long: `Unpacks a backup over the app directory. When there is more than one
backup a numbered list is shown, newest first; --latest picks the newest
without asking.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := getEnvironment(cmd)
			ctx := cmd.Context()

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

				backups, err := a.Backups()
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					env.out.Error("No backups found")
					continue
				}
				if !force && a.Running(ctx) {
					env.out.Error("Stop server before restoring")
					continue
				}

				choice := 0
				if len(backups) > 1 && !latest {
					if choice, err = env.prompt.Select(env.out, "Backups", backups); err != nil {
						return err
					}
				}

				if err := os.MkdirAll(a.Dir, 0o755); err != nil {
					return err
				}
				env.out.Status("Restoring")
				progress := cli.StartProgress(env.out.Writer(), "Extracting "+backups[choice], env.quiet)
				err = a.Restore(backups[choice])
				progress.Stop()
				if err != nil {
					return err
				}
				env.out.Status("Restore complete")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Restore even if a server is running")
	cmd.Flags().BoolVarP(&latest, "latest", "l", false, "Pick the newest backup")
	return cmd
}
