package cmd

import (
	"scsm/internal/archive"
	"scsm/internal/cli"

	"github.com/spf13/cobra"
)

func newBackupCmd() *cobra.Command {
	var (
		compression string
		noCompress  bool
		force       bool
	)
	cmd := &cobra.Command{
		Use:   "backup [apps...]",
		Short: "Back up installed apps",
		Long: `Archives each app directory into the backup directory. Old backups are
removed first so that no more than max_backups are kept.

Compression is one of none, gz, bz2, xz, zst or lz4 and defaults to the
configured value.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := getEnvironment(cmd)
			ctx := cmd.Context()

			if !cmd.Flags().Changed("compression") {
				compression = env.cfg.General.Compression
			}
			if noCompress {
				compression = "none"
			}
			c, err := archive.ParseCompression(compression)
			if err != nil {
				env.out.Error("Invalid compression method")
				return &cli.InvalidInputError{Input: compression, Reason: "invalid compression method"}
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
					env.out.Error("Stop server before backup")
					continue
				}

				removed, err := a.PruneBackups(env.cfg.General.MaxBackups)
				if err != nil {
					return err
				}
				if len(removed) > 0 {
					env.out.Status("Max backups reached")
					env.out.Status("Removing old backups")
				}

				env.out.Status("Backup started")
				progress := cli.StartProgress(env.out.Writer(), "Archiving "+a.AppName, env.quiet)
				_, err = a.Backup(c)
				progress.Stop()
				if err != nil {
					return err
				}
				env.out.Status("Backup complete")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&compression, "compression", "c", "", "Compression method (none, gz, bz2, xz, zst, lz4)")
	cmd.Flags().BoolVarP(&noCompress, "no-compress", "n", false, "Do not compress")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Back up even if a server is running")
	return cmd
}
