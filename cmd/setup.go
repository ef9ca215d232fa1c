package cmd

import (
	"fmt"
	"os"

	"scsm/internal/cli"
	"scsm/internal/config"
	"scsm/internal/descriptors"

	"github.com/spf13/cobra"
)

func newSetupCmd() *cobra.Command {
	var systemWide bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the config file and directories",
		Long: `Creates config.yaml with default settings, installs the built-in app
descriptors and creates the app and backup directories.

With --system-wide the config is written to /etc/scsm and shared by all
users. An existing config is only overwritten after confirmation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := config.ResolvePaths()
			if err != nil {
				return err
			}
			out := cli.NewPrinter(cmd.OutOrStdout())
			return runSetup(out, cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()), paths, systemWide)
		},
	}
	cmd.Flags().BoolVarP(&systemWide, "system-wide", "s", false, "Write the config to /etc/scsm")
	return cmd
}

// runSetup creates the configuration. prompt may be nil when the caller
// knows there is no config yet.
func runSetup(out *cli.Printer, prompt *cli.Prompter, paths config.Paths, systemWide bool) error {
	out.Separator()

	target := paths
	if systemWide {
		target = config.SystemWidePaths(paths)
	}

	create := true
	switch {
	case !config.Exists(paths):
	case !systemWide && paths.SystemWide:
		// Only the shared config exists; give this user their own.
		userPaths, err := config.UserPaths(paths)
		if err != nil {
			return err
		}
		target = userPaths
	default:
		out.Error("Config file already exists")
		create = false
		if prompt != nil {
			ok, err := prompt.Confirm("Overwrite config?")
			if err != nil {
				return err
			}
			create = ok
		}
	}

	cfg, err := config.Load(target)
	if err != nil {
		cfg = config.Default(target)
	}
	if create {
		out.Status("Creating config files")
		if cfg, err = config.Create(target); err != nil {
			return err
		}
		out.Status("Configs installed")
	}

	if _, err := descriptors.Install(target.DataDir(), false); err != nil {
		return fmt.Errorf("installing descriptors: %w", err)
	}
	for _, dir := range []string{cfg.Directories.AppDir, cfg.Directories.BackupDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
