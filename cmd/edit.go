package cmd

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"scsm/internal/cli"
	"scsm/pkg/logging"

	"github.com/spf13/cobra"
)

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

const defaultEditor = "vi"

func newEditCmd() *cobra.Command {
	var editor string
	cmd := &cobra.Command{
		Use:   "edit <config|apps...>",
		Short: "Edit the config file or app descriptors",
		Long: `Opens config.yaml, or the descriptor of each named installed app, in an editor.
A built-in descriptor is first copied to the user apps directory so the
edit survives upgrades. The app index is rebuilt afterwards.

The editor is --editor, else $EDITOR, else vi.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := getEnvironment(cmd)
			ctx := cmd.Context()
			if editor == "" {
				editor = os.Getenv("EDITOR")
			}
			if editor == "" {
				editor = defaultEditor
			}

			if len(args) == 1 && args[0] == "config" {
				env.out.Separator()
				env.out.Message("F-Name", env.cfg.Paths.ConfigFile())
				return env.runEditor(ctx, editor, env.cfg.Paths.ConfigFile())
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
				if a.ConfigIsDefault {
					if err := a.CopyConfig(); err != nil {
						return err
					}
					env.out.Status("Copied default descriptor")
				}
				env.out.Message("F-Name", a.ConfigFile)
				if err := env.runEditor(ctx, editor, a.ConfigFile); err != nil {
					return err
				}
			}
			return env.index.Update()
		},
	}
	cmd.Flags().StringVarP(&editor, "editor", "e", "", "Editor to use instead of $EDITOR")
	return cmd
}

func (e *environment) runEditor(ctx context.Context, editor, file string) error {
	argv := strings.Fields(editor)
	argv = append(argv, file)
	logging.Debug(subsystem, "running %v", argv)

	c := execCommandContext(ctx, argv[0], argv[1:]...)
	c.Stdin = e.stdin
	c.Stdout = e.out.Writer()
	c.Stderr = e.stderr
	if err := c.Run(); err != nil {
		return &cli.ExternalToolError{Tool: argv[0], Err: err}
	}
	return nil
}
