package cmd

import (
	"errors"
	"os"
	"runtime"

	"scsm/internal/cli"
	"scsm/internal/index"
	"scsm/internal/tmux"
	"scsm/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error.
	ExitCodeError = 1
	// ExitCodeNotFound indicates an unknown app, server or backup, or
	// otherwise unusable input.
	ExitCodeNotFound = 2
	// ExitCodeExternalTool indicates that SteamCMD, tmux or an editor
	// failed.
	ExitCodeExternalTool = 3
)

const subsystem = "CLI"

var version = "dev"

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	debug    bool
	logLevel string
	quiet    bool
}

// commands that run before any configuration exists
var bootstrapCommands = map[string]bool{
	"setup":       true,
	"version":     true,
	"self-update": true,
	"help":        true,
	"completion":  true,
}

// commands that talk to tmux sessions
var sessionCommands = map[string]bool{
	"console": true,
	"kill":    true,
	"monitor": true,
	"restart": true,
	"send":    true,
	"start":   true,
	"status":  true,
	"stop":    true,
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "scsm",
		Short: "SteamCMD Server Manager",
		Long: `scsm installs, updates and backs up dedicated game servers through
SteamCMD and runs them in tmux sessions.

Apps are named by app id (232370), app name (hl2dm) or server name
(casual). Most commands also accept one of the special names all,
installed, running, stopped or backups.`,
		Version: version,
		// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(flags.logLevel)
			if err != nil {
				return &cli.InvalidInputError{Input: flags.logLevel, Reason: "invalid log level"}
			}
			if flags.debug {
				level = logging.LevelDebug
			}
			logging.InitForCLI(level, cmd.ErrOrStderr())

			if bootstrapCommands[cmd.Name()] {
				return nil
			}
			if sessionCommands[cmd.Name()] {
				if err := checkSessions(cmd); err != nil {
					return err
				}
			}

			env, err := newEnvironment(cmd, flags)
			if err != nil {
				return err
			}
			setEnvironment(cmd, env)
			return nil
		},
	}
	root.SetVersionTemplate(`{{printf "scsm version %s\n" .Version}}`)
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging (same as --log-level debug)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "Log level on stderr (debug, info, warn, error)")
	root.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "Suppress progress indicators")

	root.AddCommand(
		newBackupCmd(),
		newConsoleCmd(),
		newEditCmd(),
		newInstallCmd(),
		newKillCmd(),
		newListCmd(),
		newMonitorCmd(),
		newRemoveCmd(),
		newRestartCmd(),
		newRestoreCmd(),
		newSendCmd(),
		newSetupCmd(),
		newStartCmd(),
		newStatusCmd(),
		newStopCmd(),
		newUpdateCmd(),
		newVersionCmd(),
		newSelfUpdateCmd(),
	)
	return root
}

// lookupTmux is a variable to allow mocking in tests
var lookupTmux = tmux.Available

func checkSessions(cmd *cobra.Command) error {
	p := cli.NewPrinter(cmd.OutOrStdout())
	if runtime.GOOS == "windows" {
		p.Separator()
		p.Error("Not supported on Windows")
		return &cli.InvalidInputError{Input: cmd.Name(), Reason: "not supported on Windows"}
	}
	if !lookupTmux() {
		p.Separator()
		p.Error("Tmux is not installed")
		return &cli.ExternalToolError{Tool: "tmux", Err: errors.New("not found on PATH")}
	}
	return nil
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	version = v
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errors.Is(err, &cli.NotFoundError{}), errors.Is(err, &cli.InvalidInputError{}), errors.Is(err, index.ErrNotFound):
		return ExitCodeNotFound
	case errors.Is(err, &cli.ExternalToolError{}):
		return ExitCodeExternalTool
	default:
		return ExitCodeError
	}
}
