package cmd

import (
	"context"
	"errors"
	"fmt"

	"scsm/internal/app"
	"scsm/internal/cli"
	"scsm/internal/config"
	"scsm/internal/steamcmd"

	"github.com/spf13/cobra"
)

// loginFlags select the Steam account for update and install.
type loginFlags struct {
	username   string
	password   string
	steamGuard string
}

func (f *loginFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.username, "username", "u", "", "Steam username (default from config)")
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "Steam password (default from config)")
	cmd.Flags().StringVarP(&f.steamGuard, "steam-guard", "g", "", "Steam Guard code")
}

type updateFlags struct {
	login    loginFlags
	force    bool
	validate bool
}

func newUpdateCmd() *cobra.Command {
	flags := &updateFlags{}
	cmd := &cobra.Command{
		Use:   "update [apps...]",
		Short: "Install or update apps",
		Long: `Installs apps that are not installed yet and updates the rest through
SteamCMD. SteamCMD itself is installed first when it is missing.

Examples:
  scsm update hl2dm
  scsm update all --validate
  scsm update 740 -u myaccount`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd.Context(), getEnvironment(cmd), args, flags)
		},
	}
	flags.login.register(cmd)
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Update even if a server is running")
	cmd.Flags().BoolVar(&flags.validate, "validate", false, "Validate the installed files")
	return cmd
}

func runUpdate(ctx context.Context, env *environment, args []string, flags *updateFlags) error {
	tokens, err := env.expandApps(ctx, args)
	if err != nil {
		return err
	}

	var failed []string
	for _, token := range tokens {
		a, err := env.app(ctx, token)
		if err != nil {
			return err
		}
		if err := env.ensureSteamCMD(ctx); err != nil {
			return err
		}
		env.out.Info(a.AppName, a.AppID)

		if !flags.force && a.Running(ctx) {
			env.out.Error("Stop server before update")
			continue
		}

		creds, err := env.login(ctx, &flags.login)
		if err != nil {
			return err
		}
		ok, err := env.updateApp(ctx, a, creds, flags.validate)
		if err != nil {
			return err
		}
		if !ok {
			failed = append(failed, a.AppName)
		}
	}

	if len(failed) > 0 {
		return &cli.ExternalToolError{Tool: "steamcmd", Err: fmt.Errorf("update failed for %v", failed)}
	}
	return nil
}

// updateApp installs or updates one app and reports the outcome.
func (e *environment) updateApp(ctx context.Context, a *app.App, creds steamcmd.Credentials, validate bool) (bool, error) {
	fresh := !a.Installed()
	if fresh {
		// Unlicensed installs leave partial files behind.
		e.out.Status("Checking for license")
		licensed, err := e.steam.License(ctx, a.AppID, creds)
		if err != nil {
			return false, err
		}
		if !licensed {
			e.out.Error("No subscription")
			return true, nil
		}
		e.out.Status("Installing")
	} else if validate {
		e.out.Status("Updating and Validating")
	} else {
		e.out.Status("Updating")
	}

	verbose := e.cfg.General.Verbose
	progress := cli.StartProgress(e.out.Writer(), "Running SteamCMD", e.quiet || verbose)
	res, err := a.Update(ctx, app.UpdateOptions{
		Credentials: creds,
		Validate:    validate,
		Verbose:     verbose,
	})
	progress.Stop()
	if err != nil {
		return false, err
	}

	switch {
	case res.NoSubscription():
		e.out.Error("No subscription")
		return true, nil
	case res.ExitCode != 0:
		if res.Status != "" {
			e.out.Error("%s", res.Status)
		}
		if fresh {
			e.out.Error("Install failed")
		} else {
			e.out.Error("Update failed")
		}
		return false, nil
	case fresh:
		e.out.Status("Installed")
	default:
		e.out.Status("Updated")
	}
	return true, nil
}

// login builds the credentials for SteamCMD, asking for a Steam Guard
// code when the config wants one and no login is cached.
func (e *environment) login(ctx context.Context, flags *loginFlags) (steamcmd.Credentials, error) {
	creds := e.credentials(flags.username, flags.password)
	creds.SteamGuard = flags.steamGuard

	if !e.cfg.General.SteamGuard || creds.Username == config.DefaultUsername || creds.SteamGuard != "" {
		return creds, nil
	}
	cached, err := e.steam.CachedLogin(ctx, creds.Username)
	if err != nil {
		return creds, err
	}
	if cached {
		return creds, nil
	}
	code, err := e.prompt.Line(fmt.Sprintf("[ %-6s ] - Steam Guard code for %s: ", "Status", creds.Username))
	if err != nil && !errors.Is(err, cli.ErrAborted) {
		return creds, err
	}
	creds.SteamGuard = code
	return creds, nil
}

// ensureSteamCMD installs the private SteamCMD copy when there is none.
func (e *environment) ensureSteamCMD(ctx context.Context) error {
	if e.steam.Installed() {
		return nil
	}
	e.out.Separator()
	e.out.Error("SteamCMD not installed")
	if err := e.installSteamCMD(ctx); err != nil {
		return err
	}
	if !e.steam.Installed() {
		return &cli.ExternalToolError{Tool: "steamcmd", Err: steamcmd.ErrNotInstalled}
	}
	return nil
}

func (e *environment) installSteamCMD(ctx context.Context) error {
	e.out.Separator()
	e.out.Status("SteamCMD installing")
	progress := cli.StartProgress(e.out.Writer(), "Downloading SteamCMD", e.quiet)
	err := e.steam.Install(ctx)
	progress.Stop()
	if err != nil {
		return &cli.ExternalToolError{Tool: "steamcmd", Err: err}
	}
	e.out.Status("SteamCMD installed")

	e.out.Status("SteamCMD updating")
	res, err := e.steam.Update(ctx, e.cfg.General.Verbose)
	if err != nil {
		return &cli.ExternalToolError{Tool: "steamcmd", Err: err}
	}
	if res.ExitCode == 0 {
		e.out.Status("SteamCMD updated")
	} else {
		e.out.Error("SteamCMD update failed")
	}
	return nil
}
