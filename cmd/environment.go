package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"scsm/internal/app"
	"scsm/internal/cli"
	"scsm/internal/config"
	"scsm/internal/descriptors"
	"scsm/internal/index"
	"scsm/internal/server"
	"scsm/internal/steamcmd"
	"scsm/internal/tmux"

	"github.com/spf13/cobra"
)

// environment is the state shared by one command run.
type environment struct {
	cfg    config.Config
	index  *index.Index
	steam  *steamcmd.SteamCMD
	mux    server.Multiplexer
	out    *cli.Printer
	prompt *cli.Prompter
	quiet  bool

	stdin  io.Reader
	stderr io.Writer
}

type environmentKey struct{}

// newMultiplexer is a variable to allow mocking in tests
var newMultiplexer = func() server.Multiplexer { return tmux.New() }

// newEnvironment loads or creates the configuration, makes sure the
// built-in descriptors are in place and rebuilds the index.
func newEnvironment(cmd *cobra.Command, flags *rootFlags) (*environment, error) {
	paths, err := config.ResolvePaths()
	if err != nil {
		return nil, err
	}
	out := cli.NewPrinter(cmd.OutOrStdout())

	if !config.Exists(paths) {
		out.Separator()
		out.Error("No config file found")
		if err := runSetup(out, nil, paths, false); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(paths)
	if err != nil {
		return nil, err
	}

	if _, err := descriptors.Install(paths.DataDir(), false); err != nil {
		return nil, fmt.Errorf("installing descriptors: %w", err)
	}
	idx := index.New(paths.IndexFile(), paths.DataDir(), paths.ConfigDir)
	if err := idx.Update(); err != nil {
		return nil, err
	}

	return &environment{
		cfg:    cfg,
		index:  idx,
		steam:  steamcmd.New(paths.SteamCMDDir(), steamcmd.WithIO(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())),
		mux:    newMultiplexer(),
		out:    out,
		prompt: cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
		quiet:  flags.quiet,
		stdin:  cmd.InOrStdin(),
		stderr: cmd.ErrOrStderr(),
	}, nil
}

func setEnvironment(cmd *cobra.Command, env *environment) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, environmentKey{}, env))
}

func getEnvironment(cmd *cobra.Command) *environment {
	env, _ := cmd.Context().Value(environmentKey{}).(*environment)
	if env == nil {
		panic("command run without environment")
	}
	return env
}

func (e *environment) appOptions() app.Options {
	return app.Options{
		Index:     e.index,
		AppDir:    e.cfg.Directories.AppDir,
		BackupDir: e.cfg.Directories.BackupDir,
		SteamCMD:  e.steam,
		Sessions:  e.mux,
	}
}

// app resolves a token, printing the error block the user sees for an
// unknown name.
func (e *environment) app(ctx context.Context, token string) (*app.App, error) {
	a, err := app.New(ctx, token, e.appOptions())
	if err != nil {
		return nil, e.notFound(token, "app name", err)
	}
	return a, nil
}

// server resolves a token down to one server.
func (e *environment) server(ctx context.Context, token string) (*server.Server, error) {
	a, err := app.New(ctx, token, e.appOptions())
	if err != nil {
		return nil, e.notFound(token, "app or server name", err)
	}
	if a.ServerName == "" {
		return nil, e.notFound(token, "server name", index.ErrNotFound)
	}
	return server.New(a, e.mux, server.WithIO(e.stdin, e.out.Writer(), e.stderr))
}

func (e *environment) notFound(token, kind string, err error) error {
	if !errors.Is(err, index.ErrNotFound) {
		return err
	}
	e.out.Separator()
	if _, convErr := strconv.Atoi(token); convErr == nil {
		e.out.Message("App ID", token)
		e.out.Error("Invalid app id")
		return &cli.NotFoundError{Kind: "app id", Name: token}
	}
	e.out.Message("Name", token)
	e.out.Error("Invalid %s", kind)
	return &cli.NotFoundError{Kind: kind, Name: token}
}

// credentials merges flag values over the configured account.
func (e *environment) credentials(username, password string) steamcmd.Credentials {
	creds := steamcmd.Credentials{
		Username: e.cfg.Steam.Username,
		Password: e.cfg.Steam.Password,
	}
	if username != "" {
		creds.Username = username
		creds.Password = password
	} else if password != "" {
		creds.Password = password
	}
	if creds.Username == "" {
		creds.Username = config.DefaultUsername
	}
	return creds
}
