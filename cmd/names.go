package cmd

import (
	"context"
	"errors"
	"strconv"

	"scsm/internal/app"
	"scsm/internal/cli"
	"scsm/internal/index"
)

// errNoApps is returned when a command gets no app tokens.
var errNoApps = &cli.InvalidInputError{Reason: "no apps specified"}

// expandApps turns the command line tokens into app tokens. A single
// "all" or "installed" means every installed app, "backups" every app
// with a backup directory, and "running" or "stopped" the servers in
// that state.
func (e *environment) expandApps(ctx context.Context, tokens []string) ([]string, error) {
	return e.expand(ctx, tokens, false)
}

// expandServers is expandApps for commands that act on servers. App
// tokens are replaced by the names of all their servers.
func (e *environment) expandServers(ctx context.Context, tokens []string) ([]string, error) {
	return e.expand(ctx, tokens, true)
}

func (e *environment) expand(ctx context.Context, tokens []string, servers bool) ([]string, error) {
	var (
		out []string
		err error
	)

	special := ""
	if len(tokens) == 1 {
		special = tokens[0]
	}
	switch special {
	case "all", "installed":
		out, err = e.index.List(e.cfg.Directories.AppDir)
		if err == nil && servers {
			out, err = e.serverNames(ctx, out)
		}
	case "running", "stopped":
		out, err = e.byState(ctx, special == "running")
	case "backups":
		out, err = e.index.List(e.cfg.Directories.BackupDir)
		if err == nil && servers {
			out, err = e.serverNames(ctx, out)
		}
	default:
		out = tokens
		if servers {
			out, err = e.serverNames(ctx, out)
		}
	}
	if err != nil {
		return nil, err
	}
	if len(out) == 0 && len(tokens) == 0 {
		return nil, errNoApps
	}
	return out, nil
}

// serverNames replaces each app token with its server names. Tokens
// that already name a server, and unknown tokens, pass through so the
// command can report them.
func (e *environment) serverNames(ctx context.Context, tokens []string) ([]string, error) {
	var out []string
	for _, token := range tokens {
		a, err := app.New(ctx, token, e.appOptions())
		if err != nil {
			if errors.Is(err, index.ErrNotFound) {
				out = append(out, token)
				continue
			}
			return nil, err
		}
		if a.ServerName == "" || a.ServerName == a.AppName || token == strconv.Itoa(a.AppID) {
			out = append(out, a.ServerNames...)
		} else {
			out = append(out, token)
		}
	}
	return out, nil
}

func (e *environment) byState(ctx context.Context, running bool) ([]string, error) {
	installed, err := e.index.List(e.cfg.Directories.AppDir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, token := range installed {
		a, err := app.New(ctx, token, e.appOptions())
		if err != nil {
			return nil, err
		}
		for _, name := range a.ServerNames {
			if app.RunningCheck(ctx, e.mux, a.AppName, name) == running {
				out = append(out, name)
			}
		}
	}
	return out, nil
}
