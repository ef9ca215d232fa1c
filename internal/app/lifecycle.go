package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"scsm/internal/steamcmd"
	"scsm/pkg/logging"
)

// UpdateOptions are the per-run settings of Update.
type UpdateOptions struct {
	Credentials steamcmd.Credentials
	Validate    bool
	Verbose     bool
}

// Update installs or updates the app through SteamCMD. A fresh install
// rejected for lack of a subscription is removed again.
func (a *App) Update(ctx context.Context, opts UpdateOptions) (steamcmd.Result, error) {
	if a.steamcmd == nil {
		return steamcmd.Result{}, fmt.Errorf("steamcmd is not configured")
	}
	_, statErr := os.Stat(a.Dir)
	newInstall := errors.Is(statErr, os.ErrNotExist)

	if a.ConfigIsDefault {
		if err := a.CopyConfig(); err != nil {
			return steamcmd.Result{}, err
		}
	}

	res, err := a.steamcmd.AppUpdate(ctx, steamcmd.UpdateOptions{
		AppID:        a.AppID,
		Dir:          a.Dir,
		Beta:         deref(a.Beta),
		BetaPassword: deref(a.BetaPassword),
		AppConfig:    deref(a.AppConfig),
		Platform:     a.Platform,
		Validate:     opts.Validate,
		Verbose:      opts.Verbose,
		Credentials:  opts.Credentials,
	})
	if err != nil {
		return res, err
	}

	if res.NoSubscription() && newInstall {
		logging.Warn(subsystem, "no subscription for %d, removing partial install", a.AppID)
		if err := a.Remove(); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Remove deletes the app directory, and the app id directory when no
// other app name is left in it.
func (a *App) Remove() error {
	if err := os.RemoveAll(a.Dir); err != nil {
		return err
	}

	parent := filepath.Dir(a.Dir)
	entries, err := os.ReadDir(parent)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(entries) == 0 {
		if err := os.Remove(parent); err != nil {
			return err
		}
	}
	logging.Info(subsystem, "removed %s", a.Dir)
	return nil
}

// CopyConfig copies the built-in descriptor into the override directory
// and switches the app to it.
func (a *App) CopyConfig() error {
	dir := a.index.OverrideDir()
	if dir == "" {
		return fmt.Errorf("no override directory configured")
	}
	data, err := os.ReadFile(a.ConfigFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	dest := filepath.Join(dir, filepath.Base(a.ConfigFile))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return err
	}
	a.ConfigFile = dest
	a.ConfigIsDefault = false
	logging.Debug(subsystem, "copied descriptor to %s", dest)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
