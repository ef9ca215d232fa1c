package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/andygrunwald/vdf"

	"scsm/pkg/logging"
)

// ManifestFile is the SteamCMD manifest of the installed build.
func (a *App) ManifestFile() string {
	return filepath.Join(a.Dir, "steamapps", fmt.Sprintf("appmanifest_%d.acf", a.AppID))
}

// BuildIDLocal returns AppState.buildid from the installed manifest, or 0
// when there is no manifest.
func (a *App) BuildIDLocal() (int, error) {
	f, err := os.Open(a.ManifestFile())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	data, err := vdf.NewParser(f).Parse()
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", a.ManifestFile(), err)
	}
	state, ok := data["AppState"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("%s has no AppState", a.ManifestFile())
	}
	raw, ok := state["buildid"].(string)
	if !ok {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// BuildIDSteam returns the latest build on the app's branch, or 0 when
// SteamCMD cannot tell.
func (a *App) BuildIDSteam(ctx context.Context) int {
	if a.steamcmd == nil {
		return 0
	}
	info, err := a.steamcmd.Info(ctx, a.AppID)
	if err != nil {
		logging.Debug(subsystem, "app info for %d: %v", a.AppID, err)
		return 0
	}
	branch := "public"
	if a.Beta != nil && *a.Beta != "" {
		branch = *a.Beta
	}
	return info.BuildID(branch)
}
