package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	userConfigDir   = ".config/scsm"
	userDataDir     = ".local/share/scsm"
	systemConfigDir = "/etc/scsm"
	rootBaseDir     = "/opt/scsm"

	envConfigDir = "SCSM_CONFIG_DIR"
	envDataDir   = "SCSM_DATA_DIR"
)

// Package-level hooks so tests can fake the host.
var (
	osUserHomeDir = os.UserHomeDir
	osGeteuid     = os.Geteuid
	goos          = runtime.GOOS
	pathExists    = func(p string) bool {
		_, err := os.Stat(p)
		return err == nil
	}
)

// ResolvePaths works out the config and base directories for the current
// user and platform.
func ResolvePaths() (Paths, error) {
	var paths Paths

	if goos == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return Paths{}, fmt.Errorf("APPDATA is not set")
		}
		paths.ConfigDir = filepath.Join(appData, "scsm")
		paths.BaseDir = paths.ConfigDir
	} else {
		home, err := osUserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("could not determine user home directory: %w", err)
		}

		paths.ConfigDir = filepath.Join(home, userConfigDir)
		if !pathExists(paths.ConfigDir) && pathExists(systemConfigDir) {
			paths.ConfigDir = systemConfigDir
			paths.SystemWide = true
		}

		if osGeteuid() == 0 {
			paths.BaseDir = rootBaseDir
		} else {
			paths.BaseDir = filepath.Join(home, userDataDir)
		}
	}

	if dir := os.Getenv(envConfigDir); dir != "" {
		paths.ConfigDir = dir
		paths.SystemWide = false
	}
	if dir := os.Getenv(envDataDir); dir != "" {
		paths.BaseDir = dir
	}

	return paths, nil
}

// SystemWidePaths returns paths with the config directory moved to /etc/scsm.
func SystemWidePaths(paths Paths) Paths {
	if goos == "windows" {
		return paths
	}
	paths.ConfigDir = systemConfigDir
	paths.SystemWide = true
	return paths
}

// UserPaths returns paths with the config directory moved back to the
// per-user location, for creating a user config next to a system one.
func UserPaths(paths Paths) (Paths, error) {
	if goos == "windows" {
		return paths, nil
	}
	home, err := osUserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("could not determine user home directory: %w", err)
	}
	paths.ConfigDir = filepath.Join(home, userConfigDir)
	paths.SystemWide = false
	return paths, nil
}
