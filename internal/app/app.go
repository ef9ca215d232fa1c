package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"scsm/internal/index"
	"scsm/internal/steamcmd"
	"scsm/pkg/logging"
)

const subsystem = "App"

var (
	// ErrNotInstalled is returned by operations that need an installed app.
	ErrNotInstalled = errors.New("not installed")
	// ErrUnsupportedPlatform is returned when the descriptor has no
	// executable for this platform.
	ErrUnsupportedPlatform = errors.New("no executable for this platform")
)

// SteamCMD is the part of the SteamCMD wrapper an App uses.
type SteamCMD interface {
	AppUpdate(ctx context.Context, opts steamcmd.UpdateOptions) (steamcmd.Result, error)
	Info(ctx context.Context, appID int) (steamcmd.AppInfo, error)
}

// Sessions lists the names of running multiplexer sessions.
type Sessions interface {
	ListSessions(ctx context.Context) ([]string, error)
}

// Options carry the dependencies and settings used to build an App.
type Options struct {
	Index     *index.Index
	AppDir    string
	BackupDir string
	SteamCMD  SteamCMD
	Sessions  Sessions

	// Platform and Arch default to the host ("Linux", "64bit", ...).
	Platform string
	Arch     string
}

// App is one resolved application.
type App struct {
	AppID       int
	AppName     string
	ServerName  string
	FullName    string
	AppNames    []string
	ServerNames []string

	Dir       string
	BackupDir string

	Platform   string
	Arch       string
	Exe        string
	ExecDir    string
	LibraryDir string

	Beta         *string
	BetaPassword *string
	AppConfig    *string

	// StartOptions and StopOptions are set when ServerName is.
	StartOptions []string
	StopOptions  []string

	ConfigFile      string
	ConfigIsDefault bool

	index    *index.Index
	steamcmd SteamCMD
	sessions Sessions
}

// New resolves token through the index and loads the app's descriptor.
func New(ctx context.Context, token string, opts Options) (*App, error) {
	res, err := opts.Index.Search(token)
	if err != nil {
		return nil, err
	}
	return FromResolution(res, opts)
}

// FromResolution builds an App from an index resolution.
func FromResolution(res index.Resolution, opts Options) (*App, error) {
	path, isDefault, err := opts.Index.Locate(res.AppID)
	if err != nil {
		return nil, err
	}
	desc, err := index.LoadDescriptor(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	a := &App{
		AppID:           res.AppID,
		AppName:         res.AppName,
		ServerName:      res.ServerName,
		AppNames:        desc.AppNames(),
		ConfigFile:      path,
		ConfigIsDefault: isDefault,
		Platform:        opts.Platform,
		Arch:            opts.Arch,
		index:           opts.Index,
		steamcmd:        opts.SteamCMD,
		sessions:        opts.Sessions,
	}
	if a.AppName == "" {
		a.AppName = a.AppNames[0]
	}
	if a.Platform == "" {
		a.Platform = HostPlatform()
	}
	if a.Arch == "" {
		a.Arch = HostArch()
	}

	def, ok := desc.App(a.AppName)
	if !ok {
		return nil, fmt.Errorf("app %s is not defined in %s: %w", a.AppName, path, index.ErrNotFound)
	}
	a.FullName = def.FullName
	a.ServerNames = def.ServerNames()
	a.Beta, a.BetaPassword, a.AppConfig = def.Beta, def.BetaPassword, def.AppConfig

	if a.ServerName != "" {
		srv, ok := def.Server(a.ServerName)
		if !ok {
			return nil, fmt.Errorf("server %s is not defined for %s: %w", a.ServerName, a.AppName, index.ErrNotFound)
		}
		a.StartOptions, a.StopOptions = srv.Start, srv.Stop
	}

	id := strconv.Itoa(a.AppID)
	a.Dir = filepath.Join(opts.AppDir, id, a.AppName)
	if opts.BackupDir != "" {
		a.BackupDir = filepath.Join(opts.BackupDir, id, a.AppName)
	}

	if p, ok := def.Platform(a.Platform, a.Arch); ok {
		a.Exe = p.Exec
		a.ExecDir = a.Dir
		if p.Directory != nil {
			a.ExecDir = filepath.Join(a.Dir, *p.Directory)
		}
		if p.Library != nil {
			a.LibraryDir = filepath.Join(a.Dir, *p.Library)
		}
	}

	logging.Debug(subsystem, "resolved %d/%s (descriptor %s)", a.AppID, a.AppName, path)
	return a, nil
}

// HostPlatform is the descriptor platform name of this machine.
func HostPlatform() string {
	return platformName(runtime.GOOS)
}

func platformName(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "windows":
		return "Windows"
	case "darwin":
		return "Darwin"
	default:
		if goos == "" {
			return ""
		}
		return strings.ToUpper(goos[:1]) + goos[1:]
	}
}

// HostArch is "64bit" or "32bit".
func HostArch() string {
	return archName(runtime.GOARCH)
}

func archName(goarch string) string {
	if strings.Contains(goarch, "64") {
		return "64bit"
	}
	return "32bit"
}

// Installed reports whether the app directory holds anything besides the
// steamapps metadata directory left by an interrupted install.
func (a *App) Installed() bool {
	entries, err := os.ReadDir(a.Dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.Name() != "steamapps" {
			return true
		}
	}
	return false
}

// Running reports whether any server of this app has a session. Sessions
// are not available on Windows.
func (a *App) Running(ctx context.Context) bool {
	if a.Platform == "Windows" || a.sessions == nil {
		return false
	}
	return RunningCheck(ctx, a.sessions, a.AppName, "")
}

// SessionName is the multiplexer session of one server.
func SessionName(appName, serverName string) string {
	return appName + "-" + serverName
}

// RunningCheck looks for the session of one server, or of any server of
// the app when serverName is empty. An unreachable multiplexer means
// nothing is running.
func RunningCheck(ctx context.Context, sessions Sessions, appName, serverName string) bool {
	names, err := sessions.ListSessions(ctx)
	if err != nil {
		logging.Debug(subsystem, "listing sessions: %v", err)
		return false
	}
	for _, name := range names {
		if serverName != "" {
			if name == SessionName(appName, serverName) {
				return true
			}
		} else if strings.HasPrefix(name, appName+"-") {
			return true
		}
	}
	return false
}
