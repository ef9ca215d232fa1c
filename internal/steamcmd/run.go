package steamcmd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"scsm/pkg/logging"
)

const (
	licenseMarker      = "License packageID"
	cachedLoginMarker  = "Using cached credentials"
	noSubscription     = "(No subscription)"
	cachedLoginTimeout = 5 * time.Second

	// steamcmd.sh runs the real binary as a child that inherits stdout.
	// Once the script is killed, Wait gives the child this long before
	// closing the pipes itself.
	waitDelay = time.Second
)

var (
	successMarkers = []string{"Success", "Update complete"}
	errorMarkers   = []string{"ERROR", "Failed", "Fatal Error"}
)

// Result is the outcome of a SteamCMD run. Status is the first line with a
// success or error marker; it is empty for verbose runs.
type Result struct {
	ExitCode int
	Status   string
}

// NoSubscription reports whether SteamCMD refused the app for lack of a
// license.
func (r Result) NoSubscription() bool {
	return strings.Contains(r.Status, noSubscription)
}

// Credentials are passed to +login. Empty fields are omitted.
type Credentials struct {
	Username   string
	Password   string
	SteamGuard string
}

func (c Credentials) loginArgs() []string {
	user := c.Username
	if user == "" {
		user = "anonymous"
	}
	args := []string{"+login", user}
	if c.Password != "" {
		args = append(args, c.Password)
		if c.SteamGuard != "" {
			args = append(args, c.SteamGuard)
		}
	}
	return args
}

// UpdateOptions parameterise AppUpdate.
type UpdateOptions struct {
	AppID        int
	Dir          string
	Beta         string
	BetaPassword string
	AppConfig    string
	// Platform is the descriptor platform name (Linux, Windows, Darwin).
	// A platform different from the host forces SteamCMD to fetch that
	// platform's depots.
	Platform    string
	Validate    bool
	Verbose     bool
	Credentials Credentials
}

// steamPlatforms maps descriptor platform names to SteamCMD's.
var steamPlatforms = map[string]string{
	"Linux":   "linux",
	"Windows": "windows",
	"Darwin":  "macos",
}

// hostPlatform returns the descriptor platform name for a GOOS value.
func hostPlatform(goos string) string {
	switch goos {
	case "windows":
		return "Windows"
	case "darwin":
		return "Darwin"
	default:
		return "Linux"
	}
}

// UpdateArgs builds the scripted argument list for an app update.
// SteamCMD only honours the platform override and +force_install_dir when
// they come before +login.
func UpdateArgs(opts UpdateOptions, goos string) []string {
	var args []string
	if opts.Platform != "" && opts.Platform != hostPlatform(goos) {
		if p, ok := steamPlatforms[opts.Platform]; ok {
			args = append(args, "+@sSteamCmdForcePlatformType", p)
		}
	}
	args = append(args, "+force_install_dir", opts.Dir)
	args = append(args, opts.Credentials.loginArgs()...)

	id := strconv.Itoa(opts.AppID)
	if opts.AppConfig != "" {
		args = append(args, "+app_set_config", id)
		args = append(args, strings.Fields(opts.AppConfig)...)
	}

	args = append(args, "+app_update", id)
	if opts.Beta != "" {
		args = append(args, "-beta", opts.Beta)
	}
	if opts.BetaPassword != "" {
		args = append(args, "-betapassword", opts.BetaPassword)
	}
	if opts.Validate {
		args = append(args, "validate")
	}
	return append(args, "+quit")
}

// AppUpdate installs or updates an app.
func (s *SteamCMD) AppUpdate(ctx context.Context, opts UpdateOptions) (Result, error) {
	return s.run(ctx, opts.Verbose, UpdateArgs(opts, s.goos)...)
}

// Update lets SteamCMD update itself.
func (s *SteamCMD) Update(ctx context.Context, verbose bool) (Result, error) {
	return s.run(ctx, verbose, "+login", "anonymous", "+quit")
}

// License reports whether the account owns appID.
func (s *SteamCMD) License(ctx context.Context, appID int, creds Credentials) (bool, error) {
	args := append(creds.loginArgs(), "+licenses_for_app", strconv.Itoa(appID), "+quit")
	out, _, err := s.output(ctx, args...)
	if err != nil {
		return false, err
	}
	return containsMarker(out, licenseMarker), nil
}

// CachedLogin reports whether SteamCMD holds a cached login for username.
// A login that does not finish within a few seconds is waiting for a
// password, so it is treated as not cached.
func (s *SteamCMD) CachedLogin(ctx context.Context, username string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, cachedLoginTimeout)
	defer cancel()

	out, _, err := s.output(ctx, "+login", username, "+quit")
	if ctx.Err() != nil {
		logging.Debug(subsystem, "cached login check for %s timed out", username)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return containsMarker(out, cachedLoginMarker), nil
}

// Filter runs SteamCMD with args and returns its exit code and the first
// line containing a success or error marker.
func (s *SteamCMD) Filter(ctx context.Context, args ...string) (Result, error) {
	out, code, err := s.output(ctx, args...)
	if err != nil {
		return Result{}, err
	}
	return Result{ExitCode: code, Status: FilterOutput(out)}, nil
}

// FilterOutput returns the first line of out containing a marker.
func FilterOutput(out []byte) string {
	markers := append(append([]string{}, successMarkers...), errorMarkers...)
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		for _, m := range markers {
			if strings.Contains(line, m) {
				return strings.TrimSpace(line)
			}
		}
	}
	return ""
}

func (s *SteamCMD) run(ctx context.Context, verbose bool, args ...string) (Result, error) {
	if !s.Installed() {
		return Result{}, ErrNotInstalled
	}
	if !verbose {
		return s.Filter(ctx, args...)
	}

	logging.Debug(subsystem, "running %s %s", s.exe, redact(args))
	cmd := execCommandContext(ctx, s.exe, args...)
	cmd.WaitDelay = waitDelay
	cmd.Stdin, cmd.Stdout, cmd.Stderr = s.stdin, s.stdout, s.stderr
	code, err := exitCode(cmd.Run())
	return Result{ExitCode: code}, err
}

// output runs SteamCMD and captures stdout. A non-zero exit is reported
// through the exit code, not the error.
func (s *SteamCMD) output(ctx context.Context, args ...string) ([]byte, int, error) {
	if !s.Installed() {
		return nil, 0, ErrNotInstalled
	}

	logging.Debug(subsystem, "running %s %s", s.exe, redact(args))
	cmd := execCommandContext(ctx, s.exe, args...)
	cmd.WaitDelay = waitDelay
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	code, err := exitCode(cmd.Run())
	return stdout.Bytes(), code, err
}

func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("failed to run steamcmd: %w", err)
}

func containsMarker(out []byte, marker string) bool {
	return bytes.Contains(out, []byte(marker))
}

// redact hides the password and guard code that follow +login user.
func redact(args []string) string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out); i++ {
		if out[i] != "+login" {
			continue
		}
		for j := i + 2; j < len(out) && !strings.HasPrefix(out[j], "+"); j++ {
			out[j] = "****"
		}
	}
	return strings.Join(out, " ")
}
