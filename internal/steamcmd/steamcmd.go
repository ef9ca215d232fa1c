package steamcmd

import (
	"errors"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

const (
	subsystem = "SteamCMD"

	// DefaultBaseURL hosts the SteamCMD bootstrap archives.
	DefaultBaseURL = "https://steamcdn-a.akamaihd.net/client/installer"

	systemExecutable = "steamcmd"
)

var (
	// ErrNotInstalled is returned when the private copy is missing.
	ErrNotInstalled = errors.New("steamcmd is not installed")
	// ErrNotManaged is returned when asked to remove a system SteamCMD.
	ErrNotManaged = errors.New("steamcmd is managed by the system")
)

// Variables to allow mocking in tests
var (
	execCommandContext = exec.CommandContext
	lookPath           = exec.LookPath
)

// SteamCMD is a resolved SteamCMD executable.
type SteamCMD struct {
	exe     string
	dir     string
	managed bool
	goos    string

	baseURL    string
	httpClient *http.Client
	parser     AppInfoParser

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Option configures a SteamCMD.
type Option func(*SteamCMD)

// WithBaseURL replaces DefaultBaseURL for Install.
func WithBaseURL(url string) Option {
	return func(s *SteamCMD) { s.baseURL = url }
}

// WithHTTPClient sets the client used by Install.
func WithHTTPClient(c *http.Client) Option {
	return func(s *SteamCMD) { s.httpClient = c }
}

// WithParser replaces the app_info_print block scanner.
func WithParser(p AppInfoParser) Option {
	return func(s *SteamCMD) { s.parser = p }
}

// WithIO sets the streams used for verbose passthrough runs.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(s *SteamCMD) {
		s.stdin, s.stdout, s.stderr = stdin, stdout, stderr
	}
}

// WithGOOS overrides the host operating system.
func WithGOOS(goos string) Option {
	return func(s *SteamCMD) { s.goos = goos }
}

// New resolves the SteamCMD executable. dir is the private install
// location, used when no steamcmd is on PATH.
func New(dir string, opts ...Option) *SteamCMD {
	s := &SteamCMD{
		dir:        dir,
		goos:       runtime.GOOS,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		parser:     BlockScanner{},
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}

	if path, err := lookPath(systemExecutable); err == nil {
		s.exe = path
		return s
	}

	s.managed = true
	if s.goos == "windows" {
		s.exe = filepath.Join(dir, "steamcmd.exe")
	} else {
		s.exe = filepath.Join(dir, "steamcmd.sh")
	}
	return s
}

// Executable returns the path that is run.
func (s *SteamCMD) Executable() string {
	return s.exe
}

// Directory returns the private install location.
func (s *SteamCMD) Directory() string {
	return s.dir
}

// Managed reports whether scsm owns the SteamCMD install.
func (s *SteamCMD) Managed() bool {
	return s.managed
}

// Installed reports whether the executable is usable.
func (s *SteamCMD) Installed() bool {
	if !s.managed {
		return true
	}
	info, err := os.Stat(s.exe)
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes the private install.
func (s *SteamCMD) Remove() error {
	if !s.managed {
		return ErrNotManaged
	}
	if _, err := os.Stat(s.dir); errors.Is(err, os.ErrNotExist) {
		return ErrNotInstalled
	}
	return os.RemoveAll(s.dir)
}
