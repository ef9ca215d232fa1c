package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"scsm/internal/app"
	"scsm/internal/template"
	"scsm/internal/tmux"
	"scsm/pkg/logging"
)

const subsystem = "Server"

var (
	// ErrAlreadyRunning is returned by Start when the session exists.
	ErrAlreadyRunning = errors.New("already running")
	// ErrNotRunning is returned by operations that need a live session.
	ErrNotRunning = errors.New("not running")
)

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// Multiplexer is the part of the tmux wrapper a Server drives.
type Multiplexer interface {
	NewSession(ctx context.Context, spec tmux.SessionSpec) error
	ListSessions(ctx context.Context) ([]string, error)
	KillSession(ctx context.Context, name string) error
	SendText(ctx context.Context, name, text string) error
	SendKeys(ctx context.Context, name string, keys ...string) error
	Attach(ctx context.Context, name string, stdin io.Reader, stdout, stderr io.Writer) error
	PanePID(ctx context.Context, name string) (int, error)
}

// Server is one server of an App.
type Server struct {
	*app.App

	// Session is the multiplexer session name.
	Session string

	mux    Multiplexer
	engine *template.Engine

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Option configures a Server.
type Option func(*Server)

// WithIO sets the terminal used by Console and foreground starts.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(s *Server) {
		s.stdin, s.stdout, s.stderr = stdin, stdout, stderr
	}
}

// New wraps an App resolved down to one server.
func New(a *app.App, mux Multiplexer, opts ...Option) (*Server, error) {
	if a.ServerName == "" {
		return nil, fmt.Errorf("%s: no server name", a.AppName)
	}
	s := &Server{
		App:     a,
		Session: app.SessionName(a.AppName, a.ServerName),
		mux:     mux,
		engine:  template.New(),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Running reports whether the server's session exists.
func (s *Server) Running(ctx context.Context) bool {
	return app.RunningCheck(ctx, s.mux, s.AppName, s.ServerName)
}

func (s *Server) vars() map[string]interface{} {
	return template.Vars{
		AppID:      s.AppID,
		AppName:    s.AppName,
		ServerName: s.ServerName,
		Session:    s.Session,
		AppDir:     s.Dir,
		ExecDir:    s.ExecDir,
		Platform:   s.Platform,
		Arch:       s.Arch,
	}.Map()
}

// Command returns the argv that starts the server. The executable is
// split on spaces; when the first start option ends in "?" the options
// form a single query-string style argument.
func (s *Server) Command() ([]string, error) {
	if s.Exe == "" {
		return nil, fmt.Errorf("%s on %s %s: %w", s.AppName, s.Platform, s.Arch, app.ErrUnsupportedPlatform)
	}
	options, err := s.engine.RenderAll(s.StartOptions, s.vars())
	if err != nil {
		return nil, fmt.Errorf("start options of %s: %w", s.Session, err)
	}

	argv := strings.Fields(s.Exe)
	if len(options) > 0 && strings.HasSuffix(options[0], "?") {
		return append(argv, strings.Join(options, "")), nil
	}
	return append(argv, options...), nil
}

// Env returns the library search path the server needs, if any.
func (s *Server) Env() map[string]string {
	if s.LibraryDir == "" {
		return nil
	}
	key := "LD_LIBRARY_PATH"
	if s.Platform == "Darwin" {
		key = "DYLD_LIBRARY_PATH"
	}
	value := s.LibraryDir
	if current := os.Getenv(key); current != "" {
		value += string(os.PathListSeparator) + current
	}
	return map[string]string{key: value}
}

// Start launches the server in its session. With debug the server runs
// in the foreground on the configured terminal and Start returns when it
// exits.
func (s *Server) Start(ctx context.Context, debug bool) error {
	if !s.Installed() {
		return fmt.Errorf("%s: %w", s.AppName, app.ErrNotInstalled)
	}
	if s.Running(ctx) {
		return fmt.Errorf("%s: %w", s.Session, ErrAlreadyRunning)
	}
	argv, err := s.Command()
	if err != nil {
		return err
	}

	if debug {
		return s.runForeground(ctx, argv)
	}

	logging.Info(subsystem, "starting %s: %s", s.Session, strings.Join(argv, " "))
	return s.mux.NewSession(ctx, tmux.SessionSpec{
		Name:    s.Session,
		Dir:     s.ExecDir,
		Env:     s.Env(),
		Command: argv,
	})
}

func (s *Server) runForeground(ctx context.Context, argv []string) error {
	name := argv[0]
	if !filepath.IsAbs(name) && strings.ContainsRune(name, '/') {
		name = filepath.Join(s.ExecDir, name)
	}
	cmd := execCommandContext(ctx, name, argv[1:]...)
	cmd.Dir = s.ExecDir
	cmd.Stdin, cmd.Stdout, cmd.Stderr = s.stdin, s.stdout, s.stderr
	cmd.Env = os.Environ()
	for k, v := range s.Env() {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	logging.Info(subsystem, "running %s in the foreground", s.Session)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logging.Debug(subsystem, "%s exited with %d", s.Session, exitErr.ExitCode())
			return nil
		}
		return fmt.Errorf("running %s: %w", s.Session, err)
	}
	return nil
}

// Stop asks the server to shut down by sending its stop commands.
func (s *Server) Stop(ctx context.Context) error {
	if !s.Running(ctx) {
		return fmt.Errorf("%s: %w", s.Session, ErrNotRunning)
	}
	commands, err := s.engine.RenderAll(s.StopOptions, s.vars())
	if err != nil {
		return fmt.Errorf("stop options of %s: %w", s.Session, err)
	}
	if len(commands) == 0 {
		return s.mux.SendKeys(ctx, s.Session, "C-c")
	}
	for _, c := range commands {
		if err := s.mux.SendText(ctx, s.Session, c); err != nil {
			return err
		}
	}
	return nil
}

// pollInterval is the delay between Running checks in Shutdown
var pollInterval = time.Second

// Shutdown stops the server and waits up to wait for the session to end,
// killing it once the wait runs out. killed reports the escalation.
func (s *Server) Shutdown(ctx context.Context, wait time.Duration) (killed bool, err error) {
	if err := s.Stop(ctx); err != nil {
		return false, err
	}

	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
		if !s.Running(ctx) {
			return false, nil
		}
	}

	if !s.Running(ctx) {
		return false, nil
	}
	logging.Warn(subsystem, "%s did not stop within %s, killing", s.Session, wait)
	return true, s.Kill(ctx)
}

// Kill ends the session immediately.
func (s *Server) Kill(ctx context.Context) error {
	if !s.Running(ctx) {
		return fmt.Errorf("%s: %w", s.Session, ErrNotRunning)
	}
	return s.mux.KillSession(ctx, s.Session)
}

// Send types a console command into the server.
func (s *Server) Send(ctx context.Context, command string) error {
	if !s.Running(ctx) {
		return fmt.Errorf("%s: %w", s.Session, ErrNotRunning)
	}
	return s.mux.SendText(ctx, s.Session, command)
}

// Console attaches the terminal to the session until the user detaches.
func (s *Server) Console(ctx context.Context) error {
	if !s.Running(ctx) {
		return fmt.Errorf("%s: %w", s.Session, ErrNotRunning)
	}
	return s.mux.Attach(ctx, s.Session, s.stdin, s.stdout, s.stderr)
}
