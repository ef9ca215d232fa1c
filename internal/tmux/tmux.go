// Package tmux runs game servers inside detached tmux sessions and talks to
// them afterwards.
//
// All commands go through Tmux, which injects -S when a dedicated socket is
// configured. scsm normally uses the operator's default tmux server so that
// sessions can also be reached with plain tmux attach.
package tmux

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"scsm/pkg/logging"
)

const subsystem = "Tmux"

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// Tmux targets one tmux server.
type Tmux struct {
	binary     string
	socketPath string
	configFile string
}

// Option configures a Tmux.
type Option func(*Tmux)

// WithSocket targets the server listening on path instead of the default.
func WithSocket(path string) Option {
	return func(t *Tmux) { t.socketPath = path }
}

// WithConfigFile is passed as -f on new-session; "/dev/null" skips the
// user's ~/.tmux.conf.
func WithConfigFile(path string) Option {
	return func(t *Tmux) { t.configFile = path }
}

// WithBinary overrides the tmux executable.
func WithBinary(path string) Option {
	return func(t *Tmux) { t.binary = path }
}

// New returns a Tmux for the default server.
func New(opts ...Option) *Tmux {
	t := &Tmux{binary: "tmux"}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Available reports whether tmux is on PATH.
func Available() bool {
	_, err := exec.LookPath("tmux")
	return err == nil
}

// SessionSpec describes a session to create.
type SessionSpec struct {
	Name    string
	Dir     string
	Env     map[string]string
	Command []string
}

// NewSession creates a detached session running spec.Command in spec.Dir.
func (t *Tmux) NewSession(ctx context.Context, spec SessionSpec) error {
	var args []string
	if t.configFile != "" {
		args = append(args, "-f", t.configFile)
	}
	args = append(args, "new-session", "-d", "-s", spec.Name)
	if spec.Dir != "" {
		args = append(args, "-c", spec.Dir)
	}
	keys := make([]string, 0, len(spec.Env))
	for k := range spec.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+spec.Env[k])
	}
	args = append(args, spec.Command...)

	_, err := t.Run(ctx, args...)
	if err != nil {
		return fmt.Errorf("tmux new-session %q: %w", spec.Name, err)
	}
	logging.Debug(subsystem, "started session %s: %s", spec.Name, strings.Join(spec.Command, " "))
	return nil
}

// ListSessions returns the names of all sessions. A server that is not
// running has no sessions.
func (t *Tmux) ListSessions(ctx context.Context) ([]string, error) {
	out, err := t.Run(ctx, "list-sessions", "-F", "#{session_name}")
	if err != nil {
		if isNoServer(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// KillSession terminates a session. A session that is already gone is not
// an error.
func (t *Tmux) KillSession(ctx context.Context, name string) error {
	_, err := t.Run(ctx, "kill-session", "-t", exact(name))
	if err != nil {
		if isNoServer(err) || strings.Contains(err.Error(), "can't find session") {
			return nil
		}
		return fmt.Errorf("tmux kill-session %q: %w", name, err)
	}
	logging.Debug(subsystem, "killed session %s", name)
	return nil
}

// SendText types text literally into the first window of the session and
// presses Enter.
func (t *Tmux) SendText(ctx context.Context, name, text string) error {
	target := firstWindow(name)
	if _, err := t.Run(ctx, "send-keys", "-t", target, "-l", text); err != nil {
		return fmt.Errorf("tmux send-keys %q: %w", name, err)
	}
	return t.SendKeys(ctx, name, "Enter")
}

// SendKeys sends tmux key names such as "C-c" or "Enter" to the first
// window of the session.
func (t *Tmux) SendKeys(ctx context.Context, name string, keys ...string) error {
	args := append([]string{"send-keys", "-t", firstWindow(name)}, keys...)
	if _, err := t.Run(ctx, args...); err != nil {
		return fmt.Errorf("tmux send-keys %q: %w", name, err)
	}
	return nil
}

// Attach connects the given terminal streams to the session and blocks
// until the client detaches.
func (t *Tmux) Attach(ctx context.Context, name string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := t.CommandContext(ctx, "attach-session", "-t", exact(name))
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("tmux attach-session %q: %w", name, err)
	}
	return nil
}

// PanePID returns the process ID of the command in the active pane of the
// session's first window. A bare session target does not resolve to a
// pane for display-message.
func (t *Tmux) PanePID(ctx context.Context, name string) (int, error) {
	out, err := t.Run(ctx, "display-message", "-t", firstWindow(name), "-p", "#{pane_pid}")
	if err != nil {
		return 0, fmt.Errorf("getting pane PID: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("parsing pane PID %q: %w", strings.TrimSpace(out), err)
	}
	return pid, nil
}

// KillServer stops the whole server. Used to clean up dedicated sockets.
func (t *Tmux) KillServer(ctx context.Context) error {
	_, err := t.Run(ctx, "kill-server")
	if err != nil && !isNoServer(err) && !strings.Contains(err.Error(), "server exited unexpectedly") {
		return err
	}
	return nil
}

// Run executes a tmux subcommand and returns its combined output. The -S
// flag is prepended when a socket is configured.
func (t *Tmux) Run(ctx context.Context, args ...string) (string, error) {
	cmd := t.CommandContext(ctx, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("tmux %s: %w (%s)", args[0], err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// CommandContext returns an unstarted tmux command.
func (t *Tmux) CommandContext(ctx context.Context, args ...string) *exec.Cmd {
	var full []string
	if t.socketPath != "" {
		full = append(full, "-S", t.socketPath)
	}
	full = append(full, args...)
	return execCommandContext(ctx, t.binary, full...)
}

// exact prefixes a session name with "=" so tmux does not fall back to
// prefix matching.
func exact(name string) string {
	return "=" + name
}

func firstWindow(name string) string {
	return exact(name) + ":^"
}

func isNoServer(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no server running") ||
		strings.Contains(msg, "error connecting to") ||
		strings.Contains(msg, "No such file or directory")
}
