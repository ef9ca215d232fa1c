package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"scsm/internal/server"
	"scsm/internal/tmux"

	"github.com/stretchr/testify/require"
)

// fakeMux keeps sessions in memory. Sending one of stopWords ends the
// session.
type fakeMux struct {
	mu        sync.Mutex
	sessions  map[string]tmux.SessionSpec
	sent      map[string][]string
	stopWords []string
}

func (m *fakeMux) NewSession(_ context.Context, spec tmux.SessionSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[spec.Name] = spec
	return nil
}

func (m *fakeMux) ListSessions(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for name := range m.sessions {
		names = append(names, name)
	}
	return names, nil
}

func (m *fakeMux) KillSession(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, name)
	return nil
}

func (m *fakeMux) SendText(_ context.Context, name, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[name] = append(m.sent[name], text)
	for _, w := range m.stopWords {
		if w == text {
			delete(m.sessions, name)
		}
	}
	return nil
}

func (m *fakeMux) SendKeys(_ context.Context, name string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[name] = append(m.sent[name], keys...)
	return nil
}

func (m *fakeMux) Attach(_ context.Context, name string, _ io.Reader, stdout, _ io.Writer) error {
	_, err := io.WriteString(stdout, "attached to "+name+"\n")
	return err
}

func (m *fakeMux) PanePID(context.Context, string) (int, error) {
	return os.Getpid(), nil
}

func (m *fakeMux) running(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[name]
	return ok
}

type testEnv struct {
	configDir string
	baseDir   string
	mux       *fakeMux
}

func (e *testEnv) appDir(id, name string) string {
	return filepath.Join(e.baseDir, "apps", id, name)
}

// install fakes an installed app by creating its directory.
func (e *testEnv) install(t *testing.T, id, name string) string {
	t.Helper()
	dir := e.appDir(id, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "server.cfg"), []byte("hostname test\n"), 0o644))
	return dir
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	e := &testEnv{
		configDir: filepath.Join(root, "config"),
		baseDir:   filepath.Join(root, "base"),
		mux: &fakeMux{
			sessions: map[string]tmux.SessionSpec{},
			sent:     map[string][]string{},
		},
	}
	t.Setenv("SCSM_CONFIG_DIR", e.configDir)
	t.Setenv("SCSM_DATA_DIR", e.baseDir)

	origMux, origLookup := newMultiplexer, lookupTmux
	newMultiplexer = func() server.Multiplexer { return e.mux }
	lookupTmux = func() bool { return true }
	t.Cleanup(func() {
		newMultiplexer = origMux
		lookupTmux = origLookup
	})
	return e
}

// run executes the root command with args and returns what it printed
// to stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	err := root.Execute()
	return out.String(), err
}
