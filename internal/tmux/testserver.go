package tmux

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// NewTestServer returns a Tmux bound to an isolated server for tests. It
// skips the test when tmux is not installed. The server uses a short
// socket path below the system temp dir, ignores ~/.tmux.conf and is
// killed when the test finishes.
func NewTestServer(t *testing.T) *Tmux {
	t.Helper()

	if _, err := exec.LookPath("tmux"); err != nil {
		t.Skip("tmux not installed")
	}

	dir, err := os.MkdirTemp("", "scsm-tmux")
	if err != nil {
		t.Fatalf("create socket dir: %v", err)
	}
	server := New(WithSocket(filepath.Join(dir, "tmux.sock")), WithConfigFile("/dev/null"))

	// tmux exits with its last session; the guard keeps it alive.
	if err := server.NewSession(context.Background(), SessionSpec{Name: "_guard", Command: []string{"sleep", "infinity"}}); err != nil {
		t.Fatalf("start tmux test server: %v", err)
	}

	t.Cleanup(func() {
		server.KillServer(context.Background())
		os.RemoveAll(dir)
	})
	return server
}
