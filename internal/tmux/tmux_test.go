package tmux

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTmux writes a script that records its arguments, one per line, and
// prints output. It returns the Tmux and the path of the log.
func fakeTmux(t *testing.T, output string, exitCode int) (*Tmux, string) {
	t.Helper()
	dir := t.TempDir()
	logFile := filepath.Join(dir, "args.log")
	outFile := filepath.Join(dir, "output")
	require.NoError(t, os.WriteFile(outFile, []byte(output), 0o644))

	script := fmt.Sprintf(`#!/bin/sh
for a in "$@"; do printf '%%s\n' "$a" >> %q; done
echo '---' >> %q
cat %q
exit %d
`, logFile, logFile, outFile, exitCode)
	bin := filepath.Join(dir, "tmux")
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	return New(WithBinary(bin), WithSocket("/tmp/test.sock")), logFile
}

// hasSession reports whether a session with exactly this name exists.
func hasSession(ctx context.Context, tm *Tmux, name string) bool {
	_, err := tm.Run(ctx, "has-session", "-t", exact(name))
	return err == nil
}

func calls(t *testing.T, logFile string) [][]string {
	t.Helper()
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	var out [][]string
	var cur []string
	for _, line := range strings.Split(strings.TrimSuffix(string(data), "\n"), "\n") {
		if line == "---" {
			out = append(out, cur)
			cur = nil
			continue
		}
		cur = append(cur, line)
	}
	return out
}

func TestNewSession_Args(t *testing.T) {
	tm, log := fakeTmux(t, "", 0)

	err := tm.NewSession(context.Background(), SessionSpec{
		Name:    "teeworlds-teeworlds",
		Dir:     "/srv/380840/teeworlds/tw",
		Env:     map[string]string{"LD_LIBRARY_PATH": "/srv/lib", "A": "1"},
		Command: []string{"./teeworlds_srv", "-f", "srv.cfg"},
	})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{
		"-S", "/tmp/test.sock",
		"new-session", "-d", "-s", "teeworlds-teeworlds",
		"-c", "/srv/380840/teeworlds/tw",
		"-e", "A=1", "-e", "LD_LIBRARY_PATH=/srv/lib",
		"./teeworlds_srv", "-f", "srv.cfg",
	}}, calls(t, log))
}

func TestSendText_Args(t *testing.T) {
	tm, log := fakeTmux(t, "", 0)

	require.NoError(t, tm.SendText(context.Background(), "hl2dm-hl2dm", "say hello; quit"))

	assert.Equal(t, [][]string{
		{"-S", "/tmp/test.sock", "send-keys", "-t", "=hl2dm-hl2dm:^", "-l", "say hello; quit"},
		{"-S", "/tmp/test.sock", "send-keys", "-t", "=hl2dm-hl2dm:^", "Enter"},
	}, calls(t, log))
}

func TestListSessions_ParsesOutput(t *testing.T) {
	tm, _ := fakeTmux(t, "hl2dm-hl2dm\ncsgo-casual\n", 0)

	names, err := tm.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"hl2dm-hl2dm", "csgo-casual"}, names)
}

func TestListSessions_NoServer(t *testing.T) {
	tm, _ := fakeTmux(t, "no server running on /tmp/test.sock", 1)

	names, err := tm.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestKillSession_BenignErrors(t *testing.T) {
	tm, _ := fakeTmux(t, "can't find session: =ghost", 1)
	assert.NoError(t, tm.KillSession(context.Background(), "ghost"))

	tm, _ = fakeTmux(t, "permission denied", 1)
	assert.Error(t, tm.KillSession(context.Background(), "ghost"))
}

func TestPanePID_Parse(t *testing.T) {
	tm, log := fakeTmux(t, "4242\n", 0)
	pid, err := tm.PanePID(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)
	assert.Equal(t, []string{"-S", "/tmp/test.sock", "display-message", "-t", "=x:^", "-p", "#{pane_pid}"}, calls(t, log)[0])

	tm, _ = fakeTmux(t, "nope", 0)
	_, err = tm.PanePID(context.Background(), "x")
	assert.Error(t, err)
}

func TestMissingBinary(t *testing.T) {
	tm := New(WithBinary(filepath.Join(t.TempDir(), "absent")))
	assert.False(t, hasSession(context.Background(), tm, "x"))
	_, err := tm.ListSessions(context.Background())
	assert.Error(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	server := NewTestServer(t)
	ctx := context.Background()

	dir := t.TempDir()
	require.NoError(t, server.NewSession(ctx, SessionSpec{
		Name:    "hl2dm-hl2dm",
		Dir:     dir,
		Command: []string{"sh", "-c", "while read line; do echo \"$line\" >> out.txt; done"},
	}))

	assert.True(t, hasSession(ctx, server, "hl2dm-hl2dm"))
	// Exact matching: a prefix is not a session.
	assert.False(t, hasSession(ctx, server, "hl2dm"))

	names, err := server.ListSessions(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "hl2dm-hl2dm")

	pid, err := server.PanePID(ctx, "hl2dm-hl2dm")
	require.NoError(t, err)
	assert.Positive(t, pid)

	require.NoError(t, server.SendText(ctx, "hl2dm-hl2dm", "status"))
	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(filepath.Join(dir, "out.txt"))
		return err == nil && strings.TrimSpace(string(data)) == "status"
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, server.KillSession(ctx, "hl2dm-hl2dm"))
	assert.False(t, hasSession(ctx, server, "hl2dm-hl2dm"))
	assert.NoError(t, server.KillSession(ctx, "hl2dm-hl2dm"))
}

func TestSendKeys_Interrupt(t *testing.T) {
	server := NewTestServer(t)
	ctx := context.Background()

	require.NoError(t, server.NewSession(ctx, SessionSpec{Name: "sleepy", Command: []string{"sleep", "600"}}))
	require.NoError(t, server.SendKeys(ctx, "sleepy", "C-c"))

	assert.Eventually(t, func() bool {
		return !hasSession(ctx, server, "sleepy")
	}, 5*time.Second, 50*time.Millisecond)
}
