package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"scsm/internal/archive"
	"scsm/internal/descriptors"
	"scsm/internal/index"
	"scsm/internal/steamcmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSteamCMD struct {
	calls  []steamcmd.UpdateOptions
	result steamcmd.Result
	err    error
	info   steamcmd.AppInfo
	// populate is called with the install dir to simulate downloaded files.
	populate func(dir string)
}

func (f *fakeSteamCMD) AppUpdate(_ context.Context, opts steamcmd.UpdateOptions) (steamcmd.Result, error) {
	f.calls = append(f.calls, opts)
	if f.populate != nil {
		f.populate(opts.Dir)
	}
	return f.result, f.err
}

func (f *fakeSteamCMD) Info(_ context.Context, _ int) (steamcmd.AppInfo, error) {
	if f.info == nil {
		return nil, errors.New("no info")
	}
	return f.info, nil
}

type fakeSessions []string

func (f fakeSessions) ListSessions(context.Context) ([]string, error) {
	return f, nil
}

type fixture struct {
	root    string
	index   *index.Index
	options Options
	steam   *fakeSteamCMD
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	configDir := filepath.Join(root, "config")
	_, err := descriptors.Install(dataDir, false)
	require.NoError(t, err)

	idx := index.New(filepath.Join(configDir, "app_index.yaml"), dataDir, configDir)
	require.NoError(t, idx.Update())

	steam := &fakeSteamCMD{result: steamcmd.Result{Status: "Success! App fully installed."}}
	return &fixture{
		root:  root,
		index: idx,
		steam: steam,
		options: Options{
			Index:     idx,
			AppDir:    filepath.Join(root, "apps"),
			BackupDir: filepath.Join(root, "backups"),
			SteamCMD:  steam,
			Platform:  "Linux",
			Arch:      "64bit",
		},
	}
}

func (f *fixture) app(t *testing.T, token string) *App {
	t.Helper()
	a, err := New(context.Background(), token, f.options)
	require.NoError(t, err)
	return a
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNew_ResolvesServerToken(t *testing.T) {
	f := newFixture(t)
	a := f.app(t, "hl2dm")

	assert.Equal(t, 232370, a.AppID)
	assert.Equal(t, "hl2dm", a.AppName)
	assert.Equal(t, "hl2dm", a.ServerName)
	assert.Equal(t, "Half-Life 2 Deathmatch", a.FullName)
	assert.Equal(t, "./srcds_run", a.Exe)
	assert.Equal(t, []string{"quit"}, a.StopOptions)
	assert.Equal(t, filepath.Join(f.root, "apps", "232370", "hl2dm"), a.Dir)
	assert.Equal(t, filepath.Join(f.root, "backups", "232370", "hl2dm"), a.BackupDir)
	assert.True(t, a.ConfigIsDefault)
}

func TestNew_AppIDDefaultsToFirstApp(t *testing.T) {
	f := newFixture(t)
	a := f.app(t, "90")

	assert.Equal(t, "cstrike", a.AppName)
	assert.Empty(t, a.ServerName)
	assert.Equal(t, []string{"cstrike", "czero", "dod"}, a.AppNames)
	assert.Nil(t, a.AppConfig)
}

func TestNew_UnknownToken(t *testing.T) {
	f := newFixture(t)
	_, err := New(context.Background(), "nosuchgame", f.options)
	assert.ErrorIs(t, err, index.ErrNotFound)
}

func TestNew_PlatformWithoutExecutable(t *testing.T) {
	f := newFixture(t)
	f.options.Platform = "Darwin"
	a := f.app(t, "hl2dm")
	assert.Empty(t, a.Exe)
}

func TestPlatformAndArchNames(t *testing.T) {
	assert.Equal(t, "Linux", platformName("linux"))
	assert.Equal(t, "Darwin", platformName("darwin"))
	assert.Equal(t, "Freebsd", platformName("freebsd"))
	assert.Equal(t, "64bit", archName("amd64"))
	assert.Equal(t, "64bit", archName("arm64"))
	assert.Equal(t, "32bit", archName("386"))
}

func TestInstalled(t *testing.T) {
	f := newFixture(t)
	a := f.app(t, "hl2dm")
	assert.False(t, a.Installed())

	require.NoError(t, os.MkdirAll(filepath.Join(a.Dir, "steamapps"), 0o755))
	assert.False(t, a.Installed(), "steamapps alone is an interrupted install")

	writeFile(t, filepath.Join(a.Dir, "srcds_run"), "")
	assert.True(t, a.Installed())
}

func TestRunningCheck(t *testing.T) {
	ctx := context.Background()
	sessions := fakeSessions{"csgo-casual", "hl2dm-hl2dm"}

	assert.True(t, RunningCheck(ctx, sessions, "csgo", "casual"))
	assert.False(t, RunningCheck(ctx, sessions, "csgo", "competitive"))
	assert.True(t, RunningCheck(ctx, sessions, "csgo", ""))
	assert.False(t, RunningCheck(ctx, sessions, "cstrike", ""))
}

func TestRunning_UsesSessions(t *testing.T) {
	f := newFixture(t)
	f.options.Sessions = fakeSessions{"csgo-deathmatch"}
	assert.True(t, f.app(t, "csgo").Running(context.Background()))
	assert.False(t, f.app(t, "hl2dm").Running(context.Background()))
}

func TestBuildIDLocal(t *testing.T) {
	f := newFixture(t)
	a := f.app(t, "hl2dm")

	id, err := a.BuildIDLocal()
	require.NoError(t, err)
	assert.Zero(t, id)

	writeFile(t, a.ManifestFile(), `"AppState"
{
	"appid"		"232370"
	"buildid"		"4567890"
}
`)
	id, err = a.BuildIDLocal()
	require.NoError(t, err)
	assert.Equal(t, 4567890, id)
}

func TestBuildIDSteam(t *testing.T) {
	f := newFixture(t)
	a := f.app(t, "hl2dm")
	assert.Zero(t, a.BuildIDSteam(context.Background()))

	f.steam.info = steamcmd.AppInfo{
		"depots": map[string]interface{}{
			"branches": map[string]interface{}{
				"public": map[string]interface{}{"buildid": "42"},
			},
		},
	}
	assert.Equal(t, 42, a.BuildIDSteam(context.Background()))
}

func TestBackupAndRestore(t *testing.T) {
	f := newFixture(t)
	a := f.app(t, "hl2dm")
	writeFile(t, filepath.Join(a.Dir, "hl2mp", "cfg", "server.cfg"), "hostname original\n")

	stamp := time.Date(2024, 3, 2, 13, 4, 5, 0, time.UTC)
	now = func() time.Time { return stamp }
	t.Cleanup(func() { now = time.Now })

	dest, err := a.Backup(archive.CompressionGzip)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(a.BackupDir, "2024-03-02-130405.tar.gz"), dest)

	backups, err := a.Backups()
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-02-130405.tar.gz"}, backups)

	writeFile(t, filepath.Join(a.Dir, "hl2mp", "cfg", "server.cfg"), "hostname changed\n")
	require.NoError(t, a.Restore("2024-03-02-130405.tar.gz"))

	got, err := os.ReadFile(filepath.Join(a.Dir, "hl2mp", "cfg", "server.cfg"))
	require.NoError(t, err)
	assert.Equal(t, "hostname original\n", string(got))

	assert.False(t, a.ConfigIsDefault, "restore copies a default descriptor")
	assert.FileExists(t, filepath.Join(f.root, "config", "apps", "232370.yaml"))
}

func TestRestore_RejectsPaths(t *testing.T) {
	f := newFixture(t)
	a := f.app(t, "hl2dm")

	assert.Error(t, a.Restore("../other.tar"))
	assert.Error(t, a.Restore(""))
	assert.Error(t, a.Restore("missing.tar.gz"))
}

func TestRestore_CopiesDescriptorBeforeExtracting(t *testing.T) {
	f := newFixture(t)
	a := f.app(t, "hl2dm")
	writeFile(t, filepath.Join(a.BackupDir, "2024-01-01-000000.tar.gz"), "not a tarball")

	require.Error(t, a.Restore("2024-01-01-000000.tar.gz"))
	assert.False(t, a.ConfigIsDefault)
	assert.FileExists(t, filepath.Join(f.root, "config", "apps", "232370.yaml"))
}

func TestBackup_RetentionKeepsMaxBackups(t *testing.T) {
	f := newFixture(t)
	a := f.app(t, "hl2dm")
	writeFile(t, filepath.Join(a.Dir, "srcds_run"), "#!/bin/sh\n")
	for day := 1; day <= 7; day++ {
		writeFile(t, filepath.Join(a.BackupDir, fmt.Sprintf("2024-01-%02d-000000.tar", day)), "")
	}

	stamp := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return stamp }
	t.Cleanup(func() { now = time.Now })

	removed, err := a.PruneBackups(5)
	require.NoError(t, err)
	assert.Len(t, removed, 3)
	_, err = a.Backup(archive.CompressionNone)
	require.NoError(t, err)

	backups, err := a.Backups()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2024-02-01-120000.tar",
		"2024-01-07-000000.tar",
		"2024-01-06-000000.tar",
		"2024-01-05-000000.tar",
		"2024-01-04-000000.tar",
	}, backups)
}

func TestBackups_NewestFirstAndFiltered(t *testing.T) {
	f := newFixture(t)
	a := f.app(t, "hl2dm")
	for _, name := range []string{"2024-01-01-000000.tar", "2024-03-01-000000.tar.xz", "2024-02-01-000000.tar.gz", "notes.txt"} {
		writeFile(t, filepath.Join(a.BackupDir, name), "")
	}

	backups, err := a.Backups()
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-01-000000.tar.xz", "2024-02-01-000000.tar.gz", "2024-01-01-000000.tar"}, backups)
}

func TestPruneBackups(t *testing.T) {
	f := newFixture(t)
	a := f.app(t, "hl2dm")
	names := []string{"2024-01-01-000000.tar", "2024-01-02-000000.tar", "2024-01-03-000000.tar"}
	for _, name := range names {
		writeFile(t, filepath.Join(a.BackupDir, name), "")
	}

	removed, err := a.PruneBackups(0)
	require.NoError(t, err)
	assert.Empty(t, removed)

	removed, err = a.PruneBackups(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-02-000000.tar", "2024-01-01-000000.tar"}, removed)

	left, err := a.Backups()
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-03-000000.tar"}, left)
}

func TestUpdate_PassesDescriptorSettings(t *testing.T) {
	f := newFixture(t)
	a := f.app(t, "czero")

	res, err := a.Update(context.Background(), UpdateOptions{
		Credentials: steamcmd.Credentials{Username: "anonymous"},
		Validate:    true,
	})
	require.NoError(t, err)
	assert.Contains(t, res.Status, "Success")

	require.Len(t, f.steam.calls, 1)
	call := f.steam.calls[0]
	assert.Equal(t, 90, call.AppID)
	assert.Equal(t, a.Dir, call.Dir)
	assert.Equal(t, "mod czero", call.AppConfig)
	assert.Equal(t, "Linux", call.Platform)
	assert.True(t, call.Validate)
	assert.Equal(t, "anonymous", call.Credentials.Username)

	assert.False(t, a.ConfigIsDefault)
	assert.Equal(t, filepath.Join(f.root, "config", "apps", "90.yaml"), a.ConfigFile)
}

func TestUpdate_FreshInstall(t *testing.T) {
	f := newFixture(t)
	f.steam.populate = func(dir string) {
		writeFile(t, filepath.Join(dir, "srcds_run"), "#!/bin/sh\n")
		writeFile(t, filepath.Join(dir, "steamapps", "appmanifest_232370.acf"), `"AppState"
{
	"appid"		"232370"
	"buildid"		"8787667"
}
`)
	}
	a := f.app(t, "hl2dm")
	require.False(t, a.Installed())

	_, err := a.Update(context.Background(), UpdateOptions{})
	require.NoError(t, err)
	assert.True(t, a.Installed())

	build, err := a.BuildIDLocal()
	require.NoError(t, err)
	assert.Equal(t, 8787667, build)
}

func TestUpdate_NoSubscriptionRemovesNewInstall(t *testing.T) {
	f := newFixture(t)
	f.steam.result = steamcmd.Result{ExitCode: 8, Status: "ERROR! Failed to install app '232370' (No subscription)"}
	f.steam.populate = func(dir string) {
		writeFile(t, filepath.Join(dir, "steamapps", "downloading"), "")
	}
	a := f.app(t, "hl2dm")

	res, err := a.Update(context.Background(), UpdateOptions{})
	require.NoError(t, err)
	assert.True(t, res.NoSubscription())
	assert.NoDirExists(t, a.Dir)
	assert.NoDirExists(t, filepath.Dir(a.Dir))
}

func TestUpdate_NoSubscriptionKeepsExistingInstall(t *testing.T) {
	f := newFixture(t)
	f.steam.result = steamcmd.Result{ExitCode: 8, Status: "(No subscription)"}
	a := f.app(t, "hl2dm")
	writeFile(t, filepath.Join(a.Dir, "srcds_run"), "")

	_, err := a.Update(context.Background(), UpdateOptions{})
	require.NoError(t, err)
	assert.True(t, a.Installed())
}

func TestRemove_KeepsSiblingApps(t *testing.T) {
	f := newFixture(t)
	cstrike := f.app(t, "cstrike")
	dod := f.app(t, "dod")
	writeFile(t, filepath.Join(cstrike.Dir, "hlds_run"), "")
	writeFile(t, filepath.Join(dod.Dir, "hlds_run"), "")

	require.NoError(t, cstrike.Remove())
	assert.NoDirExists(t, cstrike.Dir)
	assert.DirExists(t, dod.Dir)

	require.NoError(t, dod.Remove())
	assert.NoDirExists(t, filepath.Dir(dod.Dir))
}

func TestCopyConfig_Override(t *testing.T) {
	f := newFixture(t)
	a := f.app(t, "hl2dm")
	require.NoError(t, a.CopyConfig())

	// A fresh resolution now prefers the copy.
	again := f.app(t, "hl2dm")
	assert.False(t, again.ConfigIsDefault)
	assert.Equal(t, a.ConfigFile, again.ConfigFile)
}
