package index

import (
	"os"
	"path/filepath"
	"testing"

	"scsm/internal/descriptors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	dataDir   string
	configDir string
	index     *Index
}

// newFixture installs the built-in descriptors into a temporary data
// directory and builds the index.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		dataDir:   filepath.Join(root, "data"),
		configDir: filepath.Join(root, "config"),
	}
	_, err := descriptors.Install(f.dataDir, false)
	require.NoError(t, err)

	f.index = New(filepath.Join(f.configDir, "app_index.yaml"), f.dataDir, f.configDir)
	require.NoError(t, f.index.Update())
	return f
}

func (f *fixture) writeOverride(t *testing.T, name, content string) {
	t.Helper()
	dir := filepath.Join(f.configDir, "apps")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func mkdirs(t *testing.T, base string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		require.NoError(t, os.MkdirAll(filepath.Join(base, r), 0o755))
	}
}

func TestUpdate_BuildsIndex(t *testing.T) {
	f := newFixture(t)

	data, err := f.index.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"hl2dm"}, data[232370]["hl2dm"])
	assert.Len(t, data[90], 3)
	assert.Equal(t, []string{"casual", "competitive", "deathmatch"}, data[740]["csgo"])
}

func TestUpdate_OverrideReplacesEntry(t *testing.T) {
	f := newFixture(t)
	f.writeOverride(t, "232370.yaml", `app_id: 232370
apps:
  hl2dm:
    fname: Half-Life 2 Deathmatch
    servers:
      ctf:
        start: []
      hl2dm:
        start: []
    platforms:
      Linux:
        exec: ./srcds_run
`)
	require.NoError(t, f.index.Update())

	data, err := f.index.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"ctf", "hl2dm"}, data[232370]["hl2dm"])
}

func TestUpdate_SkipsInvalidDescriptor(t *testing.T) {
	f := newFixture(t)
	f.writeOverride(t, "999.yaml", "not: [valid")
	f.writeOverride(t, "notes.txt", "ignored")

	require.NoError(t, f.index.Update())

	data, err := f.index.Load()
	require.NoError(t, err)
	assert.NotContains(t, data, 999)
	assert.Contains(t, data, 232370)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		token string
		want  Resolution
	}{
		{token: "232370", want: Resolution{AppID: 232370}},
		{token: "hl2dm", want: Resolution{AppID: 232370, AppName: "hl2dm", ServerName: "hl2dm"}},
		{token: "csgo", want: Resolution{AppID: 740, AppName: "csgo"}},
		{token: "competitive", want: Resolution{AppID: 740, AppName: "csgo", ServerName: "competitive"}},
		{token: "czero", want: Resolution{AppID: 90, AppName: "czero", ServerName: "czero"}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := f.index.Search(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearch_NotFound(t *testing.T) {
	f := newFixture(t)

	for _, token := range []string{"quake", "12345", ""} {
		_, err := f.index.Search(token)
		assert.ErrorIs(t, err, ErrNotFound, token)
	}
}

func TestSearch_ConsistentWithIndex(t *testing.T) {
	f := newFixture(t)
	data, err := f.index.Load()
	require.NoError(t, err)

	for id, apps := range data {
		for name, servers := range apps {
			res, err := f.index.Search(name)
			require.NoError(t, err)
			assert.Equal(t, id, res.AppID)
			assert.Equal(t, name, res.AppName)

			for _, server := range servers {
				res, err := f.index.Search(server)
				require.NoError(t, err)
				assert.NotZero(t, res.AppID)
				assert.Equal(t, server, res.ServerName)
			}
		}
	}
}

func TestSearch_MissingIndex(t *testing.T) {
	idx := New(filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := idx.Search("hl2dm")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestListAll(t *testing.T) {
	f := newFixture(t)

	tokens, err := f.index.ListAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"cstrike", "czero", "dod", "740", "222860", "232370", "380840"}, tokens)
}

func TestList(t *testing.T) {
	f := newFixture(t)
	appDir := t.TempDir()
	mkdirs(t, appDir, "232370/hl2dm", "90/dod", "90/cstrike", "740/csgo", "lost+found")
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "README"), nil, 0o644))

	tokens, err := f.index.List(appDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"cstrike", "dod", "740", "232370"}, tokens)
}

func TestList_NoDuplicatesForSingleName(t *testing.T) {
	f := newFixture(t)
	appDir := t.TempDir()
	mkdirs(t, appDir, "232370/hl2dm", "232370/stale")

	tokens, err := f.index.List(appDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"232370"}, tokens)
}

func TestList_MissingDir(t *testing.T) {
	f := newFixture(t)

	tokens, err := f.index.List(filepath.Join(t.TempDir(), "nothing"))
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestLocate(t *testing.T) {
	f := newFixture(t)

	path, isDefault, err := f.index.Locate(232370)
	require.NoError(t, err)
	assert.True(t, isDefault)
	assert.Equal(t, filepath.Join(f.dataDir, "apps", "232370.yaml"), path)

	f.writeOverride(t, "232370.yaml", "app_id: 232370\n")
	path, isDefault, err = f.index.Locate(232370)
	require.NoError(t, err)
	assert.False(t, isDefault)
	assert.Equal(t, filepath.Join(f.configDir, "apps", "232370.yaml"), path)

	_, _, err = f.index.Locate(1)
	assert.ErrorIs(t, err, ErrNotFound)
}
