package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPaths(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	return Paths{
		ConfigDir: filepath.Join(dir, "config"),
		BaseDir:   filepath.Join(dir, "data"),
	}
}

func TestLoad_DefaultOnly(t *testing.T) {
	paths := testPaths(t)

	cfg, err := Load(paths)
	require.NoError(t, err)

	assert.Equal(t, "gz", cfg.General.Compression)
	assert.True(t, cfg.General.SteamGuard)
	assert.False(t, cfg.General.Verbose)
	assert.Equal(t, 5, cfg.General.MaxBackups)
	assert.Equal(t, 30, cfg.General.WaitTime)
	assert.Equal(t, filepath.Join(paths.BaseDir, "apps"), cfg.Directories.AppDir)
	assert.Equal(t, filepath.Join(paths.BaseDir, "backups"), cfg.Directories.BackupDir)
	assert.Equal(t, "anonymous", cfg.Steam.Username)
	assert.Equal(t, paths, cfg.Paths)
}

func TestLoad_UserOverride(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.MkdirAll(paths.ConfigDir, 0o755))

	content := `general:
  compression: xz
  steam_guard: false
  max_backups: 2
directories:
  app_dir: /srv/games
steam:
  username: gabe
  password: hunter2
`
	require.NoError(t, os.WriteFile(paths.ConfigFile(), []byte(content), 0o644))

	cfg, err := Load(paths)
	require.NoError(t, err)

	assert.Equal(t, "xz", cfg.General.Compression)
	assert.False(t, cfg.General.SteamGuard)
	assert.Equal(t, 2, cfg.General.MaxBackups)
	// Unset keys keep their defaults.
	assert.Equal(t, 30, cfg.General.WaitTime)
	assert.Equal(t, "/srv/games", cfg.Directories.AppDir)
	assert.Equal(t, filepath.Join(paths.BaseDir, "backups"), cfg.Directories.BackupDir)
	assert.Equal(t, "gabe", cfg.Steam.Username)
	assert.Equal(t, "hunter2", cfg.Steam.Password)
}

func TestLoad_Malformed(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.MkdirAll(paths.ConfigDir, 0o755))
	require.NoError(t, os.WriteFile(paths.ConfigFile(), []byte("general: [unclosed"), 0o644))

	_, err := Load(paths)
	require.Error(t, err)

	var cfgErr ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "parse", cfgErr.ErrorType)
	assert.Equal(t, paths.ConfigFile(), cfgErr.FilePath)
}

func TestLoad_InvalidValues(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.MkdirAll(paths.ConfigDir, 0o755))
	require.NoError(t, os.WriteFile(paths.ConfigFile(), []byte("general:\n  compression: rar\n"), 0o644))

	_, err := Load(paths)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "general.compression")
}

func TestCreateAndSave(t *testing.T) {
	paths := testPaths(t)
	assert.False(t, Exists(paths))

	cfg, err := Create(paths)
	require.NoError(t, err)
	assert.True(t, Exists(paths))
	assert.DirExists(t, paths.AppsDir())

	cfg.General.MaxBackups = 9
	require.NoError(t, cfg.Save())

	loaded, err := Load(paths)
	require.NoError(t, err)
	assert.Equal(t, 9, loaded.General.MaxBackups)

	info, err := os.Stat(paths.ConfigFile())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "every compression is accepted", mutate: func(c *Config) { c.General.Compression = "lz4" }},
		{name: "unknown compression", mutate: func(c *Config) { c.General.Compression = "zip" }, wantErr: "general.compression"},
		{name: "negative max backups", mutate: func(c *Config) { c.General.MaxBackups = -1 }, wantErr: "general.max_backups"},
		{name: "negative wait time", mutate: func(c *Config) { c.General.WaitTime = -5 }, wantErr: "general.wait_time"},
		{name: "missing app dir", mutate: func(c *Config) { c.Directories.AppDir = "" }, wantErr: "directories.app_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default(Paths{BaseDir: "/base", ConfigDir: "/config"})
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
