package config

import "path/filepath"

const (
	configFileName  = "config.yaml"
	indexFileName   = "app_index.yaml"
	appsDirName     = "apps"
	dataDirName     = "data"
	steamcmdDirName = "steamcmd"
	backupsDirName  = "backups"
)

const (
	DefaultCompression = "gz"
	DefaultMaxBackups  = 5
	DefaultWaitTime    = 30
	DefaultUsername    = "anonymous"
)

// Default returns the configuration written by setup and used when no
// config.yaml exists.
func Default(paths Paths) Config {
	return Config{
		General: GeneralConfig{
			Compression: DefaultCompression,
			SteamGuard:  true,
			Verbose:     false,
			MaxBackups:  DefaultMaxBackups,
			WaitTime:    DefaultWaitTime,
		},
		Directories: DirectoriesConfig{
			AppDir:    filepath.Join(paths.BaseDir, appsDirName),
			BackupDir: filepath.Join(paths.BaseDir, backupsDirName),
		},
		Steam: SteamConfig{
			Username: DefaultUsername,
		},
		Paths: paths,
	}
}

func join(elem ...string) string {
	return filepath.Join(elem...)
}
