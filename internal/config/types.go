package config

// Config is the top-level structure of config.yaml.
type Config struct {
	General     GeneralConfig     `yaml:"general" json:"general"`
	Directories DirectoriesConfig `yaml:"directories" json:"directories"`
	Steam       SteamConfig       `yaml:"steam" json:"steam"`

	// Paths is resolved at load time and never written to disk.
	Paths Paths `yaml:"-" json:"-"`
}

// GeneralConfig holds behaviour toggles shared by all commands.
type GeneralConfig struct {
	Compression string `yaml:"compression" json:"compression"` // Default backup compression (none, gz, bz2, xz, zst, lz4)
	SteamGuard  bool   `yaml:"steam_guard" json:"steam_guard"` // Prompt for a Steam Guard code on login
	Verbose     bool   `yaml:"verbose" json:"verbose"`         // Pass SteamCMD output through unfiltered
	MaxBackups  int    `yaml:"max_backups" json:"max_backups"` // 0 keeps every backup
	WaitTime    int    `yaml:"wait_time" json:"wait_time"`     // Seconds to wait for a stop before killing
}

// DirectoriesConfig holds the install and backup roots.
type DirectoriesConfig struct {
	AppDir    string `yaml:"app_dir" json:"app_dir"`
	BackupDir string `yaml:"backup_dir" json:"backup_dir"`
}

// SteamConfig holds the credentials passed to SteamCMD.
type SteamConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password,omitempty"`
}

// Paths are the resolved locations of the tool's state.
type Paths struct {
	ConfigDir  string
	BaseDir    string
	SystemWide bool
}

// ConfigFile is the path of config.yaml.
func (p Paths) ConfigFile() string {
	return join(p.ConfigDir, configFileName)
}

// AppsDir is the user override descriptor directory.
func (p Paths) AppsDir() string {
	return join(p.ConfigDir, appsDirName)
}

// IndexFile is the path of the derived app index.
func (p Paths) IndexFile() string {
	return join(p.ConfigDir, indexFileName)
}

// DataDir is the directory holding the built-in descriptors.
func (p Paths) DataDir() string {
	return join(p.BaseDir, dataDirName)
}

// SteamCMDDir is the private SteamCMD install location.
func (p Paths) SteamCMDDir() string {
	return join(p.BaseDir, steamcmdDirName)
}
