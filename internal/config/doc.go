// Package config loads and writes the scsm settings file and resolves the
// directories the rest of the tool works in.
//
// # Layout
//
// Two directory trees are involved:
//
//   - The config directory holds config.yaml, the user override descriptors
//     under apps/ and the derived app_index.yaml.
//   - The base directory holds installed apps, backups, the built-in
//     descriptor copies (data/) and a private SteamCMD install.
//
// For a regular user the config directory is ~/.config/scsm and the base
// directory ~/.local/share/scsm. When ~/.config/scsm does not exist but
// /etc/scsm does, the system-wide config is used instead. Root uses
// /opt/scsm as its base directory and Windows keeps everything under
// %APPDATA%\scsm.
//
// SCSM_CONFIG_DIR and SCSM_DATA_DIR override the config and base directories.
//
// # Usage
//
//	paths, err := config.ResolvePaths()
//	if err != nil {
//		return err
//	}
//	cfg, err := config.Load(paths)
//
// Load never fails on a missing file; it returns Default(paths) instead.
package config
