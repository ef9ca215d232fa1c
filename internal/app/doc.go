// Package app models one installable Steam application: where it lives on
// disk, which executable it runs on this platform, and the operations that
// change what is installed (update, backup, restore, remove).
//
// An App is built fresh for every command from an index token:
//
//	a, err := app.New(ctx, "hl2dm", app.Options{
//		Index:     idx,
//		AppDir:    cfg.Directories.AppDir,
//		BackupDir: cfg.Directories.BackupDir,
//		SteamCMD:  steam,
//		Sessions:  tmux.New(),
//	})
//
// Installed trees are laid out as <app_dir>/<app_id>/<app_name>, backups as
// <backup_dir>/<app_id>/<app_name>/<timestamp>.tar[.ext].
//
// The first operation that changes an app's files (update or restore)
// copies its built-in descriptor into the override directory, so later
// edits by the operator are never overwritten by a new built-in version.
package app
