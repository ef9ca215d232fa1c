package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"scsm/internal/archive"
	"scsm/pkg/logging"
)

const backupTimeFormat = "2006-01-02-150405"

// now is a variable to allow faking the clock in tests
var now = time.Now

// Backup archives the app directory into the backup directory and
// returns the new file's path.
func (a *App) Backup(c archive.Compression) (string, error) {
	if a.BackupDir == "" {
		return "", fmt.Errorf("no backup directory configured")
	}
	if err := os.MkdirAll(a.BackupDir, 0o755); err != nil {
		return "", err
	}

	dest := filepath.Join(a.BackupDir, now().Format(backupTimeFormat)+c.Extension())
	if err := archive.Create(dest, filepath.Dir(a.Dir), a.AppName, c); err != nil {
		return "", err
	}
	logging.Info(subsystem, "backed up %s to %s", a.AppName, dest)
	return dest, nil
}

// Backups lists backup file names, newest first.
func (a *App) Backups() ([]string, error) {
	if a.BackupDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(a.BackupDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && archive.Supported(e.Name()) {
			names = append(names, e.Name())
		}
	}
	// Timestamped names sort chronologically.
	slices.Sort(names)
	slices.Reverse(names)
	return names, nil
}

// PruneBackups deletes the oldest backups so that one more can be added
// without exceeding max. max 0 keeps everything. It returns the deleted
// names.
func (a *App) PruneBackups(max int) ([]string, error) {
	if max <= 0 {
		return nil, nil
	}
	names, err := a.Backups()
	if err != nil {
		return nil, err
	}
	if len(names) < max {
		return nil, nil
	}

	doomed := names[max-1:]
	for _, name := range doomed {
		if err := os.Remove(filepath.Join(a.BackupDir, name)); err != nil {
			return nil, err
		}
		logging.Debug(subsystem, "removed old backup %s", name)
	}
	return doomed, nil
}

// Restore unpacks a backup over the app's parent directory.
func (a *App) Restore(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid backup name %q", name)
	}
	src := filepath.Join(a.BackupDir, name)
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("backup %s: %w", name, err)
	}

	if a.ConfigIsDefault {
		if err := a.CopyConfig(); err != nil {
			return err
		}
	}
	if err := archive.Extract(src, filepath.Dir(a.Dir)); err != nil {
		return err
	}
	logging.Info(subsystem, "restored %s from %s", a.AppName, name)
	return nil
}
