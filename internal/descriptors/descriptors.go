// Package descriptors embeds the app descriptors shipped with scsm and
// materialises them into the data directory.
package descriptors

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"

	"scsm/pkg/logging"
)

//go:embed apps/*.yaml
var builtin embed.FS

const builtinDir = "apps"

// Files returns the file names of the built-in descriptors, sorted.
func Files() []string {
	entries, err := fs.ReadDir(builtin, builtinDir)
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names
}

// Read returns the raw contents of one built-in descriptor.
func Read(name string) ([]byte, error) {
	return builtin.ReadFile(path.Join(builtinDir, name))
}

// Install writes the built-in descriptors into dir/apps. Existing files
// are left alone unless overwrite is set. It returns the files written.
func Install(dir string, overwrite bool) ([]string, error) {
	target := filepath.Join(dir, builtinDir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", target, err)
	}

	var written []string
	for _, name := range Files() {
		dest := filepath.Join(target, name)
		if !overwrite {
			if _, err := os.Stat(dest); err == nil {
				continue
			} else if !errors.Is(err, os.ErrNotExist) {
				return written, err
			}
		}

		data, err := Read(name)
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", dest, err)
		}
		logging.Debug("Descriptors", "installed %s", dest)
		written = append(written, name)
	}
	return written, nil
}
