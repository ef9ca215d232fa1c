package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"scsm/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	subsystem      = "Index"
	descriptorsDir = "apps"
)

// ErrNotFound is returned by Search when a token matches nothing.
var ErrNotFound = errors.New("not found")

// Data is the decoded index file: app id -> app name -> server names.
type Data map[int]map[string][]string

// Resolution is the result of a successful Search. AppName and ServerName
// are empty when the token did not pin them down.
type Resolution struct {
	AppID      int    `json:"app_id" yaml:"app_id"`
	AppName    string `json:"app_name,omitempty" yaml:"app_name,omitempty"`
	ServerName string `json:"server_name,omitempty" yaml:"server_name,omitempty"`
}

// Index reads and rebuilds the app index file.
type Index struct {
	file string
	// dirs are scanned in order; descriptors found later replace earlier
	// ones for the same app id.
	dirs []string
}

// New returns an Index backed by file that scans the apps/ subdirectory of
// each of dirs, typically the data directory followed by the config
// directory.
func New(file string, dirs ...string) *Index {
	return &Index{file: file, dirs: dirs}
}

// File returns the index file path.
func (i *Index) File() string {
	return i.file
}

// DescriptorDirs returns the descriptor directories in scan order.
func (i *Index) DescriptorDirs() []string {
	out := make([]string, 0, len(i.dirs))
	for _, d := range i.dirs {
		out = append(out, filepath.Join(d, descriptorsDir))
	}
	return out
}

// OverrideDir is the descriptor directory scanned last, where user copies
// of descriptors are written.
func (i *Index) OverrideDir() string {
	dirs := i.DescriptorDirs()
	if len(dirs) == 0 {
		return ""
	}
	return dirs[len(dirs)-1]
}

// Load decodes the index file.
func (i *Index) Load() (Data, error) {
	raw, err := os.ReadFile(i.file)
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", i.file, err)
	}
	data := Data{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse index %s: %w", i.file, err)
	}
	return data, nil
}

// List returns the tokens for apps installed under dir. An app id with a
// single app name yields the id; otherwise each installed app name
// subdirectory is yielded. A missing dir yields nothing.
func (i *Index) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	data, err := i.Load()
	if err != nil {
		return nil, err
	}

	var ids []int
	for _, e := range entries {
		id, err := strconv.Atoi(e.Name())
		if err != nil || !e.IsDir() {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var tokens []string
	for _, id := range ids {
		if len(data[id]) <= 1 {
			tokens = append(tokens, strconv.Itoa(id))
			continue
		}
		names, err := os.ReadDir(filepath.Join(dir, strconv.Itoa(id)))
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			if n.IsDir() {
				tokens = append(tokens, n.Name())
			}
		}
	}
	return tokens, nil
}

// ListAll returns a token for every indexed app, using the same
// disambiguation as List.
func (i *Index) ListAll() ([]string, error) {
	data, err := i.Load()
	if err != nil {
		return nil, err
	}

	var tokens []string
	for _, id := range sortedIDs(data) {
		names := sortedNames(data[id])
		if len(names) > 1 {
			tokens = append(tokens, names...)
		} else {
			tokens = append(tokens, strconv.Itoa(id))
		}
	}
	return tokens, nil
}

// Search resolves token to an app id and, when the token names them, the
// app and server. Integer tokens must be indexed app ids. Name tokens are
// matched first against app names and then against server names, walking
// app ids in ascending order.
func (i *Index) Search(token string) (Resolution, error) {
	data, err := i.Load()
	if err != nil {
		return Resolution{}, err
	}
	return data.Search(token)
}

// Search is the in-memory form of Index.Search.
func (d Data) Search(token string) (Resolution, error) {
	if id, err := strconv.Atoi(token); err == nil {
		if _, ok := d[id]; ok {
			return Resolution{AppID: id}, nil
		}
		return Resolution{}, fmt.Errorf("%s: %w", token, ErrNotFound)
	}

	for _, id := range sortedIDs(d) {
		apps := d[id]
		if servers, ok := apps[token]; ok {
			if slices.Contains(servers, token) {
				return Resolution{AppID: id, AppName: token, ServerName: token}, nil
			}
			return Resolution{AppID: id, AppName: token}, nil
		}
		for _, name := range sortedNames(apps) {
			if slices.Contains(apps[name], token) {
				return Resolution{AppID: id, AppName: name, ServerName: token}, nil
			}
		}
	}
	return Resolution{}, fmt.Errorf("%s: %w", token, ErrNotFound)
}

// Update rescans every descriptor directory and rewrites the index file.
// Unreadable descriptors are skipped with a warning.
func (i *Index) Update() error {
	data, err := i.Build()
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(i.file), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(i.file, out, 0o644); err != nil {
		return fmt.Errorf("failed to write index %s: %w", i.file, err)
	}

	logging.Debug(subsystem, "wrote %d apps to %s", len(data), i.file)
	return nil
}

// Build scans the descriptor directories without touching the index file.
func (i *Index) Build() (Data, error) {
	data := Data{}
	for _, dir := range i.DescriptorDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}

		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
				continue
			}
			path := filepath.Join(dir, e.Name())
			desc, err := LoadDescriptor(path)
			if err != nil {
				logging.Warn(subsystem, "skipping descriptor %s: %v", path, err)
				continue
			}

			apps := make(map[string][]string, len(desc.Apps))
			for _, app := range desc.Apps {
				apps[app.Name] = app.ServerNames()
			}
			data[desc.AppID] = apps
		}
	}
	return data, nil
}

// Locate returns the descriptor file for an app id. The last directory
// holding <app_id>.yaml wins; isDefault reports whether that is the first
// (built-in) directory.
func (i *Index) Locate(appID int) (path string, isDefault bool, err error) {
	name := strconv.Itoa(appID) + ".yaml"
	dirs := i.DescriptorDirs()
	for n := len(dirs) - 1; n >= 0; n-- {
		candidate := filepath.Join(dirs[n], name)
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate, n == 0, nil
		}
	}
	return "", false, fmt.Errorf("descriptor %s: %w", name, ErrNotFound)
}

func sortedIDs(d Data) []int {
	ids := make([]int, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func sortedNames(apps map[string][]string) []string {
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
