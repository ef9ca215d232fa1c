package descriptors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFiles(t *testing.T) {
	files := Files()
	assert.Equal(t, []string{"222860.yaml", "232370.yaml", "380840.yaml", "740.yaml", "90.yaml"}, files)
}

func TestBuiltinDescriptorsParse(t *testing.T) {
	for _, name := range Files() {
		t.Run(name, func(t *testing.T) {
			data, err := Read(name)
			require.NoError(t, err)

			var raw struct {
				AppID int                    `yaml:"app_id"`
				Apps  map[string]interface{} `yaml:"apps"`
			}
			require.NoError(t, yaml.Unmarshal(data, &raw))
			assert.NotZero(t, raw.AppID)
			assert.NotEmpty(t, raw.Apps)
		})
	}
}

func TestInstall(t *testing.T) {
	dir := t.TempDir()

	written, err := Install(dir, false)
	require.NoError(t, err)
	assert.Len(t, written, len(Files()))
	assert.FileExists(t, filepath.Join(dir, "apps", "232370.yaml"))

	// Local edits survive a second install.
	edited := filepath.Join(dir, "apps", "232370.yaml")
	require.NoError(t, os.WriteFile(edited, []byte("app_id: 232370\n"), 0o644))

	written, err = Install(dir, false)
	require.NoError(t, err)
	assert.Empty(t, written)

	data, err := os.ReadFile(edited)
	require.NoError(t, err)
	assert.Equal(t, "app_id: 232370\n", string(data))

	written, err = Install(dir, true)
	require.NoError(t, err)
	assert.Len(t, written, len(Files()))
	data, err = os.ReadFile(edited)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hl2dm")
}
