package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multiDescriptor = `app_id: 90
apps:
  dod:
    fname: Day of Defeat
    servers:
      dod:
        start: [-game, dod, +maxplayers, 16]
        stop: [quit]
    platforms:
      Linux:
        exec: ./hlds_run
    app_config: mod dod
  cstrike:
    fname: Counter-Strike
    servers:
      zeta:
        start: []
      alpha:
        start: [-game, cstrike]
    platforms:
      Linux:
        64bit:
          exec: ./hlds_run
          directory: bin
          library: bin/lib
        32bit:
          exec: ./hlds_run_i686
    beta: prerelease
    password: secret
`

func TestParseDescriptor_PreservesOrder(t *testing.T) {
	d, err := ParseDescriptor([]byte(multiDescriptor))
	require.NoError(t, err)

	assert.Equal(t, 90, d.AppID)
	assert.Equal(t, []string{"dod", "cstrike"}, d.AppNames())

	cs, ok := d.App("cstrike")
	require.True(t, ok)
	assert.Equal(t, "Counter-Strike", cs.FullName)
	assert.Equal(t, []string{"zeta", "alpha"}, cs.ServerNames())
}

func TestParseDescriptor_OptionalFields(t *testing.T) {
	d, err := ParseDescriptor([]byte(multiDescriptor))
	require.NoError(t, err)

	dod, _ := d.App("dod")
	assert.Nil(t, dod.Beta)
	assert.Nil(t, dod.BetaPassword)
	require.NotNil(t, dod.AppConfig)
	assert.Equal(t, "mod dod", *dod.AppConfig)

	srv, ok := dod.Server("dod")
	require.True(t, ok)
	assert.Equal(t, []string{"-game", "dod", "+maxplayers", "16"}, srv.Start)
	assert.Equal(t, []string{"quit"}, srv.Stop)

	cs, _ := d.App("cstrike")
	require.NotNil(t, cs.Beta)
	assert.Equal(t, "prerelease", *cs.Beta)
	require.NotNil(t, cs.BetaPassword)
	assert.Equal(t, "secret", *cs.BetaPassword)

	alpha, _ := cs.Server("alpha")
	assert.Nil(t, alpha.Stop)
}

func TestAppDef_Platform(t *testing.T) {
	d, err := ParseDescriptor([]byte(multiDescriptor))
	require.NoError(t, err)

	dod, _ := d.App("dod")
	p, ok := dod.Platform("Linux", "32bit")
	require.True(t, ok)
	assert.Equal(t, "./hlds_run", p.Exec)
	assert.Nil(t, p.Directory)

	_, ok = dod.Platform("Windows", "64bit")
	assert.False(t, ok)

	cs, _ := d.App("cstrike")
	p, ok = cs.Platform("Linux", "64bit")
	require.True(t, ok)
	require.NotNil(t, p.Directory)
	assert.Equal(t, "bin", *p.Directory)
	require.NotNil(t, p.Library)
	assert.Equal(t, "bin/lib", *p.Library)

	p, ok = cs.Platform("Linux", "32bit")
	require.True(t, ok)
	assert.Equal(t, "./hlds_run_i686", p.Exec)
	assert.Nil(t, p.Library)
}

func TestParseDescriptor_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "missing app id", content: "apps:\n  x:\n    fname: X\n", wantErr: "app_id is required"},
		{name: "no apps", content: "app_id: 10\n", wantErr: "no apps defined"},
		{name: "apps not a mapping", content: "app_id: 10\napps: [a, b]\n", wantErr: "apps must be a mapping"},
		{name: "bad yaml", content: "app_id: [", wantErr: "invalid descriptor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDescriptor([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
