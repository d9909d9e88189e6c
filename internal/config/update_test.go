package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	cfg := DefaultConfig()
	cfg.Buffer.Capacity = 42
	cfg.Session.ConnectTimeout = 4 * time.Second
	require.NoError(t, WriteDefault(path, cfg, false))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Buffer.Capacity)
	assert.Equal(t, 4*time.Second, loaded.Session.ConnectTimeout)
	assert.Equal(t, cfg.Server, loaded.Server)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteDefaultRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	err := WriteDefault(path, DefaultConfig(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, WriteDefault(path, DefaultConfig(), true))
}

func TestSetValue(t *testing.T) {
	tests := []struct {
		name         string
		initialYAML  string
		key          string
		value        string
		wantContains []string
		wantErr      bool
	}{
		{
			name: "replace existing value",
			initialYAML: `# my settings
server:
  url: http://old:3000 # dev box
`,
			key:          "server.url",
			value:        "http://new:3000",
			wantContains: []string{"# my settings", "url: http://new:3000", "# dev box"},
		},
		{
			name:         "create section",
			initialYAML:  "version: 1\n",
			key:          "auth.username",
			value:        "ada",
			wantContains: []string{"version: 1", "auth:", "username: ada"},
		},
		{
			name:         "empty file",
			initialYAML:  "",
			key:          "auth.token",
			value:        "abc",
			wantContains: []string{"auth:", "token: abc"},
		},
		{
			name:        "key names a section",
			initialYAML: "server:\n  url: x\n",
			key:         "server",
			value:       "y",
			wantErr:     true,
		},
		{
			name:        "walk through a scalar",
			initialYAML: "server: x\n",
			key:         "server.url",
			value:       "y",
			wantErr:     true,
		},
		{
			name:        "empty segment",
			initialYAML: "version: 1\n",
			key:         "auth..token",
			value:       "y",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.initialYAML), 0o644))

			err := SetValue(path, tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			for _, want := range tt.wantContains {
				assert.Contains(t, string(data), want)
			}
		})
	}
}

func TestSetValueIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, WriteDefault(path, DefaultConfig(), false))

	require.NoError(t, SetValue(path, "auth.username", "ada"))
	require.NoError(t, SetValue(path, "buffer.capacity", "300"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ada", cfg.Auth.Username)
	assert.Equal(t, 300, cfg.Buffer.Capacity)
}

func TestSetValueMissingFile(t *testing.T) {
	err := SetValue(filepath.Join(t.TempDir(), "missing.yaml"), "a.b", "c")
	assert.Error(t, err)
}
