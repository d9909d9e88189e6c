package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoginServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if req.Username != "ada" || req.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"access_token":"tok-123"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestReadPassword(t *testing.T) {
	pw, err := readPassword(strings.NewReader("hunter2\r\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)

	pw, err = readPassword(strings.NewReader("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", pw)

	_, err = readPassword(strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAuth))
}

func TestSaveTokenExistingFile(t *testing.T) {
	path := writeConfig(t, "")

	saved, err := saveToken(path, "ada", "tok-1")
	require.NoError(t, err)
	assert.Equal(t, path, saved)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", cfg.Auth.Token)
	assert.Equal(t, "ada", cfg.Auth.Username)
}

func TestSaveTokenCreatesGlobalConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	saved, err := saveToken("", "", "tok-2")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, config.GlobalConfigDir, config.GlobalConfigFile), saved)

	cfg, err := config.Load(saved)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", cfg.Auth.Token)
	assert.Equal(t, "http://localhost:3000", cfg.Server.URL)
}

func TestLoginCommandPrintsToken(t *testing.T) {
	srv := newLoginServer(t)
	withFlags(t, GlobalFlags{Config: writeConfig(t, srv.URL)})

	cmd, out := testCommand("hunter2\n")
	require.NoError(t, loginCommand(cmd, "ada", true, false))
	assert.Equal(t, "export PULSE_AUTH_TOKEN=tok-123\n", out.String())
}

func TestLoginCommandSave(t *testing.T) {
	srv := newLoginServer(t)
	path := writeConfig(t, srv.URL)
	withFlags(t, GlobalFlags{Config: path})

	cmd, out := testCommand("hunter2\n")
	require.NoError(t, loginCommand(cmd, "ada", true, true))
	assert.Contains(t, out.String(), "Token saved to "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", cfg.Auth.Token)
}

func TestLoginCommandJSON(t *testing.T) {
	srv := newLoginServer(t)
	withFlags(t, GlobalFlags{Config: writeConfig(t, srv.URL), JSON: true})

	cmd, out := testCommand("hunter2\n")
	require.NoError(t, loginCommand(cmd, "ada", true, false))

	var env struct {
		Success bool        `json:"success"`
		Data    loginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, loginResult{Username: "ada", Token: "tok-123"}, env.Data)
}

func TestLoginCommandRejected(t *testing.T) {
	srv := newLoginServer(t)
	withFlags(t, GlobalFlags{Config: writeConfig(t, srv.URL)})

	cmd, out := testCommand("wrong\n")
	err := loginCommand(cmd, "ada", true, false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAuth))
	assert.Empty(t, out.String())
}
