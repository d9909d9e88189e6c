package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDevicesServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDevicesCommandTable(t *testing.T) {
	srv := newDevicesServer(t, `[{"key":"t2","name":"Garage"},{"key":"t1","name":"Kitchen","unit":"°C"}]`)
	withFlags(t, GlobalFlags{Config: writeConfig(t, srv.URL), Token: "tok"})

	cmd, out := testCommand("")
	require.NoError(t, devicesCommand(cmd))

	table := out.String()
	assert.Contains(t, table, "KEY")
	assert.Contains(t, table, "Kitchen")
	assert.Contains(t, table, "Garage")
	assert.Less(t, strings.Index(table, "Kitchen"), strings.Index(table, "Garage"))
}

func TestDevicesCommandJSON(t *testing.T) {
	srv := newDevicesServer(t, `[{"key":"t1","name":"Kitchen","unit":"°C"}]`)
	withFlags(t, GlobalFlags{Config: writeConfig(t, srv.URL), Token: "tok", JSON: true})

	cmd, out := testCommand("")
	require.NoError(t, devicesCommand(cmd))

	var env struct {
		Success bool               `json:"success"`
		Data    []dashboard.Device `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, dashboard.Device{Key: "t1", DisplayName: "Kitchen", Unit: "°C"}, env.Data[0])
}

func TestDevicesCommandEmpty(t *testing.T) {
	srv := newDevicesServer(t, `[]`)
	withFlags(t, GlobalFlags{Config: writeConfig(t, srv.URL), Token: "tok"})

	cmd, out := testCommand("")
	require.NoError(t, devicesCommand(cmd))
	assert.Contains(t, out.String(), "No devices registered.")
}

func TestDevicesCommandNeedsToken(t *testing.T) {
	t.Setenv("PULSE_AUTH_TOKEN", "")
	withFlags(t, GlobalFlags{Config: writeConfig(t, "")})

	cmd, _ := testCommand("")
	err := devicesCommand(cmd)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAuth))
}

func TestRenderDevicesFillsBlanks(t *testing.T) {
	out := renderDevices([]dashboard.Device{{Key: "t9"}})
	assert.Contains(t, out, "t9")
	assert.Contains(t, out, "-")
}
