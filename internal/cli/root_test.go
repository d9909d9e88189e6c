package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUnknownCommandError(t *testing.T) {
	assert.True(t, isUnknownCommandError(fmt.Errorf(`unknown command "wach" for "pulse"`)))
	assert.True(t, isUnknownCommandError(fmt.Errorf("unknown flag: --severr")))
	assert.True(t, isUnknownCommandError(fmt.Errorf("unknown shorthand flag: 'x' in -x")))
	assert.False(t, isUnknownCommandError(fmt.Errorf("Stream closed: server shut down")))
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"watch", "tail", "login", "devices", "config", "completion", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestInitLoggingToFile(t *testing.T) {
	withFlags(t, GlobalFlags{})
	oldDefault := logger.Default()
	defer func() {
		logger.Init(logger.Config{})
		logger.SetDefault(oldDefault)
	}()

	cfg := config.DefaultConfig()
	cfg.Log.File = filepath.Join(t.TempDir(), "pulse.log")

	closeFn, err := initLogging(cfg, true)
	require.NoError(t, err)
	logger.WithComponent("test").Info("hello %s", "file")
	closeFn()

	data, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}

func TestInitLoggingBadFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Log.File = filepath.Join(t.TempDir(), "missing", "dir", "pulse.log")

	_, err := initLogging(cfg, false)
	assert.Error(t, err)
}
