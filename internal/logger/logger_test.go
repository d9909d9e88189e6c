package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureInit(t *testing.T, cfg Config) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	cfg.Output = &buf
	Init(cfg)
	t.Cleanup(func() { Init(Config{}) })
	return &buf
}

func TestWithComponent_Debug(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		envValue  string
		expectLog bool
	}{
		{
			name:      "logs when PULSE_DEBUG is set",
			envValue:  "1",
			expectLog: true,
		},
		{
			name:      "logs when level is debug",
			level:     "debug",
			expectLog: true,
		},
		{
			name:      "does not log at default level",
			expectLog: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(DebugEnv, tt.envValue)
			} else {
				os.Unsetenv(DebugEnv)
			}
			buf := captureInit(t, Config{Level: tt.level})

			l := WithComponent("test")
			l.Debug("test message %s", "arg")

			if tt.expectLog {
				assert.Contains(t, buf.String(), "test message arg")
				assert.Contains(t, buf.String(), "component=test")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestWithComponent_Levels(t *testing.T) {
	os.Unsetenv(DebugEnv)
	buf := captureInit(t, Config{Level: "warn"})

	l := WithComponent("lvl")
	l.Info("hidden info")
	l.Warn("visible warning")
	l.Error("visible error %d", 7)

	out := buf.String()
	assert.NotContains(t, out, "hidden info")
	assert.Contains(t, out, "visible warning")
	assert.Contains(t, out, "visible error 7")
}

func TestWithComponent_JSON(t *testing.T) {
	os.Unsetenv(DebugEnv)
	buf := captureInit(t, Config{JSON: true})

	WithComponent("session").Info("connected to %s", "ws://example")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "session", line["component"])
	assert.Equal(t, "connected to ws://example", line["message"])
	assert.NotEmpty(t, line["time"])
}

func TestNoopLogger(t *testing.T) {
	buf := captureInit(t, Config{Level: "debug"})

	l := Noop()
	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	assert.Empty(t, buf.String(), "noop logger should not produce any output")
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("debug %s", "msg")
	l.Info("info %s", "msg")
	l.Warn("warn %s", "msg")
	l.Error("error %s", "msg")

	require.Len(t, l.Messages, 4)

	assert.Equal(t, "debug", l.Messages[0].Level)
	assert.Equal(t, "debug msg", l.Messages[0].Message)

	assert.Equal(t, "info", l.Messages[1].Level)
	assert.Equal(t, "info msg", l.Messages[1].Message)

	assert.Equal(t, "warn", l.Messages[2].Level)
	assert.Equal(t, "warn msg", l.Messages[2].Message)

	assert.Equal(t, "error", l.Messages[3].Level)
	assert.Equal(t, "error msg", l.Messages[3].Message)
}

func TestBufferLogger_HasLevelAndContains(t *testing.T) {
	l := NewBufferLogger()

	assert.False(t, l.HasLevel("debug"))
	assert.False(t, l.Contains("boom"))

	l.Debug("test")
	l.Error("boom happened")
	assert.True(t, l.HasLevel("debug"))
	assert.True(t, l.HasLevel("error"))
	assert.True(t, l.Contains("boom"))
}

func TestBufferLogger_Concurrent(t *testing.T) {
	l := NewBufferLogger()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Info("goroutine %d", i)
		}(i)
	}
	wg.Wait()

	assert.Len(t, l.Snapshot(), 10)
}

func TestBufferLogger_Clear(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("test1")
	l.Info("test2")
	require.Len(t, l.Messages, 2)

	l.Clear()
	assert.Empty(t, l.Messages)
}

func TestDefault(t *testing.T) {
	original := defaultLogger
	defer func() { defaultLogger = original }()

	assert.NotNil(t, Default())

	buf := NewBufferLogger()
	SetDefault(buf)

	assert.Equal(t, buf, Default())
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = WithComponent("")
	var _ Logger = Noop()
	var _ Logger = NewBufferLogger()
}

func TestParseLevel(t *testing.T) {
	os.Unsetenv(DebugEnv)
	buf := captureInit(t, Config{Level: "WARNING"})

	WithComponent("x").Info("should not appear")
	assert.False(t, strings.Contains(buf.String(), "should not appear"))
}
