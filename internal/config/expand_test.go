package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"~", home},
		{"~/logs/pulse.log", filepath.Join(home, "logs/pulse.log")},
		{"/var/log/pulse.log", "/var/log/pulse.log"},
		{"~other/x", "~other/x"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandTilde(tt.input))
		})
	}
}

func TestExpand(t *testing.T) {
	t.Setenv("USER", "ada")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", Expand(""))
	assert.Equal(t, "/tmp/ada.log", Expand("/tmp/${USER}.log"))
	assert.Equal(t, home+"/pulse.log", Expand("${HOME}/pulse.log"))
	assert.Equal(t, filepath.Join(home, "ada"), Expand("~/${USER}"))
}

func TestExpandKeepsUnknownVariables(t *testing.T) {
	assert.Equal(t, "/tmp/${PULSE_RUN}/x.log", Expand("/tmp/${PULSE_RUN}/x.log"))
}
